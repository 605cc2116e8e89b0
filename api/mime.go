package api

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

const (
	MediaTypeAny   = "*/*"
	MediaTypeCSV   = "text/csv"
	MediaTypeHTML  = "text/html"
	MediaTypeJSON  = "application/json"
	MediaTypeText  = "text/plain"
	MediaTypeTable = "text/x-table"
)

type ErrUnsupportedMimeType struct {
	Type string
}

func (m *ErrUnsupportedMimeType) Error() string {
	return fmt.Sprintf("unsupported MIME type: %s", m.Type)
}

// MediaTypeToFormat returns the output format of the media type value s. If
// s is MediaTypeAny or undefined the default format dflt will be returned.
func MediaTypeToFormat(s string, dflt string) (string, error) {
	if s = strings.TrimSpace(s); s == "" {
		return dflt, nil
	}
	// Take the first of a list such as "text/csv, */*;q=0.8".
	s, _, _ = strings.Cut(s, ",")
	typ, _, err := mime.ParseMediaType(s)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "", err
	}
	switch typ {
	case MediaTypeAny, "":
		return dflt, nil
	case MediaTypeCSV:
		return "csv", nil
	case MediaTypeJSON:
		return "json", nil
	case MediaTypeText:
		return "text", nil
	case MediaTypeTable:
		return "table", nil
	}
	return "", &ErrUnsupportedMimeType{typ}
}

func FormatToMediaType(format string) string {
	switch format {
	case "csv":
		return MediaTypeCSV
	case "json":
		return MediaTypeJSON
	case "text":
		return MediaTypeText
	case "table":
		return MediaTypeTable
	default:
		return ""
	}
}
