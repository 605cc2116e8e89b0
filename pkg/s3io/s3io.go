// Package s3io reads objects from Amazon S3 or an S3-compatible store.
package s3io

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var ErrInvalidS3Path = errors.New("path is not a valid s3 location")

// NewClient returns an S3 client for cfg.  When cfg is nil the client is
// configured from the environment, honoring AWS_S3_ENDPOINT for
// S3-compatible stores.
func NewClient(cfg *aws.Config) s3iface.S3API {
	if cfg == nil {
		cfg = &aws.Config{}
		if endpoint := os.Getenv("AWS_S3_ENDPOINT"); endpoint != "" {
			cfg.Endpoint = aws.String(endpoint)
			cfg.S3ForcePathStyle = aws.Bool(true)
		}
	}
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	}))
	return s3.New(sess)
}

func IsS3Path(path string) bool {
	_, _, err := parsePath(path)
	return err == nil
}

func parsePath(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", ErrInvalidS3Path
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

func Stat(ctx context.Context, path string, client s3iface.S3API) (*s3.HeadObjectOutput, error) {
	bucket, key, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	return client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
}

func Exists(ctx context.Context, path string, client s3iface.S3API) (bool, error) {
	_, err := Stat(ctx, path, client)
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == "NotFound" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
