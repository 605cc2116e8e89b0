// Package clierrors formats errors for display on a terminal.
package clierrors

import (
	"errors"

	"github.com/brimdata/thermo/service/srverr"
	"go.uber.org/multierr"
)

// Format strips the kind descriptions that srverr adds for API callers
// from each error combined in err.
func Format(err error) error {
	if err == nil {
		return nil
	}
	var errs []error
	for _, err := range multierr.Errors(err) {
		var serr *srverr.Error
		if errors.As(err, &serr) && serr == err {
			err = errors.New(serr.Message())
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
