package token

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/brimdata/thermo/cmd/thermo/root"
	"github.com/brimdata/thermo/pkg/charm"
	"github.com/brimdata/thermo/service"
	"github.com/brimdata/thermo/service/auth"
)

var Cmd = &charm.Spec{
	Name:  "token",
	Usage: "token -auth.secret secret [options]",
	Short: "create a bearer token for a thermo service",
	Long: `
The token command prints a JWT accepted by a service started with
"thermo serve -auth.secret" using the same -auth.secret and -auth.audience.
Pass it to clients with -auth.token.`,
	HiddenFlags:   "auth.enabled",
	RedactedFlags: "auth.secret",
	New:           New,
}

type Command struct {
	*root.Command
	auth       service.AuthConfig
	subject    string
	expiration time.Duration
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.auth.SetFlags(f)
	f.StringVar(&c.subject, "subject", "", "subject (sub claim) of the token")
	f.DurationVar(&c.expiration, "expiration", 24*time.Hour, "lifetime of the token (0 for no expiration)")
	return c, nil
}

func (c *Command) Run(args []string) error {
	_, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	if c.auth.Secret == "" {
		return errors.New("token requires -auth.secret")
	}
	if c.subject == "" {
		return errors.New("token requires -subject")
	}
	if c.expiration < 0 {
		return fmt.Errorf("-expiration must not be negative: %s", c.expiration)
	}
	token, err := auth.GenerateToken([]byte(c.auth.Secret), c.auth.Audience, c.subject, c.expiration)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
