package serve

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"syscall"

	"github.com/brimdata/thermo/cli"
	"github.com/brimdata/thermo/cli/cacheflags"
	"github.com/brimdata/thermo/cmd/thermo/root"
	"github.com/brimdata/thermo/pkg/charm"
	"github.com/brimdata/thermo/pkg/fs"
	"github.com/brimdata/thermo/pkg/httpd"
	"github.com/brimdata/thermo/service"
	"github.com/brimdata/thermo/service/logger"
	"github.com/pkg/browser"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var Cmd = &charm.Spec{
	Name:  "serve",
	Usage: "serve [options]",
	Short: "serve steam table lookups over HTTP",
	Long: `
The serve command listens for thermo API requests on the interface and port
given by -l and answers them from the dataset selected by -data.  GET / on
the same port describes the API.

With -auth.secret, every API request must carry a bearer token signed with
the secret, as created by "thermo token".  The -cache.kind option memoizes
query results in process (local) or in redis, which then needs
-redis.enabled and the -redis.* connection options.

The -config option names a yaml file whose "loggers" list replaces the
-log.* options with a waterfall of loggers.  Each entry has a path, level,
mode (append, truncate or rotate) and optionally the name of the logger it
is limited to, such as http.access:

    loggers:
      - name: http.access
        path: access.log
        level: info
        mode: rotate
      - path: stderr
        level: warn
`,
	HiddenFlags:   "portfile",
	RedactedFlags: "auth.secret,redis.password",
	New:           New,
}

type Command struct {
	*root.Command
	conf       service.Config
	cacheFlags cacheflags.Flags
	configFile string
	listenAddr string
	open       bool
	portFile   string
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.conf.Auth.SetFlags(f)
	c.conf.Redis.SetFlags(f)
	c.conf.Version = cli.Version()
	c.cacheFlags.SetFlags(f)
	f.StringVar(&c.configFile, "config", "", "yaml file configuring the service loggers")
	f.Func("cors.origin", "CORS allowed origin (may be repeated)", func(s string) error {
		c.conf.CORSAllowedOrigins = append(c.conf.CORSAllowedOrigins, s)
		return nil
	})
	f.StringVar(&c.conf.DefaultResponseFormat, "defaultfmt", "json", "default response format")
	f.StringVar(&c.listenAddr, "l", ":9867", "[addr]:port to listen on")
	f.BoolVar(&c.open, "open", false, "open the service's index page in a browser")
	f.StringVar(&c.portFile, "portfile", "", "write listen port to file")
	f.IntVar(&c.conf.Precision, "precision", -1, "significant digits of values in text, table and csv responses")
	f.IntVar(&c.conf.SweepWorkers, "workers", runtime.GOMAXPROCS(0), "number of sweep points to compute in parallel")
	return c, nil
}

func (c *Command) Run(args []string) error {
	// Don't include SIGPIPE here or else a write to a closed socket (i.e.,
	// a broken network connection) will cancel the context on Linux.
	ctx, cleanup, err := c.InitWithSignals(nil, syscall.SIGINT, syscall.SIGTERM)
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) > 0 {
		return fmt.Errorf("serve takes no arguments")
	}
	logger, err := c.openLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	ds, err := c.DataFlags.Open(ctx)
	if err != nil {
		return err
	}
	logger.Info("Dataset loaded", zap.String("source", ds.Source()))
	c.conf.Cache = c.cacheFlags.Config
	c.conf.Dataset = ds
	c.conf.Logger = logger
	core, err := service.NewCore(ctx, c.conf)
	if err != nil {
		return err
	}
	defer core.Shutdown()
	srv := httpd.New(c.listenAddr, core)
	srv.SetLogger(logger.Named("httpd"))
	if err := srv.Start(ctx); err != nil {
		return err
	}
	if c.portFile != "" {
		if err := c.writePortFile(srv.Addr()); err != nil {
			return err
		}
	}
	if c.open {
		if err := browser.OpenURL(indexURL(srv.Addr())); err != nil {
			logger.Warn("Opening browser failed", zap.Error(err))
		}
	}
	return srv.Wait()
}

type fileConfig struct {
	Loggers []logger.Config `yaml:"loggers"`
}

// openLogger uses the loggers of the -config file if it has any and the
// -log.* flags otherwise.
func (c *Command) openLogger() (*zap.Logger, error) {
	if c.configFile == "" {
		return c.Logger()
	}
	b, err := os.ReadFile(c.configFile)
	if err != nil {
		return nil, err
	}
	conf, err := parseConfig(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.configFile, err)
	}
	if len(conf.Loggers) == 0 {
		return c.Logger()
	}
	return logger.NewWaterfall(conf.Loggers)
}

func parseConfig(b []byte) (fileConfig, error) {
	var conf fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&conf); err != nil && err != io.EOF {
		return fileConfig{}, err
	}
	return conf, nil
}

func indexURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if ip := net.ParseIP(host); host == "" || ip != nil && ip.IsUnspecified() {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func (c *Command) writePortFile(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	return fs.ReplaceFile(c.portFile, 0644, func(w io.Writer) error {
		_, err := w.Write([]byte(port))
		return err
	})
}
