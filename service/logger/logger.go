// Package logger builds the zap loggers used by the thermo command and
// service from a small yaml-friendly configuration.
package logger

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Path string `yaml:"path"`
	// If Path is a file, Mode will determine how the log file is managed.
	// FileModeAppend is the default if value is undefined.
	Mode  FileMode      `yaml:"mode,omitempty"`
	Name  string        `yaml:"name,omitempty"`
	Level zapcore.Level `yaml:"level"`
	// DevMode makes DPanic level logs panic.
	DevMode bool `yaml:"devmode,omitempty"`
}

func New(conf Config) (*zap.Logger, error) {
	core, err := NewCore(conf)
	if err != nil {
		return nil, err
	}
	return newLogger(core, conf.DevMode), nil
}

// NewWaterfall returns a logger that writes each entry to the first of
// confs that accepts it. A config with a Name only accepts entries from
// the logger of that name, so named configs should come before a catch-all.
func NewWaterfall(confs []Config) (*zap.Logger, error) {
	if len(confs) == 0 {
		return zap.NewNop(), nil
	}
	var cores []zapcore.Core
	var devMode bool
	for _, c := range confs {
		core, err := NewCore(c)
		if err != nil {
			return nil, err
		}
		cores = append(cores, core)
		devMode = devMode || c.DevMode
	}
	return newLogger(waterfallCore(cores), devMode), nil
}

func NewCore(conf Config) (zapcore.Core, error) {
	w, err := OpenFile(conf.Path, conf.Mode)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(jsonEncoder(), w, conf.Level)
	if conf.Name != "" {
		core = newNameFilterCore(core, conf.Name)
	}
	return core, nil
}

func newLogger(core zapcore.Core, devMode bool) *zap.Logger {
	var opts []zap.Option
	if devMode {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...)
}

func jsonEncoder() zapcore.Encoder {
	conf := zap.NewProductionEncoderConfig()
	conf.CallerKey = ""
	conf.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(conf)
}

type waterfallCore []zapcore.Core

func (w waterfallCore) Enabled(l zapcore.Level) bool {
	for _, c := range w {
		if c.Enabled(l) {
			return true
		}
	}
	return false
}

func (w waterfallCore) With(fields []zapcore.Field) zapcore.Core {
	out := make(waterfallCore, len(w))
	for i, c := range w {
		out[i] = c.With(fields)
	}
	return out
}

func (w waterfallCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	for _, c := range w {
		if next := c.Check(e, ce); next != ce {
			return next
		}
	}
	return ce
}

// Write is never reached since Check hands entries to the inner cores.
// This relies on waterfallCore being the root core of its logger.
func (w waterfallCore) Write(zapcore.Entry, []zapcore.Field) error {
	return nil
}

func (w waterfallCore) Sync() error {
	var err error
	for _, c := range w {
		err = multierr.Append(err, c.Sync())
	}
	return err
}
