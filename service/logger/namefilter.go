package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// nameFilterCore passes along only the entries logged by the named logger
// or by loggers beneath it, so "http" also accepts "http.access".
type nameFilterCore struct {
	zapcore.Core
	name string
}

func newNameFilterCore(next zapcore.Core, name string) zapcore.Core {
	return &nameFilterCore{next, name}
}

func (core *nameFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &nameFilterCore{core.Core.With(fields), core.name}
}

func (core *nameFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if matchName(core.name, e.LoggerName) {
		return core.Core.Check(e, ce)
	}
	return ce
}

func matchName(name, loggerName string) bool {
	return loggerName == name || strings.HasPrefix(loggerName, name+".")
}
