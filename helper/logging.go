package helper

import (
	"fmt"

	"github.com/theritikchoure/logx"
)

// Logger is a thin, prefixed wrapper around logx's colored console logger,
// used the same way the teacher process calls logx.Logf directly but with
// a consistent per-component prefix and level-to-color mapping.
type Logger struct {
	prefix string
}

// NewLogger returns a Logger that tags every line with prefix, e.g. "[NN]"
// or "[SS:7000]".
func NewLogger(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

func (l *Logger) line(format string, args ...interface{}) string {
	return fmt.Sprintf("%s %s", l.prefix, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	logx.Logf(l.line(format, args...), logx.FGBLACK, logx.BGWHITE)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	logx.Logf(l.line(format, args...), logx.FGBLUE, logx.BGWHITE)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	logx.Logf(l.line(format, args...), logx.FGBLACK, logx.BGYELLOW)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	logx.Logf(l.line(format, args...), logx.FGWHITE, logx.BGRED)
}
