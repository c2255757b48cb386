package dicomlog

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// EnvVar names the environment variable read by ConfigureFromEnv.
const EnvVar = "DICOMANCER_LOG"

// Verbosity levels accepted by SetLevel. Larger is more verbose.
const (
	LevelOff   = -1
	LevelError = 0
	LevelWarn  = 1
	LevelInfo  = 2
	LevelDebug = 3
	LevelTrace = 4
)

// level sets log verbosity. The larger the value, the more verbose.  Setting it
// to -1 disables logging completely.
var level = int32(LevelWarn)

var logger = logrus.New()

// SetLevel sets log verbosity. The larger the value, the more verbose. Setting
// it to -1 disables logging completely. Thread safe.
func SetLevel(l int) {
	atomic.StoreInt32(&level, int32(l))
	switch {
	case l < 0:
		logger.SetLevel(logrus.PanicLevel)
	case l >= LevelTrace:
		logger.SetLevel(logrus.TraceLevel)
	default:
		logger.SetLevel([...]logrus.Level{logrus.ErrorLevel, logrus.WarnLevel, logrus.InfoLevel, logrus.DebugLevel}[l])
	}
}

// Level returns the current log level. The larger the value, the more verbose.
// Thread safe.
func Level() int {
	return int(atomic.LoadInt32(&level))
}

// SetOutput redirects all events, e.g. to a GUI diagnostics pane or a test buffer.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// ParseLevel maps "off", "error", "warn", "info", "debug", "trace" or a
// decimal integer to a verbosity level.
func ParseLevel(s string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LevelOff, true
	case "error":
		return LevelError, true
	case "warn", "warning":
		return LevelWarn, true
	case "info":
		return LevelInfo, true
	case "debug":
		return LevelDebug, true
	case "trace", "all":
		return LevelTrace, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ConfigureFromEnv applies DICOMANCER_LOG when it is set and well formed.
// It reports whether the variable was applied.
func ConfigureFromEnv() bool {
	v, ok := os.LookupEnv(EnvVar)
	if !ok {
		return false
	}
	l, ok := ParseLevel(v)
	if !ok {
		logger.Warnf("dicomlog: ignoring %s=%q", EnvVar, v)
		return false
	}
	SetLevel(l)
	return true
}

// Vprintf is shorthand for "if level > Level { log.Printf(...) }".
func Vprintf(l int, format string, args ...interface{}) {
	if Level() >= l {
		logger.Printf(format, args...)
	}
}

// Fields is the set of key/value pairs attached to an event.
type Fields = logrus.Fields

// Event emits a structured event at verbosity l.
func Event(l int, msg string, fields Fields) {
	if Level() < l {
		return
	}
	entry := logger.WithFields(fields)
	switch {
	case l <= LevelError:
		entry.Error(msg)
	case l == LevelWarn:
		entry.Warn(msg)
	case l == LevelInfo:
		entry.Info(msg)
	case l == LevelDebug:
		entry.Debug(msg)
	default:
		entry.Trace(msg)
	}
}

// Warn emits a recoverable-anomaly event.
func Warn(msg string, fields Fields) {
	Event(LevelWarn, msg, fields)
}

func init() {
	SetLevel(int(level))
}
