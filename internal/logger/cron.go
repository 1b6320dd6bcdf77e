package logger

import (
	"fmt"
	"strings"
)

// CronLogger routes scheduler library messages through this package.
// It satisfies cron.Logger; routine messages are logged at debug.
type CronLogger struct{}

// Info logs routine scheduler activity.
func (CronLogger) Info(msg string, keysAndValues ...interface{}) {
	Debug("cron: %s%s", msg, formatKV(keysAndValues))
}

// Error logs scheduler failures, including recovered panics.
func (CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	Error("cron: %s: %v%s", msg, err, formatKV(keysAndValues))
}

func formatKV(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v", kv[i])
		}
	}
	return b.String()
}
