package otel

import (
	"os"
	"strconv"
	"sync/atomic"
)

// TraceEnv turns on per-message tracing in the UI. Any value other than
// a false boolean ("0", "false", "off"...) enables it.
const TraceEnv = "CHAINPULSE_TRACE"

var tracing atomic.Bool

func init() {
	setTrace(traceFromEnv(os.Getenv(TraceEnv)))
}

// TraceEnabled reports whether UI messages are traced to the event log.
func TraceEnabled() bool { return tracing.Load() }

func setTrace(on bool) { tracing.Store(on) }

func traceFromEnv(v string) bool {
	switch v {
	case "", "off", "no":
		return false
	}
	on, err := strconv.ParseBool(v)
	return err != nil || on
}
