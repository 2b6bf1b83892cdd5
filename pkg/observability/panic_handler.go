package observability

import (
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with its stack trace.
// It must be called directly in a defer statement:
//
//	defer observability.RecoverPanic(logger, "session sweep")
//
// The panic is not re-raised.
func RecoverPanic(logger *Logger, where string) {
	if r := recover(); r != nil {
		logPanic(logger, where, r)
	}
}

// RecoverPanicWithCallback recovers like RecoverPanic and then runs callback,
// only when a panic occurred
func RecoverPanicWithCallback(logger *Logger, where string, callback func()) {
	if r := recover(); r != nil {
		logPanic(logger, where, r)
		if callback != nil {
			callback()
		}
	}
}

func logPanic(logger *Logger, where string, r interface{}) {
	logger.WithFields(map[string]interface{}{
		"panic":   r,
		"stack":   string(debug.Stack()),
		"context": where,
	}).Error("PANIC recovered")
}
