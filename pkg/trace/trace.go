// Package trace provides the single diagnostic logging sink corevm's
// loader, interpreter, and JIT consult. It is plumbing only: nothing in
// this package is on the path of Java-visible behavior.
package trace

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log *zap.SugaredLogger
)

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	log = l.Sugar()
}

// SetDebug switches the sink to a development logger when enabled is true
// (the CLI's --debug flag) and to a no-op logger otherwise, so ordinary
// runs stay silent on stderr.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		l, err := zap.NewDevelopment()
		if err != nil {
			l = zap.NewNop()
		}
		log = l.Sugar()
		return
	}
	log = zap.NewNop().Sugar()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// ClassLoad logs a class being loaded through a class loader.
func ClassLoad(loader, name string) {
	get().Debugw("class load", "loader", loader, "class", name)
}

// ClassInit logs a <clinit> trigger.
func ClassInit(name string) {
	get().Debugw("class init", "class", name)
}

// JITCompile logs a successful baseline compile of a method.
func JITCompile(class, method, descriptor string) {
	get().Debugw("jit compile", "class", class, "method", method, "descriptor", descriptor)
}

// JITFallback logs a JIT compile attempt that fell back to the
// interpreter, and why.
func JITFallback(class, method string, reason error) {
	get().Debugw("jit fallback", "class", class, "method", method, "reason", reason)
}

// Uncaught logs an exception that escaped the top frame.
func Uncaught(class string, err error) {
	get().Errorw("uncaught exception", "class", class, "error", err)
}

// Warnf logs a formatted warning.
func Warnf(format string, args ...interface{}) {
	get().Warnf(format, args...)
}

// Sync flushes the underlying logger, matching the cleanup zap-using
// programs run on exit.
func Sync() {
	_ = get().Sync()
}
