// Package config holds VM launch options and the system properties table
// spec §6 describes: class path entries, -D properties, heap/stack hints,
// and the JIT on/off switch the CLI exposes.
package config

import "strings"

// Options captures the VM-wide launch configuration assembled from CLI
// flags (see cmd/corevm) before a VM is constructed.
type Options struct {
	ClassPath      []string
	MainClass      string
	Args           []string
	SystemProps    map[string]string
	InitialHeapMB  int
	MaxHeapMB      int
	StackSize      int
	RuntimeVersion int
	JITEnabled     bool
	Debug          bool
}

// DefaultOptions returns the option set a bare `corevm MainClass` run uses.
func DefaultOptions() *Options {
	return &Options{
		SystemProps:    DefaultSystemProperties(),
		InitialHeapMB:  16,
		MaxHeapMB:      256,
		StackSize:      512 * 1024,
		RuntimeVersion: 17,
		JITEnabled:     true,
	}
}

// DefaultSystemProperties seeds the handful of java.lang.System properties
// the native registry and bootstrap classes read (spec §6's "no persisted
// state" surface — these are process-lifetime only).
func DefaultSystemProperties() map[string]string {
	return map[string]string{
		"java.version":     "17",
		"java.vendor":      "corevm",
		"file.separator":   "/",
		"path.separator":   ":",
		"line.separator":   "\n",
		"os.name":          "Linux",
		"java.class.path":  ".",
	}
}

// ParseProperty splits a "-Dkey=value" operand into (key, value).
func ParseProperty(spec string) (string, string, bool) {
	spec = strings.TrimPrefix(spec, "-D")
	key, value, found := strings.Cut(spec, "=")
	if !found {
		return key, "", false
	}
	return key, value, true
}

// SetProperty applies a parsed -D flag to the option set, overwriting any
// default with the same key.
func (o *Options) SetProperty(spec string) bool {
	key, value, ok := ParseProperty(spec)
	if !ok || key == "" {
		return false
	}
	if o.SystemProps == nil {
		o.SystemProps = map[string]string{}
	}
	o.SystemProps[key] = value
	return true
}

// JoinedClassPath renders the configured class path entries using the
// platform separator, mirroring java.class.path's format.
func (o *Options) JoinedClassPath() string {
	return strings.Join(o.ClassPath, ":")
}
