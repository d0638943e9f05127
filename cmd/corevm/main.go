// Package main is corevm's command-line entry point: resolve a class
// path, load the named main class, and run its main(String[]) method.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-jvm/corevm/pkg/classpath"
	"github.com/go-jvm/corevm/pkg/config"
	"github.com/go-jvm/corevm/pkg/interp"
	"github.com/go-jvm/corevm/pkg/loader"
	"github.com/go-jvm/corevm/pkg/trace"
)

var (
	classPath      string
	systemProps    []string
	xms            string
	xmx            string
	stackSize      int
	runtimeVersion int
	jitEnabled     bool
	debug          bool
)

func findJmodPath() string {
	if env := os.Getenv("JAVA_BASE_JMOD"); env != "" {
		return env
	}
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		p := filepath.Join(javaHome, "jmods", "java.base.jmod")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	matches, _ := filepath.Glob("/usr/lib/jvm/java-*-openjdk-*/jmods/java.base.jmod")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

// parseHeapMB accepts the java-style "16m"/"256M" heap-size operands
// --xms/--xmx carry, falling back to a bare integer megabyte count.
func parseHeapMB(spec string, fallback int) int {
	if spec == "" {
		return fallback
	}
	trimmed := strings.TrimSuffix(strings.TrimSuffix(spec, "m"), "M")
	n := 0
	for _, c := range trimmed {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}

func run(cmd *cobra.Command, args []string) error {
	trace.SetDebug(debug)
	defer trace.Sync()

	mainClass := args[0]
	programArgs := args[1:]

	opts := config.DefaultOptions()
	if classPath != "" {
		opts.ClassPath = strings.Split(classPath, ":")
	}
	opts.MainClass = mainClass
	opts.Args = programArgs
	opts.InitialHeapMB = parseHeapMB(xms, opts.InitialHeapMB)
	opts.MaxHeapMB = parseHeapMB(xmx, opts.MaxHeapMB)
	if stackSize > 0 {
		opts.StackSize = stackSize
	}
	if runtimeVersion > 0 {
		opts.RuntimeVersion = runtimeVersion
	}
	opts.JITEnabled = jitEnabled
	opts.Debug = debug
	for _, spec := range systemProps {
		opts.SetProperty("-D" + spec)
	}
	opts.SystemProps["java.class.path"] = opts.JoinedClassPath()

	jmodPath := findJmodPath()
	if jmodPath == "" {
		return fmt.Errorf("could not find java.base.jmod; set JAVA_HOME or JAVA_BASE_JMOD")
	}
	bootstrap, err := loader.NewBootstrapClassLoader(jmodPath)
	if err != nil {
		return err
	}

	entries, err := classpath.OpenAll(opts.JoinedClassPath())
	if err != nil {
		return err
	}
	app := loader.NewAppClassLoader("app", entries, bootstrap)

	v := interp.NewVM(app, opts)
	binaryName := strings.ReplaceAll(mainClass, ".", "/")
	if err := v.Execute(binaryName, programArgs); err != nil {
		return fmt.Errorf("corevm: %w", err)
	}
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "corevm <main-class> [args...]",
		Short:   "A baseline JVM core: class loading, interpretation, and a JIT",
		Args:    cobra.MinimumNArgs(1),
		Version: "0.1.0",
		RunE:    run,
	}

	rootCmd.Flags().StringVar(&classPath, "classpath", "", "class path (colon-separated directories, .jar, or .jmod entries)")
	rootCmd.Flags().StringVar(&classPath, "cp", "", "shorthand for --classpath")
	rootCmd.Flags().StringArrayVarP(&systemProps, "define", "D", nil, "set a system property, key=value")
	rootCmd.Flags().StringVar(&xms, "xms", "", "initial heap size (e.g. 16m)")
	rootCmd.Flags().StringVar(&xmx, "xmx", "", "maximum heap size (e.g. 256m)")
	rootCmd.Flags().IntVar(&stackSize, "stack-size", 0, "per-thread stack size in bytes (0 uses the default); stored in the VM options, while the interpreter's call depth limit stays fixed at 2048 frames")
	rootCmd.Flags().IntVar(&runtimeVersion, "runtime-version", 0, "emulated java.version feature release (0 uses the default)")
	rootCmd.Flags().BoolVar(&jitEnabled, "jit", true, "enable the baseline JIT")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable verbose diagnostic logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
