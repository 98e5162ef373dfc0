// Command waspile translates a WebAssembly module into the project's IL and
// prints the result. It is the thinnest possible wiring of decode, frontend,
// and envrt; anything embedder-specific (memory layout, table contents,
// import resolution for real host functions) belongs in a Runtime, not here.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/waspile/waspile/decode"
	"github.com/waspile/waspile/envrt"
	"github.com/waspile/waspile/frontend"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr, os.Args[1:]))
}

// doMain is separated from main for unit testing.
func doMain(stdOut, stdErr io.Writer, args []string) int {
	flags := flag.NewFlagSet("waspile", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	var format string
	flags.StringVar(&format, "format", "text", "output format for the translated IL (text)")
	var verbose bool
	flags.BoolVar(&verbose, "v", false, "enable debug logging")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(stdErr, "usage: waspile [-format text] [-v] <module.wasm>")
		return 2
	}
	path := flags.Arg(0)

	logger, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintln(stdErr, err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	if format != "text" {
		logger.Errorf("unsupported -format %q", format)
		return 2
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Errorf("reading %s: %v", path, err)
		return 1
	}

	module, err := decode.ParseModule(data)
	if err != nil {
		logger.Errorf("decoding %s: %v", path, err)
		return 1
	}

	runtime := envrt.NewDefaultRuntime()
	sugared := logger.Sugar()

	for funcIdx := 0; funcIdx < len(module.CodeSection); funcIdx++ {
		absIdx := module.ImportFuncCount + uint32(funcIdx)
		fn, err := frontend.TranslateFunction(module, uint32(funcIdx), runtime, sugared)
		if err != nil {
			logger.Errorf("translating function %d: %v", absIdx, err)
			return 1
		}
		if name := module.ExportNameOfFunc(absIdx); name != "" {
			fmt.Fprintf(stdOut, "; function %d (%s)\n", absIdx, name)
		} else {
			fmt.Fprintf(stdOut, "; function %d\n", absIdx)
		}
		fmt.Fprintln(stdOut, fn.Format())
	}

	return 0
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
