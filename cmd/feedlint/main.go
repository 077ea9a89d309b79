package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/docstream-io/docstream"
	"github.com/docstream-io/docstream/schema"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling at the bottom of main).
	signal.Ignore(syscall.SIGPIPE)

	// Display a stack trace on panic
	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
		}
	}()

	var schemaPath string
	var colorMode string
	var printOps bool
	var verbose bool

	flag.Usage = printUsage
	flag.StringVar(&schemaPath, "schema", "", "path to the JSON schema file (required)")
	flag.StringVar(&colorMode, "color", "auto", "colorize output: auto, always, never")
	flag.BoolVar(&printOps, "print", false, "print each decoded operation as JSON")
	flag.BoolVar(&verbose, "v", false, "log each operation to stderr as it is decoded")
	flag.Parse()

	useColors := isatty.IsTerminal(os.Stdout.Fd())
	switch colorMode {
	case "always":
		useColors = true
	case "never":
		useColors = false
	case "auto":
		// Already set based on isatty check above
	default:
		fatalError("invalid -color value: %q (use auto, always, or never)", colorMode)
	}

	if schemaPath == "" {
		fatalError("missing -schema FILE (see -h)")
	}

	logger := zap.NewNop()
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		l, err := cfg.Build()
		if err != nil {
			fatalError("unable to set up logging: %s", err)
		}
		logger = l
	}
	defer logger.Sync()

	types, err := schema.LoadFile(schemaPath)
	if err != nil {
		fatalError("error: %s", err)
	}
	logger.Debug("schema loaded", zap.String("path", schemaPath))

	// Read the feed from stdin or from a single file argument
	var input io.Reader = os.Stdin
	inputName := "<stdin>"
	switch flag.NArg() {
	case 0:
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fatalError("error: %s", err)
		}
		defer f.Close()
		input = f
		inputName = flag.Arg(0)
	default:
		fatalError("at most one feed file expected")
	}

	// Set up stdout for handling colors
	var stdout io.Writer = os.Stdout
	if useColors {
		stdout = colorable.NewColorableStdout()
	}
	out := bufio.NewWriter(stdout)
	defer out.Flush()

	reader := docstream.NewReader(input, types)
	var count int
	for {
		op, err := reader.Next()
		if err != nil {
			out.Flush()
			fmt.Fprintf(os.Stderr, "%s: operation %d: %s\n", inputName, count+1, err)
			os.Exit(1)
		}
		if op == nil {
			break
		}
		count++
		logger.Debug("decoded operation",
			zap.Int("n", count),
			zap.String("kind", operationKind(op)),
			zap.String("id", op.DocumentId().String()),
		)
		if printOps {
			if err := printOperation(out, op, useColors); err != nil {
				if errors.Is(err, syscall.EPIPE) {
					// stdout is a pipe and something closed it (e.g. 'head' or 'less').
					// In this case we don't want to complain.
					return
				}
				fatalError("error: %s", err)
			}
		}
	}
	status := "OK"
	if useColors {
		status = "\x1b[32mOK\x1b[0m"
	}
	fmt.Fprintf(out, "%s: %s, %d operations\n", inputName, status, count)
}

func printUsage() {
	fmt.Fprintf(flag.CommandLine.Output(), `feedlint - check a JSON document feed against a schema

Usage: feedlint -schema FILE [options] [FEEDFILE]

Reads a document feed from FEEDFILE (or stdin), decodes every operation
against the schema and stops at the first error.

Options:
`)
	flag.PrintDefaults()
}

func fatalError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}
