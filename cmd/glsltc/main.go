// Command glsltc is the GLSLT template compiler CLI.
//
// Usage:
//
//	glsltc [options] <input>...
//
// Examples:
//
//	glsltc sdf.glsl                      # Transform to stdout
//	glsltc -o output.glsl sdf.glsl       # Transform to a file
//	glsltc -K mainImage sdf.glsl         # Minify to mainImage's dependencies
//	glsltc -I shaders/include sdf.glsl   # Add a system include directory
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/gogpu/glslt"
	"github.com/gogpu/glslt/glsl"
)

const glsltVersion = "0.1.0-dev"

// Exit codes.
const (
	exitOK        = 0
	exitUserError = 1
	exitIOError   = 2
)

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

var (
	output   = flag.String("o", "", "output file (default: stdout)")
	prefix   = flag.String("p", "", "identifier prefix for generated code")
	verbose  = flag.Bool("v", false, "verbose mode")
	quiet    = flag.Bool("q", false, "quiet mode")
	version  = flag.Bool("version", false, "print version")
	includes stringList
	keepFns  stringList
)

func main() {
	flag.Var(&includes, "I", "system include directory (repeatable)")
	flag.Var(&keepFns, "K", "symbol to keep for minifying mode (repeatable)")
	flag.Var(&keepFns, "keep-fns", "alias for -K")
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("glsltc version %s\n", glsltVersion)
		return
	}

	inputs := flag.Args()
	if len(inputs) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(exitUserError)
	}

	// Parse and stitch inputs
	tu, err := glslt.ParseFiles(inputs, includes)
	if err != nil {
		var includeErr *glslt.IncludeNotFoundError
		var parseErr *glsl.ParseError
		if errors.As(err, &includeErr) || errors.As(err, &parseErr) {
			fail(exitUserError, err)
		}
		fail(exitIOError, err)
	}

	// Transform
	config := glslt.DefaultConfig()
	if *prefix != "" {
		config.IdentifierPrefix = *prefix
	}
	config.KeepFns = keepFns

	out, err := glslt.TransformWithConfig(config, tu)
	if err != nil {
		fail(exitUserError, err)
	}

	// Serialize
	text := glslt.NewWriter().WriteTranslationUnit(out)

	// Write output
	if *output != "" {
		if err := os.WriteFile(*output, []byte(text), 0644); err != nil {
			fail(exitIOError, err)
		}
		info("wrote %s (%d declarations)\n", *output, len(out.Decls))
	} else {
		if _, err := os.Stdout.WriteString(text); err != nil {
			fail(exitIOError, err)
		}
	}
}

// info prints a progress message to stderr in verbose mode; quiet mode
// suppresses it even when verbose mode is on. Decoration is skipped when stderr is not a terminal.
func info(format string, args ...interface{}) {
	if *quiet || !*verbose {
		return
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprint(os.Stderr, "glsltc: ")
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

func fail(code int, err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(code)
}

func usage() {
	fmt.Fprintf(os.Stderr, `glsltc - GLSL Template compiler

Usage: glsltc [options] <input>...

Options:
  -o <path>        output file (default: stdout)
  -I <dir>         system include directory (repeatable)
  -K <symbol>      root symbol for minifying mode (repeatable)
  --keep-fns       alias for -K
  -p <prefix>      identifier prefix for generated code
  -v               verbose mode
  -q               quiet mode
  -version         print version

Exit codes: 0 success, 1 user error, 2 I/O failure.
`)
}
