package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sambeau/golox/pkg/lox/config"
	lerrors "github.com/sambeau/golox/pkg/lox/errors"
	"github.com/sambeau/golox/pkg/lox/evaluator"
	"github.com/sambeau/golox/pkg/lox/format"
	"github.com/sambeau/golox/pkg/lox/help"
	"github.com/sambeau/golox/pkg/lox/lox"
	"github.com/sambeau/golox/pkg/lox/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.1.0"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	// Evaluation flags
	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")

	// Configuration flags
	configFlag     = flag.String("c", "", "Path to config file")
	configLongFlag = flag.String("config", "", "Path to config file")
)

func main() {
	// Check for subcommands first (before flag parsing)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "tokenize":
			tokenizeCommand(os.Args[2:])
			return
		case "parse":
			parseCommand(os.Args[2:])
			return
		case "evaluate":
			evaluateCommand(os.Args[2:])
			return
		case "run":
			runCommand(os.Args[2:])
			return
		case "check":
			checkCommand(os.Args[2:])
			return
		case "docs":
			docsCommand(os.Args[2:])
			return
		case "version":
			fmt.Printf("golox version %s\n", Version)
			return
		}
	}

	// Customize flag usage message
	flag.Usage = printHelp
	flag.Parse()

	// Check for help flag
	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	// Check for version flag
	if *versionFlag || *versionLongFlag {
		fmt.Printf("golox version %s\n", Version)
		os.Exit(0)
	}

	cfg := loadConfig(firstNonEmpty(*configFlag, *configLongFlag))

	// Get eval code (prefer -e over --eval if both set)
	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	// Mode dispatch
	switch {
	case evalCode != "":
		// Inline evaluation mode
		os.Exit(executeInline(evalCode, cfg))
	case len(flag.Args()) > 0:
		// A bare file argument runs as a program
		os.Exit(runFile(flag.Args()[0], cfg))
	default:
		// REPL mode
		repl.Start(os.Stdin, os.Stdout, repl.Options{
			Version:      Version,
			Prompt:       cfg.REPL.Prompt,
			HistoryFile:  cfg.REPL.HistoryFile,
			MaxCallDepth: cfg.MaxCallDepth,
		})
	}
}

func printHelp() {
	fmt.Printf(`golox - Lox language interpreter version %s

Usage:
  golox [options] [file]
  golox -e "code"
  golox <command> [options] [args...]

Commands:
  tokenize <file>       Print the token stream, one token per line
  parse <file>          Parse an expression and print its AST
  evaluate <file>       Evaluate an expression and print its value
  run <file>            Execute a Lox program
  check <file>...       Check syntax without executing
  docs <topic>          Show language reference for a topic
  version               Show version information

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -e, --eval <code>     Evaluate code string and print its result
  -c, --config <path>   Path to config file (default: ./golox.yml)

Run Options:
  -w, --watch           Re-run the file whenever it changes

Parse Options:
  -p, --program         Parse a full program, one AST line per statement

Check Options:
  --json                Report errors as JSON

Examples:
  golox                       Start interactive REPL
  golox script.lox            Run a Lox script
  golox run script.lox        Same, spelled out
  golox run -w script.lox     Re-run the script on every save
  golox -e "1 + 2"            Evaluate inline code (outputs: 3)
  golox -e "print clock();"   Run an inline program
  golox tokenize script.lox   Print the token stream
  golox parse expr.lox        Print the AST: (+ 1 (* 2 3))
  golox check script.lox      Report syntax errors without running
  golox docs while            Explain the while statement
  golox docs operators        List all operators

Exit codes:
  0    success
  65   lexical or syntax error
  70   runtime error
  1    tool error (unreadable file, bad config)
`, Version)
}

// tokenizeCommand prints the token stream for a file. Lexical errors go
// to stderr; every valid token still prints.
func tokenizeCommand(args []string) {
	filename := singleFileArg("tokenize", args)
	source := readSource(filename)

	interp := lox.New()
	interp.SetFilename(filename)

	tokens, errs := interp.Tokenize(source)
	printBareErrors(errs)
	for _, tok := range tokens {
		fmt.Println(format.Token(tok))
	}
	os.Exit(lerrors.ExitCode(errs))
}

// parseCommand prints the parenthesized AST for an expression file, or
// for a whole program with -p.
func parseCommand(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	programFlag := fs.Bool("p", false, "Parse a full program instead of a single expression")
	programLongFlag := fs.Bool("program", false, "Parse a full program instead of a single expression")
	fs.Parse(args)

	filename := singleFileArg("parse", fs.Args())
	source := readSource(filename)

	interp := lox.New()
	interp.SetFilename(filename)

	if *programFlag || *programLongFlag {
		program, errs := interp.ParseProgram(source)
		if len(errs) != 0 {
			printBareErrors(errs)
			os.Exit(lerrors.ExitCode(errs))
		}
		fmt.Println(format.PrintProgram(program))
		return
	}

	expr, errs := interp.ParseExpression(source)
	if len(errs) != 0 {
		printBareErrors(errs)
		os.Exit(lerrors.ExitCode(errs))
	}
	fmt.Println(format.PrintAST(expr))
}

// evaluateCommand evaluates a single-expression file and prints the
// value in its canonical form.
func evaluateCommand(args []string) {
	filename := singleFileArg("evaluate", args)
	source := readSource(filename)

	interp := lox.New()
	interp.SetFilename(filename)

	result, errs := interp.Evaluate(source)
	if len(errs) != 0 {
		printBareErrors(errs)
		os.Exit(lerrors.ExitCode(errs))
	}
	fmt.Println(result.Inspect())
}

// runCommand executes a program file, optionally re-running it on change
func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	watchFlag := fs.Bool("w", false, "Re-run the file whenever it changes")
	watchLongFlag := fs.Bool("watch", false, "Re-run the file whenever it changes")
	cfgFlag := fs.String("c", "", "Path to config file")
	cfgLongFlag := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	if len(fs.Args()) == 0 {
		fmt.Fprintln(os.Stderr, "Error: run requires a file")
		os.Exit(1)
	}
	filename := fs.Args()[0]
	cfg := loadConfig(firstNonEmpty(*cfgFlag, *cfgLongFlag))

	if *watchFlag || *watchLongFlag {
		if err := watchAndRun(filename, cfg, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	os.Exit(runFile(filename, cfg))
}

// runFile executes a Lox source file and returns the process exit code
func runFile(filename string, cfg *config.Config) int {
	return runFileTo(filename, cfg, os.Stdout, os.Stderr)
}

func runFileTo(filename string, cfg *config.Config, stdout, stderr io.Writer) int {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file '%s': %v\n", filename, err)
		return 1
	}

	interp := lox.New()
	interp.SetFilename(filename)
	interp.SetLogger(lox.WriterLogger(stdout))
	interp.SetMaxCallDepth(cfg.MaxCallDepth)

	_, errs := interp.Run(string(content))
	for _, e := range errs {
		fmt.Fprintln(stderr, e.String())
	}
	return lerrors.ExitCode(errs)
}

// checkCommand reports lexical and syntax errors without executing.
// Unlike run, diagnostics here include "Did you mean" hints.
func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "Report errors as JSON")
	fs.Parse(args)

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: check requires at least one file")
		os.Exit(1)
	}

	var all []*lerrors.LoxError
	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", filename, err)
			os.Exit(1)
		}

		interp := lox.New()
		interp.SetFilename(filename)
		for _, e := range interp.Check(string(content)) {
			all = append(all, e.WithFile(filename))
		}
	}

	if *jsonFlag {
		data, err := lerrors.MarshalJSONList(all)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		os.Exit(lerrors.ExitCode(all))
	}

	lastFile := ""
	for _, e := range all {
		if len(files) > 1 && e.File != lastFile {
			fmt.Fprintf(os.Stderr, "%s:\n", e.File)
			lastFile = e.File
		}
		fmt.Fprintln(os.Stderr, e.PrettyString())
	}
	os.Exit(lerrors.ExitCode(all))
}

// docsCommand implements the 'golox docs <topic>' subcommand
func docsCommand(args []string) {
	var topic string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			topic = arg
			break
		}
	}

	if topic == "" {
		fmt.Fprintf(os.Stderr, `Usage: golox docs <topic>

Topics:
  %s

Any keyword or operator also works:
  golox docs while
  golox docs fun
  golox docs ==
`, strings.Join(help.Topics(), "\n  "))
		os.Exit(1)
	}

	text, err := help.Describe(topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(text)
}

// executeInline evaluates code provided via -e, REPL-style: a single
// expression echoes its value, anything else runs as a program and
// echoes a non-nil final value.
func executeInline(code string, cfg *config.Config) int {
	interp := lox.New()
	interp.SetFilename("<eval>")
	interp.SetLogger(lox.WriterLogger(os.Stdout))
	interp.SetMaxCallDepth(cfg.MaxCallDepth)

	if _, errs := interp.ParseExpression(code); len(errs) == 0 {
		result, errs := interp.Evaluate(code)
		if len(errs) != 0 {
			printBareErrors(errs)
			return lerrors.ExitCode(errs)
		}
		fmt.Println(result.Inspect())
		return 0
	}

	result, errs := interp.Run(code)
	if len(errs) != 0 {
		printBareErrors(errs)
		return lerrors.ExitCode(errs)
	}
	if result != nil && result.Type() != evaluator.NIL_OBJ {
		fmt.Println(result.Inspect())
	}
	return 0
}

// readSource reads a source file, exiting with a tool error on failure
func readSource(filename string) string {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", filename, err)
		os.Exit(1)
	}
	return string(content)
}

func singleFileArg(command string, args []string) string {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: golox %s <file>\n", command)
		os.Exit(1)
	}
	return args[0]
}

// printBareErrors writes diagnostics in their canonical single-line
// forms, with no hints. This output is what scripts and test harnesses
// match against.
func printBareErrors(errs []*lerrors.LoxError) {
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err.String())
	}
}

// loadConfig loads the config file, exiting with a tool error on failure
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
