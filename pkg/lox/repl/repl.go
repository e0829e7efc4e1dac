package repl

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"

	lerrors "github.com/sambeau/golox/pkg/lox/errors"
	"github.com/sambeau/golox/pkg/lox/evaluator"
	"github.com/sambeau/golox/pkg/lox/help"
	"github.com/sambeau/golox/pkg/lox/lox"
)

const DefaultPrompt = ">> "
const ContinuationPrompt = ".. "

const LOX_LOGO = `
█▀▀ █▀█ █░░ █▀█ ▀▄▀
█▄█ █▄█ █▄▄ █▄█ █░█ `

// Options configures an interactive session.
type Options struct {
	Version      string
	Prompt       string // primary prompt ("" uses DefaultPrompt)
	HistoryFile  string // where input history persists ("" disables history)
	MaxCallDepth int    // call-stack limit (0 keeps the interpreter default)
}

// Lox keywords for tab completion; identifiers in scope are added
// dynamically.
var keywordCompletions = []string{
	"and", "class", "else", "false", "for", "fun", "if", "nil",
	"or", "print", "return", "super", "this", "true", "var", "while",
}

// Start starts the REPL with line editing, history, and tab completion
func Start(in io.Reader, out io.Writer, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	interp := newInterpreter(out, opts.MaxCallDepth)

	// Set up tab completion
	line.SetCompleter(func(input string) []string {
		return filterCompletions(input, interp.Env())
	})

	// Load command history from file
	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}

		// Save history on exit
		defer func() {
			if f, err := os.Create(opts.HistoryFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	basePrompt := opts.Prompt
	if basePrompt == "" {
		basePrompt = DefaultPrompt
	}

	fmt.Fprintf(out, "%s", LOX_LOGO)
	fmt.Fprintln(out, "v", opts.Version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := basePrompt
		if inputBuffer.Len() > 0 {
			currentPrompt = ContinuationPrompt
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				// Ctrl+D - exit
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		// Check for exit command
		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		// Handle REPL commands (start with :)
		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			handleReplCommand(trimmed, interp, out, opts)
			continue
		}

		// Skip empty lines when no input buffered
		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		// Add to input buffer
		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		// Check if input is complete (no unclosed delimiters)
		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			// Continue multi-line input
			continue
		}

		if trimmed != "" {
			line.AppendHistory(fullInput)
		}

		evalInput(interp, fullInput, out)

		// Clear buffer for next input
		inputBuffer.Reset()
	}
}

// newInterpreter builds a session interpreter whose print output goes
// to the REPL's writer.
func newInterpreter(out io.Writer, maxCallDepth int) *lox.Interpreter {
	interp := lox.New()
	interp.SetLogger(lox.WriterLogger(out))
	if maxCallDepth > 0 {
		interp.SetMaxCallDepth(maxCallDepth)
	}
	return interp
}

// evalInput runs one complete piece of input. A line that parses as a
// single expression echoes its value; anything else runs as statements.
func evalInput(interp *lox.Interpreter, input string, out io.Writer) {
	if _, errs := interp.ParseExpression(input); len(errs) == 0 {
		result, errs := interp.Evaluate(input)
		if len(errs) != 0 {
			printErrors(out, errs)
			return
		}
		if result != nil {
			fmt.Fprintln(out, result.Inspect())
		}
		return
	}

	if _, errs := interp.Run(input); len(errs) != 0 {
		printErrors(out, errs)
	}
}

// handleReplCommand handles REPL meta-commands that start with ':'
func handleReplCommand(cmd string, interp *lox.Interpreter, out io.Writer, opts Options) {
	parts := strings.Fields(cmd)

	switch parts[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :env            Show variables in scope")
		fmt.Fprintln(out, "  :clear          Clear all variables")
		fmt.Fprintln(out, "  :docs <topic>   Show the language reference for a topic")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "A line that is a single expression prints its value;")
		fmt.Fprintln(out, "anything else runs as statements.")

	case ":env":
		printEnvironment(interp.Env(), out)

	case ":clear":
		*interp = *newInterpreter(out, opts.MaxCallDepth)
		fmt.Fprintln(out, "Environment cleared")

	case ":docs":
		topic := ""
		if len(parts) > 1 {
			topic = parts[1]
		}
		body, err := help.Describe(topic)
		if err != nil {
			fmt.Fprintln(out, err)
			return
		}
		fmt.Fprintln(out, body)

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", parts[0])
	}
}

// printEnvironment displays the variables defined in the session
func printEnvironment(env *evaluator.Environment, out io.Writer) {
	names := env.AllIdentifiers()
	sort.Strings(names)

	shown := 0
	for _, name := range names {
		obj, ok := env.Get(name)
		if !ok || obj.Type() == evaluator.BUILTIN_OBJ {
			continue
		}

		value := obj.Inspect()

		// For multi-line values, indent continuation lines by 2 spaces
		if strings.Contains(value, "\n") {
			lines := strings.Split(value, "\n")
			for i := 1; i < len(lines); i++ {
				lines[i] = "  " + lines[i]
			}
			value = strings.Join(lines, "\n")
		} else if len(value) > 60 {
			// Truncate long single-line values
			value = value[:57] + "..."
		}

		fmt.Fprintf(out, "  %s: %s = %s\n", name, obj.Type(), value)
		shown++
	}

	if shown == 0 {
		fmt.Fprintln(out, "(no variables defined)")
	}
}

// printErrors reports errors without killing the session
func printErrors(out io.Writer, errs []*lerrors.LoxError) {
	for _, err := range errs {
		io.WriteString(out, err.PrettyString())
		io.WriteString(out, "\n")
	}
}

// filterCompletions returns completion suggestions based on current input
func filterCompletions(line string, env *evaluator.Environment) []string {
	// Don't complete if line is empty or only whitespace
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	// Don't complete if line ends with whitespace (including tabs from pasting)
	if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		return nil
	}

	// Get the last word being typed
	words := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '(' || r == ')' || r == '{' || r == '}' || r == ';' || r == ','
	})
	if len(words) == 0 {
		return nil
	}

	lastWord := words[len(words)-1]

	candidates := append([]string{}, keywordCompletions...)
	candidates = append(candidates, env.AllIdentifiers()...)
	sort.Strings(candidates)

	var matches []string
	for _, word := range candidates {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, word)
		}
	}
	return matches
}

// needsMoreInput checks if the input has unclosed braces, parentheses,
// or an open string. Strings are raw and may span lines.
func needsMoreInput(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}

	braceCount := 0
	parenCount := 0
	inString := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		// A line comment runs to the end of the line
		if ch == '/' && i+1 < len(input) && input[i+1] == '/' {
			for i < len(input) && input[i] != '\n' {
				i++
			}
			continue
		}

		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
		case '(':
			parenCount++
		case ')':
			parenCount--
		}
	}

	return braceCount > 0 || parenCount > 0 || inString
}
