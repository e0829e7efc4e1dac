package evaluator

import "fmt"

// Logger receives print output. The CLI wires stdout here, the REPL its
// terminal, tests a buffer.
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// defaultStdoutLogger is the default logger that writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...any) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
}

func (l *defaultStdoutLogger) LogLine(values ...any) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
	fmt.Println()
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}
