package logger

import (
	"fmt"
	"os"
)

var verbose = false

func Toggle(flag bool) {
	verbose = flag
}

func Print(values ...any) {
	if !verbose {
		return
	}

	fmt.Print(values...)
}

func Printf(format string, values ...any) {
	if !verbose {
		return
	}

	fmt.Printf(format, values...)
}

func Println(values ...any) {
	if !verbose {
		return
	}

	fmt.Println(values...)
}

// Error prints regardless of verbosity; compilation failures are never
// optional output.
func Error(values ...any) {
	fmt.Fprintln(os.Stderr, values...)
}

// Errorf prints regardless of verbosity; compilation failures are never
// optional output.
func Errorf(format string, values ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", values...)
}
