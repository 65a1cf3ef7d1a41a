package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	disableColor bool

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects status lines. Nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

func isTTY() bool {
	f, ok := stdout.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// C wraps s in color when stdout is a terminal and the theme allows it.
func C(color, s string) string {
	if disableColor || color == "" || !isTTY() {
		return s
	}
	return color + s + reset
}

// Dim is the faint style used for secondary text.
func Dim(s string) string { return C(dim, s) }

func OK(msg string)   { fmt.Fprintln(stdout, C(current.InCart, symCheck+" "+msg)) }
func Fail(msg string) { fmt.Fprintln(stderr, C(current.Alert, symCross+" "+msg)) }
