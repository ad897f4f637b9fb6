package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// ASCIILogo is printed at the start of interactive runs.
const ASCIILogo = `
    ╔═════════════════════════════════════════════════════════╗
    ║  ███████╗██╗     ██╗ ██████╗██╗  ██╗██████╗             ║
    ║  ██╔════╝██║     ██║██╔════╝██║ ██╔╝██╔══██╗            ║
    ║  █████╗  ██║     ██║██║     █████╔╝ ██████╔╝            ║
    ║  ██╔══╝  ██║     ██║██║     ██╔═██╗ ██╔══██╗            ║
    ║  ██║     ███████╗██║╚██████╗██║  ██╗██║  ██║            ║
    ║  ╚═╝     ╚══════╝╚═╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝  CRAWLER    ║
    ║          KEYWORD IMAGE HARVESTER                        ║
    ╚═════════════════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

var (
	quiet atomic.Bool

	outMu sync.Mutex
	out   io.Writer = os.Stdout
	errW  io.Writer = os.Stderr
)

// SetQuietMode suppresses every non-error console message.
func SetQuietMode(q bool) {
	quiet.Store(q)
}

// IsQuietMode reports whether quiet mode is on.
func IsQuietMode() bool {
	return quiet.Load()
}

// SetOutput redirects console output. Errors go to errOut.
func SetOutput(stdout, errOut io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	out = stdout
	errW = errOut
}

func writers() (io.Writer, io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	return out, errW
}

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

func printOut(s string) {
	if IsQuietMode() {
		return
	}
	w, _ := writers()
	fmt.Fprint(w, s)
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	printOut(Cyan(ASCIILogo))
}

// PrintError prints an error message in red. It is shown even in quiet mode.
func PrintError(msg string, args ...interface{}) {
	_, w := writers()
	if len(args) > 0 {
		fmt.Fprintln(w, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(w, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	printOut(Green(msg) + "\n")
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	printOut(fmt.Sprintf("%s: %s\n", Cyan(label), Yellow(value)))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		printOut(Yellow(msg+": "+fmt.Sprintf("%v", args[0])) + "\n")
	} else {
		printOut(Yellow(msg) + "\n")
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	printOut(Magenta(msg) + "\n")
}
