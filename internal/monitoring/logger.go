// Package monitoring holds the package-level diagnostic logger shared by the
// pattern pipeline and the CLI.
package monitoring

import (
	"fmt"
	"log"
)

// Logf receives every diagnostic line: run summaries from the calculator and
// progress from the CLI. It writes through log.Printf until SetLogger swaps it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger installs f as Logf. A nil f mutes logging.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Capture redirects Logf into lines until the returned restore func is
// called. Intended for tests asserting on log output.
func Capture(lines *[]string) (restore func()) {
	prev := Logf
	Logf = func(format string, v ...interface{}) {
		*lines = append(*lines, fmt.Sprintf(format, v...))
	}
	return func() { Logf = prev }
}
