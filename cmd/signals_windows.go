//go:build windows
// +build windows

package cmd

import "os"

// TerminationSignals are the signals that ffsync treats as requests to abort
// the current run. Windows emulates SIGINT on Ctrl-C/Ctrl-Break, surfaced by
// the Go runtime as os.Interrupt.
var TerminationSignals = []os.Signal{
	os.Interrupt,
}
