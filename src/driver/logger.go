package driver

import (
	"log"
	"os"
)

// Logger gates diagnostic output behind the -d flag, the same way the teacher's opt.Verbose
// gated ir.Root.Print. Unlike the teacher's channel-buffered util.Writer (built to let
// parallel backend goroutines append to one output buffer without interleaving), franz's
// diagnostic output is written only from the driver's own goroutine (Run prints one
// debugir.Dump of the whole program before lowering starts), so a plain *log.Logger needs no
// channel in front of it.
type Logger struct {
	l       *log.Logger
	enabled bool
}

// NewLogger builds a Logger that writes to stderr when enabled is true (the -d flag) and
// discards everything otherwise.
func NewLogger(enabled bool) *Logger {
	return &Logger{l: log.New(os.Stderr, "", 0), enabled: enabled}
}

// Printf writes a formatted diagnostic line if the logger is enabled.
func (lg *Logger) Printf(format string, args ...interface{}) {
	if !lg.enabled {
		return
	}
	lg.l.Printf(format, args...)
}

// Println writes a diagnostic line if the logger is enabled.
func (lg *Logger) Println(args ...interface{}) {
	if !lg.enabled {
		return
	}
	lg.l.Println(args...)
}
