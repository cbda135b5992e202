package dogm

import (
	"io"
	"log"
)

var (
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures the three logging streams used by the
// pipeline: ops (actionable warnings — each radar detection dropped for
// lying outside the grid), diag (a per-frame summary line with the
// particle and cell counts), and trace (one line after each pipeline
// stage of Update). Pass nil for any
// writer to disable that stream; all three are off by default.
func SetLogWriters(ops, diag, trace io.Writer) {
	opsLogger = newLogger("[dogm] ", ops)
	diagLogger = newLogger("[dogm] ", diag)
	traceLogger = newLogger("[dogm] ", trace)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

func tracef(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}
