// Package logging wraps logrus the way the teacher's pkg/cmd does (the
// only layer in the teacher that ever touches logrus directly): a single
// process-wide logger configured once by cmd/blend65c, everything else
// gets a child logger carrying a fixed set of structured fields rather
// than calling logrus package functions itself.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a thin alias so callers depend on this package, not logrus,
// for the fields blend65c actually cares about.
type Logger = logrus.Entry

var root = logrus.New()

func init() {
	root.SetOutput(os.Stderr)
	root.SetFormatter(&logrus.TextFormatter{FullTimestamp: false})
	root.SetLevel(logrus.InfoLevel)
}

// Configure sets the process-wide log level and output stream; called
// once by cmd/blend65c before the pipeline runs.
func Configure(verbose bool) {
	if verbose {
		root.SetLevel(logrus.DebugLevel)
	}
}

// Phase returns a child logger scoped to one compiler phase
// (phase=parse, phase=sema, phase=codegen, ...), the field every
// compiler.Pipeline log line carries.
func Phase(phase string) *Logger {
	return root.WithField("phase", phase)
}

// Module further scopes a phase logger to the module currently being
// compiled, for multi-file diagnostics.
func Module(l *Logger, module string) *Logger {
	return l.WithField("module", module)
}
