// Package logger defines the logging contract the simulation packages write
// against. The zerolog adapter in infra/logger is the production
// implementation; Nop is the library default, so assembling a vehicle or
// running a simulation stays silent unless a caller wires a logger in.
package logger

// Logger exposes logging methods for common severity levels. The resolver
// and the vehicle use Warnf for recoverable events (diverted regeneration);
// the simulator uses Infof for run progress and Errorf for fatal steps.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
