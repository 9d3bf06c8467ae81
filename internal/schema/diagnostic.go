package schema

import (
	"errors"
	"fmt"
)

var (
	ErrNotTable  = errors.New("not a CREATE TABLE statement")
	ErrMalformed = errors.New("malformed statement")
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

// Diagnostic reports a statement that was skipped or a reference that could
// not be resolved. Statement is -1 when no single statement is involved.
type Diagnostic struct {
	Severity  Severity
	Statement int
	Message   string
}

func (d Diagnostic) String() string {
	if d.Statement < 0 {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: statement %d: %s", d.Severity, d.Statement+1, d.Message)
}

func warnf(stmt int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Statement: stmt, Message: fmt.Sprintf(format, args...)}
}

func infof(stmt int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityInfo, Statement: stmt, Message: fmt.Sprintf(format, args...)}
}

// Warnings filters diags down to warnings.
func Warnings(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}
