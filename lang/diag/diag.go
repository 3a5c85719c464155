// Package diag defines the structured diagnostic shape shared by the
// parser, resolver and codegen phases, along with a caret-underline
// renderer for presenting them to a user.
package diag

import (
	"fmt"
	"strings"
)

// Phase identifies which compilation phase produced a Diagnostic.
type Phase int

const (
	Parse Phase = iota
	Semantic
	Codegen
)

func (p Phase) String() string {
	switch p {
	case Parse:
		return "parse"
	case Semantic:
		return "semantic"
	case Codegen:
		return "codegen"
	default:
		return "unknown"
	}
}

// Kind classifies the nature of a Diagnostic within its phase.
type Kind int

const (
	UnexpectedToken Kind = iota
	DuplicateSymbol
	UndefinedSymbol
	ImmutableAssignment
	ArityExceeded
	Internal
	Other
)

func (k Kind) String() string {
	switch k {
	case UnexpectedToken:
		return "unexpected token"
	case DuplicateSymbol:
		return "duplicate symbol"
	case UndefinedSymbol:
		return "undefined symbol"
	case ImmutableAssignment:
		return "immutable assignment"
	case ArityExceeded:
		return "arity exceeded"
	case Internal:
		return "internal error"
	default:
		return "error"
	}
}

// Location is the {line, column} wire shape of a Diagnostic's position.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string { return fmt.Sprintf("%d:%d", l.Line, l.Column) }

// Diagnostic is a structured, phase-tagged compile-time error.
type Diagnostic struct {
	Phase    Phase
	Kind     Kind
	Message  string
	Location Location
}

func New(phase Phase, kind Kind, location Location, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Phase: phase, Kind: kind, Message: fmt.Sprintf(format, args...), Location: location}
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("[%s] %s: %s at %s", d.Phase, d.Kind, d.Message, d.Location)
}

// Render produces a multi-line, caret-underlined rendering of diagnostics
// against the given source text, in the style of a compiler error report.
func Render(diags []Diagnostic, filename, source string) string {
	var b strings.Builder
	lines := strings.Split(source, "\n")
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "error: %s\n", d.Message)
		fmt.Fprintf(&b, "  --> %s:%d:%d\n", filename, d.Location.Line, d.Location.Column)
		if d.Location.Line >= 1 && d.Location.Line <= len(lines) {
			line := lines[d.Location.Line-1]
			fmt.Fprintf(&b, "%4d | %s\n", d.Location.Line, line)
			col := d.Location.Column
			if col < 1 {
				col = 1
			}
			b.WriteString("     | ")
			b.WriteString(strings.Repeat(" ", col-1))
			b.WriteString("^\n")
		}
	}
	if len(diags) > 0 {
		word := "error"
		if len(diags) > 1 {
			word = "errors"
		}
		fmt.Fprintf(&b, "\nerror: aborting due to %d previous %s\n", len(diags), word)
	}
	return b.String()
}
