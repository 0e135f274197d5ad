// Package irerr defines the compiler's single error type and the closed
// set of error kinds a build can fail with (spec §6.5, §7).
package irerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// State classifies how a CompileException affects builder state: fatal
// errors unwind through the compile entry point and reset the builder;
// stable errors are recoverable and leave it usable (§6.5).
type State string

const (
	Stable State = "stable"
	Fatal  State = "fatal"
)

// Kind is the closed set of error kinds a build can fail with (§7).
type Kind string

const (
	ParseMissingOperand       Kind = "parse_missing_operand"
	UndefinedVariable         Kind = "undefined_variable"
	UninitialisedUse          Kind = "uninitialised_use"
	TypeConflict              Kind = "type_conflict"
	InternalInvariantViolated Kind = "internal_invariant_violation"
	CodegenFailure            Kind = "codegen_failure"
)

// fatalByDefault reports whether a Kind unwinds as fatal absent an explicit
// override: IR-layer invariant violations are always fatal; everything
// else is a recoverable builder error (§7 policy).
func fatalByDefault(k Kind) State {
	if k == InternalInvariantViolated {
		return Fatal
	}
	return Stable
}

// Location pinpoints a CompileException to a source position, when one is
// known (e.g. the AST node the builder was processing).
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// CompileException is the compiler's single error type: a kind, a state,
// a location, and a message (§6.5: "compile_exception { location, state,
// message }").
type CompileException struct {
	Kind     Kind
	State    State
	Location Location
	Message  string

	cause error // set via errors.Wrap/errors.New so %+v carries a stack trace
}

// New creates a CompileException of kind at loc, defaulting its state per
// §7 policy unless overridden with WithState.
func New(kind Kind, loc Location, format string, args ...any) *CompileException {
	msg := fmt.Sprintf(format, args...)
	return &CompileException{
		Kind:     kind,
		State:    fatalByDefault(kind),
		Location: loc,
		Message:  msg,
		cause:    errors.New(msg),
	}
}

// Wrap creates an internal_invariant_violation CompileException around
// cause, used when a resolution or propagation invariant check fails deep
// inside the engine with no clean caller-facing kind.
func Wrap(cause error, loc Location, format string, args ...any) *CompileException {
	msg := fmt.Sprintf(format, args...)
	return &CompileException{
		Kind:     InternalInvariantViolated,
		State:    Fatal,
		Location: loc,
		Message:  msg,
		cause:    errors.Wrap(cause, msg),
	}
}

// WithState overrides the default state computed from Kind; the JIT
// interface uses this for codegen_failure, which is always fatal (§7: "The
// JIT interface surfaces back-end errors unchanged").
func (e *CompileException) WithState(s State) *CompileException {
	e.State = s
	return e
}

func (e *CompileException) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s): %s", e.Kind, e.State, e.Message)
	if loc := e.Location.String(); loc != "" {
		fmt.Fprintf(&sb, "\n  at %s", loc)
	}
	return sb.String()
}

func (e *CompileException) Unwrap() error { return e.cause }

// IsFatal reports whether err is a CompileException that unwinds through
// the compile entry point and resets builder state.
func IsFatal(err error) bool {
	var ce *CompileException
	if errors.As(err, &ce) {
		return ce.State == Fatal
	}
	return false
}
