package autodiff

import "errors"

// Misuse of the stack is a contract violation and is raised as a panic whose
// value wraps one of these errors. Callers that want to survive a misuse can
// recover and test the value with errors.Is.
var (
	// ErrNestedActive reports a full recovery attempted inside a nested scope.
	ErrNestedActive = errors.New("autodiff: nested scope still active")

	// ErrNoNested reports a nested recovery with no nested scope open.
	ErrNoNested = errors.New("autodiff: no nested scope to recover")

	// ErrStaleVar reports a handle whose node was reclaimed by a recovery.
	ErrStaleVar = errors.New("autodiff: stale variable")

	// ErrForeignVar reports a handle that belongs to a different stack.
	ErrForeignVar = errors.New("autodiff: variable belongs to another stack")

	// ErrUninitialized reports use of the zero Var.
	ErrUninitialized = errors.New("autodiff: uninitialized variable")

	// ErrOutsideScope reports a gradient request for an output recorded
	// before the current nested scope began.
	ErrOutsideScope = errors.New("autodiff: output recorded outside the current scope")

	// ErrLength reports mismatched operand slice lengths.
	ErrLength = errors.New("autodiff: operand length mismatch")
)
