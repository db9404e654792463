package logic

import "errors"

// Sentinel errors for the API-level error kinds of spec.md §7 that are
// reported synchronously to a caller rather than driving backtracking.
// UnifyMismatch, OccursCheck, UnboundArithmetic, DomainError, and
// CutSignal are never surfaced this way — they are failures-as-values
// (empty streams), not returned errors.
var (
	// ErrMalformedClause is returned when AddRule is given a head/body
	// shape that cannot be stored (an empty predicate name or an empty
	// body). The KB is
	// left unchanged.
	ErrMalformedClause = errors.New("logic: malformed clause")

	// ErrImportShape is returned when Import is given data that does not
	// match the exported KB shape.
	ErrImportShape = errors.New("logic: import data has the wrong shape")

	// ErrBadArity is returned when a relation/map/compound operation is
	// given the wrong number of arguments.
	ErrBadArity = errors.New("logic: arity mismatch")
)
