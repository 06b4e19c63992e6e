// Package rerrors implements the error taxonomy of spec.md §7: a
// RegionError (StructureError, BudgetExceeded, or MalformedInput — fatal
// for the one region being restructured, which is skipped and reported)
// and an InternalInvariantError (an assertion failure in the algorithm
// itself — fatal for the whole run, since it indicates a bug rather than
// a malformed or pathological input).
//
// Every constructor wraps an underlying sentinel error so callers can
// still errors.Is against the specific condition (ErrNotDAG,
// ErrMissingPostDominator, ...) without caring which RegionError kind
// carried it.
package rerrors
