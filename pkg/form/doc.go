// Package form holds the mutable state of one intake record while it is
// being filled in. A Form re-runs its schema on change or on blur, tracks
// which union fields are visible, and reports whether the record can be
// submitted.
//
// A Form is owned by a single goroutine; it is not safe for concurrent use.
package form
