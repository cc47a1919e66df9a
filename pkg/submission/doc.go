// Package submission sends a validated intake record to the remote API and
// turns the response into typed events and an Outcome instead of UI side
// effects.
//
// A Handler allows one request in flight at a time. Its busy flag is cleared
// on every exit path, after a settle delay, by deferred cleanup.
package submission
