// Package render turns validated intake records and API error payloads into
// what a front end shows: review summaries and per-field server messages.
package render
