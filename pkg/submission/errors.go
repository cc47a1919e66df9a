package submission

import "errors"

var (
	// ErrBusy is returned when Submit is called while a request is in flight.
	ErrBusy = errors.New("submission: a request is already in flight")
	// ErrNotSubmittable is returned when the form fails validation.
	ErrNotSubmittable = errors.New("submission: form is not submittable")
)
