package studio

import "errors"

// Policy rejections. None of these indicate a fault; callers surface them as
// an inert control or a validation message.
var (
	ErrNoSession       = errors.New("no active studio session")
	ErrActLocked       = errors.New("field is not editable in the current act")
	ErrInvalidValue    = errors.New("value outside the allowed set")
	ErrQuizIncomplete  = errors.New("all questions must be answered before submitting")
	ErrQuizLocked      = errors.New("assessment is not accepting changes")
	ErrUnknownQuestion = errors.New("unknown question or option")
	ErrClosed          = errors.New("studio controller closed")
)
