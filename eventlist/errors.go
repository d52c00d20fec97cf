package eventlist

import "errors"

// Standard errors returned by [List] methods.
var (
	// ErrPastTime is returned by [List.At] and [List.In] when the requested
	// due time is strictly before now. Scheduling into the past is a
	// simulator-invariant violation, not recoverable data: callers that hit
	// this have a bug.
	ErrPastTime = errors.New("eventlist: cannot schedule before now")

	// ErrEndTimeInPast is returned by [List.SetEndTime] when the requested
	// end time is before now.
	ErrEndTimeInPast = errors.New("eventlist: end time is before now")
)
