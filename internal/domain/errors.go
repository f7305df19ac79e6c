package domain

import (
	"errors"
	"fmt"
)

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrEntryNotFound    = errors.New("journal entry not found")
)

// InvalidScheduleError reports a reminder configuration that is incomplete or
// inconsistent for its kind. It names the offending field so administrative
// writes can be rejected with a field-specific message.
type InvalidScheduleError struct {
	Field  string
	Reason string
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid schedule: field %q %s", e.Field, e.Reason)
}

// AsInvalidSchedule unwraps err into an InvalidScheduleError if it is one.
func AsInvalidSchedule(err error) (*InvalidScheduleError, bool) {
	var ise *InvalidScheduleError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}
