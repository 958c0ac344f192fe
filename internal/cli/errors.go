package cli

import (
	"errors"
	"fmt"

	"github.com/pathakanu/myCircle/internal/notify"
	"github.com/pathakanu/myCircle/internal/reminders"
	"gorm.io/gorm"
)

// GenericAlert is shown for failures that are not the user's input.
const GenericAlert = "Something went wrong. Please try again."

// inputError is a problem with what the user typed; its text is shown as is.
type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func inputErrorf(format string, args ...interface{}) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

// AlertText returns the message to show the user for err.
func AlertText(err error) string {
	var ie *inputError
	switch {
	case errors.As(err, &ie):
		return ie.msg
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "Not found."
	case errors.Is(err, notify.ErrInPast):
		return "That time has already passed. Pick a time in the future."
	case errors.Is(err, notify.ErrPermissionDenied):
		return "Notifications are not allowed. Check NOTIFY_CHANNEL and NOTIFY_TO."
	case errors.Is(err, reminders.ErrEmptyTitle):
		return "A reminder needs a title."
	case errors.Is(err, reminders.ErrCompleted):
		return "That reminder is already completed."
	}
	return GenericAlert
}
