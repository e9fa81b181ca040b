package errs

import (
	"errors"
	"fmt"
)

// Notification & Upload errors
var (
	ErrNotificationFailed  = errors.New("notification failed")
	ErrMailerMisconfigured = errors.New("mail transport misconfigured")
	ErrUploadFailed        = errors.New("upload failed")
)

// NotificationFault is only ever logged; it never reaches a response.
func NotificationFault(recipient string, cause error) error {
	return fmt.Errorf("send to %s: %w: %w", recipient, ErrNotificationFailed, cause)
}

func NewUploadFailedError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: 500,
		err:        ErrUploadFailed,
		Details:    "Failed to store uploaded image",
		Cause:      cause,
		Field:      "image",
	}
}
