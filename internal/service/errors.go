package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserAlreadyExists = errors.New("user with this email already exists")
	ErrUserNotFound      = errors.New("user does not exist")
	ErrForbidden         = errors.New("forbidden: user does not have permission for this action")
	ErrLoginContention   = errors.New("login state kept changing, try again")
)

// ValidationError reports input the caller can correct and resubmit
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidCredentialsError is a failed password check that did not lock the
// account. Counted is false for accounts exempt from lockout.
type InvalidCredentialsError struct {
	AttemptsRemaining int
	Counted           bool
}

func (e *InvalidCredentialsError) Error() string {
	if !e.Counted {
		return "wrong password"
	}
	return fmt.Sprintf("wrong password, %d attempts left", e.AttemptsRemaining)
}

// AccountLockedError is returned while an account is suspended
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is suspended until %s", e.Until.UTC().Format(time.RFC3339))
}
