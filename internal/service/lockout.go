package service

import (
	"time"

	"bcard/internal/model"
)

const (
	DefaultMaxAttempts = 3
	DefaultSuspendFor  = 24 * time.Hour
)

// LockoutPolicy decides the outcome of one login attempt from the stored
// login state. It never touches storage itself.
type LockoutPolicy struct {
	MaxAttempts int
	SuspendFor  time.Duration
}

func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{MaxAttempts: DefaultMaxAttempts, SuspendFor: DefaultSuspendFor}
}

// LoginDecision is the result of evaluating a login attempt. When Persist is
// set, Next must be written atomically against the state the decision was
// computed from. Err is nil only for a successful login.
type LoginDecision struct {
	Next    model.LoginState
	Persist bool
	Err     error
}

// Evaluate applies the policy to user at now. verify is only called when the
// account is not suspended.
func (p LockoutPolicy) Evaluate(user *model.User, now time.Time, verify func() bool) LoginDecision {
	current := user.LoginState()

	if user.IsSuspended(now) {
		return LoginDecision{Next: current, Err: &AccountLockedError{Until: *user.SuspendedUntil}}
	}

	if verify() {
		next := model.LoginState{FailedAttempts: 0, SuspendedUntil: current.SuspendedUntil}
		return LoginDecision{Next: next, Persist: current.FailedAttempts != 0}
	}

	// Admins are always checked but never counted
	if user.Role == model.RoleAdmin {
		return LoginDecision{Next: current, Err: &InvalidCredentialsError{}}
	}

	attempts := current.FailedAttempts + 1
	if attempts >= p.MaxAttempts {
		until := now.Add(p.SuspendFor)
		return LoginDecision{
			Next:    model.LoginState{FailedAttempts: 0, SuspendedUntil: &until},
			Persist: true,
			Err:     &AccountLockedError{Until: until},
		}
	}

	return LoginDecision{
		Next:    model.LoginState{FailedAttempts: attempts, SuspendedUntil: current.SuspendedUntil},
		Persist: true,
		Err:     &InvalidCredentialsError{AttemptsRemaining: p.MaxAttempts - attempts, Counted: true},
	}
}
