package domain

import "errors"

var (
	// ErrBankInvalid is returned when the question bank is malformed.
	ErrBankInvalid = errors.New("question bank invalid")
	// ErrBankUnavailable indicates the question bank could not be loaded.
	ErrBankUnavailable = errors.New("question bank unavailable")
	// ErrAttemptNotFound is returned for unknown or expired attempts.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrItemNotFound indicates an answered item id is not part of the attempt.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidScaleValue indicates an answer outside the scale.
	ErrInvalidScaleValue = errors.New("value is not on the scale")
	// ErrPageOutOfRange is returned for a page number past the last page.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrIncompleteAnswers asks the caller to confirm a partial submission.
	ErrIncompleteAnswers = errors.New("not all items answered")
	// ErrUnauthenticated is returned when an operation needs a signed-in user.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is returned by sign-in for a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned by sign-up for an existing account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound indicates no account or profile exists for the id.
	ErrUserNotFound = errors.New("user not found")
	// ErrResultNotFound indicates a persisted result is missing or not owned by the caller.
	ErrResultNotFound = errors.New("result not found")
	// ErrFallbackNotFound is returned when a transient result has expired or never existed.
	ErrFallbackNotFound = errors.New("transient result not found")
	// ErrInvalidInput covers malformed request values.
	ErrInvalidInput = errors.New("invalid input")
)
