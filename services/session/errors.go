package session

import "fmt"

// InvalidCredentialsError signals a rejected login. The message deliberately
// does not say which of email or password was wrong.
type InvalidCredentialsError struct{}

func (e InvalidCredentialsError) Error() string {
	return "invalid email or password"
}

// AccountNotActivatedError signals a login attempt on an account whose
// activation link was never followed.
type AccountNotActivatedError struct {
	Email string
}

func (e AccountNotActivatedError) Error() string {
	return fmt.Sprintf("account %s is not activated", e.Email)
}

// RefreshInvalidError signals that the refresh credential was rejected.
// It always escalates to a forced logout and is never retried.
type RefreshInvalidError struct {
	Status int
}

func (e RefreshInvalidError) Error() string {
	return fmt.Sprintf("refresh token rejected (status %d)", e.Status)
}

// NetworkError wraps a transport-level failure talking to the backend.
type NetworkError struct {
	Err error
}

func (e NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e NetworkError) Unwrap() error {
	return e.Err
}
