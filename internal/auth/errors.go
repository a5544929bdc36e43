package auth

import (
	"errors"
	"fmt"

	"github.com/redmonkez12/placereviews/internal/user"
)

var (
	// ErrDuplicateUser is returned by Register when the email is taken, either
	// by an existing account or by a concurrent registration.
	ErrDuplicateUser = user.ErrDuplicateEmail

	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidFederatedToken covers every identity provider verification failure.
	ErrInvalidFederatedToken = errors.New("invalid federated identity token")

	// ErrUnauthenticated is returned when a request carries no usable session token.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidToken is returned by token codecs for bad signatures, malformed
	// tokens and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMalformedInput is the parent of all input validation errors.
	ErrMalformedInput = errors.New("malformed input")
)

var (
	ErrInvalidEmailFormat = fmt.Errorf("%w: invalid email format", ErrMalformedInput)
	ErrPasswordRequired   = fmt.Errorf("%w: password is required", ErrMalformedInput)
	ErrPasswordTooLong    = fmt.Errorf("%w: password must be at most %d bytes", ErrMalformedInput, maxPasswordBytes)
)
