package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrBearerMissing is returned when no Authorization header value was
	// presented at all.
	ErrBearerMissing = errors.New("authorization header missing")

	// ErrBearerMalformed is returned when the Authorization header value is
	// not of the form "Bearer {token}".
	ErrBearerMalformed = errors.New("authorization header format must be Bearer {token}")

	// ErrTokenInvalid is returned when a presented token fails verification.
	// Specific failures are reported as *VerificationError values, which
	// support errors.Is against this sentinel.
	ErrTokenInvalid = errors.New("token invalid")
)

// Verification failure codes carried by VerificationError.
const (
	CodeBadSignature     = "invalid_signature"
	CodeIssuerMismatch   = "invalid_issuer"
	CodeMalformed        = "token_malformed"
	CodeExpired          = "token_expired"
	CodeInvalidAlgorithm = "invalid_algorithm"
)

// VerificationError reports why a presented token was rejected. Code is a
// machine-readable failure code the boundary layer can map onto a transport
// response without parsing the message.
type VerificationError struct {
	Code    string
	Message string
	Details error
}

func (e *VerificationError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *VerificationError) Unwrap() error {
	return e.Details
}

// Is allows the error to be compared with ErrTokenInvalid.
func (e *VerificationError) Is(target error) bool {
	return target == ErrTokenInvalid
}

// KeyLoadError is returned when key material could not be read or decoded
// from the filesystem. It indicates a server-side configuration problem,
// never a client fault.
type KeyLoadError struct {
	Path string
	Err  error
}

func (e *KeyLoadError) Error() string {
	return fmt.Sprintf("could not load key from %q: %v", e.Path, e.Err)
}

func (e *KeyLoadError) Unwrap() error {
	return e.Err
}

// KeyPersistError is returned when key material could not be written to the
// filesystem.
type KeyPersistError struct {
	Path string
	Err  error
}

func (e *KeyPersistError) Error() string {
	return fmt.Sprintf("could not persist key to %q: %v", e.Path, e.Err)
}

func (e *KeyPersistError) Unwrap() error {
	return e.Err
}

// SigningError is returned when the private key is structurally unusable for
// RS256 signing. It indicates misconfigured key material.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("could not sign token: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}
