package jwt

import (
	"errors"
	"fmt"
)

// JWT signing algorithm constants.
const (
	AlgRS256 = "RS256"
	AlgRS384 = "RS384"
	AlgRS512 = "RS512"
	AlgES256 = "ES256"
	AlgES384 = "ES384"
	AlgES512 = "ES512"
	AlgHS256 = "HS256"
	AlgHS384 = "HS384"
	AlgHS512 = "HS512"
)

// Sentinel errors for token decoding and claim validation.
var (
	// ErrMalformedToken indicates that the token does not have exactly
	// three dot-separated segments or a segment is not valid base64url.
	ErrMalformedToken = errors.New("token is malformed")

	// ErrNotAnObject indicates that a decoded header or payload segment
	// is valid JSON but not a JSON object.
	ErrNotAnObject = errors.New("segment is not a JSON object")

	// ErrInvalidAlgorithm indicates an algorithm id outside the nine
	// supported RS/ES/HS identifiers.
	ErrInvalidAlgorithm = errors.New("algorithm is not supported")

	// ErrMissingTyp indicates the typ claim is absent.
	ErrMissingTyp = errors.New("typ claim is missing")

	// ErrInvalidTyp indicates the typ claim is present but not "JWT".
	ErrInvalidTyp = errors.New("typ claim is not JWT")

	// ErrMissingAlg indicates the alg header field is absent or empty.
	ErrMissingAlg = errors.New("alg header field is missing")

	// ErrInvalidAlg indicates the alg header field is not recognized.
	ErrInvalidAlg = errors.New("alg header field is not supported")

	// ErrMissingIss indicates the iss claim is absent.
	ErrMissingIss = errors.New("iss claim is missing")

	// ErrInvalidIss indicates the iss claim does not match the expected issuer.
	ErrInvalidIss = errors.New("iss claim does not match expected issuer")

	// ErrMissingIat indicates the iat claim is absent.
	ErrMissingIat = errors.New("iat claim is missing")

	// ErrInvalidIat indicates the iat claim is not an integer.
	ErrInvalidIat = errors.New("iat claim is not an integer")

	// ErrMissingNbf indicates the nbf claim is absent.
	ErrMissingNbf = errors.New("nbf claim is missing")

	// ErrNbfNotInPast indicates the nbf claim is not strictly in the past.
	ErrNbfNotInPast = errors.New("nbf not in past")

	// ErrMissingExp indicates the exp claim is absent.
	ErrMissingExp = errors.New("exp claim is missing")

	// ErrExpNotInFuture indicates the exp claim is not strictly in the future.
	ErrExpNotInFuture = errors.New("exp not in future")

	// ErrMissingKid indicates the kid check was requested but the header
	// carries no kid field.
	ErrMissingKid = errors.New("kid header field is missing")
)

// Sentinel errors for signature verification and key resolution.
var (
	// ErrBadSignature indicates an asymmetric signature mismatch.
	ErrBadSignature = errors.New("signature verification failed")

	// ErrBadHmac indicates a symmetric MAC mismatch.
	ErrBadHmac = errors.New("hmac verification failed")

	// ErrInvalidKey indicates a key of the wrong type for the algorithm.
	ErrInvalidKey = errors.New("key is invalid for algorithm")

	// ErrKeyNotFound indicates the requested verification key is not cached.
	ErrKeyNotFound = errors.New("verification key not found")

	// ErrServiceUnavailable indicates the key-publishing endpoint returned
	// a non-200 status or the transport failed.
	ErrServiceUnavailable = errors.New("keystore service unavailable")
)

// ValidationError wraps a decode failure with context about which step
// failed. It unwraps to the sentinel that identifies the failure.
type ValidationError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("jwt validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("jwt validation error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok || errors.Is(e.Cause, target)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string, cause error) *ValidationError {
	return &ValidationError{
		Message: message,
		Cause:   cause,
	}
}

// SigningError represents a token encoding failure.
type SigningError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SigningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("jwt signing error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("jwt signing error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *SigningError) Unwrap() error {
	return e.Cause
}

// NewSigningError creates a new SigningError.
func NewSigningError(message string, cause error) *SigningError {
	return &SigningError{
		Message: message,
		Cause:   cause,
	}
}

// IsSignatureError checks if an error indicates a signature or MAC mismatch.
func IsSignatureError(err error) bool {
	return errors.Is(err, ErrBadSignature) || errors.Is(err, ErrBadHmac)
}
