package bind

import "errors"

var (
	// ErrBinding is returned when call arguments do not satisfy a Signature.
	ErrBinding = errors.New("bind: arguments do not match signature")

	// ErrInvalidSignature is returned when a parameter list cannot form a Signature.
	ErrInvalidSignature = errors.New("bind: invalid signature")

	// ErrNoSuchArg is returned by Value when Args has no entry for a name.
	ErrNoSuchArg = errors.New("bind: no such argument")

	// ErrUnexpectedType is returned by Value when an argument has another type.
	ErrUnexpectedType = errors.New("bind: unexpected argument type")
)
