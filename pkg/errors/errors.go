package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	// CodeValidation rejects malformed input before any remote call is made.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeUnauthorized marks operations attempted without an identity or token.
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeForbidden marks operations the current role may not perform.
	CodeForbidden Code = "FORBIDDEN"
	// CodeNotFound marks a missing remote resource.
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict marks locally rejected state transitions (already owned,
	// operation already in flight).
	CodeConflict Code = "CONFLICT"
	// CodeRemote marks a failed remote call; prior local state is untouched.
	CodeRemote Code = "REMOTE_ERROR"
	// CodeDecode marks an unexpected response shape treated as an empty result.
	CodeDecode Code = "DECODE_ERROR"
	// CodeInternal is the fallback for everything else.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Metadata describes how a coded error is surfaced to the user.
type Metadata struct {
	Retryable bool
	Notice    string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable: false,
		Notice:    "please check your input and try again",
	},
	CodeUnauthorized: {
		Retryable: false,
		Notice:    "please log in first",
	},
	CodeForbidden: {
		Retryable: false,
		Notice:    "you are not allowed to do that",
	},
	CodeNotFound: {
		Retryable: false,
		Notice:    "not found",
	},
	CodeConflict: {
		Retryable: false,
		Notice:    "the request conflicts with the current state",
	},
	CodeRemote: {
		Retryable: true,
		Notice:    "the store is unreachable, please try again",
	},
	CodeDecode: {
		Retryable: true,
		Notice:    "the store returned an unexpected response",
	},
	CodeInternal: {
		Retryable: true,
		Notice:    "something went wrong, please try again",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

// Notice returns the user-facing text for the error: the server/validation
// message when one exists, otherwise the generic notice for the code.
func (e *Error) Notice() string {
	if e == nil {
		return MetadataFor(CodeInternal).Notice
	}
	if e.message != "" {
		return e.message
	}
	return MetadataFor(e.code).Notice
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf extracts the code from any error, defaulting to internal.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}
