// Package errs defines the structured error taxonomy shared by every
// serialbox component: MetaInfoMap, the field/savepoint catalog, storage
// views, archives, and the Serializer itself.
package errs

import "fmt"

// Kind classifies an error so callers can branch on intent rather than
// parsing messages.
type Kind int

const (
	// Validation kinds.
	FieldNotRegistered Kind = iota
	FieldAlreadyRegisteredButDifferent
	TypeMismatch
	DimensionMismatch
	SavepointAlreadyExists
	FieldAlreadyExistsAtSavepoint
	FieldNotExistsAtSavepoint

	// Schema kinds.
	TypeIDInvalid
	MetaInfoTypeMismatch
	MetaInfoKeyNotFound
	MetaInfoKeyAlreadyExists

	// Persistence kinds.
	MetaDataNotFound
	MetaDataCorrupt
	MetaDataWriteFailed
	UnknownArchive

	// Archive kinds.
	ArchiveIOError
	ArchiveFieldNotFound
	ArchiveSliceNotSupported

	// Lifecycle kinds.
	SerializerClosed
)

var kindNames = map[Kind]string{
	FieldNotRegistered:                 "FieldNotRegistered",
	FieldAlreadyRegisteredButDifferent: "FieldAlreadyRegisteredButDifferent",
	TypeMismatch:                       "TypeMismatch",
	DimensionMismatch:                  "DimensionMismatch",
	SavepointAlreadyExists:             "SavepointAlreadyExists",
	FieldAlreadyExistsAtSavepoint:      "FieldAlreadyExistsAtSavepoint",
	FieldNotExistsAtSavepoint:          "FieldNotExistsAtSavepoint",
	TypeIDInvalid:                      "TypeIDInvalid",
	MetaInfoTypeMismatch:               "MetaInfoTypeMismatch",
	MetaInfoKeyNotFound:                "MetaInfoKeyNotFound",
	MetaInfoKeyAlreadyExists:           "MetaInfoKeyAlreadyExists",
	MetaDataNotFound:                   "MetaDataNotFound",
	MetaDataCorrupt:                    "MetaDataCorrupt",
	MetaDataWriteFailed:                "MetaDataWriteFailed",
	UnknownArchive:                     "UnknownArchive",
	ArchiveIOError:                     "ArchiveIOError",
	ArchiveFieldNotFound:               "ArchiveFieldNotFound",
	ArchiveSliceNotSupported:           "ArchiveSliceNotSupported",
	SerializerClosed:                   "SerializerClosed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the structured error type returned by every serialbox package.
type Error struct {
	Kind      Kind
	Message   string
	Field     string // field name, if relevant; "" otherwise
	Savepoint string // savepoint name, if relevant; "" otherwise
	Err       error  // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.String() + ": " + e.Message
	if e.Field != "" {
		msg += " (field=" + e.Field + ")"
	}
	if e.Savepoint != "" {
		msg += " (savepoint=" + e.Savepoint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error that carries an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// WithField returns a copy of e with Field set.
func (e *Error) WithField(name string) *Error {
	c := *e
	c.Field = name
	return &c
}

// WithSavepoint returns a copy of e with Savepoint set.
func (e *Error) WithSavepoint(name string) *Error {
	c := *e
	c.Savepoint = name
	return &c
}

// Is reports whether err is a *Error of the given kind. It honors
// errors.Unwrap chains via a type assertion at each level, matching the
// errors.Is contract without requiring sentinel values per kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
