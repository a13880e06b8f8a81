package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a registry Error.
type Kind int

const (
	// KindTransport means the HTTP round trip itself failed.
	KindTransport Kind = iota + 1

	// KindNotOK means the registry answered with a status other than
	// 0, 200 or 403.
	KindNotOK

	// KindNonUTF8Body means a successful response body was not UTF-8.
	KindNonUTF8Body

	// KindAPIErrors means the registry reported application errors in
	// the body of an otherwise successful response.
	KindAPIErrors

	// KindUnauthorized means the registry answered 403.
	KindUnauthorized

	// KindIO means a local filesystem operation failed.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindNotOK:
		return "not-ok"
	case KindNonUTF8Body:
		return "non-utf8-body"
	case KindAPIErrors:
		return "api-errors"
	case KindUnauthorized:
		return "unauthorized"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. A registry Error matches the sentinel of its
// kind.
var (
	ErrTransport    = &Error{Kind: KindTransport}
	ErrNotOK        = &Error{Kind: KindNotOK}
	ErrNonUTF8Body  = &Error{Kind: KindNonUTF8Body}
	ErrAPIErrors    = &Error{Kind: KindAPIErrors}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrIO           = &Error{Kind: KindIO}
)

// Error is the failure of a registry operation.
type Error struct {
	Kind Kind

	// Err is the underlying transport or filesystem error for
	// KindTransport and KindIO.
	Err error

	// Status and Body describe the response for KindNotOK.
	Status int
	Body   string

	// Details lists the registry's error messages for KindAPIErrors, in
	// response order.
	Details []string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("http error: %v", e.Err)
	case KindNotOK:
		if body := strings.TrimSpace(e.Body); body != "" {
			return fmt.Sprintf("failed to get a 200 OK response, got %d: %s", e.Status, body)
		}
		return fmt.Sprintf("failed to get a 200 OK response, got %d", e.Status)
	case KindNonUTF8Body:
		return "response body was not utf-8"
	case KindAPIErrors:
		return "api errors: " + strings.Join(e.Details, ", ")
	case KindUnauthorized:
		return "unauthorized API access"
	case KindIO:
		return fmt.Sprintf("io error: %v", e.Err)
	default:
		return "registry error"
	}
}

// Description returns the one-line message, as Error does.
func (e *Error) Description() string {
	return e.Error()
}

// Detail is always empty: the response body of an unexpected status is
// part of the message, so it shows wherever the error appears in a chain.
func (e *Error) Detail() string {
	return ""
}

// Cause returns the underlying error of transport and IO failures. The
// message already embeds it, so it is only useful below that level.
func (e *Error) Cause() error {
	if e.Err == nil {
		return nil
	}
	return errors.Unwrap(e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches registry errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// IsUnauthorized reports whether err is a 403 from the registry.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
