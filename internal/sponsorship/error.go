package sponsorship

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
)

// Kind identifies the class of failure that terminated a request.
type Kind string

const (
	// KindBodyRead is returned when the inbound body cannot be delivered in full.
	KindBodyRead Kind = "BodyReadError"
	// KindMissingHeader is returned when the signature header is absent.
	KindMissingHeader Kind = "MissingHeaderError"
	// KindMissingSecret is returned when the webhook secret or the notification destination is not configured.
	KindMissingSecret Kind = "MissingSecretError"
	// KindInvalidSignature is returned when the computed signature does not match the header value.
	KindInvalidSignature Kind = "InvalidSignatureError"
	// KindInvalidPayload is returned when the body is not a well-formed sponsorship event.
	KindInvalidPayload Kind = "InvalidPayloadError"
	// KindDelivery is returned when the notification sink is unreachable or rejects the message.
	KindDelivery Kind = "DeliveryError"
)

var (
	ErrBodyRead         = &Error{Kind: KindBodyRead}
	ErrMissingHeader    = &Error{Kind: KindMissingHeader}
	ErrMissingSecret    = &Error{Kind: KindMissingSecret}
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature}
	ErrInvalidPayload   = &Error{Kind: KindInvalidPayload}
	ErrDelivery         = &Error{Kind: KindDelivery}
)

// Error is a terminal request failure of a known Kind.
type Error struct {
	Kind  Kind
	Cause error
}

// NewError returns an Error of the given kind with a formatted cause.
func NewError(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Cause: errors.Errorf(format, args...)}
}

// WrapError returns an Error of the given kind wrapping cause.
func WrapError(kind Kind, cause error, message string) error {
	return &Error{Kind: kind, Cause: errors.Wrap(cause, message)}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// StatusCode maps the error kind to the HTTP status returned to the webhook originator.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindBodyRead, KindMissingHeader:
		return http.StatusBadRequest
	case KindInvalidSignature:
		return http.StatusUnauthorized
	case KindInvalidPayload:
		return http.StatusUnprocessableEntity
	case KindDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// LogValue renders the error as a structured group.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("kind", string(e.Kind))}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	return slog.GroupValue(attrs...)
}

// StatusCode returns the HTTP status for any error, defaulting to 500 for errors of unknown kind.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode()
	}
	return http.StatusInternalServerError
}
