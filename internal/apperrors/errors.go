// Package apperrors defines typed failures shared by the gateway, the
// dialogs and the locale store.
package apperrors

import (
	stderrors "errors"
	"strings"
)

// Kind classifies a failure for display and logging.
type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindValidation  Kind = "validation"
	KindAuth        Kind = "auth"
	KindRemote      Kind = "remote"
	KindUpload      Kind = "upload"
	KindUnavailable Kind = "unavailable"
)

// Reason narrows a validation failure.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonPasswordMismatch Reason = "password_mismatch"
	ReasonFileRequired     Reason = "file_required"
	ReasonFieldRequired    Reason = "field_required"
)

// Error is a typed application failure. Message is what the server (or the
// local validator) said; Key is a localization key used when the message
// should be rendered in the user's language instead.
type Error struct {
	Kind    Kind
	Reason  Reason
	Key     string
	Message string
	Status  int
}

func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Reason != ReasonNone {
		return string(e.Kind) + ": " + string(e.Reason)
	}
	return string(e.Kind)
}

// E builds a typed Error.
func E(kind Kind, message string) error {
	return Error{Kind: kind, Message: message}
}

// EK builds a typed Error with a localization key.
func EK(kind Kind, key string, message string) error {
	return Error{Kind: kind, Key: strings.TrimSpace(key), Message: message}
}

// Validation builds a local validation failure. Validation failures never
// reach the remote gateway.
func Validation(reason Reason, key string) error {
	return Error{Kind: KindValidation, Reason: reason, Key: strings.TrimSpace(key)}
}

// KindOf returns the failure kind, KindUnknown for untyped errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return KindUnknown
	}
	return appErr.Kind
}

// ReasonOf returns the validation reason carried by err.
func ReasonOf(err error) Reason {
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return ReasonNone
	}
	return appErr.Reason
}

// IsValidation reports whether err is a local validation failure with the
// given reason. ReasonNone matches any validation failure.
func IsValidation(err error, reason Reason) bool {
	var appErr Error
	if !stderrors.As(err, &appErr) || appErr.Kind != KindValidation {
		return false
	}
	return reason == ReasonNone || appErr.Reason == reason
}

// LocalizationKey returns the structured localization key when available.
func LocalizationKey(err error) string {
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return ""
	}
	return strings.TrimSpace(appErr.Key)
}

// MessageOf returns the message a failure carries. Typed errors only yield
// their explicit message; untyped errors yield their Error text.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr Error
	if stderrors.As(err, &appErr) {
		return strings.TrimSpace(appErr.Message)
	}
	return strings.TrimSpace(err.Error())
}

// Describe resolves the text shown to a user: the localized key when there
// is one, the carried message otherwise, and the localized fallback key when
// the failure says nothing.
func Describe(err error, translate func(string) string, fallbackKey string) string {
	if err == nil {
		return ""
	}
	if key := LocalizationKey(err); key != "" && translate != nil {
		return translate(key)
	}
	if message := MessageOf(err); message != "" {
		return message
	}
	if translate == nil {
		return fallbackKey
	}
	return translate(fallbackKey)
}
