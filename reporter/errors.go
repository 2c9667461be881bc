package reporter

import (
	"errors"
	"fmt"
)

// ErrInvalidSource is a sentinel error that is returned by calls to
// Loader.LoadData and Loader.LoadAll in the event that errors are
// encountered, but the loader's configured ErrorReporter always returns nil.
var ErrInvalidSource = errors.New("load failed: invalid locale source")

// ErrorWithPath is an error about a locale document that includes the locale
// it was found in and the path to the offending value, such as "%.menu.title"
// or "%.greeting.cases[0]".
//
// The value of Error() will contain the locale, the path and the Underlying
// error. The value of Unwrap() will only be the Underlying error.
type ErrorWithPath interface {
	error
	GetLocale() string
	GetPath() string
	Unwrap() error
}

func Error(locale, path string, err error) ErrorWithPath {
	return errorWithPath{locale: locale, path: path, underlying: err}
}

func Errorf(locale, path string, format string, args ...interface{}) ErrorWithPath {
	return errorWithPath{locale: locale, path: path, underlying: fmt.Errorf(format, args...)}
}

// errorWithPath is the simplest ErrorWithPath. Calling code that examines
// errors should look for the ErrorWithPath interface instead, which will also
// find qrules errors.
type errorWithPath struct {
	underlying error
	locale     string
	path       string
}

func (e errorWithPath) Error() string {
	if e.path == "" {
		return fmt.Sprintf("locale %q: %v", e.locale, e.underlying)
	}
	return fmt.Sprintf("locale %q at %q: %v", e.locale, e.path, e.underlying)
}

// GetLocale implements the ErrorWithPath interface.
func (e errorWithPath) GetLocale() string {
	return e.locale
}

// GetPath implements the ErrorWithPath interface.
func (e errorWithPath) GetPath() string {
	return e.path
}

// Unwrap implements the ErrorWithPath interface, supplying the underlying
// error. This error will not include location information.
func (e errorWithPath) Unwrap() error {
	return e.underlying
}

var _ ErrorWithPath = errorWithPath{}
