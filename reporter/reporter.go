package reporter

import (
	"errors"
	"sync"

	"github.com/tliron/commonlog"
)

// ErrorReporter is responsible for reporting the given error. If the reporter
// returns a non-nil error, loading will abort with that error. If the reporter
// returns nil, loading of other locales will continue, allowing the loader to
// report as many broken locales as it can find.
type ErrorReporter func(err ErrorWithPath) error

// WarningReporter is responsible for reporting the given warning. This is used
// for indicating problems that do not cause loading to fail, such as
// duplicate keys, unreachable switch cases or missing translations. Though
// they are just warnings, the details are supplied to the reporter via an
// error type.
type WarningReporter func(ErrorWithPath)

type Reporter interface {
	Error(ErrorWithPath) error
	Warning(ErrorWithPath)
}

// NewReporter returns a Reporter built from the given functions. A nil
// warnings function logs warnings with [LogWarning].
func NewReporter(errs ErrorReporter, warnings WarningReporter) Reporter {
	if warnings == nil {
		warnings = LogWarning
	}
	return reporterFuncs{errs: errs, warnings: warnings}
}

type reporterFuncs struct {
	errs     ErrorReporter
	warnings WarningReporter
}

func (r reporterFuncs) Error(err ErrorWithPath) error {
	if r.errs == nil {
		return err
	}
	return r.errs(err)
}

func (r reporterFuncs) Warning(err ErrorWithPath) {
	if r.warnings != nil {
		r.warnings(err)
	}
}

var log = commonlog.GetLogger("qrules")

// LogWarning is a WarningReporter that writes to the "qrules" commonlog
// logger.
func LogWarning(err ErrorWithPath) {
	log.Warning(err.Unwrap().Error(), "locale", err.GetLocale(), "path", err.GetPath())
}

// Discard is a WarningReporter that drops every warning.
func Discard(ErrorWithPath) {}

type Handler struct {
	reporter Reporter

	mu           sync.Mutex
	errsReported bool
	err          error
}

func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil, nil)
	}
	return &Handler{reporter: rep}
}

func (h *Handler) HandleErrorf(locale, path string, format string, args ...interface{}) error {
	return h.HandleError(Errorf(locale, path, format, args...))
}

// HandleError reports err, if it carries a path, and records the outcome.
// Once an error has been recorded, every later call returns it.
func (h *Handler) HandleError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	var ewp ErrorWithPath
	if errors.As(err, &ewp) {
		h.errsReported = true
		err = h.reporter.Error(ewp)
	}
	h.err = err
	return err
}

func (h *Handler) HandleWarning(locale, path string, err error) {
	// no need for lock; warnings don't interact with mutable fields
	h.reporter.Warning(errorWithPath{locale: locale, path: path, underlying: err})
}

// HandleWarningWithPath reports a warning that already carries its location.
func (h *Handler) HandleWarningWithPath(err ErrorWithPath) {
	h.reporter.Warning(err)
}

func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errsReported && h.err == nil {
		return ErrInvalidSource
	}
	return h.err
}

func (h *Handler) ReporterError() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err
}
