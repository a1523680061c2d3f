package keel

import (
	"errors"
)

// ErrorKind classifies framework errors into broad categories.
// Every error the framework returns can be mapped to a kind via KindOf,
// letting callers branch on the failure class without matching individual
// sentinels.
type ErrorKind int

const (
	// KindOther is the fallback kind for errors the framework cannot classify.
	KindOther ErrorKind = iota

	// KindConfig covers configuration loading, validation, and access errors.
	KindConfig

	// KindComponent covers component registration and lifecycle errors.
	KindComponent

	// KindIO covers errors reading configuration sources or other resources.
	KindIO

	// KindParse covers syntax errors in configuration sources.
	KindParse
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindComponent:
		return "component"
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	default:
		return "other"
	}
}

// FrameworkError is the unified error type produced at framework failure
// points. It carries a kind for classification, a message naming the failing
// component or config source, and the underlying cause. FrameworkError
// participates in the standard wrapping chain: errors.Is sees the sentinel
// the cause was built from, errors.As extracts the *FrameworkError itself.
type FrameworkError struct {
	kind    ErrorKind
	message string
	cause   error
}

// NewFrameworkError creates a FrameworkError with the given kind, message,
// and cause. The cause may be nil for errors with no underlying failure.
func NewFrameworkError(kind ErrorKind, message string, cause error) *FrameworkError {
	return &FrameworkError{kind: kind, message: message, cause: cause}
}

// Error implements the error interface.
func (e *FrameworkError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap returns the underlying cause for errors.Is/errors.As traversal.
func (e *FrameworkError) Unwrap() error {
	return e.cause
}

// Kind returns the error's classification.
func (e *FrameworkError) Kind() ErrorKind {
	return e.kind
}

// KindOf returns the kind of the outermost FrameworkError in err's chain,
// or KindOther if the chain contains none.
func KindOf(err error) ErrorKind {
	var fe *FrameworkError
	if errors.As(err, &fe) {
		return fe.Kind()
	}
	return KindOther
}

// Configuration errors
var (
	ErrConfigNotLoaded        = errors.New("config not loaded")
	ErrConfigLoadFailed       = errors.New("config load failed")
	ErrConfigValidationFailed = errors.New("config validation failed")
	ErrConfigWrongType        = errors.New("config value has unexpected type")
	ErrUnsupportedFormatType  = errors.New("unsupported config format")
)

// Config validation errors
var (
	ErrConfigNil                  = errors.New("config is nil")
	ErrConfigNotPointer           = errors.New("config must be a pointer")
	ErrConfigNotStruct            = errors.New("config must be a struct")
	ErrConfigRequiredFieldMissing = errors.New("required field is missing")
	ErrUnsupportedTypeForDefault  = errors.New("unsupported type for default value")
	ErrDefaultValueParseError     = errors.New("failed to parse default value")
	ErrDefaultValueOverflowsInt   = errors.New("default value overflows int")
	ErrDefaultValueOverflowsUint  = errors.New("default value overflows uint")
	ErrDefaultValueOverflowsFloat = errors.New("default value overflows float")
)

// Component registration errors
var (
	ErrComponentNil       = errors.New("component is nil")
	ErrComponentNameEmpty = errors.New("component name is empty")
	ErrComponentDuplicate = errors.New("component already registered")
	ErrComponentNotFound  = errors.New("component not found")
)

// Dependency resolution errors
var (
	ErrComponentCycle             = errors.New("circular dependency detected")
	ErrComponentUnknownDependency = errors.New("component depends on unregistered component")
)

// Lifecycle errors
var (
	ErrComponentInitFailed         = errors.New("component initialization failed")
	ErrComponentDependencyNotReady = errors.New("component dependency is not ready")
	ErrComponentReloadFailed       = errors.New("component reload failed")
	ErrComponentShutdownFailed     = errors.New("component shutdown failed")
	ErrInvalidStateTransition      = errors.New("invalid component state transition")
	ErrAlreadyBooted               = errors.New("application already booted")
	ErrNotBooted                   = errors.New("application not booted")
	ErrBootInProgress              = errors.New("boot already in progress")
	ErrRegisterAfterBoot           = errors.New("cannot register component after boot")
)

// Reload errors
var (
	ErrReloadInProgress = errors.New("reload operation already in progress")
)

// Observer errors
var (
	ErrObserverNil = errors.New("observer is nil")
)

// Application construction errors
var (
	ErrLoggerNil = errors.New("logger cannot be nil")
)
