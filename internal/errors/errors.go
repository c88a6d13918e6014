package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorConfiguration represents bad configuration data that degrades a value to absent
	ErrorConfiguration ErrorClass = iota
	// ErrorResolution represents an unresolvable reference that fails a single object or property
	ErrorResolution
	// ErrorStructural represents a graph-level failure of the whole container build
	ErrorStructural
	// ErrorLifecycle represents a failure while starting or stopping services
	ErrorLifecycle
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorConfiguration:
		return "configuration"
	case ErrorResolution:
		return "resolution"
	case ErrorStructural:
		return "structural"
	case ErrorLifecycle:
		return "lifecycle"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Configuration errors
	ErrInvalidKeyPath    = errors.New("invalid key path")
	ErrUnresolvedContext = errors.New("unresolved template variable")
	ErrConversion        = errors.New("representation conversion failed")
	ErrNotConfiguration  = errors.New("value cannot be interpreted as configuration")
	ErrMissingTypeHint   = errors.New("missing type hint")

	// Resolution errors
	ErrInvalidURI      = errors.New("invalid compound URI")
	ErrUnknownScheme   = errors.New("unknown URI scheme")
	ErrUnknownType     = errors.New("unknown type")
	ErrNotFound        = errors.New("not found")
	ErrNotInstantiable = errors.New("class cannot be instantiated")

	// Structural errors
	ErrCircularReference     = errors.New("circular reference")
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
	ErrBuildDepth            = errors.New("maximum build depth exceeded")

	// Lifecycle errors
	ErrServiceStart   = errors.New("service failed to start")
	ErrServiceStop    = errors.New("service failed to stop")
	ErrAlreadyRunning = errors.New("container already running")
)

// ClassifiedError wraps an error with its classification and the key path
// of the value or object it concerns.
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	KeyPath   string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Is reports whether err carries the given class.
func Is(err error, class ErrorClass) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == class
	}
	return false
}

// IsStructural checks if an error must be surfaced as a whole-container failure
func IsStructural(err error) bool {
	if Is(err, ErrorStructural) {
		return true
	}
	return errors.Is(err, ErrCircularReference) ||
		errors.Is(err, ErrUnresolvedPlaceholder) ||
		errors.Is(err, ErrBuildDepth)
}

// IsLifecycle checks if an error comes from the service start/stop sequence
func IsLifecycle(err error) bool {
	if Is(err, ErrorLifecycle) {
		return true
	}
	return errors.Is(err, ErrServiceStart) || errors.Is(err, ErrServiceStop)
}

// IsResolution checks if an error is due to an unresolvable reference
func IsResolution(err error) bool {
	if Is(err, ErrorResolution) {
		return true
	}
	return errors.Is(err, ErrUnknownScheme) ||
		errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidURI)
}

// Classify returns the error class for an error. Unclassified errors are
// treated as configuration errors, the most forgiving class.
func Classify(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	switch {
	case IsStructural(err):
		return ErrorStructural
	case IsLifecycle(err):
		return ErrorLifecycle
	case IsResolution(err):
		return ErrorResolution
	}
	return ErrorConfiguration
}

// KeyPathOf returns the key path recorded on a classified error, if any.
func KeyPathOf(err error) string {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.KeyPath
	}
	return ""
}

func newClassified(class ErrorClass, err error, component, keyPath, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		KeyPath:   keyPath,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component: keyPath: action failed: %w"
func Wrap(err error, component, keyPath, action string) error {
	if err == nil {
		return nil
	}
	if keyPath == "" {
		return fmt.Errorf("%s: %s failed: %w", component, action, err)
	}
	return fmt.Errorf("%s: %s: %s failed: %w", component, keyPath, action, err)
}

func wrapAs(class ErrorClass, err error, component, keyPath, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, keyPath, action)
	return newClassified(class, wrappedErr, component, keyPath, action, wrappedErr.Error())
}

// WrapConfiguration wraps an error as a configuration error with context
func WrapConfiguration(err error, component, keyPath, action string) error {
	return wrapAs(ErrorConfiguration, err, component, keyPath, action)
}

// WrapResolution wraps an error as a resolution error with context
func WrapResolution(err error, component, keyPath, action string) error {
	return wrapAs(ErrorResolution, err, component, keyPath, action)
}

// WrapStructural wraps an error as a structural error with context
func WrapStructural(err error, component, keyPath, action string) error {
	return wrapAs(ErrorStructural, err, component, keyPath, action)
}

// WrapLifecycle wraps an error as a lifecycle error with context
func WrapLifecycle(err error, component, keyPath, action string) error {
	return wrapAs(ErrorLifecycle, err, component, keyPath, action)
}
