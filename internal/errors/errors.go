// Package errors provides a categorized error type used across the
// compiler, plus an optional telemetry hook so failures can be observed
// without the compiler itself depending on a reporting backend.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"sync"
	"time"
)

// ErrorCategory classifies an error for grouping in logs/telemetry and,
// for the categories drawn from spec.md §7, for matching against the
// compiler's documented failure kinds.
type ErrorCategory string

// CategorizedError lets a caller-defined error self-report its category.
type CategorizedError interface {
	error
	ErrorCategory() ErrorCategory
}

// Compiler failure kinds, spec.md §7.
const (
	CategoryUnboundedSession        ErrorCategory = "unbounded-session"
	CategoryInvalidDuration         ErrorCategory = "invalid-duration"
	CategoryUnknownEntity           ErrorCategory = "unknown-entity"
	CategoryStateStructureViolation ErrorCategory = "state-structure-violation"
	CategoryAllocatorExhausted      ErrorCategory = "allocator-exhausted"
	CategoryRendererNotFound        ErrorCategory = "renderer-not-found"
)

// Ambient categories, retained from the teacher for failures outside the
// compiler's own documented kinds (config loading, I/O, etc).
const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryFileIO        ErrorCategory = "file-io"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryNetwork       ErrorCategory = "network"
	CategoryGeneric       ErrorCategory = "generic"
)

// ComponentUnknown is used when the component cannot be determined.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with category, component, and context
// metadata, and tracks whether it has already been sent to telemetry.
type EnhancedError struct {
	Err       error
	component string
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time
	reported  bool
	detected  bool
	mu        sync.RWMutex
}

func (ee *EnhancedError) Error() string { return ee.Err.Error() }
func (ee *EnhancedError) Unwrap() error { return ee.Err }

func (ee *EnhancedError) Is(target error) bool {
	if ee2, ok := target.(*EnhancedError); ok {
		return ee.Category == ee2.Category
	}
	return Is(ee.Err, target)
}

// GetComponent returns the component name, detecting it lazily if needed.
func (ee *EnhancedError) GetComponent() string {
	ee.mu.RLock()
	if ee.detected || ee.component != "" {
		c := ee.component
		ee.mu.RUnlock()
		return c
	}
	ee.mu.RUnlock()

	ee.mu.Lock()
	defer ee.mu.Unlock()
	if ee.component == "" && !ee.detected {
		ee.component = detectComponent()
		ee.detected = true
		if ee.component == "" {
			ee.component = ComponentUnknown
		}
	}
	return ee.component
}

func (ee *EnhancedError) GetCategory() string { return string(ee.Category) }

func (ee *EnhancedError) GetContext() map[string]any {
	ee.mu.RLock()
	defer ee.mu.RUnlock()
	if ee.Context == nil {
		return nil
	}
	cp := make(map[string]any, len(ee.Context))
	maps.Copy(cp, ee.Context)
	return cp
}

func (ee *EnhancedError) GetTimestamp() time.Time { return ee.Timestamp }
func (ee *EnhancedError) GetError() error         { return ee.Err }

func (ee *EnhancedError) GetMessage() string {
	if ee.Err != nil {
		return ee.Err.Error()
	}
	return ""
}

func (ee *EnhancedError) MarkReported() {
	ee.mu.Lock()
	defer ee.mu.Unlock()
	ee.reported = true
}

func (ee *EnhancedError) IsReported() bool {
	ee.mu.RLock()
	defer ee.mu.RUnlock()
	return ee.reported
}

// ErrorBuilder provides a fluent interface for creating enhanced errors.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder wrapping err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a new formatted error builder.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Offset attaches the timeline offset at which the error occurred.
func (eb *ErrorBuilder) Offset(offset float64) *ErrorBuilder {
	return eb.Context("offset", offset)
}

// Entity attaches the entity (node/buffer/bus) session id involved.
func (eb *ErrorBuilder) Entity(kind string, sessionID int) *ErrorBuilder {
	return eb.Context("entity_kind", kind).Context("entity_session_id", sessionID)
}

// Build creates the EnhancedError and, if telemetry reporting is active,
// dispatches it.
func (eb *ErrorBuilder) Build() *EnhancedError {
	if !hasActiveReporting.Load() {
		ee := &EnhancedError{
			Err:       eb.err,
			component: eb.component,
			Category:  eb.category,
			Context:   eb.context,
			Timestamp: time.Now(),
			detected:  eb.component != "",
		}
		if ee.component == "" {
			ee.component = ComponentUnknown
			ee.detected = true
		}
		if ee.Category == "" {
			ee.Category = CategoryGeneric
		}
		return ee
	}

	if eb.component == "" {
		eb.component = detectComponent()
	}
	if eb.category == "" {
		eb.category = detectCategory(eb.err, eb.component)
	}

	ee := &EnhancedError{
		Err:       eb.err,
		component: eb.component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
		detected:  true,
	}
	reportToTelemetry(ee)
	return ee
}

// Component registry for dynamic component detection from the call stack.
var (
	componentRegistry = make(map[string]string)
	registryMutex     sync.RWMutex
)

// RegisterComponent registers a package-path pattern with a component name.
func RegisterComponent(packagePattern, componentName string) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	componentRegistry[packagePattern] = componentName
}

func init() {
	RegisterComponent("internal/timeline", "timeline")
	RegisterComponent("internal/session", "session")
	RegisterComponent("internal/idmap", "idmap")
	RegisterComponent("internal/settings", "settings")
	RegisterComponent("internal/planner", "planner")
	RegisterComponent("internal/render", "render")
	RegisterComponent("internal/osc", "osc")
	RegisterComponent("internal/soundfile", "soundfile")
	RegisterComponent("internal/conf", "configuration")
	RegisterComponent("internal/notify", "notify")
	RegisterComponent("internal/telemetry", "telemetry")
}

func quickComponentLookup(depth int) string {
	pc, _, _, ok := runtime.Caller(depth)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	funcName := fn.Name()
	if strings.Contains(funcName, "github.com/scsess/scsess/internal/errors") {
		return ""
	}
	return lookupComponent(funcName)
}

func detectComponent() string {
	for _, depth := range []int{4, 5, 6, 7} {
		if c := quickComponentLookup(depth); c != "" && c != ComponentUnknown {
			return c
		}
	}
	return detectComponentFull()
}

func detectComponentFull() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	if n == len(pcs) {
		pcs = make([]uintptr, 32)
		n = runtime.Callers(2, pcs)
	}
	for i := range n {
		fn := runtime.FuncForPC(pcs[i])
		if fn == nil {
			continue
		}
		funcName := fn.Name()
		if strings.Contains(funcName, "github.com/scsess/scsess/internal/errors") {
			continue
		}
		if c := lookupComponent(funcName); c != ComponentUnknown {
			return c
		}
	}
	return ComponentUnknown
}

func lookupComponent(funcName string) string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	for pattern, component := range componentRegistry {
		if strings.Contains(funcName, pattern) {
			return component
		}
	}
	parts := strings.Split(funcName, "/")
	if len(parts) > 0 {
		lastPart := parts[len(parts)-1]
		if dotIndex := strings.Index(lastPart, "."); dotIndex > 0 {
			return lastPart[:dotIndex]
		}
	}
	return ComponentUnknown
}

func detectCategory(err error, component string) ErrorCategory {
	var catErr CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr.ErrorCategory()
	}
	var enhErr *EnhancedError
	if stderrors.As(err, &enhErr) && enhErr.Category != "" {
		return enhErr.Category
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duration"):
		return CategoryInvalidDuration
	case strings.Contains(msg, "unknown") && (strings.Contains(msg, "node") || strings.Contains(msg, "buffer") || strings.Contains(msg, "bus")):
		return CategoryUnknownEntity
	case strings.Contains(msg, "sparse") || strings.Contains(msg, "tree"):
		return CategoryStateStructureViolation
	case strings.Contains(msg, "allocat"):
		return CategoryAllocatorExhausted
	case strings.Contains(msg, "renderer") && strings.Contains(msg, "not found"):
		return CategoryRendererNotFound
	case strings.Contains(msg, "file") || strings.Contains(msg, "open") || strings.Contains(msg, "read"):
		return CategoryFileIO
	case strings.Contains(msg, "config"):
		return CategoryConfiguration
	case strings.Contains(msg, "timeout"):
		return CategoryTimeout
	}

	switch component {
	case "render":
		return CategoryRendererNotFound
	case "configuration":
		return CategoryConfiguration
	}
	return CategoryGeneric
}

// Convenience constructors mirroring the documented failure kinds.

func UnboundedSession(msg string) *EnhancedError {
	return New(NewStd(msg)).Category(CategoryUnboundedSession).Build()
}

func InvalidDuration(msg string) *EnhancedError {
	return New(NewStd(msg)).Category(CategoryInvalidDuration).Build()
}

func UnknownEntity(msg string) *EnhancedError {
	return New(NewStd(msg)).Category(CategoryUnknownEntity).Build()
}

func StateStructureViolation(msg string) *EnhancedError {
	return New(NewStd(msg)).Category(CategoryStateStructureViolation).Build()
}

func AllocatorExhausted(msg string) *EnhancedError {
	return New(NewStd(msg)).Category(CategoryAllocatorExhausted).Build()
}

func RendererNotFound(msg string) *EnhancedError {
	return New(NewStd(msg)).Category(CategoryRendererNotFound).Build()
}

// Standard-library passthroughs so this package can be used like "errors".

func NewStd(text string) error      { return stderrors.New(text) }
func Is(err, target error) bool     { return stderrors.Is(err, target) }
func As(err error, target any) bool { return stderrors.As(err, target) }
func Unwrap(err error) error        { return stderrors.Unwrap(err) }
func Join(errs ...error) error      { return stderrors.Join(errs...) }

// IsCategory reports whether err is an EnhancedError in the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	return As(err, &ee) && ee.Category == category
}
