// Package errors - reporting integration. This package never imports a
// telemetry backend directly; internal/telemetry registers itself here
// through the small interfaces below, keeping the dependency direction
// the same as the teacher's errors/events/telemetry split.
package errors

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// EventPublisher lets the errors package hand events to an async bus
// without importing the events package (would create an import cycle,
// since events itself wraps EnhancedError as an ErrorEvent).
type EventPublisher interface {
	TryPublish(event any) bool
}

// TelemetryReporter reports an EnhancedError to a telemetry backend.
type TelemetryReporter interface {
	ReportError(ee *EnhancedError)
	IsEnabled() bool
}

// ErrorHook is called for every error reported synchronously (no event
// publisher is set, or the bus did not accept the event), after whatever
// TelemetryReporter is configured. Errors the bus accepts skip the hooks.
type ErrorHook func(ee *EnhancedError)

var (
	globalEventPublisher    atomic.Value // stores EventPublisher
	globalTelemetryReporter TelemetryReporter

	errorHooks         []ErrorHook
	errorHooksMutex    sync.RWMutex
	hasActiveReporting atomic.Bool
)

// SetEventPublisher sets the global event publisher. Called by the events
// package during initialization.
func SetEventPublisher(publisher EventPublisher) {
	globalEventPublisher.Store(publisher)
}

// SetTelemetryReporter sets the global telemetry reporter.
func SetTelemetryReporter(reporter TelemetryReporter) {
	globalTelemetryReporter = reporter
	updateActiveReportingStatus()
}

// GetTelemetryReporter returns the current telemetry reporter, if any.
func GetTelemetryReporter() TelemetryReporter {
	return globalTelemetryReporter
}

// AddErrorHook registers a hook invoked for every synchronously reported
// error (see ErrorHook).
func AddErrorHook(hook ErrorHook) {
	errorHooksMutex.Lock()
	errorHooks = append(errorHooks, hook)
	errorHooksMutex.Unlock()
	updateActiveReportingStatus()
}

// ClearErrorHooks removes all registered hooks.
func ClearErrorHooks() {
	errorHooksMutex.Lock()
	errorHooks = nil
	errorHooksMutex.Unlock()
	updateActiveReportingStatus()
}

func updateActiveReportingStatus() {
	errorHooksMutex.RLock()
	hooksExist := len(errorHooks) > 0
	errorHooksMutex.RUnlock()

	telemetryActive := globalTelemetryReporter != nil && globalTelemetryReporter.IsEnabled()
	hasActiveReporting.Store(hooksExist || telemetryActive)
}

func publishToEventBus(ee *EnhancedError) bool {
	publisher, ok := globalEventPublisher.Load().(EventPublisher)
	if !ok || publisher == nil {
		return false
	}
	return publisher.TryPublish(ee)
}

// reportToTelemetry dispatches ee to the event bus if one is registered,
// otherwise synchronously to the configured reporter and hooks.
func reportToTelemetry(ee *EnhancedError) {
	if !hasActiveReporting.Load() {
		return
	}
	if publishToEventBus(ee) {
		return
	}
	reportSynchronously(ee)
}

func reportSynchronously(ee *EnhancedError) {
	if globalTelemetryReporter != nil && globalTelemetryReporter.IsEnabled() {
		globalTelemetryReporter.ReportError(ee)
	}

	errorHooksMutex.RLock()
	hooks := make([]ErrorHook, len(errorHooks))
	copy(hooks, errorHooks)
	errorHooksMutex.RUnlock()

	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("error hook panicked: %v\n", r)
				}
			}()
			hook(ee)
		}()
	}
}
