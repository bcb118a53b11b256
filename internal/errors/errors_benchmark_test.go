package errors

import (
	"fmt"
	"testing"
)

// BenchmarkErrorCreationNoTelemetry tests error creation performance when telemetry is disabled
func BenchmarkErrorCreationNoTelemetry(b *testing.B) {
	// Ensure no telemetry or hooks are active
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).
			Component("test").
			Category(CategoryGeneric).
			Build()
	}
}

// BenchmarkErrorCreationNoTelemetryAutoDetect tests error creation with auto-detection when telemetry is disabled
func BenchmarkErrorCreationNoTelemetryAutoDetect(b *testing.B) {
	// Ensure no telemetry or hooks are active
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).Build() // Let it auto-detect component and category
	}
}

// BenchmarkErrorCreationWithContext tests error creation with context when telemetry is disabled
func BenchmarkErrorCreationWithContext(b *testing.B) {
	// Ensure no telemetry or hooks are active
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).
			Component("test").
			Category(CategoryGeneric).
			Context("operation", "test_op").
			Context("count", 42).
			Build()
	}
}

// mockReporter is a test telemetry reporter that records errors handed to it.
type mockReporter struct {
	enabled bool
	count   int
}

func (m *mockReporter) IsEnabled() bool { return m.enabled }

func (m *mockReporter) ReportError(err *EnhancedError) {
	m.count++
}

// BenchmarkErrorCreationWithTelemetry tests error creation when a reporter is active
func BenchmarkErrorCreationWithTelemetry(b *testing.B) {
	reporter := &mockReporter{enabled: true}
	SetTelemetryReporter(reporter)
	defer SetTelemetryReporter(nil)

	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error building bundle at offset 12.5")
		_ = New(err).
			Component("test").
			Category(CategoryNetwork).
			Context("offset", 12.5).
			Build()
	}
}
