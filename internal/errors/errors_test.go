package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFastPathNoTelemetry(t *testing.T) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Err.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestBuilderCarriesExplicitFields(t *testing.T) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	ee := New(fmt.Errorf("boom")).
		Component("planner").
		Category(CategoryAllocatorExhausted).
		Entity("bus", 1003).
		Offset(5.0).
		Build()

	assert.Equal(t, "planner", ee.GetComponent())
	assert.Equal(t, CategoryAllocatorExhausted, ee.Category)
	assert.Equal(t, 1003, ee.GetContext()["entity_session_id"])
	assert.InDelta(t, 5.0, ee.GetContext()["offset"], 0)
}

func TestConvenienceConstructorsUseDocumentedCategories(t *testing.T) {
	cases := []struct {
		build func(string) *EnhancedError
		want  ErrorCategory
	}{
		{UnboundedSession, CategoryUnboundedSession},
		{InvalidDuration, CategoryInvalidDuration},
		{UnknownEntity, CategoryUnknownEntity},
		{StateStructureViolation, CategoryStateStructureViolation},
		{AllocatorExhausted, CategoryAllocatorExhausted},
		{RendererNotFound, CategoryRendererNotFound},
	}
	for _, tc := range cases {
		ee := tc.build("message")
		assert.Equal(t, tc.want, ee.Category)
		assert.True(t, IsCategory(ee, tc.want))
	}
}

func TestReportingDispatchesToHooksWhenNoPublisher(t *testing.T) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()
	defer ClearErrorHooks()

	var captured *EnhancedError
	AddErrorHook(func(ee *EnhancedError) { captured = ee })

	ee := New(fmt.Errorf("dispatched")).Category(CategoryValidation).Build()

	require.NotNil(t, captured)
	assert.Equal(t, ee, captured)
}

type stubReporter struct {
	enabled  bool
	reported []*EnhancedError
}

func (s *stubReporter) ReportError(ee *EnhancedError) { s.reported = append(s.reported, ee) }
func (s *stubReporter) IsEnabled() bool                { return s.enabled }

func TestReportingUsesReporterWhenEnabled(t *testing.T) {
	ClearErrorHooks()
	reporter := &stubReporter{enabled: true}
	SetTelemetryReporter(reporter)
	defer SetTelemetryReporter(nil)

	_ = New(fmt.Errorf("reported")).Build()

	require.Len(t, reporter.reported, 1)
	assert.Equal(t, "reported", reporter.reported[0].Err.Error())
}

func TestEnhancedErrorUnwrapAndIs(t *testing.T) {
	base := fmt.Errorf("base")
	ee := New(base).Category(CategoryFileIO).Build()

	assert.Equal(t, base, ee.Unwrap())

	other := New(fmt.Errorf("other")).Category(CategoryFileIO).Build()
	assert.True(t, ee.Is(other))

	different := New(fmt.Errorf("different")).Category(CategoryNetwork).Build()
	assert.False(t, ee.Is(different))
}
