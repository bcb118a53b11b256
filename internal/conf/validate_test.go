package conf

import (
	stderrors "errors"
	"testing"

	"github.com/scsess/scsess/internal/errors"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Compile.DefaultSampleRate = 44100
	s.Render.Binary = "scsynth"
	s.Render.HeaderFormat = "aiff"
	s.Render.SampleFormat = "int24"
	s.Logging.Level = "info"
	return s
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(validSettings()); err != nil {
		t.Fatalf("Validate() on default-shaped settings = %v, want nil", err)
	}
}

func TestValidateRejectsBadSampleRate(t *testing.T) {
	s := validSettings()
	s.Compile.DefaultSampleRate = 0
	if err := Validate(s); err == nil {
		t.Fatal("Validate() = nil, want error for non-positive sample rate")
	}
}

func TestValidateRejectsUnknownHeaderFormat(t *testing.T) {
	s := validSettings()
	s.Render.HeaderFormat = "mp3"
	if err := Validate(s); err == nil {
		t.Fatal("Validate() = nil, want error for unrecognized header format")
	}
}

func TestValidateRejectsUnknownSampleFormat(t *testing.T) {
	s := validSettings()
	s.Render.SampleFormat = "int9000"
	if err := Validate(s); err == nil {
		t.Fatal("Validate() = nil, want error for unrecognized sample format")
	}
}

func TestValidateRejectsEmptyRenderBinary(t *testing.T) {
	s := validSettings()
	s.Render.Binary = ""
	if err := Validate(s); err == nil {
		t.Fatal("Validate() = nil, want error for empty render binary")
	}
}

func TestValidateRequiresDSNWhenTelemetryEnabled(t *testing.T) {
	s := validSettings()
	s.Telemetry.Enabled = true
	if err := Validate(s); err == nil {
		t.Fatal("Validate() = nil, want error for telemetry enabled without DSN")
	}
	s.Telemetry.DSN = "https://example.invalid/1"
	if err := Validate(s); err != nil {
		t.Fatalf("Validate() = %v, want nil once DSN is set", err)
	}
}

func TestValidateRequiresBrokerWhenMQTTEnabled(t *testing.T) {
	s := validSettings()
	s.Notify.MQTT.Enabled = true
	if err := Validate(s); err == nil {
		t.Fatal("Validate() = nil, want error for MQTT enabled without broker")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	s := validSettings()
	s.Logging.Level = "verbose"
	if err := Validate(s); err == nil {
		t.Fatal("Validate() = nil, want error for unrecognized log level")
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	s := validSettings()
	s.Compile.DefaultSampleRate = -1
	s.Render.Binary = ""
	err := Validate(s)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	var ee *errors.EnhancedError
	if !stderrors.As(err, &ee) {
		t.Fatalf("expected *errors.EnhancedError, got %T: %v", err, err)
	}
	ve, ok := ee.Err.(ValidationError)
	if !ok {
		t.Fatalf("expected underlying ValidationError, got %T", ee.Err)
	}
	if len(ve.Errors) < 2 {
		t.Errorf("expected at least 2 collected errors, got %d: %v", len(ve.Errors), ve.Errors)
	}
}
