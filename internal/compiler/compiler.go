// Package compiler is the application-level entry point the cmd/
// subcommands call: load a score file, build it into a session, and run
// it through the request planner, publishing a CompileEvent for every
// attempt. This mirrors the teacher's internal/analysis package, which
// cmd/file.Command calls into rather than driving the audio pipeline
// from cmd/ itself.
package compiler

import (
	"fmt"
	"time"

	"github.com/scsess/scsess/internal/events"
	"github.com/scsess/scsess/internal/planner"
	"github.com/scsess/scsess/internal/score"
	"github.com/scsess/scsess/internal/session"
	"github.com/scsess/scsess/internal/soundfile"
)

// Result is the outcome of one CompileScore call.
type Result struct {
	Session *session.Session
	Bundles []planner.Bundle
}

// CompileScore reads scorePath, builds it into a Session (wired to a real
// SoundFileProber so file-backed buffers can be sized from disk), and
// compiles it to a bundle sequence. duration overrides the session's
// intrinsic duration when durationGiven is true (spec.md §4.6). A
// CompileEvent is published for both success and failure so registered
// compile-event consumers (internal/notify) observe every attempt.
func CompileScore(scorePath string, duration float64, durationGiven bool) (Result, error) {
	start := time.Now()

	doc, err := score.Load(scorePath)
	if err != nil {
		publish(scorePath, start, nil, err)
		return Result{}, fmt.Errorf("loading score: %w", err)
	}

	s, err := score.Build(doc, session.WithSoundFileProber(soundfile.NewProber()))
	if err != nil {
		publish(scorePath, start, nil, err)
		return Result{}, fmt.Errorf("building session: %w", err)
	}

	bundles, err := planner.ToBundles(s, planner.Options{
		Duration:      duration,
		DurationGiven: durationGiven,
	})
	publish(scorePath, start, bundles, err)
	if err != nil {
		return Result{}, fmt.Errorf("compiling session: %w", err)
	}

	return Result{Session: s, Bundles: bundles}, nil
}

func publish(scorePath string, start time.Time, bundles []planner.Bundle, err error) {
	outcome := events.CompileOutcomeSuccess
	if err != nil {
		outcome = events.CompileOutcomeFailure
	}
	events.PublishCompileEvent(events.NewCompileEvent(scorePath, outcome, time.Since(start), len(bundles), err))
}
