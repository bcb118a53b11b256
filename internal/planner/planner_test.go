package planner

import (
	"bytes"
	"math"
	"testing"

	"github.com/scsess/scsess/internal/osc"
	"github.com/scsess/scsess/internal/session"
	"github.com/scsess/scsess/internal/timeline"
)

func durationSynthdef(name string) *session.StaticSynthdef {
	return session.NewStaticSynthdef(name, []byte{0x01, 0x02}, []string{"freq", "duration", "gate"})
}

func plainSynthdef(name string) *session.StaticSynthdef {
	return session.NewStaticSynthdef(name, []byte{0x03}, []string{"freq"})
}

func TestToBundlesProducesAscendingTimestamps(t *testing.T) {
	s := session.NewSession()
	sd := plainSynthdef("sine")
	if _, err := s.AddSynth(0.0, sd, 5, session.ToTail(timeline.RootNodeID)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddSynth(2.0, sd, 5, session.ToTail(timeline.RootNodeID)); err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 10, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(bundles); i++ {
		if bundles[i].Offset <= bundles[i-1].Offset {
			t.Fatalf("bundle %d offset %v not strictly greater than previous %v", i, bundles[i].Offset, bundles[i-1].Offset)
		}
	}
}

func TestToBundlesTerminatorIsLastMessageOfLastBundle(t *testing.T) {
	s := session.NewSession()
	sd := plainSynthdef("sine")
	if _, err := s.AddSynth(0.0, sd, 3, session.ToTail(timeline.RootNodeID)); err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 5, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	last := bundles[len(bundles)-1]
	if len(last.Messages) == 0 || !last.Messages[len(last.Messages)-1].IsTerminator() {
		t.Fatal("expected the final bundle's last message to be the Terminator")
	}
	for _, b := range bundles[:len(bundles)-1] {
		for _, m := range b.Messages {
			if m.IsTerminator() {
				t.Error("Terminator appeared before the final bundle")
			}
		}
	}
}

func TestToBundlesEmitsSynthNewAtNodeStartOffset(t *testing.T) {
	s := session.NewSession()
	sd := plainSynthdef("sine")
	n, err := s.AddSynth(1.0, sd, 4, session.ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 10, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, b := range bundles {
		if b.Offset != 1.0 {
			continue
		}
		for _, m := range b.Messages {
			if m.Address == "/s_new" && m.Args[1].Int == int32(n.SessionID) {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected /s_new for node %v at its start offset", n.SessionID)
	}
}

func TestToBundlesEmitsNodeFreeAtStopOffset(t *testing.T) {
	s := session.NewSession()
	sd := plainSynthdef("sine")
	n, err := s.AddSynth(0.0, sd, 3, session.ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 10, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, b := range bundles {
		if b.Offset != 3.0 {
			continue
		}
		for _, m := range b.Messages {
			if m.Address != "/n_free" {
				continue
			}
			for _, a := range m.Args {
				if a.Int == int32(n.SessionID) {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected /n_free for node %v at its stop offset", n.SessionID)
	}
}

func TestToBundlesGatedNodeReceivesGateZeroInsteadOfFree(t *testing.T) {
	s := session.NewSession()
	sd := durationSynthdef("pad")
	n, err := s.AddSynth(0.0, sd, 4, session.ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 10, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	var sawGateSet, sawFree bool
	for _, b := range bundles {
		if b.Offset != 4.0 {
			continue
		}
		for _, m := range b.Messages {
			if m.Address == "/n_set" && m.Args[0].Int == int32(n.SessionID) {
				sawGateSet = true
			}
			if m.Address == "/n_free" {
				for _, a := range m.Args {
					if a.Int == int32(n.SessionID) {
						sawFree = true
					}
				}
			}
		}
	}
	if !sawGateSet {
		t.Error("expected a gated node to receive /n_set gate 0 at its stop offset")
	}
	if sawFree {
		t.Error("a gated node must not also receive /n_free")
	}
}

func TestToBundlesComputesDurationParamFromStopAndSessionDuration(t *testing.T) {
	s := session.NewSession()
	sd := durationSynthdef("pad")
	n, err := s.AddSynth(2.0, sd, 100, session.ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 8, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	wantDuration := float32(8 - 2) // session duration 8 caps the node's stop at 102
	found := false
	for _, b := range bundles {
		if b.Offset != 2.0 {
			continue
		}
		for _, m := range b.Messages {
			if m.Address != "/s_new" || m.Args[1].Int != int32(n.SessionID) {
				continue
			}
			for i := 0; i+1 < len(m.Args); i++ {
				if m.Args[i].Kind == osc.ArgString && m.Args[i].Str == "duration" {
					if m.Args[i+1].Float != wantDuration {
						t.Errorf("duration arg = %v, want %v", m.Args[i+1].Float, wantDuration)
					}
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatal("expected a duration kv pair bundled into /s_new")
	}
}

func TestToBundlesBufferCloseIsEmittedOnlyWhenOpen(t *testing.T) {
	s := session.NewSession()
	buf, err := s.AddBuffer(0.0, 1, 1024, math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddBufferEvent(buf, session.BufferEvent{Offset: 0.0, Kind: session.BufferEventZero}); err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 5, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	for _, b := range bundles {
		for _, m := range b.Messages {
			if m.Address == "/b_close" {
				t.Error("b_close should not be emitted for a buffer that was never opened via read/write")
			}
		}
	}
}

func TestToBundlesRequiresResolvableDuration(t *testing.T) {
	s := session.NewSession()
	if _, err := ToBundles(s, Options{}); err == nil {
		t.Fatal("expected an error compiling an unbounded session with no duration override")
	}
}

func TestToBundlesControlBusWriteOffsetIsMaterialized(t *testing.T) {
	s := session.NewSession()
	busA, err := s.AddBus(session.Control)
	if err != nil {
		t.Fatal(err)
	}
	busB, err := s.AddBus(session.Control)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteControlBus(busB, 1.0, 1.0); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteControlBus(busA, 1.0, 0.5); err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 2, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, b := range bundles {
		if b.Offset != 1.0 {
			continue
		}
		for _, m := range b.Messages {
			if m.Address != "/c_set" {
				continue
			}
			found = true
			want := []int32{int32(busA.SessionID), int32(busB.SessionID)}
			if len(m.Args) != 4 || m.Args[0].Int != want[0] || m.Args[2].Int != want[1] {
				t.Errorf("/c_set args = %+v, want bus ids sorted %v", m.Args, want)
			}
		}
	}
	if !found {
		t.Fatal("expected a /c_set bundle at the write offset 1.0 (was silently dropped from collectOffsets)")
	}
}

func TestToBundlesBufferLifecycleOffsetsAreMaterialized(t *testing.T) {
	s := session.NewSession()
	buf, err := s.AddBuffer(1.0, 2, 32768, 3.0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddBufferEvent(buf, session.BufferEvent{
		Offset: 1.0, Kind: session.BufferEventZero,
	}); err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 10, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	offsets := make(map[float64]bool)
	for _, b := range bundles {
		offsets[b.Offset] = true
	}
	if !offsets[1.0] {
		t.Error("expected a bundle at the buffer's start offset 1.0")
	}
	if !offsets[4.0] {
		t.Error("expected a bundle at the buffer's stop offset 4.0 (start 1.0 + duration 3.0)")
	}

	var sawAlloc, sawFree bool
	for _, b := range bundles {
		for _, m := range b.Messages {
			if b.Offset == 1.0 && m.Address == "/b_alloc" {
				sawAlloc = true
			}
			if b.Offset == 4.0 && m.Address == "/b_free" {
				sawFree = true
			}
		}
	}
	if !sawAlloc {
		t.Error("expected /b_alloc at the buffer start offset")
	}
	if !sawFree {
		t.Error("expected /b_free at the buffer stop offset")
	}
}

func TestToBundlesTerminatorClampsToDuration(t *testing.T) {
	s := session.NewSession()
	sd := plainSynthdef("sine")
	// This node's stop offset (12.0) lies past the requested duration.
	if _, err := s.AddSynth(0.0, sd, 12, session.ToTail(timeline.RootNodeID)); err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 10, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(bundles) == 0 {
		t.Fatal("expected at least one bundle")
	}
	last := bundles[len(bundles)-1]
	if last.Offset != 10.0 {
		t.Errorf("last bundle offset = %v, want 10.0 (offsets beyond duration must be clamped)", last.Offset)
	}
	for _, b := range bundles {
		if b.Offset > 10.0 {
			t.Errorf("bundle emitted past duration: offset = %v", b.Offset)
		}
	}
}

func TestBundleEncodeRoundTripsThroughFraming(t *testing.T) {
	s := session.NewSession()
	sd := plainSynthdef("sine")
	if _, err := s.AddSynth(0.0, sd, 2, session.ToTail(timeline.RootNodeID)); err != nil {
		t.Fatal(err)
	}

	bundles, err := ToBundles(s, Options{Duration: 4, DurationGiven: true})
	if err != nil {
		t.Fatal(err)
	}

	for _, b := range bundles {
		framed := osc.FrameBundle(b.Encode())
		if len(framed) < 4 {
			t.Fatal("framed bundle too short to carry a size prefix")
		}
		if !bytes.Contains(framed, []byte("#bundle")) {
			t.Error("framed bundle should contain the #bundle header")
		}
	}
}
