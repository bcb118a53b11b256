package session

import (
	"testing"

	"github.com/scsess/scsess/internal/timeline"
)

func newTestSynthdef(name string) *StaticSynthdef {
	return NewStaticSynthdef(name, []byte{0x01, 0x02}, []string{"freq", "amp"})
}

func TestAddSynthAttachesToRootHead(t *testing.T) {
	s := NewSession()
	sd := newTestSynthdef("sine")

	n, err := s.AddSynth(0.0, sd, 10, ToHead(timeline.RootNodeID))
	if err != nil {
		t.Fatalf("AddSynth() error = %v", err)
	}

	st := s.Store().FindAt(0.0, false)
	if st == nil || !st.Tree.Resolved {
		t.Fatal("expected a resolved state at 0.0 after mutation")
	}
	children := st.Tree.Children[timeline.RootNodeID]
	if len(children) != 1 || children[0] != n.SessionID {
		t.Fatalf("root children = %v, want [%v]", children, n.SessionID)
	}
	if st.Tree.Parents[n.SessionID] != timeline.RootNodeID {
		t.Errorf("parent of synth = %v, want root", st.Tree.Parents[n.SessionID])
	}
}

func TestTwoParallelSynthsOneOverlapping(t *testing.T) {
	s := NewSession()
	sd := newTestSynthdef("sine")

	a, err := s.AddSynth(0.0, sd, 10, ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.AddSynth(0.0, sd, 15, ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}
	c, err := s.AddSynth(5.0, sd, 10, ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}

	st0 := s.Store().FindAt(0.0, false)
	if got := st0.Tree.Children[timeline.RootNodeID]; len(got) != 2 || got[0] != a.SessionID || got[1] != b.SessionID {
		t.Fatalf("state@0.0 children = %v, want [%v %v]", got, a.SessionID, b.SessionID)
	}

	// state@5.0 should have the tree propagated from 0.0 plus c appended.
	st5 := s.Store().FindAt(5.0, false)
	got := st5.Tree.Children[timeline.RootNodeID]
	if len(got) != 3 || got[2] != c.SessionID {
		t.Fatalf("state@5.0 children = %v, want [%v %v %v]", got, a.SessionID, b.SessionID, c.SessionID)
	}

	if a.StopOffset() != 10 || b.StopOffset() != 15 || c.StopOffset() != 15 {
		t.Errorf("stop offsets = %v %v %v, want 10 15 15", a.StopOffset(), b.StopOffset(), c.StopOffset())
	}
}

func TestNodeReparentingAddBefore(t *testing.T) {
	s := NewSession()
	g, err := s.AddGroup(0.0, ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}
	sd := newTestSynthdef("sine")
	s1, err := s.AddSynth(0.0, sd, 20, ToTail(g.SessionID))
	if err != nil {
		t.Fatal(err)
	}
	s2, err := s.AddSynth(0.0, sd, 20, ToTail(g.SessionID))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.MoveNode(5.0, s2.SessionID, Before(s1.SessionID)); err != nil {
		t.Fatalf("MoveNode() error = %v", err)
	}

	st := s.Store().FindAt(5.0, false)
	got := st.Tree.Children[g.SessionID]
	if len(got) != 2 || got[0] != s2.SessionID || got[1] != s1.SessionID {
		t.Fatalf("group children at 5.0 = %v, want [%v %v]", got, s2.SessionID, s1.SessionID)
	}
}

func TestFreeNodeRemovesFromTreeAtOffset(t *testing.T) {
	s := NewSession()
	sd := newTestSynthdef("sine")
	n, err := s.AddSynth(0.0, sd, 10, ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.FreeNode(10.0, n.SessionID); err != nil {
		t.Fatal(err)
	}

	st10 := s.Store().FindAt(10.0, false)
	for _, c := range st10.Tree.Children[timeline.RootNodeID] {
		if c == n.SessionID {
			t.Fatalf("expected node %v to be absent from the tree at its stop offset", n.SessionID)
		}
	}
}

func TestApplyTransitionsIsIdempotent(t *testing.T) {
	s := NewSession()
	sd := newTestSynthdef("sine")
	if _, err := s.AddSynth(0.0, sd, 10, ToTail(timeline.RootNodeID)); err != nil {
		t.Fatal(err)
	}

	before := s.Store().FindAt(0.0, false).Tree
	if err := s.ApplyTransitions([]timeline.Offset{0.0}); err != nil {
		t.Fatal(err)
	}
	after := s.Store().FindAt(0.0, false).Tree
	if !before.Equal(after) {
		t.Error("re-applying transitions changed an already-resolved tree")
	}
}

func TestMoveNodeUnknownNodeErrors(t *testing.T) {
	s := NewSession()
	if err := s.MoveNode(0.0, 9999, ToTail(timeline.RootNodeID)); err == nil {
		t.Fatal("expected an error for an unknown node")
	}
}

func TestSuppressPropagationDefersUntilRelease(t *testing.T) {
	s := NewSession()
	sd := newTestSynthdef("sine")

	release := s.SuppressPropagation()
	n, err := s.AddSynth(0.0, sd, 10, ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}

	st := s.Store().FindAt(0.0, false)
	if st.Tree.Resolved {
		t.Fatal("tree should not resolve while propagation is suppressed")
	}

	if err := release(); err != nil {
		t.Fatalf("release() error = %v", err)
	}
	st = s.Store().FindAt(0.0, false)
	if !st.Tree.Resolved {
		t.Fatal("tree should resolve once the guard is released")
	}
	if got := st.Tree.Children[timeline.RootNodeID]; len(got) != 1 || got[0] != n.SessionID {
		t.Fatalf("root children = %v, want [%v]", got, n.SessionID)
	}
}

func TestRemoveStateAtRejectsStateWithLiveEntities(t *testing.T) {
	s := NewSession()
	sd := newTestSynthdef("sine")
	if _, err := s.AddSynth(3.0, sd, 5, ToTail(timeline.RootNodeID)); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveStateAt(3.0); err == nil {
		t.Fatal("expected RemoveStateAt to reject a state with a node starting there")
	}
}

func TestAddSynthMaterializesStopOffsetState(t *testing.T) {
	s := NewSession()
	sd := newTestSynthdef("sine")
	n, err := s.AddSynth(0.0, sd, 3, ToTail(timeline.RootNodeID))
	if err != nil {
		t.Fatal(err)
	}

	st := s.Store().FindAt(3.0, false)
	if st == nil {
		t.Fatal("expected a state materialized at the node's stop offset (3.0)")
	}
	if !st.Tree.Resolved {
		t.Fatal("the stop-offset state should be resolved by propagation, not left sparse")
	}
	if _, stillPresent := st.Tree.Parents[n.SessionID]; stillPresent {
		t.Fatalf("node %v should have been folded out of the tree at its stop offset", n.SessionID)
	}
}

func TestAddBufferMaterializesStartAndStopOffsetStates(t *testing.T) {
	s := NewSession()
	buf, err := s.AddBuffer(2.0, 1, 1024, 4.0)
	if err != nil {
		t.Fatal(err)
	}
	if s.Store().FindAt(2.0, false) == nil {
		t.Fatal("expected a state materialized at the buffer's start offset (2.0)")
	}
	if s.Store().FindAt(6.0, false) == nil {
		t.Fatal("expected a state materialized at the buffer's stop offset (6.0)")
	}
	if buf.StopOffset() != 6.0 {
		t.Fatalf("buf.StopOffset() = %v, want 6.0", buf.StopOffset())
	}
}

func TestWriteControlBusMaterializesWriteOffsetState(t *testing.T) {
	s := NewSession()
	bus, err := s.AddBus(Control)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteControlBus(bus, 1.5, 0.5); err != nil {
		t.Fatal(err)
	}
	if s.Store().FindAt(1.5, false) == nil {
		t.Fatal("expected a state materialized at the control-bus write offset (1.5)")
	}
}
