package session

import (
	"container/heap"
	"log/slog"
	"math"

	"github.com/scsess/scsess/internal/errors"
	"github.com/scsess/scsess/internal/timeline"
)

// SoundFileProber is the small external-collaborator interface the
// session consumes to size a buffer from a source file, without
// importing internal/soundfile directly (spec.md §1's "sound-file
// metadata library" collaborator).
type SoundFileProber interface {
	Probe(path string) (channelCount, frameCount int, err error)
}

// Session owns the Timeline Store, the root node, and every node,
// buffer, and bus in the score. It is the sole authority over entity
// lifetime (spec.md §3's "Ownership & lifecycle").
type Session struct {
	store *timeline.Store
	root  *Node

	nodes   map[timeline.NodeID]*Node
	buffers map[timeline.BufferID]*Buffer
	buses   map[timeline.BusID]*Bus

	busGroups    []*BusGroup
	bufferGroups []*BufferGroup

	nextNodeID   timeline.NodeID
	nextBufferID timeline.BufferID
	nextBusID    timeline.BusID

	duration *float64

	guardCount     int
	pendingOffsets []timeline.Offset

	prober SoundFileProber
	logger *slog.Logger
}

// Option configures a new Session.
type Option func(*Session)

// WithSoundFileProber installs the collaborator used by
// AddBufferFromFile to size a buffer from its source file.
func WithSoundFileProber(p SoundFileProber) Option {
	return func(s *Session) { s.prober = p }
}

// WithLogger installs a structured logger; defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// InitialNodeID is the first session_id assigned to a non-root node
// (spec.md §3, §9: "nodes start at 1000").
const InitialNodeID timeline.NodeID = 1000

// NewSession returns an empty session with a root group at NegInf.
func NewSession(opts ...Option) *Session {
	s := &Session{
		store:        timeline.NewStore(),
		nodes:        make(map[timeline.NodeID]*Node),
		buffers:      make(map[timeline.BufferID]*Buffer),
		buses:        make(map[timeline.BusID]*Bus),
		nextNodeID:   InitialNodeID,
		nextBufferID: 0,
		nextBusID:    0,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.root = &Node{
		SessionID:   timeline.RootNodeID,
		Kind:        GroupNode,
		StartOffset: timeline.NegInf,
		Duration:    math.Inf(1),
		session:     s,
	}
	s.nodes[timeline.RootNodeID] = s.root

	return s
}

// Root returns the session's root group.
func (s *Session) Root() *Node { return s.root }

// Store returns the underlying timeline store (used by idmap/settings/planner).
func (s *Session) Store() *timeline.Store { return s.store }

// Node looks up a node by session id.
func (s *Session) Node(id timeline.NodeID) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Buffer looks up a buffer by session id.
func (s *Session) Buffer(id timeline.BufferID) (*Buffer, bool) {
	b, ok := s.buffers[id]
	return b, ok
}

// Bus looks up a bus by session id.
func (s *Session) Bus(id timeline.BusID) (*Bus, bool) {
	b, ok := s.buses[id]
	return b, ok
}

// Nodes returns every node in the session, including the root.
func (s *Session) Nodes() map[timeline.NodeID]*Node { return s.nodes }

// Buffers returns every buffer in the session.
func (s *Session) Buffers() map[timeline.BufferID]*Buffer { return s.buffers }

// Buses returns every bus in the session.
func (s *Session) Buses() map[timeline.BusID]*Bus { return s.buses }

// SetDuration overrides the session's intrinsic duration.
func (s *Session) SetDuration(d float64) { s.duration = &d }

// IntrinsicDuration returns the session's explicit duration override,
// if one was set via SetDuration.
func (s *Session) IntrinsicDuration() (float64, bool) {
	if s.duration == nil {
		return 0, false
	}
	return *s.duration, true
}

// ResolveDuration applies spec.md §4.5's precondition: either the
// session's intrinsic duration is finite, or a positive finite
// override is supplied.
func (s *Session) ResolveDuration(override float64, overrideGiven bool) (float64, error) {
	if overrideGiven {
		if override <= 0 || math.IsInf(override, 0) || math.IsNaN(override) {
			return 0, errors.InvalidDuration("duration override must be positive and finite")
		}
		return override, nil
	}
	d, ok := s.IntrinsicDuration()
	if !ok || math.IsInf(d, 0) || d <= 0 {
		return 0, errors.UnboundedSession("session has unbounded duration and no duration override was supplied")
	}
	return d, nil
}

// SuppressPropagation enters the process-scoped do-not-propagate guard
// (spec.md §5) and returns a release function; it is reentrant and
// deferrable. Releasing the outermost acquisition drains any offsets
// queued while the guard was held.
func (s *Session) SuppressPropagation() func() error {
	s.guardCount++
	released := false
	return func() error {
		if released {
			return nil
		}
		released = true
		s.guardCount--
		if s.guardCount < 0 {
			s.guardCount = 0
		}
		if s.guardCount == 0 && len(s.pendingOffsets) > 0 {
			offsets := s.pendingOffsets
			s.pendingOffsets = nil
			return s.applyTransitions(offsets)
		}
		return nil
	}
}

func (s *Session) allocateNodeID() timeline.NodeID {
	id := s.nextNodeID
	s.nextNodeID++
	return id
}

func (s *Session) allocateBufferID() timeline.BufferID {
	id := s.nextBufferID
	s.nextBufferID++
	return id
}

func (s *Session) allocateBusID() timeline.BusID {
	id := s.nextBusID
	s.nextBusID++
	return id
}

func (s *Session) propagateFrom(offset timeline.Offset) error {
	if s.guardCount > 0 {
		s.pendingOffsets = append(s.pendingOffsets, offset)
		return nil
	}
	return s.applyTransitions([]timeline.Offset{offset})
}

// offsetHeap is a min-heap of offsets for the propagation queue
// (spec.md §4.2.2, §9).
type offsetHeap []timeline.Offset

func (h offsetHeap) Len() int            { return len(h) }
func (h offsetHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h offsetHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *offsetHeap) Push(x interface{}) { *h = append(*h, x.(timeline.Offset)) }
func (h *offsetHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// applyTransitions folds transitions forward through every reachable
// state starting from offsets, chaining to subsequent states whenever
// a fold changes a state's tree (spec.md §4.2.2).
func (s *Session) applyTransitions(offsets []timeline.Offset) error {
	pq := &offsetHeap{}
	heap.Init(pq)
	seen := make(map[timeline.Offset]bool)
	for _, o := range offsets {
		if !seen[o] {
			seen[o] = true
			heap.Push(pq, o)
		}
	}

	var lastDequeued *timeline.Offset
	for pq.Len() > 0 {
		o := heap.Pop(pq).(timeline.Offset)
		if lastDequeued != nil && *lastDequeued == o {
			continue
		}
		cur := o
		lastDequeued = &cur

		st := s.store.FindAt(o, false)
		if st == nil {
			continue
		}
		prev := s.store.FindBefore(o, true)
		if prev == nil {
			return errors.StateStructureViolation("no resolved predecessor state found during propagation")
		}

		stopping := s.nodesStoppingAt(o)
		newTree, err := foldTree(prev.Tree, st, stopping)
		if err != nil {
			return err
		}

		if !st.Tree.Resolved || !st.Tree.Equal(newTree) {
			st.Tree = newTree
			if next, ok := s.store.OffsetAfter(o); ok {
				heap.Push(pq, next)
			}
		}
	}
	return nil
}

// ApplyTransitions re-runs propagation for the given offsets; exposed
// for tests and for idempotence checks (spec.md §8: "apply_transitions
// is idempotent").
func (s *Session) ApplyTransitions(offsets []timeline.Offset) error {
	return s.applyTransitions(offsets)
}
