package session

import (
	"math"

	"github.com/scsess/scsess/internal/errors"
	"github.com/scsess/scsess/internal/timeline"
)

// Target describes where a new or moved node attaches in the tree,
// wrapping the add-action algebra's Action (spec.md §4.2.1).
type Target = timeline.Action

// ToHead targets the head of group's child list.
func ToHead(group timeline.NodeID) Target { return Target{Kind: timeline.AddToHead, Target: group} }

// ToTail targets the tail of group's child list.
func ToTail(group timeline.NodeID) Target { return Target{Kind: timeline.AddToTail, Target: group} }

// Before targets the position immediately before ref.
func Before(ref timeline.NodeID) Target { return Target{Kind: timeline.AddBefore, Target: ref} }

// After targets the position immediately after ref.
func After(ref timeline.NodeID) Target { return Target{Kind: timeline.AddAfter, Target: ref} }

// ReplacingNode targets ref's position, removing ref.
func ReplacingNode(ref timeline.NodeID) Target { return Target{Kind: timeline.ReplaceNode, Target: ref} }

func (s *Session) recordTransition(offset timeline.Offset, node timeline.NodeID, action Target) error {
	st := s.store.FindAt(offset, true)
	st.Transitions.Set(node, action)
	return s.propagateFrom(offset)
}

// AddGroup creates a new Group node at offset, attaching it per where.
func (s *Session) AddGroup(offset timeline.Offset, where Target) (*Node, error) {
	id := s.allocateNodeID()
	n := &Node{
		SessionID:   id,
		Kind:        GroupNode,
		StartOffset: offset,
		Duration:    math.Inf(1),
		session:     s,
	}
	s.nodes[id] = n
	if err := s.recordTransition(offset, id, where); err != nil {
		delete(s.nodes, id)
		return nil, err
	}
	if err := s.markEntityOffset(n.StopOffset()); err != nil {
		return nil, err
	}
	return n, nil
}

// AddSynth creates a new Synth node bound to sd, starting at offset
// for duration seconds (math.Inf(1) for an unbounded synth),
// attaching it per where.
func (s *Session) AddSynth(offset timeline.Offset, sd Synthdef, duration float64, where Target) (*Node, error) {
	id := s.allocateNodeID()
	n := &Node{
		SessionID:   id,
		Kind:        SynthNode,
		Synthdef:    sd,
		StartOffset: offset,
		Duration:    duration,
		session:     s,
	}
	s.nodes[id] = n
	if err := s.recordTransition(offset, id, where); err != nil {
		delete(s.nodes, id)
		return nil, err
	}
	if err := s.markEntityOffset(n.StopOffset()); err != nil {
		return nil, err
	}
	return n, nil
}

// markEntityOffset materializes a state at offset (if none exists yet)
// and propagates through it, so the compiler's offset index
// (internal/planner.collectOffsets) sees it even though nothing ever
// recorded a transition there — buffer and bus lifetimes/events carry no
// transitions of their own, so their start/stop/event offsets would
// otherwise never surface a bundle. A non-finite offset (unbounded
// duration) has nothing to materialize.
func (s *Session) markEntityOffset(offset float64) error {
	if math.IsInf(offset, 1) {
		return nil
	}
	o := timeline.Offset(offset)
	s.store.FindAt(o, true)
	return s.propagateFrom(o)
}

// MoveNode re-attaches an existing node at offset per where.
func (s *Session) MoveNode(offset timeline.Offset, node timeline.NodeID, where Target) error {
	if _, ok := s.nodes[node]; !ok {
		return errors.UnknownEntity("MoveNode: unknown node")
	}
	return s.recordTransition(offset, node, where)
}

// FreeNode schedules node for removal at offset.
func (s *Session) FreeNode(offset timeline.Offset, node timeline.NodeID) error {
	if _, ok := s.nodes[node]; !ok {
		return errors.UnknownEntity("FreeNode: unknown node")
	}
	return s.recordTransition(offset, node, Target{Kind: timeline.FreeNode})
}

// SetParam schedules a parameter value for node at offset.
func (s *Session) SetParam(node *Node, offset timeline.Offset, name string, value ParamValue) error {
	if node == nil {
		return errors.UnknownEntity("SetParam: nil node")
	}
	node.Params = append(node.Params, ParamEvent{Offset: offset, Name: name, Value: value})
	return nil
}

// AddBuffer allocates a new empty buffer.
func (s *Session) AddBuffer(offset timeline.Offset, channelCount, frameCount int, duration float64) (*Buffer, error) {
	id := s.allocateBufferID()
	b := &Buffer{
		SessionID:    id,
		ChannelCount: channelCount,
		FrameCount:   frameCount,
		StartOffset:  offset,
		Duration:     duration,
		session:      s,
	}
	s.buffers[id] = b
	if err := s.markEntityOffset(float64(offset)); err != nil {
		return nil, err
	}
	if err := s.markEntityOffset(b.StopOffset()); err != nil {
		return nil, err
	}
	return b, nil
}

// AddBufferFromFile allocates a buffer sized from path via the
// session's SoundFileProber collaborator (SPEC_FULL.md §4.9).
func (s *Session) AddBufferFromFile(offset timeline.Offset, path string, startingFrame int, duration float64) (*Buffer, error) {
	if s.prober == nil {
		return nil, errors.New(errNoProber).Category(errors.CategoryConfiguration).Build()
	}
	channels, frames, err := s.prober.Probe(path)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).Build()
	}
	b, err := s.AddBuffer(offset, channels, frames, duration)
	if err != nil {
		return nil, err
	}
	b.FilePath = path
	b.StartingFrame = startingFrame
	return b, nil
}

// FreeBuffer marks a buffer's duration so it stops at offset. Buffers
// have no transitions of their own (spec.md §3); their lifecycle is
// purely start_offset + duration, same as nodes.
func (s *Session) FreeBuffer(buf *Buffer, offset timeline.Offset) error {
	if buf == nil {
		return errors.UnknownEntity("FreeBuffer: nil buffer")
	}
	buf.Duration = float64(offset) - float64(buf.StartOffset)
	return s.markEntityOffset(buf.StopOffset())
}

// AddBufferEvent appends a post-allocation request to buf's event table.
func (s *Session) AddBufferEvent(buf *Buffer, ev BufferEvent) error {
	if buf == nil {
		return errors.UnknownEntity("AddBufferEvent: nil buffer")
	}
	buf.Events = append(buf.Events, ev)
	return s.markEntityOffset(float64(ev.Offset))
}

// AddBus allocates a new bus of the given rate.
func (s *Session) AddBus(rate CalculationRate) (*Bus, error) {
	id := s.allocateBusID()
	b := &Bus{SessionID: id, Rate: rate, session: s}
	s.buses[id] = b
	return b, nil
}

// WriteControlBus schedules a control-rate value write at offset.
// Writing to an audio-rate bus is a caller error (audio buses carry no
// scalar value stream, per spec.md §3).
func (s *Session) WriteControlBus(bus *Bus, offset timeline.Offset, value float64) error {
	if bus == nil {
		return errors.UnknownEntity("WriteControlBus: nil bus")
	}
	if bus.Rate != Control {
		return errors.UnknownEntity("WriteControlBus: bus is not control-rate")
	}
	bus.Events = append(bus.Events, BusEvent{Offset: offset, Value: value})
	return s.markEntityOffset(float64(offset))
}

var errNoProber = plainError("AddBufferFromFile requires a SoundFileProber (see WithSoundFileProber)")

type plainError string

func (e plainError) Error() string { return string(e) }
