package session

import (
	"github.com/scsess/scsess/internal/errors"
	"github.com/scsess/scsess/internal/timeline"
)

// AddBusGroup allocates size contiguous buses of rate as a BusGroup
// (spec.md §4.3: "BusGroups reserve a contiguous block...").
func (s *Session) AddBusGroup(rate CalculationRate, size int) (*BusGroup, error) {
	if size <= 0 {
		return nil, errors.InvalidDuration("bus group size must be positive")
	}
	groupID := s.allocateBusID()
	g := &BusGroup{SessionID: groupID, Rate: rate}
	buses := make([]*Bus, 0, size)
	buses = append(buses, &Bus{SessionID: groupID, Rate: rate, Group: g, session: s})
	s.buses[groupID] = buses[0]
	for i := 1; i < size; i++ {
		id := s.allocateBusID()
		b := &Bus{SessionID: id, Rate: rate, Group: g, session: s}
		s.buses[id] = b
		buses = append(buses, b)
	}
	g.Buses = buses
	s.busGroups = append(s.busGroups, g)
	return g, nil
}

// AddBufferGroup allocates size contiguous buffers as a BufferGroup
// (spec.md §4.3: "buffers in a BufferGroup receive contiguous IDs
// starting at the group's lead session_id").
func (s *Session) AddBufferGroup(offset timeline.Offset, channelCount, frameCount int, duration float64, size int) (*BufferGroup, error) {
	if size <= 0 {
		return nil, errors.InvalidDuration("buffer group size must be positive")
	}
	leadID := s.allocateBufferID()
	g := &BufferGroup{SessionID: leadID}
	lead := &Buffer{
		SessionID: leadID, ChannelCount: channelCount, FrameCount: frameCount,
		StartOffset: offset, Duration: duration, Group: g, session: s,
	}
	s.buffers[leadID] = lead
	buffers := []*Buffer{lead}
	for i := 1; i < size; i++ {
		id := s.allocateBufferID()
		b := &Buffer{
			SessionID: id, ChannelCount: channelCount, FrameCount: frameCount,
			StartOffset: offset, Duration: duration, Group: g, session: s,
		}
		s.buffers[id] = b
		buffers = append(buffers, b)
	}
	g.Buffers = buffers
	s.bufferGroups = append(s.bufferGroups, g)
	if err := s.markEntityOffset(float64(offset)); err != nil {
		return nil, err
	}
	if err := s.markEntityOffset(lead.StopOffset()); err != nil {
		return nil, err
	}
	return g, nil
}

// BusGroups returns every bus group in the session.
func (s *Session) BusGroups() []*BusGroup { return s.busGroups }

// BufferGroups returns every buffer group in the session.
func (s *Session) BufferGroups() []*BufferGroup { return s.bufferGroups }

// RemoveStateAt removes the state at offset if it carries no pending
// transitions and no node or buffer starts or stops exactly there
// (spec.md §4.1, §4.6: StateStructureViolation otherwise).
func (s *Session) RemoveStateAt(offset timeline.Offset) error {
	if len(s.nodesStartingAt(offset)) > 0 || len(s.nodesStoppingAt(offset)) > 0 ||
		len(s.buffersStartingAt(offset)) > 0 || len(s.buffersStoppingAt(offset)) > 0 {
		return errors.StateStructureViolation("cannot remove a state with node or buffer starts/stops")
	}
	return s.store.RemoveStateAt(offset)
}
