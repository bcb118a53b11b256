package idmap

import (
	"sort"

	"github.com/scsess/scsess/internal/session"
	"github.com/scsess/scsess/internal/timeline"
)

// Options parameterizes the bus ID space (spec.md §4.3): the hardware
// output and input bus channel counts reserved at the bottom of the
// audio-rate id space.
type Options struct {
	OutputBusCount int
	InputBusCount  int
}

// IDMap is the compile-time assignment of wire ids to every entity the
// protocol will reference (spec.md glossary: "ID Mapping").
type IDMap struct {
	Nodes   map[timeline.NodeID]int64
	Buses   map[timeline.BusID]int64
	Buffers map[timeline.BufferID]int64

	OutputBusCount int
	InputBusCount  int
}

// NodeWireID returns root's reserved id (0) or the node's own
// session_id (spec.md §9's Open Question resolution).
func (m *IDMap) NodeWireID(id timeline.NodeID) int64 {
	if id == timeline.RootNodeID {
		return 0
	}
	return int64(id)
}

// BusWireID returns the allocated wire id for a private bus.
func (m *IDMap) BusWireID(id timeline.BusID) int64 { return m.Buses[id] }

// BufferWireID returns the wire id for a buffer: its own session_id,
// whether grouped (already contiguous at creation, see
// internal/session's AddBufferGroup) or standalone (spec.md §4.3).
func (m *IDMap) BufferWireID(id timeline.BufferID) int64 { return int64(id) }

// Build assigns ids once per compile (spec.md §4.3).
func Build(s *session.Session, opts Options) (*IDMap, error) {
	m := &IDMap{
		Nodes:          make(map[timeline.NodeID]int64),
		Buses:          make(map[timeline.BusID]int64),
		Buffers:        make(map[timeline.BufferID]int64),
		OutputBusCount: opts.OutputBusCount,
		InputBusCount:  opts.InputBusCount,
	}

	for id := range s.Nodes() {
		m.Nodes[id] = m.NodeWireID(id)
	}
	for id := range s.Buffers() {
		m.Buffers[id] = m.BufferWireID(id)
	}

	audioHeap := opts.OutputBusCount + opts.InputBusCount
	audioAlloc := NewBlockAllocator(audioHeap)
	controlAlloc := NewBlockAllocator(0)

	assigned := make(map[timeline.BusID]bool)

	groups := append([]*session.BusGroup(nil), s.BusGroups()...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].SessionID < groups[j].SessionID })
	for _, g := range groups {
		alloc := controlAlloc
		if g.Rate == session.Audio {
			alloc = audioAlloc
		}
		start, err := alloc.Allocate(len(g.Buses))
		if err != nil {
			return nil, err
		}
		for i, bus := range g.Buses {
			m.Buses[bus.SessionID] = int64(start + i)
			assigned[bus.SessionID] = true
		}
	}

	var ungrouped []*session.Bus
	for id, bus := range s.Buses() {
		if !assigned[id] {
			ungrouped = append(ungrouped, bus)
		}
	}
	sort.Slice(ungrouped, func(i, j int) bool { return ungrouped[i].SessionID < ungrouped[j].SessionID })
	for _, bus := range ungrouped {
		alloc := controlAlloc
		if bus.Rate == session.Audio {
			alloc = audioAlloc
		}
		id, err := alloc.Allocate(1)
		if err != nil {
			return nil, err
		}
		m.Buses[bus.SessionID] = int64(id)
	}

	return m, nil
}
