// Package settings implements the Settings Collector (C4): decoding
// buffer events and bus writes into concrete, id-mapped request
// payloads, and snapshotting per-node parameter values due at a given
// offset (spec.md §4.4).
package settings

import (
	"sort"

	"github.com/scsess/scsess/internal/idmap"
	"github.com/scsess/scsess/internal/session"
	"github.com/scsess/scsess/internal/timeline"
)

// BufferSetting is a single buffer event with every entity reference
// substituted by its mapped wire id.
type BufferSetting struct {
	Offset             timeline.Offset
	BufferID           int64
	Kind               session.BufferEventKind
	LeaveOpen          bool
	Path               string
	StartFrame         int
	FrameCount         int
	Channels           []int
	Values             []float64
	SourceBufferID     int64
	GeneratorName      string
}

// BusSetting is a single control-bus value write with its bus
// reference substituted by its mapped wire id.
type BusSetting struct {
	Offset timeline.Offset
	BusID  int64
	Value  float64
}

// NodeSetting is a single node parameter value due at an offset,
// classified into the request class the planner needs (spec.md §4.4).
type NodeSetting struct {
	Offset timeline.Offset
	NodeID int64
	Name   string
	Kind   session.ParamKind
	Scalar float64
	BusID  int64
}

// CollectBufferSettings decodes every buffer's event stream into
// BufferSettings, grouped by offset.
func CollectBufferSettings(s *session.Session, m *idmap.IDMap) map[timeline.Offset][]BufferSetting {
	out := make(map[timeline.Offset][]BufferSetting)
	for id, buf := range s.Buffers() {
		wireID := m.BufferWireID(id)
		for _, ev := range buf.Events {
			bs := BufferSetting{
				Offset:        ev.Offset,
				BufferID:      wireID,
				Kind:          ev.Kind,
				LeaveOpen:     ev.LeaveOpen,
				Path:          ev.Path,
				StartFrame:    ev.StartFrame,
				FrameCount:    ev.FrameCount,
				Channels:      ev.Channels,
				Values:        ev.Values,
				GeneratorName: ev.GeneratorName,
			}
			if ev.Kind == session.BufferEventCopy {
				bs.SourceBufferID = m.BufferWireID(ev.SourceBuffer)
			}
			out[ev.Offset] = append(out[ev.Offset], bs)
		}
	}
	return out
}

// CollectBusSettings gathers every control-bus value write, grouped by
// offset and sorted by wire bus id within each offset (spec.md §4.4).
func CollectBusSettings(s *session.Session, m *idmap.IDMap) map[timeline.Offset][]BusSetting {
	out := make(map[timeline.Offset][]BusSetting)
	for id, bus := range s.Buses() {
		if bus.Rate != session.Control {
			continue
		}
		wireID := m.BusWireID(id)
		for _, ev := range bus.Events {
			out[ev.Offset] = append(out[ev.Offset], BusSetting{Offset: ev.Offset, BusID: wireID, Value: ev.Value})
		}
	}
	for offset, settings := range out {
		sort.Slice(settings, func(i, j int) bool { return settings[i].BusID < settings[j].BusID })
		out[offset] = settings
	}
	return out
}

// CollectNodeSettings walks traversalOrder (the resolved tree in
// depth-first child order) and returns every parameter value due
// exactly at offset, excluding params on nodes whose start_offset is
// this same offset — those are bundled into the node's creation
// message instead (spec.md §4.5.1 step 4) and are returned separately
// via InitialParams.
func CollectNodeSettings(s *session.Session, m *idmap.IDMap, offset timeline.Offset, traversalOrder []timeline.NodeID) []NodeSetting {
	var out []NodeSetting
	for _, id := range traversalOrder {
		n, ok := s.Node(id)
		if !ok {
			continue
		}
		if n.StartOffset == offset {
			continue
		}
		for _, p := range n.Params {
			if p.Offset != offset {
				continue
			}
			out = append(out, toNodeSetting(m, id, p))
		}
	}
	return out
}

// InitialParams returns the parameter values bundled into a node's
// creation message: every param event due exactly at its start_offset.
func InitialParams(m *idmap.IDMap, n *session.Node) []NodeSetting {
	var out []NodeSetting
	for _, p := range n.Params {
		if p.Offset != n.StartOffset {
			continue
		}
		out = append(out, toNodeSetting(m, n.SessionID, p))
	}
	return out
}

func toNodeSetting(m *idmap.IDMap, node timeline.NodeID, p session.ParamEvent) NodeSetting {
	ns := NodeSetting{Offset: p.Offset, NodeID: m.NodeWireID(node), Name: p.Name, Kind: p.Value.Kind, Scalar: p.Value.Scalar}
	switch p.Value.Kind {
	case session.ParamAudioBus:
		ns.BusID = m.BusWireID(p.Value.Bus)
	case session.ParamControlBus:
		ns.BusID = m.BusWireID(p.Value.Bus)
	case session.ParamNone:
		ns.BusID = -1
	}
	return ns
}
