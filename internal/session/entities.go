package session

import (
	"math"

	"github.com/scsess/scsess/internal/timeline"
)

// NodeKind distinguishes the two Node variants (spec.md §3).
type NodeKind int

const (
	GroupNode NodeKind = iota
	SynthNode
)

func (k NodeKind) String() string {
	if k == GroupNode {
		return "Group"
	}
	return "Synth"
}

// ParamKind classifies how a parameter value is bound, driving the
// settings collector's NodeSet/NodeMapToAudioBus/NodeMapToControlBus
// partition (spec.md §4.4).
type ParamKind int

const (
	ParamScalar ParamKind = iota
	ParamAudioBus
	ParamControlBus
	ParamNone // explicit "unmap", encoded downstream as -1
)

// ParamValue is the bound value of a single synth/group parameter.
type ParamValue struct {
	Kind   ParamKind
	Scalar float64
	Bus    timeline.BusID // meaningful when Kind is a bus kind
}

// ScalarParam builds a plain scalar-valued parameter binding.
func ScalarParam(v float64) ParamValue { return ParamValue{Kind: ParamScalar, Scalar: v} }

// AudioBusParam builds an audio-rate bus-reference parameter binding.
func AudioBusParam(busID timeline.BusID) ParamValue {
	return ParamValue{Kind: ParamAudioBus, Bus: busID}
}

// ControlBusParam builds a control-rate bus-reference parameter binding.
func ControlBusParam(busID timeline.BusID) ParamValue {
	return ParamValue{Kind: ParamControlBus, Bus: busID}
}

// NoneParam builds an explicit "unmap" parameter binding.
func NoneParam() ParamValue { return ParamValue{Kind: ParamNone} }

// ParamEvent is a single parameter value due at a given offset.
type ParamEvent struct {
	Offset timeline.Offset
	Name   string
	Value  ParamValue
}

// Node is a persistent entity in the session's node tree: a Group
// (container) or a Synth (leaf bound to a Synthdef). Nodes carry a
// weak back-reference to their owning Session for lookup only; the
// Session, not the Node, owns the entity (spec.md §3, §9).
type Node struct {
	SessionID   timeline.NodeID
	Kind        NodeKind
	Synthdef    Synthdef
	StartOffset timeline.Offset
	Duration    float64
	Params      []ParamEvent

	session *Session
}

// StopOffset returns the offset at which this node's lifespan ends,
// +Inf if its duration is unbounded.
func (n *Node) StopOffset() float64 {
	if math.IsInf(n.Duration, 1) {
		return math.Inf(1)
	}
	return float64(n.StartOffset) + n.Duration
}

// IsInfinite reports whether the node's duration is unbounded.
func (n *Node) IsInfinite() bool {
	return math.IsInf(n.Duration, 1)
}

// Session returns the owning session.
func (n *Node) Session() *Session { return n.session }

// BufferEventKind is the ordered kind of a buffer post-allocation
// request (spec.md §4.5.1 step 3).
type BufferEventKind int

const (
	BufferEventRead BufferEventKind = iota
	BufferEventReadChannel
	BufferEventWrite
	BufferEventZero
	BufferEventFill
	BufferEventGenerate
	BufferEventSet
	BufferEventSetContiguous
	BufferEventNormalize
	BufferEventCopy
)

// BufferEvent is one entry in a Buffer's event table (spec.md §3).
type BufferEvent struct {
	Offset        timeline.Offset
	Kind          BufferEventKind
	LeaveOpen     bool
	Path          string
	StartFrame    int
	FrameCount    int
	Channels      []int
	Values        []float64
	SourceBuffer  timeline.BufferID
	GeneratorName string
}

// Buffer is a persistent audio-data entity (spec.md §3).
type Buffer struct {
	SessionID    timeline.BufferID
	ChannelCount int
	FrameCount   int
	FilePath     string
	StartingFrame int
	StartOffset  timeline.Offset
	Duration     float64
	Events       []BufferEvent
	Group        *BufferGroup

	session *Session
}

// StopOffset returns the offset at which this buffer's lifespan ends.
func (b *Buffer) StopOffset() float64 {
	if math.IsInf(b.Duration, 1) {
		return math.Inf(1)
	}
	return float64(b.StartOffset) + b.Duration
}

// Session returns the owning session.
func (b *Buffer) Session() *Session { return b.session }

// CalculationRate is a Bus's update rate (spec.md §3).
type CalculationRate int

const (
	Audio CalculationRate = iota
	Control
)

func (r CalculationRate) String() string {
	if r == Audio {
		return "audio"
	}
	return "control"
}

// BusEvent is a single scheduled control-bus value write.
type BusEvent struct {
	Offset timeline.Offset
	Value  float64
}

// Bus is a persistent audio or control bus entity (spec.md §3).
type Bus struct {
	SessionID timeline.BusID
	Rate      CalculationRate
	Group     *BusGroup
	Events    []BusEvent

	session *Session
}

// Session returns the owning session.
func (b *Bus) Session() *Session { return b.session }

// BusGroup is a contiguous block of buses of the same rate.
type BusGroup struct {
	SessionID timeline.BusID
	Rate      CalculationRate
	Buses     []*Bus
}

// BufferGroup is a contiguous block of buffers.
type BufferGroup struct {
	SessionID timeline.BufferID
	Buffers   []*Buffer
}
