// Package timeline implements the sparse temporal state store (C1):
// an ordered offset index plus the mapping offset -> State, with the
// find/add/remove operations used by the compiler to walk and mutate
// the score's timeline.
package timeline

import "math"

// Offset is a point on the timeline, in seconds. NegInf precedes every
// finite offset and marks the session's permanent root state.
type Offset float64

// NegInf is the sentinel offset preceding all finite offsets.
var NegInf = Offset(math.Inf(-1))

// IsNegInf reports whether o is the NegInf sentinel.
func IsNegInf(o Offset) bool {
	return math.IsInf(float64(o), -1)
}

// NodeID identifies a Node for the purposes of timeline storage. It is
// the node's session_id (see internal/session); the root node's ID is
// the reserved value RootNodeID.
type NodeID int64

// BufferID identifies a Buffer for the purposes of timeline storage.
type BufferID int64

// BusID identifies a Bus for the purposes of timeline storage.
type BusID int64

// RootNodeID is the reserved session_id of the session's root group.
const RootNodeID NodeID = 0

// NoParentID marks a node with no parent (only ever the root).
const NoParentID NodeID = -1
