package session

import "github.com/scsess/scsess/internal/timeline"

// nodesStartingAt returns the set of node ids whose start_offset equals offset.
func (s *Session) nodesStartingAt(offset timeline.Offset) map[timeline.NodeID]struct{} {
	out := make(map[timeline.NodeID]struct{})
	for id, n := range s.nodes {
		if id == timeline.RootNodeID {
			continue
		}
		if n.StartOffset == offset {
			out[id] = struct{}{}
		}
	}
	return out
}

// nodesStoppingAt returns the set of node ids whose finite stop offset
// equals offset.
func (s *Session) nodesStoppingAt(offset timeline.Offset) map[timeline.NodeID]struct{} {
	out := make(map[timeline.NodeID]struct{})
	for id, n := range s.nodes {
		if id == timeline.RootNodeID || n.IsInfinite() {
			continue
		}
		if timeline.Offset(n.StopOffset()) == offset {
			out[id] = struct{}{}
		}
	}
	return out
}

// nodesOverlapping returns the set of node ids whose lifespan strictly
// spans offset (started strictly before, stops strictly after).
func (s *Session) nodesOverlapping(offset timeline.Offset) map[timeline.NodeID]struct{} {
	out := make(map[timeline.NodeID]struct{})
	for id, n := range s.nodes {
		if id == timeline.RootNodeID {
			continue
		}
		if n.StartOffset < offset && n.StopOffset() > float64(offset) {
			out[id] = struct{}{}
		}
	}
	return out
}

// buffersStartingAt and the helpers below mirror the node helpers above
// for buffers.
func (s *Session) buffersStartingAt(offset timeline.Offset) map[timeline.BufferID]struct{} {
	out := make(map[timeline.BufferID]struct{})
	for id, b := range s.buffers {
		if b.StartOffset == offset {
			out[id] = struct{}{}
		}
	}
	return out
}

func (s *Session) buffersStoppingAt(offset timeline.Offset) map[timeline.BufferID]struct{} {
	out := make(map[timeline.BufferID]struct{})
	for id, b := range s.buffers {
		if timeline.Offset(b.StopOffset()) == offset {
			out[id] = struct{}{}
		}
	}
	return out
}

func (s *Session) buffersOverlapping(offset timeline.Offset) map[timeline.BufferID]struct{} {
	out := make(map[timeline.BufferID]struct{})
	for id, b := range s.buffers {
		if b.StartOffset < offset && b.StopOffset() > float64(offset) {
			out[id] = struct{}{}
		}
	}
	return out
}
