package session

import "github.com/scsess/scsess/internal/timeline"

// NodesStartingAt returns the set of node ids whose start_offset equals offset.
func (s *Session) NodesStartingAt(offset timeline.Offset) map[timeline.NodeID]struct{} {
	return s.nodesStartingAt(offset)
}

// NodesStoppingAt returns the set of node ids whose finite stop offset equals offset.
func (s *Session) NodesStoppingAt(offset timeline.Offset) map[timeline.NodeID]struct{} {
	return s.nodesStoppingAt(offset)
}

// NodesOverlapping returns the set of node ids whose lifespan strictly spans offset.
func (s *Session) NodesOverlapping(offset timeline.Offset) map[timeline.NodeID]struct{} {
	return s.nodesOverlapping(offset)
}

// BuffersStartingAt returns the set of buffer ids starting exactly at offset.
func (s *Session) BuffersStartingAt(offset timeline.Offset) map[timeline.BufferID]struct{} {
	return s.buffersStartingAt(offset)
}

// BuffersStoppingAt returns the set of buffer ids stopping exactly at offset.
func (s *Session) BuffersStoppingAt(offset timeline.Offset) map[timeline.BufferID]struct{} {
	return s.buffersStoppingAt(offset)
}

// BuffersOverlapping returns the set of buffer ids whose lifespan strictly spans offset.
func (s *Session) BuffersOverlapping(offset timeline.Offset) map[timeline.BufferID]struct{} {
	return s.buffersOverlapping(offset)
}
