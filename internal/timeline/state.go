package timeline

// State is the session's structural snapshot at a single offset: the
// transitions requested there, and the (possibly unresolved) topology
// that results from folding them through the preceding resolved tree.
//
// start_nodes/stop_nodes/overlap_nodes and their buffer analogues
// (spec.md §3) are intentionally not stored here: a node's lifecycle is
// derived entirely from its start_offset and duration (spec.md §4.5.2),
// so those sets are computed on demand from the owning Session's entity
// tables rather than tracked as incremental, mutable State fields. See
// DESIGN.md for the rationale.
type State struct {
	Offset      Offset
	Transitions *Transitions
	Tree        Tree
}

// NewSparseState returns an empty, unresolved state at offset.
func NewSparseState(offset Offset) *State {
	return &State{
		Offset:      offset,
		Transitions: NewTransitions(),
		Tree:        UnresolvedTree(),
	}
}

// IsTransitionsSparse reports whether this state carries no pending
// transitions — the storage-level half of the "sparse" test used by
// remove_state_at (spec.md §4.1); the session package additionally
// checks for node/buffer starts or stops at this offset before allowing
// removal.
func (s *State) IsTransitionsSparse() bool {
	return s.Transitions.Len() == 0
}
