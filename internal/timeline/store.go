package timeline

import (
	"sort"

	"github.com/scsess/scsess/internal/errors"
)

// Store is the sorted offset index plus the offset -> State mapping.
// It is not safe for concurrent use; the compiler's scheduling model is
// single-threaded cooperative (spec.md §5).
type Store struct {
	offsets []Offset
	states  map[Offset]*State
}

// NewStore returns a Store seeded with the two permanent initial states
// spec.md §4.1 requires: a resolved root-only tree at NegInf, and a
// sparse clone at 0.0.
func NewStore() *Store {
	st := &Store{states: make(map[Offset]*State)}

	root := NewSparseState(NegInf)
	root.Tree = NewResolvedTree()
	root.Tree.Children[RootNodeID] = nil
	root.Tree.Parents[RootNodeID] = NoParentID
	st.insert(root)

	st.insert(NewSparseState(0.0))

	return st
}

func (s *Store) indexOf(offset Offset) (int, bool) {
	i := sort.Search(len(s.offsets), func(i int) bool { return s.offsets[i] >= offset })
	if i < len(s.offsets) && s.offsets[i] == offset {
		return i, true
	}
	return i, false
}

func (s *Store) insert(state *State) {
	i, exists := s.indexOf(state.Offset)
	if exists {
		s.states[state.Offset] = state
		return
	}
	s.offsets = append(s.offsets, 0)
	copy(s.offsets[i+1:], s.offsets[i:])
	s.offsets[i] = state.Offset
	s.states[state.Offset] = state
}

// Offsets returns the known offsets in ascending order. The returned
// slice must not be mutated by the caller.
func (s *Store) Offsets() []Offset {
	return s.offsets
}

// FindAt returns the state at offset. If none exists and
// cloneIfMissing is true, a sparse state is inserted at the nearest
// earlier state's position and returned.
func (s *Store) FindAt(offset Offset, cloneIfMissing bool) *State {
	if st, ok := s.states[offset]; ok {
		return st
	}
	if !cloneIfMissing {
		return nil
	}
	return s.AddStateAt(offset)
}

// FindBefore returns the nearest state strictly before offset. If
// withNodeTree, states whose tree is unresolved are skipped.
func (s *Store) FindBefore(offset Offset, withNodeTree bool) *State {
	i, _ := s.indexOf(offset)
	for j := i - 1; j >= 0; j-- {
		st := s.states[s.offsets[j]]
		if withNodeTree && !st.Tree.Resolved {
			continue
		}
		return st
	}
	return nil
}

// FindAfter returns the nearest state strictly after offset. If
// withNodeTree, states whose tree is unresolved are skipped.
func (s *Store) FindAfter(offset Offset, withNodeTree bool) *State {
	i, exists := s.indexOf(offset)
	start := i
	if exists {
		start = i + 1
	}
	for j := start; j < len(s.offsets); j++ {
		st := s.states[s.offsets[j]]
		if withNodeTree && !st.Tree.Resolved {
			continue
		}
		return st
	}
	return nil
}

// OffsetAfter returns the next known offset strictly after offset,
// regardless of tree resolution — used by the propagation engine to
// chain to the next state in timestamp order.
func (s *Store) OffsetAfter(offset Offset) (Offset, bool) {
	i, exists := s.indexOf(offset)
	start := i
	if exists {
		start = i + 1
	}
	if start < len(s.offsets) {
		return s.offsets[start], true
	}
	return 0, false
}

// AddStateAt inserts a sparse state at offset, positioned by sort
// order. The nearest-earlier state is not eagerly folded through; its
// tree is left unresolved until propagation demands it (spec.md §9
// sparse cloning).
func (s *Store) AddStateAt(offset Offset) *State {
	if st, ok := s.states[offset]; ok {
		return st
	}
	st := NewSparseState(offset)
	s.insert(st)
	return st
}

// RemoveStateAt removes the state at offset if it carries no pending
// transitions. Callers (internal/session) must additionally verify no
// node or buffer starts or stops at this offset before calling this.
func (s *Store) RemoveStateAt(offset Offset) error {
	st, ok := s.states[offset]
	if !ok {
		return nil
	}
	if !st.IsTransitionsSparse() {
		return errors.StateStructureViolation("cannot remove a state that carries pending transitions")
	}
	i, exists := s.indexOf(offset)
	if !exists {
		return nil
	}
	s.offsets = append(s.offsets[:i], s.offsets[i+1:]...)
	delete(s.states, offset)
	return nil
}
