package timeline

// Tree is the node topology resolved for a State: a tagged variant of
// "Resolved(children, parents) | Unresolved", per spec.md §9's guidance
// to avoid nullable fields. An Unresolved tree's Children/Parents are
// nil and must not be read until propagation has resolved it.
type Tree struct {
	Resolved bool
	Children map[NodeID][]NodeID
	Parents  map[NodeID]NodeID
}

// UnresolvedTree returns a sparse, not-yet-computed tree.
func UnresolvedTree() Tree {
	return Tree{}
}

// NewResolvedTree returns an empty resolved tree ready for population.
func NewResolvedTree() Tree {
	return Tree{
		Resolved: true,
		Children: make(map[NodeID][]NodeID),
		Parents:  make(map[NodeID]NodeID),
	}
}

// Clone returns a deep copy of t.
func (t Tree) Clone() Tree {
	if !t.Resolved {
		return UnresolvedTree()
	}
	clone := NewResolvedTree()
	for k, v := range t.Children {
		clone.Children[k] = append([]NodeID(nil), v...)
	}
	for k, v := range t.Parents {
		clone.Parents[k] = v
	}
	return clone
}

// Equal reports whether t and other represent the same resolved
// topology (used by the propagation engine to detect a no-op fold and
// stop the propagation chain early).
func (t Tree) Equal(other Tree) bool {
	if t.Resolved != other.Resolved {
		return false
	}
	if !t.Resolved {
		return true
	}
	if len(t.Parents) != len(other.Parents) || len(t.Children) != len(other.Children) {
		return false
	}
	for k, v := range t.Parents {
		if ov, ok := other.Parents[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range t.Children {
		ov, ok := other.Children[k]
		if !ok || len(ov) != len(v) {
			return false
		}
		for i := range v {
			if v[i] != ov[i] {
				return false
			}
		}
	}
	return true
}
