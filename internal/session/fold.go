package session

import (
	"github.com/scsess/scsess/internal/errors"
	"github.com/scsess/scsess/internal/timeline"
)

// foldTree implements the add-action algebra of spec.md §4.2.1: given
// the previous resolved tree and this state's transitions plus the set
// of nodes stopping at this offset, produce the new resolved tree.
//
// Rather than hand-rolling recursive unlink/reattach bookkeeping for
// "orphaned descendants", detachment and reinsertion are applied to
// working copies of the children/parent maps and a final reachability
// sweep from the root drops anything no longer connected — exactly the
// "orphaned subtrees are dropped" behavior spec.md §4.2.1 step 4 calls
// for, without tracking it transition-by-transition.
func foldTree(prev timeline.Tree, st *timeline.State, stoppingSet map[timeline.NodeID]struct{}) (timeline.Tree, error) {
	children := make(map[timeline.NodeID][]timeline.NodeID, len(prev.Children))
	for k, v := range prev.Children {
		children[k] = append([]timeline.NodeID(nil), v...)
	}
	parents := make(map[timeline.NodeID]timeline.NodeID, len(prev.Parents))
	for k, v := range prev.Parents {
		parents[k] = v
	}

	for node := range stoppingSet {
		detach(children, parents, node)
		delete(parents, node)
	}

	var applyErr error
	st.Transitions.Each(func(node timeline.NodeID, action timeline.Action) {
		if applyErr != nil {
			return
		}
		detach(children, parents, node)

		switch action.Kind {
		case timeline.AddToHead:
			if _, ok := parents[action.Target]; action.Target != timeline.RootNodeID && !ok {
				applyErr = errors.UnknownEntity("AddToHead target node is not in the tree")
				return
			}
			children[action.Target] = append([]timeline.NodeID{node}, children[action.Target]...)
			parents[node] = action.Target
		case timeline.AddToTail:
			if _, ok := parents[action.Target]; action.Target != timeline.RootNodeID && !ok {
				applyErr = errors.UnknownEntity("AddToTail target node is not in the tree")
				return
			}
			children[action.Target] = append(children[action.Target], node)
			parents[node] = action.Target
		case timeline.AddBefore, timeline.AddAfter:
			parent, ok := parents[action.Target]
			if !ok {
				applyErr = errors.UnknownEntity("AddBefore/AddAfter reference node is not in the tree")
				return
			}
			idx := indexOf(children[parent], action.Target)
			if idx < 0 {
				applyErr = errors.UnknownEntity("AddBefore/AddAfter reference node missing from parent's child list")
				return
			}
			pos := idx
			if action.Kind == timeline.AddAfter {
				pos = idx + 1
			}
			children[parent] = insertAt(children[parent], pos, node)
			parents[node] = parent
		case timeline.ReplaceNode:
			parent, ok := parents[action.Target]
			if !ok {
				applyErr = errors.UnknownEntity("ReplaceNode reference node is not in the tree")
				return
			}
			idx := indexOf(children[parent], action.Target)
			if idx < 0 {
				applyErr = errors.UnknownEntity("ReplaceNode reference node missing from parent's child list")
				return
			}
			children[parent][idx] = node
			parents[node] = parent
			delete(parents, action.Target)
		case timeline.FreeNode:
			// already detached above; nothing to reattach.
		}
	})
	if applyErr != nil {
		return timeline.Tree{}, applyErr
	}

	return sweep(children, parents), nil
}

func detach(children map[timeline.NodeID][]timeline.NodeID, parents map[timeline.NodeID]timeline.NodeID, node timeline.NodeID) {
	parent, ok := parents[node]
	if !ok {
		return
	}
	children[parent] = remove(children[parent], node)
	delete(parents, node)
}

func indexOf(list []timeline.NodeID, target timeline.NodeID) int {
	for i, n := range list {
		if n == target {
			return i
		}
	}
	return -1
}

func remove(list []timeline.NodeID, target timeline.NodeID) []timeline.NodeID {
	idx := indexOf(list, target)
	if idx < 0 {
		return list
	}
	return append(list[:idx], list[idx+1:]...)
}

func insertAt(list []timeline.NodeID, pos int, node timeline.NodeID) []timeline.NodeID {
	out := make([]timeline.NodeID, 0, len(list)+1)
	out = append(out, list[:pos]...)
	out = append(out, node)
	out = append(out, list[pos:]...)
	return out
}

// sweep performs a reachability pass from the root, keeping only nodes
// still connected and rebuilding a resolved Tree from them.
func sweep(children map[timeline.NodeID][]timeline.NodeID, parents map[timeline.NodeID]timeline.NodeID) timeline.Tree {
	reachable := map[timeline.NodeID]bool{timeline.RootNodeID: true}
	queue := []timeline.NodeID{timeline.RootNodeID}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range children[n] {
			if !reachable[c] {
				reachable[c] = true
				queue = append(queue, c)
			}
		}
	}

	out := timeline.NewResolvedTree()
	out.Parents[timeline.RootNodeID] = timeline.NoParentID
	for n := range reachable {
		if n == timeline.RootNodeID {
			continue
		}
		if p, ok := parents[n]; ok && reachable[p] {
			out.Parents[n] = p
		}
	}
	for n := range reachable {
		if c, ok := children[n]; ok {
			filtered := make([]timeline.NodeID, 0, len(c))
			for _, child := range c {
				if reachable[child] {
					filtered = append(filtered, child)
				}
			}
			out.Children[n] = filtered
		}
	}
	return out
}
