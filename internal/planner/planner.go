package planner

import (
	"math"
	"sort"

	"github.com/scsess/scsess/internal/errors"
	"github.com/scsess/scsess/internal/idmap"
	"github.com/scsess/scsess/internal/osc"
	"github.com/scsess/scsess/internal/session"
	"github.com/scsess/scsess/internal/settings"
	"github.com/scsess/scsess/internal/timeline"
)

// Options parameterizes a compile.
type Options struct {
	Duration       float64
	DurationGiven  bool
	OutputBusCount int
	InputBusCount  int
}

var bufferKindOrder = []session.BufferEventKind{
	session.BufferEventRead,
	session.BufferEventReadChannel,
	session.BufferEventZero,
	session.BufferEventFill,
	session.BufferEventGenerate,
	session.BufferEventSet,
	session.BufferEventSetContiguous,
	session.BufferEventNormalize,
	session.BufferEventCopy,
}

// ToBundles compiles s into an ordered bundle sequence (spec.md §4.5).
func ToBundles(s *session.Session, opts Options) ([]Bundle, error) {
	duration, err := s.ResolveDuration(opts.Duration, opts.DurationGiven)
	if err != nil {
		return nil, err
	}

	m, err := idmap.Build(s, idmap.Options{OutputBusCount: opts.OutputBusCount, InputBusCount: opts.InputBusCount})
	if err != nil {
		return nil, err
	}

	bufferSettings := settings.CollectBufferSettings(s, m)
	busSettings := settings.CollectBusSettings(s, m)

	offsets := collectOffsets(s, duration)

	seenSynthdefs := make(map[string]bool)
	openBuffers := make(map[int64]bool)

	var bundles []Bundle
	for i, offset := range offsets {
		isLast := i == len(offsets)-1

		tree, transitions, err := resolvedTreeAt(s, offset)
		if err != nil {
			return nil, err
		}
		traversal := depthFirstOrder(tree)

		var msgs []osc.Message

		// 1. SynthDef-receive requests, new names only, ASCII order.
		msgs = append(msgs, synthDefReceiveRequests(s, offset, seenSynthdefs)...)

		// 2. Buffer allocate requests, sorted by buffer session_id.
		msgs = append(msgs, bufferAllocateRequests(s, m, offset)...)

		// 3. Ordered buffer post-allocation requests (excluding Write).
		msgs = append(msgs, orderedBufferRequests(bufferSettings[offset], openBuffers)...)

		// 4. Node creation/re-ordering requests.
		creationMsgs, err := nodeCreationRequests(s, m, transitions, offset, duration)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, creationMsgs...)

		// 5. Control-bus value writes, sorted by bus-id.
		msgs = append(msgs, controlBusRequests(busSettings[offset])...)

		// 6. Node parameter updates.
		msgs = append(msgs, nodeParamRequests(s, m, offset, traversal)...)

		// 7. Node free requests.
		stopNodes := s.NodesStoppingAt(offset)
		if isLast {
			for id := range s.NodesOverlapping(offset) {
				stopNodes[id] = struct{}{}
			}
		}
		msgs = append(msgs, nodeFreeRequests(s, m, stopNodes)...)

		// 8. Ordered buffer pre-free requests (Write).
		msgs = append(msgs, writeRequests(bufferSettings[offset], openBuffers)...)

		// 9. Buffer free.
		stopBuffers := s.BuffersStoppingAt(offset)
		if isLast {
			for id := range s.BuffersOverlapping(offset) {
				stopBuffers[id] = struct{}{}
			}
		}
		msgs = append(msgs, bufferFreeRequests(m, stopBuffers, openBuffers)...)

		if isLast {
			msgs = append(msgs, osc.Terminator)
		}

		bundles = append(bundles, Bundle{Offset: float64(offset), Messages: msgs})
	}

	return bundles, nil
}

// resolvedTreeAt returns the topology in effect at offset and the
// transitions recorded there. offset need not carry its own state (the
// compile duration boundary rarely does); in that case the nearest
// preceding resolved tree applies and no transitions fire. The same holds
// for a sparse state propagation never reached (the permanent 0.0 state
// when nothing happens at or before 0.0); an unresolved state that
// records transitions is a StateStructureViolation.
func resolvedTreeAt(s *session.Session, offset timeline.Offset) (timeline.Tree, *timeline.Transitions, error) {
	if st := s.Store().FindAt(offset, false); st != nil {
		if st.Tree.Resolved {
			return st.Tree, st.Transitions, nil
		}
		if !st.IsTransitionsSparse() {
			return timeline.Tree{}, nil, errors.StateStructureViolation("state tree unresolved at compile time")
		}
	}
	prev := s.Store().FindBefore(offset, true)
	if prev == nil {
		return timeline.Tree{}, nil, errors.StateStructureViolation("no resolved state precedes this offset")
	}
	return prev.Tree, timeline.NewTransitions(), nil
}

// collectOffsets returns every finite offset in (-inf, duration] known to
// the store, plus duration itself if not already present, sorted
// ascending (spec.md §4.5 step 3). Offsets past duration are dropped so
// the terminator always lands exactly on the requested duration,
// regardless of what a node/buffer/bus event schedules past the render
// window; anything still alive past that point is torn down via the
// is_last_offset overlap rollup instead (spec.md §4.5.1).
func collectOffsets(s *session.Session, duration float64) []timeline.Offset {
	var out []timeline.Offset
	seen := make(map[timeline.Offset]bool)
	durationOffset := timeline.Offset(duration)
	for _, o := range s.Store().Offsets() {
		if timeline.IsNegInf(o) || o > durationOffset {
			continue
		}
		out = append(out, o)
		seen[o] = true
	}
	if !seen[durationOffset] {
		out = append(out, durationOffset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// depthFirstOrder walks t from the root in depth-first, child order.
func depthFirstOrder(t timeline.Tree) []timeline.NodeID {
	var out []timeline.NodeID
	var visit func(timeline.NodeID)
	visit = func(n timeline.NodeID) {
		for _, c := range t.Children[n] {
			out = append(out, c)
			visit(c)
		}
	}
	visit(timeline.RootNodeID)
	return out
}

func synthDefReceiveRequests(s *session.Session, offset timeline.Offset, seen map[string]bool) []osc.Message {
	var names []string
	bySd := make(map[string]session.Synthdef)
	for id := range s.NodesStartingAt(offset) {
		n, ok := s.Node(id)
		if !ok || n.Kind != session.SynthNode || n.Synthdef == nil {
			continue
		}
		name := n.Synthdef.Name()
		if seen[name] {
			continue
		}
		if _, already := bySd[name]; !already {
			names = append(names, name)
			bySd[name] = n.Synthdef
		}
	}
	sort.Strings(names)
	var msgs []osc.Message
	for _, name := range names {
		seen[name] = true
		msgs = append(msgs, synthDefReceiveMessage(bySd[name].Bytes()))
	}
	return msgs
}

func bufferAllocateRequests(s *session.Session, m *idmap.IDMap, offset timeline.Offset) []osc.Message {
	ids := make([]timeline.BufferID, 0)
	for id := range s.BuffersStartingAt(offset) {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return m.BufferWireID(ids[i]) < m.BufferWireID(ids[j]) })

	var msgs []osc.Message
	for _, id := range ids {
		buf, ok := s.Buffer(id)
		if !ok {
			continue
		}
		wireID := m.BufferWireID(id)
		switch {
		case buf.FilePath != "" && len(channelsOf(buf)) > 0:
			msgs = append(msgs, bufferAllocateReadChannelMessage(wireID, buf.FilePath, buf.StartingFrame, buf.FrameCount, channelsOf(buf)))
		case buf.FilePath != "":
			msgs = append(msgs, bufferAllocateReadMessage(wireID, buf.FilePath, buf.StartingFrame, buf.FrameCount))
		default:
			msgs = append(msgs, bufferAllocateMessage(wireID, buf.FrameCount, buf.ChannelCount))
		}
	}
	return msgs
}

// channelsOf returns an explicit channel subset for a buffer, if its
// first ReadChannel event declares one; otherwise nil (plain AllocateRead).
func channelsOf(buf *session.Buffer) []int {
	for _, ev := range buf.Events {
		if ev.Kind == session.BufferEventReadChannel && len(ev.Channels) > 0 {
			return ev.Channels
		}
	}
	return nil
}

func orderedBufferRequests(settingsAtOffset []settings.BufferSetting, open map[int64]bool) []osc.Message {
	var msgs []osc.Message
	for _, kind := range bufferKindOrder {
		for _, bs := range settingsAtOffset {
			if bs.Kind != kind {
				continue
			}
			if kind == session.BufferEventRead || kind == session.BufferEventReadChannel {
				if open[bs.BufferID] {
					msgs = append(msgs, bufferCloseMessage(bs.BufferID))
				}
				open[bs.BufferID] = bs.LeaveOpen
			}
			msgs = append(msgs, bufferEventMessage(kind, bs))
		}
	}
	return msgs
}

func bufferEventMessage(kind session.BufferEventKind, bs settings.BufferSetting) osc.Message {
	switch kind {
	case session.BufferEventRead:
		return bufferReadMessage(bs)
	case session.BufferEventReadChannel:
		return bufferReadChannelMessage(bs)
	case session.BufferEventZero:
		return bufferZeroMessage(bs)
	case session.BufferEventFill:
		return bufferFillMessage(bs)
	case session.BufferEventGenerate:
		return bufferGenerateMessage(bs)
	case session.BufferEventSet:
		return bufferSetMessage(bs)
	case session.BufferEventSetContiguous:
		return bufferSetContiguousMessage(bs)
	case session.BufferEventNormalize:
		return bufferNormalizeMessage(bs)
	case session.BufferEventCopy:
		return bufferCopyMessage(bs)
	default:
		return osc.Message{}
	}
}

func writeRequests(settingsAtOffset []settings.BufferSetting, open map[int64]bool) []osc.Message {
	var msgs []osc.Message
	for _, bs := range settingsAtOffset {
		if bs.Kind != session.BufferEventWrite {
			continue
		}
		if open[bs.BufferID] {
			msgs = append(msgs, bufferCloseMessage(bs.BufferID))
		}
		open[bs.BufferID] = bs.LeaveOpen
		msgs = append(msgs, bufferWriteMessage(bs))
	}
	return msgs
}

func nodeCreationRequests(s *session.Session, m *idmap.IDMap, transitions *timeline.Transitions, offset timeline.Offset, duration float64) ([]osc.Message, error) {
	var msgs []osc.Message
	var creationErr error
	transitions.Each(func(nodeID timeline.NodeID, action timeline.Action) {
		if creationErr != nil || action.Kind == timeline.FreeNode {
			return
		}
		n, ok := s.Node(nodeID)
		if !ok {
			creationErr = errors.UnknownEntity("transition references an unknown node")
			return
		}
		wireID := m.NodeWireID(nodeID)
		targetID := m.NodeWireID(action.Target)

		if n.StartOffset == offset {
			msgs = append(msgs, creationMessage(m, n, wireID, action, targetID, duration)...)
			return
		}
		msgs = append(msgs, reorderMessage(action, wireID, targetID))
	})
	return msgs, creationErr
}

func creationMessage(m *idmap.IDMap, n *session.Node, wireID int64, action timeline.Action, targetID int64, sessionDuration float64) []osc.Message {
	if n.Kind == session.GroupNode {
		return []osc.Message{groupNewMessage(wireID, addActionInt(action.Kind), targetID)}
	}

	var kv []osc.Arg
	if session.HasParameter(n.Synthdef, "duration") {
		nodeDuration := math.Min(n.StopOffset(), sessionDuration) - float64(n.StartOffset)
		kv = append(kv, osc.String("duration"), osc.Float32(float32(nodeDuration)))
	}
	for _, p := range settings.InitialParams(m, n) {
		kv = append(kv, paramKV(p)...)
	}
	return []osc.Message{synthNewMessage(n.Synthdef.Name(), wireID, addActionInt(action.Kind), targetID, kv)}
}

func reorderMessage(action timeline.Action, nodeID, targetID int64) osc.Message {
	switch action.Kind {
	case timeline.AddToHead:
		return groupHeadMessage(targetID, nodeID)
	case timeline.AddToTail:
		return groupTailMessage(targetID, nodeID)
	case timeline.AddBefore, timeline.ReplaceNode:
		return nodeBeforeMessage(nodeID, targetID)
	case timeline.AddAfter:
		return nodeAfterMessage(nodeID, targetID)
	default:
		return osc.Message{}
	}
}

func paramKV(p settings.NodeSetting) []osc.Arg {
	switch p.Kind {
	case session.ParamScalar:
		return []osc.Arg{osc.String(p.Name), osc.Float32(float32(p.Scalar))}
	case session.ParamAudioBus, session.ParamControlBus:
		return []osc.Arg{osc.String(p.Name), osc.Int32(int32(p.BusID))}
	case session.ParamNone:
		return []osc.Arg{osc.String(p.Name), osc.Int32(-1)}
	default:
		return nil
	}
}

func controlBusRequests(bs []settings.BusSetting) []osc.Message {
	if len(bs) == 0 {
		return nil
	}
	var kv []osc.Arg
	for _, b := range bs {
		kv = append(kv, osc.Int32(int32(b.BusID)), osc.Float32(float32(b.Value)))
	}
	return []osc.Message{controlBusSetMessage(kv)}
}

func nodeParamRequests(s *session.Session, m *idmap.IDMap, offset timeline.Offset, traversal []timeline.NodeID) []osc.Message {
	byNode := settings.CollectNodeSettings(s, m, offset, traversal)
	grouped := make(map[int64][]settings.NodeSetting)
	for _, ns := range byNode {
		grouped[ns.NodeID] = append(grouped[ns.NodeID], ns)
	}

	var msgs []osc.Message
	for _, id := range traversal {
		wireID := m.NodeWireID(id)
		group, ok := grouped[wireID]
		if !ok {
			continue
		}
		var scalarKV, audioKV, controlKV []osc.Arg
		for _, ns := range group {
			switch ns.Kind {
			case session.ParamScalar:
				scalarKV = append(scalarKV, paramKV(ns)...)
			case session.ParamAudioBus:
				audioKV = append(audioKV, paramKV(ns)...)
			case session.ParamControlBus, session.ParamNone:
				controlKV = append(controlKV, paramKV(ns)...)
			}
		}
		if len(scalarKV) > 0 {
			msgs = append(msgs, nodeSetMessage(wireID, scalarKV))
		}
		if len(audioKV) > 0 {
			msgs = append(msgs, nodeMapToAudioBusMessage(wireID, audioKV))
		}
		if len(controlKV) > 0 {
			msgs = append(msgs, nodeMapToControlBusMessage(wireID, controlKV))
		}
	}
	return msgs
}

func nodeFreeRequests(s *session.Session, m *idmap.IDMap, stopping map[timeline.NodeID]struct{}) []osc.Message {
	var gated, freed []int64
	for id := range stopping {
		n, ok := s.Node(id)
		if !ok {
			continue
		}
		wireID := m.NodeWireID(id)
		switch {
		case session.HasParameter(n.Synthdef, "gate"):
			gated = append(gated, wireID)
		case n.Duration != 0:
			// A zero-duration, non-gated node is never freed.
			freed = append(freed, wireID)
		}
	}
	sort.Slice(gated, func(i, j int) bool { return gated[i] < gated[j] })
	sort.Slice(freed, func(i, j int) bool { return freed[i] < freed[j] })

	var msgs []osc.Message
	for _, id := range gated {
		msgs = append(msgs, nodeSetMessage(id, []osc.Arg{osc.String("gate"), osc.Float32(0)}))
	}
	if len(freed) > 0 {
		msgs = append(msgs, nodeFreeMessage(freed))
	}
	return msgs
}

func bufferFreeRequests(m *idmap.IDMap, stopping map[timeline.BufferID]struct{}, open map[int64]bool) []osc.Message {
	var ids []timeline.BufferID
	for id := range stopping {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return m.BufferWireID(ids[i]) < m.BufferWireID(ids[j]) })

	var msgs []osc.Message
	for _, id := range ids {
		wireID := m.BufferWireID(id)
		if open[wireID] {
			msgs = append(msgs, bufferCloseMessage(wireID))
			open[wireID] = false
		}
		msgs = append(msgs, bufferFreeMessage(wireID))
	}
	return msgs
}
