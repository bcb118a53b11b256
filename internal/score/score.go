// Package score loads a declarative YAML score (synthdefs, buses, buffers,
// and a node timeline) and builds it into an internal/session.Session,
// the in-memory input the compiler (internal/planner) operates on. This
// is the "score" file format referenced by cmd/compile, cmd/render, and
// cmd/dump, parsed with gopkg.in/yaml.v3 the way the teacher parses its
// own config and update-config YAML documents.
package score

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scsess/scsess/internal/session"
	"github.com/scsess/scsess/internal/timeline"
)

// Doc is the top-level shape of a score file.
type Doc struct {
	Duration  float64          `yaml:"duration"`
	Synthdefs []SynthdefDoc    `yaml:"synthdefs"`
	Buses     []BusDoc         `yaml:"buses"`
	Buffers   []BufferDoc      `yaml:"buffers"`
	Nodes     []NodeDoc        `yaml:"nodes"`
}

// SynthdefDoc declares one synthdef by name and parameter list. The
// compiled byte payload is out of scope (spec.md §1 treats the synthdef
// graph language/encoder as an external collaborator); a placeholder blob
// naming the synthdef stands in for compiled bytecode, sufficient to drive
// /d_recv and the duration/gate parameter checks the planner needs.
type SynthdefDoc struct {
	Name       string   `yaml:"name"`
	Parameters []string `yaml:"parameters"`
}

// BusDoc declares one bus, optionally with a control-rate value-write
// schedule (spec.md §4.4 bus settings).
type BusDoc struct {
	ID     string          `yaml:"id"`
	Rate   string          `yaml:"rate"` // "audio" or "control"
	Writes []BusWriteDoc   `yaml:"writes"`
}

// BusWriteDoc schedules one control-bus value write.
type BusWriteDoc struct {
	Offset float64 `yaml:"offset"`
	Value  float64 `yaml:"value"`
}

// BufferDoc declares one buffer, either empty (Channels/Frames) or backed
// by a source file (Path).
type BufferDoc struct {
	ID       string  `yaml:"id"`
	Offset   float64 `yaml:"offset"`
	Duration float64 `yaml:"duration"`
	Channels int     `yaml:"channels"`
	Frames   int     `yaml:"frames"`
	Path     string  `yaml:"path"`
	Start    int     `yaml:"start"`
}

// WhereDoc is an add-action target: exactly one of ToHead/ToTail/Before/
// After/Replace names an existing node id (or "root").
type WhereDoc struct {
	ToHead  string `yaml:"toHead"`
	ToTail  string `yaml:"toTail"`
	Before  string `yaml:"before"`
	After   string `yaml:"after"`
	Replace string `yaml:"replace"`
}

// ParamDoc is one scheduled parameter value.
type ParamDoc struct {
	Name    string   `yaml:"name"`
	Offset  float64  `yaml:"offset"`
	Scalar  *float64 `yaml:"scalar"`
	Bus     string   `yaml:"bus"`
	Rate    string   `yaml:"rate"` // "audio" or "control", required when Bus is set
	Unmap   bool     `yaml:"unmap"`
}

// NodeDoc declares one node: a group (Kind == "group") or a synth bound to
// a named synthdef (Kind == "synth").
type NodeDoc struct {
	ID       string     `yaml:"id"`
	Kind     string     `yaml:"kind"`
	Synthdef string     `yaml:"synthdef"`
	Offset   float64    `yaml:"offset"`
	Duration float64    `yaml:"duration"`
	Where    WhereDoc   `yaml:"where"`
	Params   []ParamDoc `yaml:"params"`
}

// Load reads and parses a score file at path.
func Load(path string) (*Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading score file: %w", err)
	}
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing score file: %w", err)
	}
	return &doc, nil
}

// Build constructs a Session from doc, in file order: synthdefs first (so
// nodes can reference them by name), then buses, buffers, and finally
// nodes (so a node's "where" target can reference an earlier node's id).
func Build(doc *Doc, opts ...session.Option) (*session.Session, error) {
	s := session.NewSession(opts...)
	if doc.Duration > 0 {
		s.SetDuration(doc.Duration)
	}

	synthdefs := make(map[string]*session.StaticSynthdef, len(doc.Synthdefs))
	for _, sd := range doc.Synthdefs {
		synthdefs[sd.Name] = session.NewStaticSynthdef(sd.Name, placeholderBytecode(sd.Name), sd.Parameters)
	}

	buses := map[string]*session.Bus{}
	for _, bd := range doc.Buses {
		rate, err := parseRate(bd.Rate)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", bd.ID, err)
		}
		bus, err := s.AddBus(rate)
		if err != nil {
			return nil, fmt.Errorf("bus %q: %w", bd.ID, err)
		}
		for _, w := range bd.Writes {
			if err := s.WriteControlBus(bus, timeline.Offset(w.Offset), w.Value); err != nil {
				return nil, fmt.Errorf("bus %q write: %w", bd.ID, err)
			}
		}
		if bd.ID != "" {
			buses[bd.ID] = bus
		}
	}

	buffers := map[string]*session.Buffer{}
	for _, bufd := range doc.Buffers {
		var buf *session.Buffer
		var err error
		if bufd.Path != "" {
			buf, err = s.AddBufferFromFile(timeline.Offset(bufd.Offset), bufd.Path, bufd.Start, bufd.Duration)
		} else {
			buf, err = s.AddBuffer(timeline.Offset(bufd.Offset), bufd.Channels, bufd.Frames, bufd.Duration)
		}
		if err != nil {
			return nil, fmt.Errorf("buffer %q: %w", bufd.ID, err)
		}
		if bufd.ID != "" {
			buffers[bufd.ID] = buf
		}
	}

	nodes := map[string]*session.Node{"root": s.Root()}
	for _, nd := range doc.Nodes {
		target, err := resolveWhere(nd.Where, nodes)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nd.ID, err)
		}

		var node *session.Node
		switch nd.Kind {
		case "group":
			node, err = s.AddGroup(timeline.Offset(nd.Offset), target)
		case "synth":
			sd, ok := synthdefs[nd.Synthdef]
			if !ok {
				return nil, fmt.Errorf("node %q: unknown synthdef %q", nd.ID, nd.Synthdef)
			}
			duration := nd.Duration
			if duration == 0 {
				duration = math.Inf(1)
			}
			node, err = s.AddSynth(timeline.Offset(nd.Offset), sd, duration, target)
		default:
			return nil, fmt.Errorf("node %q: unknown kind %q", nd.ID, nd.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nd.ID, err)
		}
		if nd.ID != "" {
			nodes[nd.ID] = node
		}

		for _, pd := range nd.Params {
			value, err := resolveParam(pd, buses)
			if err != nil {
				return nil, fmt.Errorf("node %q param %q: %w", nd.ID, pd.Name, err)
			}
			if err := s.SetParam(node, timeline.Offset(pd.Offset), pd.Name, value); err != nil {
				return nil, fmt.Errorf("node %q param %q: %w", nd.ID, pd.Name, err)
			}
		}
	}

	return s, nil
}

func parseRate(s string) (session.CalculationRate, error) {
	switch s {
	case "audio", "":
		return session.Audio, nil
	case "control":
		return session.Control, nil
	default:
		return 0, fmt.Errorf("unknown calculation rate %q", s)
	}
}

func resolveWhere(w WhereDoc, nodes map[string]*session.Node) (session.Target, error) {
	switch {
	case w.ToTail != "":
		n, err := lookupNode(w.ToTail, nodes)
		if err != nil {
			return session.Target{}, err
		}
		return session.ToTail(n.SessionID), nil
	case w.Before != "":
		n, err := lookupNode(w.Before, nodes)
		if err != nil {
			return session.Target{}, err
		}
		return session.Before(n.SessionID), nil
	case w.After != "":
		n, err := lookupNode(w.After, nodes)
		if err != nil {
			return session.Target{}, err
		}
		return session.After(n.SessionID), nil
	case w.Replace != "":
		n, err := lookupNode(w.Replace, nodes)
		if err != nil {
			return session.Target{}, err
		}
		return session.ReplacingNode(n.SessionID), nil
	case w.ToHead != "":
		n, err := lookupNode(w.ToHead, nodes)
		if err != nil {
			return session.Target{}, err
		}
		return session.ToHead(n.SessionID), nil
	default:
		return session.ToHead(nodes["root"].SessionID), nil
	}
}

func lookupNode(id string, nodes map[string]*session.Node) (*session.Node, error) {
	n, ok := nodes[id]
	if !ok {
		return nil, fmt.Errorf("unknown node id %q", id)
	}
	return n, nil
}

func resolveParam(pd ParamDoc, buses map[string]*session.Bus) (session.ParamValue, error) {
	switch {
	case pd.Unmap:
		return session.NoneParam(), nil
	case pd.Bus != "":
		bus, ok := buses[pd.Bus]
		if !ok {
			return session.ParamValue{}, fmt.Errorf("unknown bus id %q", pd.Bus)
		}
		if bus.Rate == session.Control {
			return session.ControlBusParam(bus.SessionID), nil
		}
		return session.AudioBusParam(bus.SessionID), nil
	case pd.Scalar != nil:
		return session.ScalarParam(*pd.Scalar), nil
	default:
		return session.ParamValue{}, fmt.Errorf("param has neither scalar, bus, nor unmap set")
	}
}

// placeholderBytecode stands in for the synthdef binary encoder named as
// an external collaborator in spec.md §1; it only needs to be stable and
// content-addressable per name for /d_recv dedup purposes.
func placeholderBytecode(name string) []byte {
	return []byte("synthdef:" + name)
}
