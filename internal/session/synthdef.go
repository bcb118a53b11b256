// Package session implements the State & Transition Engine (C2): the
// node/buffer/bus entity model, the add-action algebra that folds
// transitions into a resolved tree, and the Session that owns every
// entity and drives propagation. The synthdef graph language and its
// binary encoding are out of scope (spec.md §1); Synthdef is the small
// external-collaborator interface the compiler consumes instead,
// mirroring how the teacher's internal/birdnet wraps an externally
// trained model as an opaque asset.
package session

// Synthdef is a compiled unit-generator graph, opaque to the compiler
// beyond its name, wire bytes, and declared parameter names.
type Synthdef interface {
	Name() string
	Bytes() []byte
	ParameterNames() []string
}

// HasParameter reports whether sd declares a parameter named name. The
// planner uses this only to detect "duration" and "gate" (spec.md §6).
func HasParameter(sd Synthdef, name string) bool {
	if sd == nil {
		return false
	}
	for _, p := range sd.ParameterNames() {
		if p == name {
			return true
		}
	}
	return false
}

// StaticSynthdef is a named, precompiled byte blob plus a parameter
// name list — enough to drive the compiler and its tests end-to-end
// without a real synthesis-graph compiler (SPEC_FULL.md §3).
type StaticSynthdef struct {
	name   string
	bytes  []byte
	params []string
}

// NewStaticSynthdef builds a StaticSynthdef from pre-compiled bytes.
func NewStaticSynthdef(name string, bytes []byte, params []string) *StaticSynthdef {
	return &StaticSynthdef{name: name, bytes: bytes, params: params}
}

func (s *StaticSynthdef) Name() string             { return s.name }
func (s *StaticSynthdef) Bytes() []byte             { return s.bytes }
func (s *StaticSynthdef) ParameterNames() []string { return s.params }
