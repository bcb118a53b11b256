// Package planner implements the Request Planner (C5): the per-offset
// request ordering of spec.md §4.5 and the to_bundles compile entry
// point.
package planner

import "github.com/scsess/scsess/internal/osc"

// Bundle is a timestamped batch of wire messages (spec.md glossary).
type Bundle struct {
	Offset   float64
	Messages []osc.Message
}

// Encode renders the bundle using internal/osc's wire framing.
func (b Bundle) Encode() []byte {
	return osc.Bundle(b.Offset, b.Messages)
}
