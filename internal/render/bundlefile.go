// Package render writes compiled bundles to a bundle file and drives the
// external renderer process over it (SPEC_FULL.md §4.5's C5 boundary,
// "render a compiled session to sound").
package render

import (
	"bufio"
	"os"

	"github.com/scsess/scsess/internal/errors"
	"github.com/scsess/scsess/internal/osc"
	"github.com/scsess/scsess/internal/planner"
)

// WriteBundleFile renders bundles to path using the framed bundle-file
// format of spec.md §6: each bundle prefixed by its size as a
// big-endian uint32.
func WriteBundleFile(path string, bundles []planner.Bundle) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryFileIO).
			Context("operation", "create-bundle-file").
			Context("path", path).
			Build()
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, b := range bundles {
		if _, err := w.Write(osc.FrameBundle(b.Encode())); err != nil {
			return errors.New(err).
				Component("render").
				Category(errors.CategoryFileIO).
				Context("operation", "write-bundle").
				Context("path", path).
				Context("offset", b.Offset).
				Build()
		}
	}
	if err := w.Flush(); err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryFileIO).
			Context("operation", "flush-bundle-file").
			Context("path", path).
			Build()
	}
	return nil
}
