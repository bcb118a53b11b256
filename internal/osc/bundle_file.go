package osc

import "encoding/binary"

// FrameBundle renders the bundle-file framing of spec.md §6:
// (size: uint32 big-endian) ++ (bundle_bytes).
func FrameBundle(bundleBytes []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(bundleBytes)))
	return append(lenBuf[:], bundleBytes...)
}
