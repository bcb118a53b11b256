// Package osc implements the OSC-like wire protocol of spec.md §6: a
// Message is an address plus a typed argument list, and a Bundle is a
// timestamped batch of messages. No OSC client library exists in the
// dependency pack, so this is implemented directly against the wire
// layout the spec documents.
package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ArgKind is the closed sum of argument types spec.md §6 allows.
type ArgKind int

const (
	ArgInt32 ArgKind = iota
	ArgFloat32
	ArgString
	ArgBlob
)

// Arg is a single typed OSC argument.
type Arg struct {
	Kind   ArgKind
	Int    int32
	Float  float32
	Str    string
	Blob   []byte
}

func Int32(v int32) Arg     { return Arg{Kind: ArgInt32, Int: v} }
func Float32(v float32) Arg { return Arg{Kind: ArgFloat32, Float: v} }
func String(v string) Arg   { return Arg{Kind: ArgString, Str: v} }
func Blob(v []byte) Arg     { return Arg{Kind: ArgBlob, Blob: v} }

func (a ArgKind) typeTag() byte {
	switch a {
	case ArgInt32:
		return 'i'
	case ArgFloat32:
		return 'f'
	case ArgString:
		return 's'
	case ArgBlob:
		return 'b'
	default:
		return '?'
	}
}

// Message is an OSC address plus its argument list (spec.md §6). A
// Terminator message (spec.md §6: "address is literal int 0") carries
// no address string or type tags at all; it encodes as a bare 4-byte
// zero regardless of includeTypes.
type Message struct {
	Address      string
	Args         []Arg
	isTerminator bool
}

// padLen4 returns the padded length of n bytes to a 4-byte boundary,
// always adding at least one pad byte for the OSC string convention.
func padLen4(n int) int {
	return ((n / 4) + 1) * 4
}

func writePaddedString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	pad := padLen4(len(s)) - len(s)
	buf.Write(make([]byte, pad))
}

func writeBlob(buf *bytes.Buffer, b []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
	pad := (4 - len(b)%4) % 4
	buf.Write(make([]byte, pad))
}

// Encode renders the message as OSC wire bytes. If includeTypes is
// false, the type-tag string is omitted (a concession some request
// kinds use for compact internal framing; the bundle-file layout of
// spec.md §6 always uses includeTypes=true for external output).
func (m Message) Encode(includeTypes bool) []byte {
	if m.isTerminator {
		return []byte{0, 0, 0, 0}
	}

	var buf bytes.Buffer
	writePaddedString(&buf, m.Address)

	if includeTypes {
		tags := make([]byte, 0, len(m.Args)+1)
		tags = append(tags, ',')
		for _, a := range m.Args {
			tags = append(tags, a.Kind.typeTag())
		}
		writePaddedString(&buf, string(tags))
	}

	for _, a := range m.Args {
		switch a.Kind {
		case ArgInt32:
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], uint32(a.Int))
			buf.Write(b[:])
		case ArgFloat32:
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], math.Float32bits(a.Float))
			buf.Write(b[:])
		case ArgString:
			writePaddedString(&buf, a.Str)
		case ArgBlob:
			writeBlob(&buf, a.Blob)
		}
	}

	return buf.Bytes()
}

// String renders the message for debugging (cmd dump).
func (m Message) String() string {
	return fmt.Sprintf("%s %v", m.Address, m.Args)
}
