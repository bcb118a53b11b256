package osc

import (
	"bytes"
	"encoding/binary"
)

// ntpEpochOffset is the number of seconds between the NTP epoch
// (1900-01-01) and the Unix epoch (1970-01-01), used to convert a
// compile-relative timestamp into OSC's NTP-style 64-bit fixed point.
const ntpEpochOffset = 2208988800

// Bundle renders an OSC bundle: "#bundle", an NTP-style timestamp,
// then each message length-prefixed (spec.md §6). The compiler's
// timestamps are score-relative seconds, not wall-clock time; they are
// encoded as NTP-style fixed point anchored at the NTP epoch purely to
// match the wire format the renderer expects, not to carry real time
// semantics (the immediate bundle, timestamp 0, is conventionally
// "play now" and is not offset by the epoch).
func Bundle(timestamp float64, messages []Message) []byte {
	var buf bytes.Buffer
	writePaddedString(&buf, "#bundle")

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], encodeTimestamp(timestamp))
	buf.Write(tsBuf[:])

	for _, m := range messages {
		encoded := m.Encode(true)
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(encoded)))
		buf.Write(lenBuf[:])
		buf.Write(encoded)
	}

	return buf.Bytes()
}

func encodeTimestamp(seconds float64) uint64 {
	if seconds <= 0 {
		return 1 // OSC's reserved "immediately" value
	}
	whole := uint64(seconds) + ntpEpochOffset
	frac := uint64((seconds - float64(uint64(seconds))) * (1 << 32))
	return whole<<32 | frac
}

// Terminator is the message that signals "end of score" to the
// external renderer (spec.md §4.5 step 5, §6's "Terminator" row:
// address is the literal int 0).
var Terminator = Message{isTerminator: true}

// IsTerminator reports whether m is the Terminator message.
func (m Message) IsTerminator() bool { return m.isTerminator }
