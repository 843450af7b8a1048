package fastpath

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// InputEventPDU represents a client-to-server Fast-Path Input Event PDU
// (MS-RDPBCGR 2.2.8.1.2). It carries one or more serialized input events
// (mouse, scancode, unicode, sync) in a single packet.
type InputEventPDU struct {
	action    uint8
	numEvents uint8
	flags     uint8
	eventData []byte
}

// NewInputEventPDU wraps a single serialized input event for transmission.
// Use consecutive Send calls for multiple events; the client always sends
// one event per round trip, matching MS-RDPBCGR's per-event framing.
func NewInputEventPDU(eventData []byte) *InputEventPDU {
	return &InputEventPDU{
		numEvents: 1,
		eventData: eventData,
	}
}

// Serialize encodes the PDU: a 1-byte header (action/numEvents/flags), a
// variable-length packet length, then the raw event data.
func (p *InputEventPDU) Serialize() []byte {
	header := (p.action & 0x3) | (p.numEvents&0xf)<<2 | (p.flags&0x3)<<6

	lengthBuf := new(bytes.Buffer)
	_ = p.SerializeLength(1+len(p.eventData), lengthBuf)

	out := new(bytes.Buffer)
	out.WriteByte(header)
	out.Write(lengthBuf.Bytes())
	out.Write(p.eventData)

	return out.Bytes()
}

// SerializeLength encodes the Fast-Path packet length field. n is the size
// of the header byte plus the event data; the length field's own size is
// added on top, matching the two-byte/one-byte short-vs-long length forms
// used throughout the RDP wire formats.
func (p *InputEventPDU) SerializeLength(n int, buf *bytes.Buffer) error {
	if n > 0x7f {
		total := n + 2
		if total > 0x7fff {
			return fmt.Errorf("fastpath: packet length %d too large to encode", total)
		}
		return binary.Write(buf, binary.BigEndian, uint16(total)|0x8000)
	}

	return buf.WriteByte(byte(n + 1))
}

// Send writes a serialized Input Event PDU to the connection.
func (p *Protocol) Send(pdu *InputEventPDU) error {
	_, err := p.conn.Write(pdu.Serialize())
	return err
}
