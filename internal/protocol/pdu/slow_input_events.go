package pdu

import (
	"bytes"
	"encoding/binary"
)

// InputEventType identifies a TS_INPUT_EVENT's messageType field
// (MS-RDPBCGR 2.2.8.1.1.3.1.1).
type InputEventType uint16

const (
	// InputEventSync TS_INPUT_EVENT_SYNC
	InputEventSync InputEventType = 0x0000

	// InputEventScancode TS_INPUT_EVENT_SCANCODE
	InputEventScancode InputEventType = 0x0004

	// InputEventUnicode TS_INPUT_EVENT_UNICODE
	InputEventUnicode InputEventType = 0x0005

	// InputEventMouse TS_INPUT_EVENT_MOUSE
	InputEventMouse InputEventType = 0x8001

	// InputEventMouseX TS_INPUT_EVENT_MOUSEX
	InputEventMouseX InputEventType = 0x8002
)

// Scancode event flags for TS_KEYBOARD_EVENT.keyboardFlags.
const (
	ScancodeExtended uint16 = 0x0100
	ScancodeKeyDown  uint16 = 0x4000
	ScancodeRelease  uint16 = 0x8000
)

// SlowInputEvent is a single TS_INPUT_EVENT: the fixed eventTime/messageType
// header plus a message-specific payload, carried inside the Client Input
// Event PDU's TS_INPUT_PDU_DATA (MS-RDPBCGR 2.2.8.1.1.3.1.1).
type SlowInputEvent struct {
	EventTime   uint32
	MessageType InputEventType
	Data        []byte
}

// Serialize encodes the event to wire format.
func (e *SlowInputEvent) Serialize() []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, e.EventTime)
	_ = binary.Write(buf, binary.LittleEndian, uint16(e.MessageType))
	buf.Write(e.Data)

	return buf.Bytes()
}

// NewSlowMouseEvent builds a TS_POINTER_EVENT input event. The payload
// layout is identical to the Fast-Path mouse event (see mouseEvent); only
// the envelope around it differs.
func NewSlowMouseEvent(pointerFlags, xPos, yPos uint16) *SlowInputEvent {
	ev := mouseEvent{pointerFlags: pointerFlags, xPos: xPos, yPos: yPos}
	return &SlowInputEvent{MessageType: InputEventMouse, Data: ev.Serialize()}
}

// NewSlowScancodeEvent builds a TS_KEYBOARD_EVENT input event. flags is
// built from ScancodeExtended/ScancodeKeyDown/ScancodeRelease.
func NewSlowScancodeEvent(flags uint16, keyCode uint8) *SlowInputEvent {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, flags)
	_ = binary.Write(buf, binary.LittleEndian, uint16(keyCode))
	_ = binary.Write(buf, binary.LittleEndian, uint16(0)) // pad2Octets

	return &SlowInputEvent{MessageType: InputEventScancode, Data: buf.Bytes()}
}

// NewSlowUnicodeEvent builds a TS_UNICODE_KEYBOARD_EVENT input event. flags
// is 0 for a press or ScancodeRelease for the matching release.
func NewSlowUnicodeEvent(flags uint16, unicodeCode uint16) *SlowInputEvent {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, flags)
	_ = binary.Write(buf, binary.LittleEndian, unicodeCode)
	_ = binary.Write(buf, binary.LittleEndian, uint16(0)) // pad2Octets

	return &SlowInputEvent{MessageType: InputEventUnicode, Data: buf.Bytes()}
}

// NewSlowSynchronizeEvent builds a TS_SYNC_EVENT input event reporting
// toggle key state (SyncScrollLock/SyncNumLock/SyncCapsLock/SyncKanaLock).
func NewSlowSynchronizeEvent(toggleFlags uint16) *SlowInputEvent {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, uint16(0)) // pad2Octets
	_ = binary.Write(buf, binary.LittleEndian, toggleFlags)

	return &SlowInputEvent{MessageType: InputEventSync, Data: buf.Bytes()}
}

// NewInputEventPDU encodes TS_INPUT_PDU_DATA (MS-RDPBCGR 2.2.8.1.1.3.1): a
// 2-byte event count, a 2-byte pad, then each event in order.
func NewInputEventPDU(events []*SlowInputEvent) []byte {
	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, uint16(len(events)))
	_ = binary.Write(buf, binary.LittleEndian, uint16(0)) // pad2Octets

	for _, ev := range events {
		buf.Write(ev.Serialize())
	}

	return buf.Bytes()
}
