package input

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
)

// MouseButton identifies which button a mouse event applies to.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota + 1
	MouseButtonRight
	MouseButtonMiddle
)

func (b MouseButton) flag() uint16 {
	switch b {
	case MouseButtonRight:
		return pdu.PTRFlagsButton2
	case MouseButtonMiddle:
		return pdu.PTRFlagsButton3
	default:
		return pdu.PTRFlagsButton1
	}
}

// DoubleClickInterval is the maximum spacing between two clicks that the
// server still recognizes as a double-click (MS-RDPBCGR does not mandate a
// value; 250ms matches the common Windows default).
const DoubleClickInterval = 250 * time.Millisecond

// doubleClickGap is the pacing delay this encoder inserts between the two
// clicks of a DoubleClick call; it must stay comfortably under
// DoubleClickInterval.
const doubleClickGap = 60 * time.Millisecond

// Sender writes one already-encoded TS_INPUT_PDU_DATA body to the server
// inside a Client Input Event PDU. rdp.Client satisfies this.
type Sender interface {
	SendInputEvent(data []byte) error
}

// Encoder sequences mouse and keyboard automation calls into slow-path
// Client Input Event PDUs and writes them to the server one at a time. A
// single mutex serializes the writes: a second SendKey (or any other input
// call) does not begin until the prior call's PDU has been fully written
// to the socket.
type Encoder struct {
	mu     sync.Mutex
	sender Sender
}

// New returns an Encoder that writes events through sender.
func New(sender Sender) *Encoder {
	return &Encoder{sender: sender}
}

func (e *Encoder) send(ev *pdu.SlowInputEvent) error {
	return e.sender.SendInputEvent(pdu.NewInputEventPDU([]*pdu.SlowInputEvent{ev}))
}

// MouseMove moves the pointer to absolute coordinates (x, y).
func (e *Encoder) MouseMove(x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.send(pdu.NewSlowMouseEvent(pdu.PTRFlagsMove, uint16(x), uint16(y)))
}

// MouseButtonDown presses button at (x, y).
func (e *Encoder) MouseButtonDown(x, y int, button MouseButton) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.send(pdu.NewSlowMouseEvent(pdu.PTRFlagsDown|button.flag(), uint16(x), uint16(y)))
}

// MouseButtonUp releases button at (x, y).
func (e *Encoder) MouseButtonUp(x, y int, button MouseButton) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.send(pdu.NewSlowMouseEvent(button.flag(), uint16(x), uint16(y)))
}

// MouseClick performs a single click at (x, y): a move, a button-down, and
// a button-up, in that order.
func (e *Encoder) MouseClick(x, y int, button MouseButton) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.send(pdu.NewSlowMouseEvent(pdu.PTRFlagsMove, uint16(x), uint16(y))); err != nil {
		return fmt.Errorf("mouse move: %w", err)
	}
	if err := e.send(pdu.NewSlowMouseEvent(pdu.PTRFlagsDown|button.flag(), uint16(x), uint16(y))); err != nil {
		return fmt.Errorf("mouse button down: %w", err)
	}
	if err := e.send(pdu.NewSlowMouseEvent(button.flag(), uint16(x), uint16(y))); err != nil {
		return fmt.Errorf("mouse button up: %w", err)
	}

	return nil
}

// MouseDoubleClick performs two clicks separated by less than
// DoubleClickInterval, so the server's double-click detection fires.
func (e *Encoder) MouseDoubleClick(x, y int, button MouseButton) error {
	if err := e.MouseClick(x, y, button); err != nil {
		return err
	}
	time.Sleep(doubleClickGap)
	return e.MouseClick(x, y, button)
}

// MouseDrag presses button at (fromX, fromY), moves to (toX, toY), then
// releases.
func (e *Encoder) MouseDrag(fromX, fromY, toX, toY int, button MouseButton) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.send(pdu.NewSlowMouseEvent(pdu.PTRFlagsMove, uint16(fromX), uint16(fromY))); err != nil {
		return fmt.Errorf("mouse move: %w", err)
	}
	if err := e.send(pdu.NewSlowMouseEvent(pdu.PTRFlagsDown|button.flag(), uint16(fromX), uint16(fromY))); err != nil {
		return fmt.Errorf("mouse button down: %w", err)
	}
	if err := e.send(pdu.NewSlowMouseEvent(pdu.PTRFlagsMove, uint16(toX), uint16(toY))); err != nil {
		return fmt.Errorf("mouse move: %w", err)
	}
	if err := e.send(pdu.NewSlowMouseEvent(button.flag(), uint16(toX), uint16(toY))); err != nil {
		return fmt.Errorf("mouse button up: %w", err)
	}

	return nil
}

// MouseWheel scrolls by delta at (x, y); positive delta scrolls up/right.
func (e *Encoder) MouseWheel(x, y int, delta int16, horizontal bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	flags := pdu.PTRFlagsWheel
	if horizontal {
		flags = pdu.PTRFlagsHWheel
	}

	magnitude := delta
	if magnitude < 0 {
		flags |= pdu.PTRFlagsWheelNegative
		magnitude = -magnitude
	}
	// The wheel rotation amount occupies the low byte of pointerFlags,
	// per [MS-RDPBCGR] 2.2.8.1.1.3.1.1.3.
	flags |= uint16(magnitude) & 0xFF

	return e.send(pdu.NewSlowMouseEvent(flags, uint16(x), uint16(y)))
}

// SendScancode presses, or releases, the key identified by a web-style
// KeyboardEvent.code string (see Keycodes). release selects the transition:
// false sends a press, true sends a release. A full key tap is two calls
// (see SendKeyTap).
func (e *Encoder) SendScancode(key string, release bool) error {
	sc, ok := LookupScancode(key)
	if !ok {
		return fmt.Errorf("input: unknown key %q", key)
	}

	var flags uint16
	if release {
		flags |= pdu.ScancodeRelease
	}
	if sc.Extended {
		flags |= pdu.ScancodeExtended
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.send(pdu.NewSlowScancodeEvent(flags, sc.Code))
}

// SendKeyTap presses and releases the named key.
func (e *Encoder) SendKeyTap(key string) error {
	if err := e.SendScancode(key, false); err != nil {
		return err
	}
	return e.SendScancode(key, true)
}

// sendUnicodeUnit presses then releases a single UTF-16 code unit.
func (e *Encoder) sendUnicodeUnit(unit uint16) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.send(pdu.NewSlowUnicodeEvent(0, unit)); err != nil {
		return fmt.Errorf("unicode press: %w", err)
	}
	if err := e.send(pdu.NewSlowUnicodeEvent(pdu.ScancodeRelease, unit)); err != nil {
		return fmt.Errorf("unicode release: %w", err)
	}

	return nil
}

// SendText types each code point of text as a Unicode keyboard event pair
// (press then release). Code points outside the Basic Multilingual Plane
// are split into a UTF-16 surrogate pair and sent as two events.
func (e *Encoder) SendText(text string) error {
	for _, r := range text {
		if r <= 0xFFFF {
			if err := e.sendUnicodeUnit(uint16(r)); err != nil {
				return err
			}
			continue
		}

		hi, lo := utf16.EncodeRune(r)
		if err := e.sendUnicodeUnit(uint16(hi)); err != nil {
			return err
		}
		if err := e.sendUnicodeUnit(uint16(lo)); err != nil {
			return err
		}
	}

	return nil
}
