package rdp

import "github.com/rcarmo/go-rdp/internal/input"

// Scancode and Keycodes re-export the library's web-key-to-RDP-scancode
// table for a viewer frontend built against this package, so such a
// frontend never has to reach into internal packages for it.
type Scancode = input.Scancode

// Keycodes maps web-style KeyboardEvent.code identifiers to RDP scancodes.
var Keycodes = input.Keycodes

// MouseButton identifies which button a mouse event applies to.
type MouseButton = input.MouseButton

const (
	MouseButtonLeft   = input.MouseButtonLeft
	MouseButtonRight  = input.MouseButtonRight
	MouseButtonMiddle = input.MouseButtonMiddle
)
