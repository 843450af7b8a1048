package rdp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rcarmo/go-rdp/internal/codec"
	"github.com/rcarmo/go-rdp/internal/display"
	"github.com/rcarmo/go-rdp/internal/logging"
	"github.com/rcarmo/go-rdp/internal/protocol/fastpath"
	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
)

// BitmapDataFlag mirrors fastpath.BitmapDataFlag for the slow-path bitmap
// rectangles decoded here; both paths share the same on-the-wire flags.
const (
	bitmapFlagCompression = fastpath.BitmapDataFlagCompression
	bitmapFlagNoHDR       = fastpath.BitmapDataFlagNoHDR
)

// classifyReadErr assigns a receive failure to the error taxonomy: stream
// and socket errors are transport failures, anything else coming out of a
// frame parse is a framing error.
func classifyReadErr(err error) error {
	var ne net.Error
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.As(err, &ne) {
		return ErrTransport
	}
	return ErrProtocolFraming
}

// GetUpdate blocks for the next server update, applies it to the display
// surface, and returns a summary for callers that want to observe progress
// (tests, diagnostics). Slow-path (X.224) updates return a nil Update with a
// nil error; Fast-Path updates return their raw payload. Callers should
// simply loop.
func (c *Client) GetUpdate() (*Update, error) {
	protocol, err := receiveProtocol(c.buffReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if protocol.IsX224() {
		if err := c.getX224Update(); err != nil {
			if errors.Is(err, pdu.ErrDeactivateAll) {
				return nil, err
			}
			return nil, fmt.Errorf("get X.224 update: %w", err)
		}
		return nil, nil
	}

	fpPDU, err := c.fastPath.Receive()
	if err != nil {
		return nil, fmt.Errorf("%w: fastpath receive: %w", classifyReadErr(err), err)
	}

	if err := c.dispatchFastPathUpdates(fpPDU.Data); err != nil {
		logging.Warn("fastpath update dropped: %v", err)
	}

	return &Update{Data: fpPDU.Data}, nil
}

// dispatchFastPathUpdates decodes each Update record packed into a Fast-Path
// Update PDU's payload and applies it to the display surface. A decode
// failure on one record is logged and the remaining bytes are abandoned;
// per the bitmap-decode error policy, this is recovered locally rather than
// fatal to the session.
func (c *Client) dispatchFastPathUpdates(data []byte) error {
	wire := bytes.NewReader(data)

	for wire.Len() > 0 {
		var upd fastpath.Update
		if err := upd.Deserialize(wire); err != nil {
			return fmt.Errorf("decode fastpath update: %w", err)
		}

		if err := c.applyUpdate(upd.UpdateCode, upd.Data); err != nil {
			logging.Warn("apply update code=%d: %v", upd.UpdateCode, err)
		}
	}

	return nil
}

func (c *Client) applyUpdate(code fastpath.UpdateCode, data []byte) error {
	wire := bytes.NewReader(data)

	switch code {
	case fastpath.UpdateCodeBitmap:
		var bmp fastpath.BitmapUpdateData
		if err := bmp.Deserialize(wire); err != nil {
			return err
		}
		return c.applyBitmapRectangles(bmp.Rectangles)

	case fastpath.UpdateCodePalette:
		var pal fastpath.PaletteUpdateData
		if err := pal.Deserialize(wire); err != nil {
			return err
		}
		entries := make([]byte, len(pal.PaletteEntries)*3)
		for i, e := range pal.PaletteEntries {
			entries[i*3], entries[i*3+1], entries[i*3+2] = e.Red, e.Green, e.Blue
		}
		c.Surface.SetPalette(entries)
		return nil

	case fastpath.UpdateCodePTRPosition:
		var pos fastpath.PointerPositionUpdateData
		if err := pos.Deserialize(wire); err != nil {
			return err
		}
		c.Surface.SetPointerPosition(int(pos.XPos), int(pos.YPos), pointerFPSCap)
		return nil

	case fastpath.UpdateCodeColor, fastpath.UpdateCodeCached:
		var ptr fastpath.ColorPointerUpdateData
		if err := ptr.Deserialize(wire); err != nil {
			return err
		}
		cursor := buildCursorFromColorPointer(&ptr)
		c.Surface.SetPointerCursor(cursor)
		c.Surface.SetPointerVisible(true)
		return nil

	case fastpath.UpdateCodePTRNull:
		c.Surface.SetPointerVisible(false)
		return nil

	case fastpath.UpdateCodePTRDefault:
		c.Surface.SetPointerCursor(nil)
		c.Surface.SetPointerVisible(true)
		return nil

	case fastpath.UpdateCodeSynchronize, fastpath.UpdateCodeOrders,
		fastpath.UpdateCodeSurfCMDs, fastpath.UpdateCodeLargePointer, fastpath.UpdateCodePointer:
		// No-op: drawing orders, surface commands, and large/generic pointer
		// updates are outside this client's rendering scope (bitmap-only).
		return nil

	default:
		return fmt.Errorf("unknown update code %#x", code)
	}
}

// pointerFPSCap bounds how often position-only pointer updates are applied
// to the surface, per the session's target capture frame rate.
const pointerFPSCap = 30

func (c *Client) applyBitmapRectangles(rects []fastpath.BitmapData) error {
	for _, r := range rects {
		start := time.Now()

		width, height := int(r.Width), int(r.Height)

		compressed := r.Flags&bitmapFlagCompression != 0
		rowDelta := width * int(r.BitsPerPixel) / 8

		rgb, err := codec.DecompressToRGB24(r.BitmapDataStream, width, height, int(r.BitsPerPixel), compressed, rowDelta, c.Surface.Palette())
		if err != nil {
			return fmt.Errorf("decode bitmap rect %dx%d bpp=%d: %w", width, height, r.BitsPerPixel, err)
		}

		if err := c.Surface.ApplyRect(int(r.DestLeft), int(r.DestTop), width, height, rgb); err != nil {
			return err
		}

		if c.bitmapObserver != nil {
			c.bitmapObserver(time.Since(start))
		}
	}

	return nil
}

func buildCursorFromColorPointer(ptr *fastpath.ColorPointerUpdateData) *display.Cursor {
	width, height := int(ptr.Width), int(ptr.Height)
	rgba := make([]byte, width*height*4)

	// XOR mask is 24-bit BGR, bottom-up, row-padded to a 2-byte boundary.
	xorStride := ((width*3 + 1) / 2) * 2
	for y := 0; y < height; y++ {
		srcRow := (height - 1 - y) * xorStride
		for x := 0; x < width; x++ {
			srcOff := srcRow + x*3
			if srcOff+2 >= len(ptr.XorMaskData) {
				continue
			}
			dstOff := (y*width + x) * 4
			rgba[dstOff] = ptr.XorMaskData[srcOff+2]
			rgba[dstOff+1] = ptr.XorMaskData[srcOff+1]
			rgba[dstOff+2] = ptr.XorMaskData[srcOff]
			rgba[dstOff+3] = 255
		}
	}

	// AND mask is a 1-bpp transparency mask, bottom-up, row-padded to 2 bytes.
	andStride := (((width + 7) / 8) + 1) / 2 * 2
	for y := 0; y < height; y++ {
		srcRow := (height - 1 - y) * andStride
		for x := 0; x < width; x++ {
			byteOff := srcRow + x/8
			if byteOff >= len(ptr.AndMaskData) {
				continue
			}
			bit := ptr.AndMaskData[byteOff] & (0x80 >> uint(x%8))
			if bit != 0 {
				rgba[(y*width+x)*4+3] = 0
			}
		}
	}

	return &display.Cursor{Width: width, Height: height, HotX: 0, HotY: 0, RGBA: rgba}
}

func (c *Client) getX224Update() error {
	_, wire, err := c.mcsLayer.Receive()
	if err != nil {
		return fmt.Errorf("%w: mcs receive: %w", classifyReadErr(err), err)
	}

	var shareControlHeader pdu.ShareControlHeader
	if err = shareControlHeader.Deserialize(wire); err != nil {
		return fmt.Errorf("%w: share control header: %w", ErrProtocolFraming, err)
	}

	if shareControlHeader.PDUType.IsDeactivateAll() {
		return pdu.ErrDeactivateAll
	}

	var shareID uint32
	var padding, streamID uint8
	var uncompressedLength uint16
	var pduType2 pdu.Type2
	var compressedType uint8
	var compressedLength uint16

	_ = binary.Read(wire, binary.LittleEndian, &shareID)
	_ = binary.Read(wire, binary.LittleEndian, &padding)
	_ = binary.Read(wire, binary.LittleEndian, &streamID)
	_ = binary.Read(wire, binary.LittleEndian, &uncompressedLength)
	_ = binary.Read(wire, binary.LittleEndian, &pduType2)
	_ = binary.Read(wire, binary.LittleEndian, &compressedType)
	_ = binary.Read(wire, binary.LittleEndian, &compressedLength)

	if pduType2.IsUpdate() {
		return c.handleSlowPathGraphicsUpdate(wire)
	}

	if pduType2.IsErrorInfo() {
		var errorInfo pdu.ErrorInfoPDUData
		if err := errorInfo.Deserialize(wire); err == nil {
			logging.Warn("received error info: %s", errorInfo.String())
		}
		return nil
	}

	return nil
}

// Slow-path update types (MS-RDPBCGR 2.2.9.1.1.3.1).
const (
	SlowPathUpdateTypeOrders      uint16 = 0x0000
	SlowPathUpdateTypeBitmap      uint16 = 0x0001
	SlowPathUpdateTypePalette     uint16 = 0x0002
	SlowPathUpdateTypeSynchronize uint16 = 0x0003
)

// handleSlowPathGraphicsUpdate decodes a Slow-Path Graphics Update and
// applies it to the display surface. It shares the bitmap/palette decode
// path with Fast-Path by re-using fastpath's update payload types: the
// wire format after the updateType field is identical.
func (c *Client) handleSlowPathGraphicsUpdate(wire io.Reader) error {
	var updateType uint16
	if err := binary.Read(wire, binary.LittleEndian, &updateType); err != nil {
		return err
	}

	// Bitmap and Palette Update Data structures carry their own (redundant)
	// updateType field, shared verbatim with the Fast-Path payload shape;
	// rebuild the stream so fastpath's decoders see it where they expect it.
	var typeBytes [2]byte
	binary.LittleEndian.PutUint16(typeBytes[:], updateType)
	prefixed := io.MultiReader(bytes.NewReader(typeBytes[:]), wire)

	switch updateType {
	case SlowPathUpdateTypeBitmap:
		var bmp fastpath.BitmapUpdateData
		if err := bmp.Deserialize(prefixed); err != nil {
			return err
		}
		return c.applyBitmapRectangles(bmp.Rectangles)

	case SlowPathUpdateTypePalette:
		var pal fastpath.PaletteUpdateData
		if err := pal.Deserialize(prefixed); err != nil {
			return err
		}
		entries := make([]byte, len(pal.PaletteEntries)*3)
		for i, e := range pal.PaletteEntries {
			entries[i*3], entries[i*3+1], entries[i*3+2] = e.Red, e.Green, e.Blue
		}
		c.Surface.SetPalette(entries)
		return nil

	case SlowPathUpdateTypeSynchronize:
		return nil

	default:
		return nil
	}
}
