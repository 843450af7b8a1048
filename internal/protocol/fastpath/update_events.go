package fastpath

import (
	"encoding/binary"
	"io"
)

// PaletteEntry is one RGB triplet of a Palette Update (MS-RDPBCGR 2.2.9.1.1.3.1.1.1).
type PaletteEntry struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Deserialize decodes one palette entry.
func (e *PaletteEntry) Deserialize(wire io.Reader) error {
	var rgb [3]byte
	if _, err := io.ReadFull(wire, rgb[:]); err != nil {
		return err
	}

	e.Red, e.Green, e.Blue = rgb[0], rgb[1], rgb[2]

	return nil
}

// PaletteUpdateData is the payload of a Palette Update (MS-RDPBCGR 2.2.9.1.1.3.1.1).
type PaletteUpdateData struct {
	PaletteEntries []PaletteEntry
}

// Deserialize decodes updateType, padding, numberColors, then that many entries.
func (d *PaletteUpdateData) Deserialize(wire io.Reader) error {
	var updateType, pad, numberColors uint16

	if err := binary.Read(wire, binary.LittleEndian, &updateType); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &pad); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &numberColors); err != nil {
		return err
	}

	d.PaletteEntries = make([]PaletteEntry, numberColors)
	for i := range d.PaletteEntries {
		if err := d.PaletteEntries[i].Deserialize(wire); err != nil {
			return err
		}
	}

	return nil
}

// CompressedDataHeader is the optional 8-byte header preceding RLE-compressed
// bitmap data when the NO_BITMAP_COMPRESSION_HDR flag is absent
// (MS-RDPBCGR 2.2.9.1.1.3.1.2.3).
type CompressedDataHeader struct {
	CbCompFirstRowSize uint16
	CbCompMainBodySize uint16
	CbScanWidth        uint16
	CbUncompressedSize uint16
}

// Deserialize decodes the compression header.
func (h *CompressedDataHeader) Deserialize(wire io.Reader) error {
	if err := binary.Read(wire, binary.LittleEndian, &h.CbCompFirstRowSize); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &h.CbCompMainBodySize); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &h.CbScanWidth); err != nil {
		return err
	}
	return binary.Read(wire, binary.LittleEndian, &h.CbUncompressedSize)
}

// BitmapDataFlag marks how a bitmap rectangle's payload is encoded
// (MS-RDPBCGR 2.2.9.1.1.3.1.2).
type BitmapDataFlag uint16

const (
	BitmapDataFlagCompression BitmapDataFlag = 0x0001
	BitmapDataFlagNoHDR       BitmapDataFlag = 0x0400
)

// BitmapData is one rectangle of a Bitmap Update (MS-RDPBCGR 2.2.9.1.1.3.1.2).
type BitmapData struct {
	DestLeft     uint16
	DestTop      uint16
	DestRight    uint16
	DestBottom   uint16
	Width        uint16
	Height       uint16
	BitsPerPixel uint16
	Flags        BitmapDataFlag
	BitmapLength uint16

	CompressedHeader *CompressedDataHeader
	BitmapDataStream []byte
}

// Deserialize decodes one bitmap rectangle, including the optional 8-byte
// compression header and the raw (possibly RLE-compressed) pixel stream.
func (d *BitmapData) Deserialize(wire io.Reader) error {
	fields := []*uint16{
		&d.DestLeft, &d.DestTop, &d.DestRight, &d.DestBottom,
		&d.Width, &d.Height, &d.BitsPerPixel,
	}
	for _, f := range fields {
		if err := binary.Read(wire, binary.LittleEndian, f); err != nil {
			return err
		}
	}

	var flags uint16
	if err := binary.Read(wire, binary.LittleEndian, &flags); err != nil {
		return err
	}
	d.Flags = BitmapDataFlag(flags)

	if err := binary.Read(wire, binary.LittleEndian, &d.BitmapLength); err != nil {
		return err
	}

	streamLen := int(d.BitmapLength)

	if d.Flags&BitmapDataFlagCompression != 0 && d.Flags&BitmapDataFlagNoHDR == 0 {
		hdr := &CompressedDataHeader{}
		if err := hdr.Deserialize(wire); err != nil {
			return err
		}
		d.CompressedHeader = hdr
		streamLen -= 8
	}

	if streamLen < 0 {
		return io.ErrUnexpectedEOF
	}

	d.BitmapDataStream = make([]byte, streamLen)
	_, err := io.ReadFull(wire, d.BitmapDataStream)

	return err
}

// BitmapUpdateData is the payload of a Bitmap Update (MS-RDPBCGR 2.2.9.1.1.3.1).
type BitmapUpdateData struct {
	Rectangles []BitmapData
}

// Deserialize decodes updateType, numberRectangles, then that many rectangles.
func (d *BitmapUpdateData) Deserialize(wire io.Reader) error {
	var updateType, numberRectangles uint16

	if err := binary.Read(wire, binary.LittleEndian, &updateType); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &numberRectangles); err != nil {
		return err
	}

	d.Rectangles = make([]BitmapData, numberRectangles)
	for i := range d.Rectangles {
		if err := d.Rectangles[i].Deserialize(wire); err != nil {
			return err
		}
	}

	return nil
}

// PointerPositionUpdateData is the payload of a Pointer Position Update
// (MS-RDPBCGR 2.2.9.1.1.4.2).
type PointerPositionUpdateData struct {
	XPos uint16
	YPos uint16
}

// Deserialize decodes xPos, yPos.
func (d *PointerPositionUpdateData) Deserialize(wire io.Reader) error {
	if err := binary.Read(wire, binary.LittleEndian, &d.XPos); err != nil {
		return err
	}
	return binary.Read(wire, binary.LittleEndian, &d.YPos)
}

// ColorPointerUpdateData is the payload of a Color Pointer Update
// (MS-RDPBCGR 2.2.9.1.1.4.4): a cached 24-bit cursor bitmap with separate
// AND and XOR masks.
type ColorPointerUpdateData struct {
	CacheIndex    uint16
	XPos          uint16
	YPos          uint16
	Width         uint16
	Height        uint16
	LengthAndMask uint16
	LengthXorMask uint16
	XorMaskData   []byte
	AndMaskData   []byte
}

// Deserialize decodes the color pointer header followed by the XOR mask then
// the AND mask, per MS-RDPBCGR's on-the-wire ordering.
func (d *ColorPointerUpdateData) Deserialize(wire io.Reader) error {
	fields := []*uint16{
		&d.CacheIndex, &d.XPos, &d.YPos, &d.Width, &d.Height,
		&d.LengthAndMask, &d.LengthXorMask,
	}
	for _, f := range fields {
		if err := binary.Read(wire, binary.LittleEndian, f); err != nil {
			return err
		}
	}

	if d.LengthXorMask > 0 {
		d.XorMaskData = make([]byte, d.LengthXorMask)
		if _, err := io.ReadFull(wire, d.XorMaskData); err != nil {
			return err
		}
	}
	if d.LengthAndMask > 0 {
		d.AndMaskData = make([]byte, d.LengthAndMask)
		if _, err := io.ReadFull(wire, d.AndMaskData); err != nil {
			return err
		}
	}

	var pad [1]byte
	_, _ = io.ReadFull(wire, pad[:])

	return nil
}
