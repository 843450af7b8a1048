package rdp

import (
	"bytes"
	"encoding/binary"
)

// SetOutputSuppressed sends a Suppress Output PDU
// ([MS-RDPBCGR] 2.2.11.3) asking the server to stop (suppress=true) or
// resume (suppress=false) sending graphics updates. Resuming includes the
// full desktop rectangle so the server repaints everything it withheld.
func (c *Client) SetOutputSuppressed(suppress bool) error {
	suppressData := buildSuppressOutputData(suppress, c.desktopWidth, c.desktopHeight)

	// pduType2 = 0x23 (PDUTYPE2_SUPPRESS_OUTPUT)
	shareDataHeaderData := buildShareDataHeader(c.shareID, c.userID, 0x23, suppressData)

	// PDUTYPE_DATAPDU = 0x0007
	shareControlData := buildShareControlHeader(0x0007, c.userID, shareDataHeaderData)

	return c.mcsLayer.Send(c.userID, c.channelIDMap["global"], shareControlData)
}

// buildSuppressOutputData encodes TS_SUPPRESS_OUTPUT_PDU:
// allowDisplayUpdates (1 byte) + pad3Octets, then the inclusive desktop
// rectangle — present only when updates are being re-allowed.
func buildSuppressOutputData(suppress bool, width, height uint16) []byte {
	buf := new(bytes.Buffer)

	// allowDisplayUpdates: SUPPRESS_DISPLAY_UPDATES = 0, ALLOW_DISPLAY_UPDATES = 1
	allow := uint8(1)
	if suppress {
		allow = 0
	}
	_ = binary.Write(buf, binary.LittleEndian, allow)
	// pad3Octets
	_ = binary.Write(buf, binary.LittleEndian, uint8(0))
	_ = binary.Write(buf, binary.LittleEndian, uint8(0))
	_ = binary.Write(buf, binary.LittleEndian, uint8(0))

	if suppress {
		return buf.Bytes()
	}

	right := width
	if right > 0 {
		right--
	}
	bottom := height
	if bottom > 0 {
		bottom--
	}

	_ = binary.Write(buf, binary.LittleEndian, uint16(0)) // left
	_ = binary.Write(buf, binary.LittleEndian, uint16(0)) // top
	_ = binary.Write(buf, binary.LittleEndian, right)
	_ = binary.Write(buf, binary.LittleEndian, bottom)

	return buf.Bytes()
}
