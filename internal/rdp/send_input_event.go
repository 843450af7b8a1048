package rdp

import "github.com/rcarmo/go-rdp/internal/protocol/pdu"

// SendInputEvent sends a Client Input Event PDU (MS-RDPBCGR 2.2.8.1.1.3): the
// slow-path TS_INPUT_PDU_DATA, wrapped in a Share Data header and a Share
// Control header. data is the already-encoded TS_INPUT_PDU_DATA body (see
// pdu.NewInputEventPDU).
func (c *Client) SendInputEvent(data []byte) error {
	shareDataHeaderData := buildShareDataHeader(c.shareID, c.userID, uint8(pdu.Type2Input), data)
	shareControlData := buildShareControlHeader(uint16(pdu.TypeData), c.userID, shareDataHeaderData)

	return c.mcsLayer.Send(c.userID, c.channelIDMap["global"], shareControlData)
}
