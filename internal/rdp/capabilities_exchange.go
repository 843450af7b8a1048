package rdp

import (
	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
)

// capabilitiesExchange implements the Capabilities Exchange phase of the
// connection sequence (MS-RDPBCGR 1.3.1.1): the server announces its
// capabilities via a Demand Active PDU, and the client answers with a
// Confirm Active PDU advertising only what this client actually implements
// (bitmap updates, no drawing orders, no RemoteFX/RAIL).
func (c *Client) capabilitiesExchange() error {
	_, wire, err := c.mcsLayer.Receive()
	if err != nil {
		return err
	}

	var resp pdu.ServerDemandActive
	if err = resp.Deserialize(wire); err != nil {
		return err
	}

	c.shareID = resp.ShareID
	c.serverCapabilitySets = resp.CapabilitySets

	req := pdu.NewClientConfirmActive(resp.ShareID, c.userID, c.desktopWidth, c.desktopHeight, false)

	return c.mcsLayer.Send(c.userID, c.channelIDMap["global"], req.Serialize())
}
