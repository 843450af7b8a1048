package pdu

import (
	"bytes"
	"encoding/binary"
	"io"
)

// CapabilitySetType identifies the kind of capability set carried in a
// Demand Active or Confirm Active PDU (MS-RDPBCGR 2.2.7.1).
type CapabilitySetType uint16

const (
	CapabilitySetTypeGeneral                CapabilitySetType = 0x0001
	CapabilitySetTypeBitmap                 CapabilitySetType = 0x0002
	CapabilitySetTypeOrder                  CapabilitySetType = 0x0003
	CapabilitySetTypeBitmapCache            CapabilitySetType = 0x0004
	CapabilitySetTypeControl                CapabilitySetType = 0x0005
	CapabilitySetTypeActivation             CapabilitySetType = 0x0007
	CapabilitySetTypePointer                CapabilitySetType = 0x0008
	CapabilitySetTypeShare                  CapabilitySetType = 0x0009
	CapabilitySetTypeColorCache             CapabilitySetType = 0x000A
	CapabilitySetTypeSound                  CapabilitySetType = 0x000C
	CapabilitySetTypeInput                  CapabilitySetType = 0x000D
	CapabilitySetTypeFont                   CapabilitySetType = 0x000E
	CapabilitySetTypeBrush                  CapabilitySetType = 0x000F
	CapabilitySetTypeGlyphCache             CapabilitySetType = 0x0010
	CapabilitySetTypeOffscreenBitmapCache   CapabilitySetType = 0x0011
	CapabilitySetTypeBitmapCacheHostSupport CapabilitySetType = 0x0012
	CapabilitySetTypeBitmapCacheRev2        CapabilitySetType = 0x0013
	CapabilitySetTypeVirtualChannel         CapabilitySetType = 0x0014
	CapabilitySetTypeDrawNineGridCache      CapabilitySetType = 0x0015
	CapabilitySetTypeDrawGDIPlus            CapabilitySetType = 0x0016
	CapabilitySetTypeRail                   CapabilitySetType = 0x0017
	CapabilitySetTypeWindow                 CapabilitySetType = 0x0018
	CapabilitySetTypeCompDesk               CapabilitySetType = 0x0019
	CapabilitySetTypeMultifragmentUpdate    CapabilitySetType = 0x001A
	CapabilitySetTypeLargePointer           CapabilitySetType = 0x001B
	CapabilitySetTypeSurfaceCommands        CapabilitySetType = 0x001C
	CapabilitySetTypeBitmapCodecs           CapabilitySetType = 0x001D
	CapabilitySetTypeFrameAcknowledge       CapabilitySetType = 0x001E
)

// CapabilitySet is a tagged union wrapping the one concrete capability set
// selected by CapabilitySetType. Only the field matching the type is populated
// on a given instance; the rest stay nil.
type CapabilitySet struct {
	CapabilitySetType CapabilitySetType

	GeneralCapabilitySet                *GeneralCapabilitySet
	BitmapCapabilitySet                 *BitmapCapabilitySet
	OrderCapabilitySet                  *OrderCapabilitySet
	BitmapCacheCapabilitySetRev1        *BitmapCacheCapabilitySetRev1
	BitmapCacheCapabilitySetRev2        *BitmapCacheCapabilitySetRev2
	ColorCacheCapabilitySet             *ColorCacheCapabilitySet
	ControlCapabilitySet                *ControlCapabilitySet
	WindowActivationCapabilitySet       *WindowActivationCapabilitySet
	PointerCapabilitySet                *PointerCapabilitySet
	ShareCapabilitySet                  *ShareCapabilitySet
	SoundCapabilitySet                  *SoundCapabilitySet
	InputCapabilitySet                  *InputCapabilitySet
	FontCapabilitySet                   *FontCapabilitySet
	BrushCapabilitySet                  *BrushCapabilitySet
	GlyphCacheCapabilitySet             *GlyphCacheCapabilitySet
	OffscreenBitmapCacheCapabilitySet   *OffscreenBitmapCacheCapabilitySet
	BitmapCacheHostSupportCapabilitySet *BitmapCacheHostSupportCapabilitySet
	VirtualChannelCapabilitySet         *VirtualChannelCapabilitySet
	MultifragmentUpdateCapabilitySet    *MultifragmentUpdateCapabilitySet
	LargePointerCapabilitySet           *LargePointerCapabilitySet
	DesktopCompositionCapabilitySet     *DesktopCompositionCapabilitySet

	// rawBody holds the capability set payload as received from the server
	// for types this client does not model in detail.
	rawBody []byte
}

// Serialize encodes the capability set (type header + length + body).
func (s *CapabilitySet) Serialize() []byte {
	var body []byte

	switch s.CapabilitySetType {
	case CapabilitySetTypeGeneral:
		body = s.GeneralCapabilitySet.Serialize()
	case CapabilitySetTypeBitmap:
		body = s.BitmapCapabilitySet.Serialize()
	case CapabilitySetTypeOrder:
		body = s.OrderCapabilitySet.Serialize()
	case CapabilitySetTypeBitmapCache:
		body = s.BitmapCacheCapabilitySetRev1.Serialize()
	case CapabilitySetTypeBitmapCacheRev2:
		body = s.BitmapCacheCapabilitySetRev2.Serialize()
	case CapabilitySetTypeColorCache:
		body = s.ColorCacheCapabilitySet.Serialize()
	case CapabilitySetTypeControl:
		body = s.ControlCapabilitySet.Serialize()
	case CapabilitySetTypeActivation:
		body = s.WindowActivationCapabilitySet.Serialize()
	case CapabilitySetTypePointer:
		body = s.PointerCapabilitySet.Serialize()
	case CapabilitySetTypeShare:
		body = s.ShareCapabilitySet.Serialize()
	case CapabilitySetTypeSound:
		body = s.SoundCapabilitySet.Serialize()
	case CapabilitySetTypeInput:
		body = s.InputCapabilitySet.Serialize()
	case CapabilitySetTypeFont:
		body = s.FontCapabilitySet.Serialize()
	case CapabilitySetTypeBrush:
		body = s.BrushCapabilitySet.Serialize()
	case CapabilitySetTypeGlyphCache:
		body = s.GlyphCacheCapabilitySet.Serialize()
	case CapabilitySetTypeOffscreenBitmapCache:
		body = s.OffscreenBitmapCacheCapabilitySet.Serialize()
	case CapabilitySetTypeVirtualChannel:
		body = s.VirtualChannelCapabilitySet.Serialize()
	case CapabilitySetTypeMultifragmentUpdate:
		body = s.MultifragmentUpdateCapabilitySet.Serialize()
	default:
		body = s.rawBody
	}

	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, uint16(s.CapabilitySetType))
	_ = binary.Write(buf, binary.LittleEndian, uint16(4+len(body))) // lengthCapability includes header
	buf.Write(body)

	return buf.Bytes()
}

// Deserialize decodes one capability set: type, length, then a type-specific body.
func (s *CapabilitySet) Deserialize(wire io.Reader) error {
	var (
		capType CapabilitySetType
		length  uint16
	)

	if err := binary.Read(wire, binary.LittleEndian, &capType); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &length); err != nil {
		return err
	}

	if length < 4 {
		return io.ErrUnexpectedEOF
	}

	body := make([]byte, length-4)
	if _, err := io.ReadFull(wire, body); err != nil {
		return err
	}

	s.CapabilitySetType = capType
	bodyReader := bytes.NewReader(body)

	switch capType {
	case CapabilitySetTypeGeneral:
		s.GeneralCapabilitySet = &GeneralCapabilitySet{}
		return s.GeneralCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeBitmap:
		s.BitmapCapabilitySet = &BitmapCapabilitySet{}
		return s.BitmapCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeOrder:
		s.OrderCapabilitySet = &OrderCapabilitySet{}
		return s.OrderCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeBitmapCache:
		s.BitmapCacheCapabilitySetRev1 = &BitmapCacheCapabilitySetRev1{}
		return s.BitmapCacheCapabilitySetRev1.Deserialize(bodyReader)
	case CapabilitySetTypeBitmapCacheRev2:
		s.BitmapCacheCapabilitySetRev2 = &BitmapCacheCapabilitySetRev2{}
		return s.BitmapCacheCapabilitySetRev2.Deserialize(bodyReader)
	case CapabilitySetTypePointer:
		s.PointerCapabilitySet = &PointerCapabilitySet{}
		return s.PointerCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeInput:
		s.InputCapabilitySet = &InputCapabilitySet{}
		return s.InputCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeSound:
		s.SoundCapabilitySet = &SoundCapabilitySet{}
		return s.SoundCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeFont:
		s.FontCapabilitySet = &FontCapabilitySet{}
		return s.FontCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeGlyphCache:
		s.GlyphCacheCapabilitySet = &GlyphCacheCapabilitySet{}
		return s.GlyphCacheCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeOffscreenBitmapCache:
		s.OffscreenBitmapCacheCapabilitySet = &OffscreenBitmapCacheCapabilitySet{}
		return s.OffscreenBitmapCacheCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeVirtualChannel:
		s.VirtualChannelCapabilitySet = &VirtualChannelCapabilitySet{}
		return s.VirtualChannelCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeMultifragmentUpdate:
		s.MultifragmentUpdateCapabilitySet = &MultifragmentUpdateCapabilitySet{}
		return s.MultifragmentUpdateCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeBitmapCacheHostSupport:
		s.BitmapCacheHostSupportCapabilitySet = &BitmapCacheHostSupportCapabilitySet{}
		return s.BitmapCacheHostSupportCapabilitySet.Deserialize(bodyReader)
	case CapabilitySetTypeLargePointer:
		s.LargePointerCapabilitySet = &LargePointerCapabilitySet{}
		return s.LargePointerCapabilitySet.Deserialize(bodyReader)
	default:
		// Unrecognized or intentionally-unsupported capability set (e.g. the
		// server still advertises RAIL or surface commands): keep the raw
		// body so the PDU round-trips, but the client does not act on it.
		s.rawBody = body
		return nil
	}
}

// ServerDemandActive represents the TS_DEMAND_ACTIVE_PDU sent by the server
// to initiate capability exchange (MS-RDPBCGR 2.2.1.13.1.1).
type ServerDemandActive struct {
	ShareID        uint32
	CapabilitySets []CapabilitySet
}

// Deserialize decodes the Demand Active PDU following the ShareControlHeader.
func (pdu *ServerDemandActive) Deserialize(wire io.Reader) error {
	var (
		shareID          uint32
		sourceDescLen    uint16
		combinedCapsLen  uint16
		numCapabilitySet uint16
		pad2octets       uint16
	)

	if err := binary.Read(wire, binary.LittleEndian, &shareID); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &sourceDescLen); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &combinedCapsLen); err != nil {
		return err
	}

	sourceDescriptor := make([]byte, sourceDescLen)
	if _, err := io.ReadFull(wire, sourceDescriptor); err != nil {
		return err
	}

	if err := binary.Read(wire, binary.LittleEndian, &numCapabilitySet); err != nil {
		return err
	}
	if err := binary.Read(wire, binary.LittleEndian, &pad2octets); err != nil {
		return err
	}

	pdu.ShareID = shareID
	pdu.CapabilitySets = make([]CapabilitySet, 0, numCapabilitySet)

	for i := uint16(0); i < numCapabilitySet; i++ {
		var capSet CapabilitySet
		if err := capSet.Deserialize(wire); err != nil {
			return err
		}
		pdu.CapabilitySets = append(pdu.CapabilitySets, capSet)
	}

	return nil
}

// ClientConfirmActive represents the TS_CONFIRM_ACTIVE_PDU sent by the client
// in response to a Demand Active PDU (MS-RDPBCGR 2.2.1.13.2.1).
type ClientConfirmActive struct {
	ShareID        uint32
	OriginatorID   uint16
	CapabilitySets []CapabilitySet
}

// NewClientConfirmActive builds the minimal Confirm Active capability set
// list this client needs: bitmap-only graphics, no drawing orders, and the
// housekeeping sets (control/activation/share) that most servers require to
// be present regardless of content.
func NewClientConfirmActive(shareID uint32, userID uint16, desktopWidth, desktopHeight uint16, _ bool) *ClientConfirmActive {
	return &ClientConfirmActive{
		ShareID:      shareID,
		OriginatorID: userID,
		CapabilitySets: []CapabilitySet{
			NewGeneralCapabilitySet(),
			NewBitmapCapabilitySet(desktopWidth, desktopHeight),
			NewOrderCapabilitySet(),
			*NewBitmapCacheCapabilitySetRev2(),
			{CapabilitySetType: CapabilitySetTypeControl, ControlCapabilitySet: &ControlCapabilitySet{}},
			{CapabilitySetType: CapabilitySetTypeActivation, WindowActivationCapabilitySet: &WindowActivationCapabilitySet{}},
			{CapabilitySetType: CapabilitySetTypeShare, ShareCapabilitySet: &ShareCapabilitySet{}},
			NewFontCapabilitySetWithFlags(),
			NewPointerCapabilitySet(),
			NewInputCapabilitySet(),
			NewBrushCapabilitySet(),
			NewGlyphCacheCapabilitySet(),
			NewOffscreenBitmapCacheCapabilitySet(),
			NewVirtualChannelCapabilitySet(),
			NewSoundCapabilitySet(),
			NewMultifragmentUpdateCapabilitySet(),
		},
	}
}

// NewFontCapabilitySetWithFlags creates a Font Capability Set advertising
// font list support, matching FontCapabilitySet's existing Serialize layout.
func NewFontCapabilitySetWithFlags() CapabilitySet {
	return CapabilitySet{
		CapabilitySetType: CapabilitySetTypeFont,
		FontCapabilitySet: &FontCapabilitySet{fontSupportFlags: 0x0001},
	}
}

// Serialize encodes the Confirm Active PDU body following the ShareControlHeader.
func (pdu *ClientConfirmActive) Serialize() []byte {
	capsBuf := new(bytes.Buffer)
	for _, capSet := range pdu.CapabilitySets {
		capsBuf.Write(capSet.Serialize())
	}

	sourceDescriptor := []byte(projectName + "\x00")

	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, pdu.ShareID)
	_ = binary.Write(buf, binary.LittleEndian, pdu.OriginatorID)
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(sourceDescriptor)))
	_ = binary.Write(buf, binary.LittleEndian, uint16(4+capsBuf.Len())) // numberCapabilities + pad + sets
	buf.Write(sourceDescriptor)
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(pdu.CapabilitySets)))
	_ = binary.Write(buf, binary.LittleEndian, uint16(0)) // pad2octets
	buf.Write(capsBuf.Bytes())

	header := newShareControlHeader(TypeConfirmActive, pdu.OriginatorID)
	header.TotalLength = uint16(6 + buf.Len()) // #nosec G115

	out := new(bytes.Buffer)
	out.Write(header.Serialize())
	out.Write(buf.Bytes())

	return out.Bytes()
}
