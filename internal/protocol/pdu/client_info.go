package pdu

import (
	"bytes"
	"encoding/binary"

	"github.com/rcarmo/go-rdp/internal/codec"
)

// Info flags for the Client Info PDU's TS_INFO_PACKET.Flags field
// (MS-RDPBCGR 2.2.1.11.1.1).
const (
	InfoMouse              uint32 = 0x00000001
	InfoDisableCtrlAltDel  uint32 = 0x00000002
	InfoAutoLogon          uint32 = 0x00000008
	InfoUnicode            uint32 = 0x00000010
	InfoMaximizeShell      uint32 = 0x00000020
	InfoLogonNotify        uint32 = 0x00000040
	InfoCompression        uint32 = 0x00000080
	InfoEnableWindowsKey   uint32 = 0x00000100
	InfoRemoteConsoleAudio uint32 = 0x00002000
	InfoForceEncryptedCS   uint32 = 0x00004000
	InfoRail               uint32 = 0x00008000
	InfoLogonErrors        uint32 = 0x00010000
	InfoMouseHasWheel      uint32 = 0x00020000
	InfoPasswordIsScPin    uint32 = 0x00040000
	InfoNoAudioPlayback    uint32 = 0x00080000
	InfoUsingSavedCreds    uint32 = 0x00100000
	InfoAudioCapture       uint32 = 0x00200000
	InfoVideoDisable       uint32 = 0x00400000
	InfoHidefRailSupported uint32 = 0x02000000
)

// Performance flags for TS_EXTENDED_INFO_PACKET.performanceFlags
// (MS-RDPBCGR 2.2.1.11.1.1.1), used to trade desktop visual effects for
// update throughput on automation connections.
const (
	PerfDisableWallpaper         uint32 = 0x00000001
	PerfDisableFullWindowDrag    uint32 = 0x00000002
	PerfDisableMenuAnimations    uint32 = 0x00000004
	PerfDisableTheming           uint32 = 0x00000008
	PerfDisableCursorShadow      uint32 = 0x00000020
	PerfDisableCursorSettings    uint32 = 0x00000040
	PerfEnableFontSmoothing      uint32 = 0x00000080
	PerfEnableDesktopComposition uint32 = 0x00000100
)

// FastModePerformanceFlags is the "fast" automation flag set: disable
// wallpaper, menu animations, theming, and cursor shadow.
const FastModePerformanceFlags = PerfDisableWallpaper | PerfDisableMenuAnimations | PerfDisableTheming | PerfDisableCursorShadow

// secInfoPkt is SEC_INFO_PKT (MS-RDPBCGR 2.2.8.1.1.2.1): the security header
// flag marking a PDU as a Client Info PDU.
const secInfoPkt uint16 = 0x0040

// InfoPacket is the TS_INFO_PACKET carried by the Client Info PDU
// (MS-RDPBCGR 2.2.1.11.1.1): logon credentials plus client behavior flags.
type InfoPacket struct {
	CodePage uint32
	Flags    uint32

	Domain         string
	UserName       string
	Password       string
	AlternateShell string
	WorkingDir     string

	// ClientAddress and ClientDir feed the TS_EXTENDED_INFO_PACKET; both
	// may be left empty for a headless automation client.
	ClientAddress string
	ClientDir     string

	PerformanceFlags uint32
}

// ClientInfo is the Client Info PDU (MS-RDPBCGR 2.2.1.11): sent once,
// unconditionally, during Secure Settings Exchange.
type ClientInfo struct {
	InfoPacket InfoPacket
}

// NewClientInfo builds a Client Info PDU carrying domain/username/password
// and the flags sent on every connection: MOUSE, UNICODE, LOGONNOTIFY, and
// DISABLECTRLALTDEL. performanceFlags is 0 for
// the default desktop, or FastModePerformanceFlags (see SetFastMode) to
// disable wallpaper/animations/theming/cursor shadow for automation speed.
func NewClientInfo(domain, username, password string, performanceFlags uint32) *ClientInfo {
	return &ClientInfo{
		InfoPacket: InfoPacket{
			Flags:            InfoMouse | InfoUnicode | InfoLogonNotify | InfoDisableCtrlAltDel,
			Domain:           domain,
			UserName:         username,
			Password:         password,
			PerformanceFlags: performanceFlags,
		},
	}
}

// unicodeField UTF-16LE encodes s and returns its length in bytes excluding
// the null terminator, matching the cbDomain/cbUserName/... wire fields.
func unicodeField(s string) (encoded []byte, length uint16) {
	encoded = codec.Encode(s)
	return encoded, uint16(len(encoded))
}

func writeNullTerminatedUnicode(buf *bytes.Buffer, encoded []byte) {
	buf.Write(encoded)
	buf.Write([]byte{0x00, 0x00})
}

// Serialize encodes the Client Info PDU. When useEnhancedSecurity is false
// (Standard RDP Security negotiated), the PDU is prefixed with a security
// header carrying SEC_INFO_PKT; when true (Enhanced RDP Security via TLS or
// CredSSP/NLA is in effect), the header MUST NOT be present, per
// MS-RDPBCGR 2.2.1.11.1.1.
func (c *ClientInfo) Serialize(useEnhancedSecurity bool) []byte {
	info := c.InfoPacket

	domain, domainLen := unicodeField(info.Domain)
	userName, userNameLen := unicodeField(info.UserName)
	password, passwordLen := unicodeField(info.Password)
	altShell, altShellLen := unicodeField(info.AlternateShell)
	workDir, workDirLen := unicodeField(info.WorkingDir)
	clientAddress, clientAddressLen := unicodeField(info.ClientAddress)
	clientDir, clientDirLen := unicodeField(info.ClientDir)

	buf := new(bytes.Buffer)

	_ = binary.Write(buf, binary.LittleEndian, info.CodePage)
	_ = binary.Write(buf, binary.LittleEndian, info.Flags)
	_ = binary.Write(buf, binary.LittleEndian, domainLen)
	_ = binary.Write(buf, binary.LittleEndian, userNameLen)
	_ = binary.Write(buf, binary.LittleEndian, passwordLen)
	_ = binary.Write(buf, binary.LittleEndian, altShellLen)
	_ = binary.Write(buf, binary.LittleEndian, workDirLen)

	writeNullTerminatedUnicode(buf, domain)
	writeNullTerminatedUnicode(buf, userName)
	writeNullTerminatedUnicode(buf, password)
	writeNullTerminatedUnicode(buf, altShell)
	writeNullTerminatedUnicode(buf, workDir)

	// TS_EXTENDED_INFO_PACKET (MS-RDPBCGR 2.2.1.11.1.1.1). cbClientAddress
	// and cbClientDir include the null terminator; the other length fields
	// above do not.
	_ = binary.Write(buf, binary.LittleEndian, uint16(0x0002)) // clientAddressFamily: AF_INET
	_ = binary.Write(buf, binary.LittleEndian, clientAddressLen+2)
	writeNullTerminatedUnicode(buf, clientAddress)
	_ = binary.Write(buf, binary.LittleEndian, clientDirLen+2)
	writeNullTerminatedUnicode(buf, clientDir)

	// TS_TIME_ZONE_INFORMATION (172 bytes). A headless automation client
	// has no meaningful local time zone to report; zero bias and unset
	// daylight-saving fields are accepted by Windows RDP hosts.
	buf.Write(make([]byte, 172))

	_ = binary.Write(buf, binary.LittleEndian, uint32(0)) // clientSessionId: ignored by server
	_ = binary.Write(buf, binary.LittleEndian, info.PerformanceFlags)
	_ = binary.Write(buf, binary.LittleEndian, uint16(0)) // cbAutoReconnectCookie: none offered

	body := buf.Bytes()

	if useEnhancedSecurity {
		return body
	}

	return codec.WrapSecurityFlag(secInfoPkt, body)
}
