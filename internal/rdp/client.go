// Package rdp implements a headless Remote Desktop Protocol client supporting
// RDP 5+ with NLA authentication, bitmap updates, and raster output suitable
// for server-side recording instead of interactive rendering.
package rdp

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rcarmo/go-rdp/internal/display"
	"github.com/rcarmo/go-rdp/internal/protocol/fastpath"
	"github.com/rcarmo/go-rdp/internal/protocol/mcs"
	"github.com/rcarmo/go-rdp/internal/protocol/pdu"
	"github.com/rcarmo/go-rdp/internal/protocol/tpkt"
	"github.com/rcarmo/go-rdp/internal/protocol/x224"
)

// Client represents an RDP client connection to a remote desktop server.
type Client struct {
	mu sync.RWMutex

	conn       net.Conn
	buffReader *bufio.Reader
	tpktLayer  *tpkt.Protocol
	x224Layer  *x224.Protocol
	mcsLayer   mcs.MCSLayer
	fastPath   *fastpath.Protocol

	domain   string
	username string
	password string

	desktopWidth, desktopHeight uint16
	colorDepth                  int

	serverCapabilitySets []pdu.CapabilitySet

	selectedProtocol       pdu.NegotiationProtocol
	serverNegotiationFlags pdu.NegotiationResponseFlag
	channels               []string
	channelIDMap           map[string]uint16
	skipChannelJoin        bool
	shareID                uint32
	userID                 uint16

	// TLS configuration
	skipTLSValidation bool
	tlsServerName     string

	// NLA configuration
	useNLA bool

	// performanceFlags are sent in the Client Info PDU's extended info
	// block to disable desktop visual effects (wallpaper, menu animations,
	// theming, cursor shadow) for automation speed. See SetFastMode.
	performanceFlags uint32

	// Surface receives decoded bitmap rectangles and maintains the
	// composited raster output consumed by screenshots and the video pipeline.
	Surface *display.Surface

	// bitmapObserver, if set, is invoked with the wall-clock time spent
	// decoding and applying each bitmap rectangle, letting a façade collect
	// pipeline timing without this package importing internal/video.
	bitmapObserver func(time.Duration)
}

const (
	tcpConnectionTimeout = 5 * time.Second
	readBufferSize       = 64 * 1024
)

// NewClient creates a new RDP client and establishes a TCP connection to the server.
func NewClient(
	hostname, username, password string,
	desktopWidth, desktopHeight int,
	colorDepth int,
) (*Client, error) {
	// Add default RDP port if not specified
	if !strings.Contains(hostname, ":") {
		hostname = hostname + ":3389"
	}

	c := Client{
		domain:   "",
		username: username,
		password: password,

		desktopWidth:  uint16(desktopWidth),
		desktopHeight: uint16(desktopHeight),
		colorDepth:    colorDepth,

		// NLA is attempted by default; Windows Server 2012 R2+ targets
		// require it out of the box. Call SetUseNLA(false) to fall back to
		// plain TLS negotiation.
		useNLA:           true,
		selectedProtocol: pdu.NegotiationProtocolHybrid,
		// Certificate verification is off by default: this is an automation
		// client talking to servers with self-signed certs. Call
		// SetTLSConfig(false, serverName) to turn verification on.
		skipTLSValidation: true,
		tlsServerName:     "",

		Surface: display.NewSurface(desktopWidth, desktopHeight),
	}

	var err error

	c.conn, err = net.DialTimeout("tcp", hostname, tcpConnectionTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: tcp connect: %w", ErrTransport, err)
	}

	c.buffReader = bufio.NewReaderSize(c.conn, readBufferSize)

	c.tpktLayer = tpkt.New(&c)
	c.x224Layer = x224.New(c.tpktLayer)
	c.mcsLayer = mcs.New(c.x224Layer)
	c.fastPath = fastpath.New(&c)

	return &c, nil
}

// SetTLSConfig allows setting TLS configuration for the RDP client
func (c *Client) SetTLSConfig(skipValidation bool, serverName string) {
	c.skipTLSValidation = skipValidation
	c.tlsServerName = serverName
}

// SetUseNLA enables or disables Network Level Authentication
func (c *Client) SetUseNLA(useNLA bool) {
	c.useNLA = useNLA
	if useNLA {
		c.selectedProtocol = pdu.NegotiationProtocolHybrid
	} else {
		c.selectedProtocol = pdu.NegotiationProtocolSSL
	}
}

// SetDomain sets the Windows domain presented during Client Info and NLA
// credential exchange. A username already in DOMAIN\user or user@domain
// form takes precedence during NLA (see parseDomainUser).
func (c *Client) SetDomain(domain string) {
	c.domain = domain
}

// SetFastMode toggles the Client Info PDU's performance-flag set,
// disabling wallpaper, menu animations, theming, and cursor shadow on the
// remote desktop. It has no effect on protocol negotiation; NLA is
// governed separately by SetUseNLA.
func (c *Client) SetFastMode(fast bool) {
	if fast {
		c.performanceFlags = pdu.FastModePerformanceFlags
	} else {
		c.performanceFlags = 0
	}
}

// SetBitmapObserver registers a callback invoked with the time spent
// decoding and applying each bitmap rectangle, for pipeline latency
// accounting (see internal/video.Stats.ObserveBitmapApply).
func (c *Client) SetBitmapObserver(observer func(time.Duration)) {
	c.bitmapObserver = observer
}

// ServerCapabilityInfo contains a summary of server capabilities for logging
type ServerCapabilityInfo struct {
	ColorDepth        int
	DesktopSize       string
	GeneralFlags      uint16
	OrderFlags        uint32
	MultifragmentSize uint32
	LargePointer      bool

	UseNLA   bool
	Channels []string
}

// Update represents a raw RDP slow-path/fast-path update prior to decoding.
type Update struct {
	Data []byte
}

// GetServerCapabilities returns a summary of the server's capabilities.
func (c *Client) GetServerCapabilities() *ServerCapabilityInfo {
	info := &ServerCapabilityInfo{
		UseNLA:   c.useNLA,
		Channels: c.channels,
	}

	for _, capSet := range c.serverCapabilitySets {
		switch capSet.CapabilitySetType {
		case pdu.CapabilitySetTypeBitmap:
			if capSet.BitmapCapabilitySet != nil {
				info.ColorDepth = int(capSet.BitmapCapabilitySet.PreferredBitsPerPixel)
				info.DesktopSize = fmt.Sprintf("%dx%d",
					capSet.BitmapCapabilitySet.DesktopWidth,
					capSet.BitmapCapabilitySet.DesktopHeight)
			}
		case pdu.CapabilitySetTypeGeneral:
			if capSet.GeneralCapabilitySet != nil {
				info.GeneralFlags = capSet.GeneralCapabilitySet.ExtraFlags
			}
		case pdu.CapabilitySetTypeOrder:
			if capSet.OrderCapabilitySet != nil {
				info.OrderFlags = uint32(capSet.OrderCapabilitySet.OrderFlags)
			}
		case pdu.CapabilitySetTypeMultifragmentUpdate:
			if capSet.MultifragmentUpdateCapabilitySet != nil {
				info.MultifragmentSize = capSet.MultifragmentUpdateCapabilitySet.MaxRequestSize
			}
		case pdu.CapabilitySetTypeLargePointer:
			info.LargePointer = true
		}
	}

	return info
}
