package rdp

import (
	"errors"
	"fmt"
)

// Connection failure classes. Operations wrap one of these so callers can
// errors.Is against the class without parsing message text. All of them
// are fatal to the session.
var (
	// ErrTransport covers TCP connect/read/write failures, unexpected EOF,
	// and TLS handshake failures.
	ErrTransport = errors.New("transport failure")

	// ErrProtocolFraming covers invalid TPKT/X.224 framing, truncated PDUs,
	// and bad ASN.1/BER/PER tags.
	ErrProtocolFraming = errors.New("protocol framing error")

	// ErrNegotiation covers refused protocol sets, unknown server
	// selections, and unsupported licensing replies.
	ErrNegotiation = errors.New("negotiation failure")

	// ErrAuthentication covers NTLM/CredSSP failures. ErrCredentialsRejected
	// and ErrAuthMethodRefused narrow it further.
	ErrAuthentication = errors.New("authentication failure")
)

var (
	// ErrCredentialsRejected means the server completed the CredSSP exchange
	// and refused the supplied domain/user/password.
	ErrCredentialsRejected = fmt.Errorf("%w: credentials rejected", ErrAuthentication)

	// ErrAuthMethodRefused means the server would not carry out the
	// requested authentication method at all.
	ErrAuthMethodRefused = fmt.Errorf("%w: authentication method refused", ErrAuthentication)

	// ErrUnsupportedRequestedProtocol indicates that the server selected a
	// protocol that this client does not support.
	ErrUnsupportedRequestedProtocol = fmt.Errorf("%w: unsupported requested protocol", ErrNegotiation)
)
