package protocol

// ClientID identifies a connected peer on the authority side.
type ClientID string

// ServerID tags envelopes produced by the local loopback path, where the
// authority raises events for itself without touching the transport.
const ServerID ClientID = "server"

// ChannelID identifies one logical message channel. Channel IDs are
// allocated once per registered event type and stay stable for the process
// lifetime; both peers must perform registrations in the same order.
type ChannelID uint8

// ChannelKind is a delivery hint for transport backends.
type ChannelKind uint8

const (
	// ChannelOrdered messages arrive reliably and in send order.
	ChannelOrdered ChannelKind = iota
	// ChannelUnordered messages arrive reliably but possibly out of order.
	ChannelUnordered
	// ChannelUnreliable messages may be dropped or reordered.
	ChannelUnreliable
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelOrdered:
		return "ordered"
	case ChannelUnordered:
		return "unordered"
	case ChannelUnreliable:
		return "unreliable"
	default:
		return "unknown"
	}
}

// ConnectionState is the client-side connection lifecycle.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Outgoing is one client-raised message drained by a transport backend.
type Outgoing struct {
	Channel ChannelID
	Payload []byte
}

// Incoming is one message received by the authority, tagged with its sender.
type Incoming struct {
	Client  ClientID
	Payload []byte
}
