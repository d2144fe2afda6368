package protocol

import "math"

// Channels allocates client channel identifiers at registration time and
// records the delivery kind requested for each. Mutated only during setup.
type Channels struct {
	client []ChannelKind
}

func NewChannels() *Channels {
	return &Channels{}
}

// CreateClientChannel allocates the next channel ID for client-to-server
// traffic. Running out of identifiers is a configuration error.
func (c *Channels) CreateClientChannel(kind ChannelKind) ChannelID {
	if len(c.client) > math.MaxUint8 {
		panic("protocol: channel identifiers exhausted")
	}
	id := ChannelID(len(c.client))
	c.client = append(c.client, kind)
	return id
}

// ClientKind returns the delivery kind of an allocated channel.
func (c *Channels) ClientKind(id ChannelID) (ChannelKind, bool) {
	if int(id) >= len(c.client) {
		return 0, false
	}
	return c.client[id], true
}

// ClientCount returns how many client channels have been allocated.
func (c *Channels) ClientCount() int {
	return len(c.client)
}
