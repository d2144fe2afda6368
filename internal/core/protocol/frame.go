package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Wire frame layout: 1 byte channel ID, 8 bytes big-endian xxhash64 of the
// payload, then the payload itself. The checksum guards against transport
// corruption; a mismatched frame is dropped, not repaired.
const frameHeaderSize = 1 + 8

// EncodeFrame builds a wire frame for one message.
func EncodeFrame(channel ChannelID, payload []byte) []byte {
	frame := make([]byte, frameHeaderSize+len(payload))
	frame[0] = byte(channel)
	binary.BigEndian.PutUint64(frame[1:frameHeaderSize], xxhash.Sum64(payload))
	copy(frame[frameHeaderSize:], payload)
	return frame
}

// DecodeFrame splits a wire frame back into channel and payload, verifying
// the checksum.
func DecodeFrame(frame []byte) (ChannelID, []byte, error) {
	if len(frame) < frameHeaderSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrInvalidFrame, len(frame))
	}
	channel := ChannelID(frame[0])
	want := binary.BigEndian.Uint64(frame[1:frameHeaderSize])
	payload := frame[frameHeaderSize:]
	if got := xxhash.Sum64(payload); got != want {
		return 0, nil, fmt.Errorf("%w: channel %d", ErrChecksumMismatch, channel)
	}
	return channel, payload, nil
}
