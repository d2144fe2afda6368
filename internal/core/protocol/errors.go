package protocol

import "errors"

var (
	// Frame errors

	ErrInvalidFrame     = errors.New("invalid frame")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrUnknownChannel   = errors.New("unknown channel")

	// Channel errors

	ErrChannelsExhausted = errors.New("channel identifiers exhausted")

	// Transport errors

	ErrTransportClosed = errors.New("transport is closed")
	ErrNotConnected    = errors.New("not connected")
)
