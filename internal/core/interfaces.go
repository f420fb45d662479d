package core

// Frame is a raw JSON payload delivered over a signaling channel.
type Frame []byte

// Connection abstracts one client's outbound signaling channel.
// Owned by the adapter; the adapter must Close() it.
type Connection interface {
	// TrySend enqueues a frame without blocking. It returns an error when
	// the channel is closed or the send buffer is full.
	TrySend(Frame) error
	Close()
}
