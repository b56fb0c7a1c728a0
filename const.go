package orderbook

const (
	// Version is the current version of the order book manager
	Version = "v1.0.0"

	// keySeparator joins instrument and side into a side-book key.
	// Instruments containing it are rejected so keys never collide.
	keySeparator = "::"
)
