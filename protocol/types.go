package protocol

// Side represents the order side (Buy/Sell).
type Side int8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

// String returns the upper-case name used in book keys and logs.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	}
	return "UNKNOWN"
}

// IsValid reports whether s is Buy or Sell.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// LogType represents the type of event log.
type LogType string

const (
	LogTypeOpen   LogType = "open"
	LogTypeAmend  LogType = "amend"
	LogTypeCancel LogType = "cancel"
)

// DepthItem is one aggregated price level as seen by readers.
type DepthItem struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Volume   int64 `json:"volume"`
	Count    int64 `json:"count"`
}

// GetDepthResponse represents the best-first levels of one side of an instrument.
type GetDepthResponse struct {
	Instrument string       `json:"instrument"`
	Side       Side         `json:"side"`
	Levels     []*DepthItem `json:"levels"`
}

// GetStatsResponse contains statistics about both sides of an instrument.
type GetStatsResponse struct {
	Instrument    string `json:"instrument"`
	AskDepthCount int64  `json:"ask_depth_count"`
	AskOrderCount int64  `json:"ask_order_count"`
	BidDepthCount int64  `json:"bid_depth_count"`
	BidOrderCount int64  `json:"bid_order_count"`
}
