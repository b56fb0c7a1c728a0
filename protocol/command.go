package protocol

import "encoding/json"

// CommandType defines the type of the command (using uint8 for memory alignment and performance)
type CommandType uint8

const (
	CmdUnknown     CommandType = 0
	CmdAddOrder    CommandType = 51
	CmdModifyOrder CommandType = 52
	CmdDeleteOrder CommandType = 53
)

// String returns a short name for logs.
func (t CommandType) String() string {
	switch t {
	case CmdAddOrder:
		return "add_order"
	case CmdModifyOrder:
		return "modify_order"
	case CmdDeleteOrder:
		return "delete_order"
	}
	return "unknown"
}

// Command is the standard carrier for commands entering the order book manager.
type Command struct {
	// SeqID is the producer's sequence number, echoed in logs only.
	SeqID uint64 `json:"seq_id"`

	// Type identifies the payload type for fast routing.
	Type CommandType `json:"type"`

	// Payload contains the serialized business data (e.g., JSON bytes of AddOrderCommand).
	// It is decoded lazily by the executor.
	Payload json.RawMessage `json:"payload"`

	// Metadata stores non-business context (e.g., Tracing ID, Source IP).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AddOrderCommand is the payload for adding a resting order.
// An empty OrderID asks the receiver to assign one.
type AddOrderCommand struct {
	OrderID    string `json:"order_id"`
	Instrument string `json:"instrument"`
	Side       Side   `json:"side"`
	Price      string `json:"price"` // Using string to prevent precision loss in JSON
	Quantity   string `json:"quantity"`
}

// ModifyOrderCommand is the payload for changing the quantity of an existing order.
type ModifyOrderCommand struct {
	OrderID     string `json:"order_id"`
	NewQuantity string `json:"new_quantity"`
}

// DeleteOrderCommand is the payload for removing an existing order.
type DeleteOrderCommand struct {
	OrderID string `json:"order_id"`
}
