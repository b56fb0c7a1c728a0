package orderbook

import (
	"fmt"

	"github.com/0x5487/orderbook/protocol"
)

// CommandResult describes what a command did to the book.
type CommandResult struct {
	Type    protocol.CommandType
	OrderID string
	Changed bool
}

// CommandExecutor decodes protocol commands and applies them to a manager.
// Decimal prices and quantities are converted with the configured tick and lot sizes.
type CommandExecutor struct {
	manager    *OrderBookManager
	serializer protocol.Serializer
	tick       protocol.TickSize
	lot        protocol.TickSize
}

// NewCommandExecutor creates an executor bound to manager.
func NewCommandExecutor(manager *OrderBookManager, tick protocol.TickSize, lot protocol.TickSize) *CommandExecutor {
	return &CommandExecutor{
		manager:    manager,
		serializer: manager.serializer,
		tick:       tick,
		lot:        lot,
	}
}

// Execute routes the command to AddOrder, ModifyOrder or DeleteOrder.
// Payload decoding and unit conversion failures are reported as ErrInvalidParam.
func (e *CommandExecutor) Execute(cmd *protocol.Command) (CommandResult, error) {
	result := CommandResult{Type: cmd.Type}

	switch cmd.Type {
	case protocol.CmdAddOrder:
		var payload protocol.AddOrderCommand
		if err := e.decode(cmd, &payload); err != nil {
			return result, err
		}
		result.OrderID = payload.OrderID
		order, err := e.toOrder(&payload)
		if err != nil {
			return result, err
		}
		result.OrderID = order.ID()
		if err := e.manager.AddOrder(order); err != nil {
			return result, err
		}
		result.Changed = true
	case protocol.CmdModifyOrder:
		var payload protocol.ModifyOrderCommand
		if err := e.decode(cmd, &payload); err != nil {
			return result, err
		}
		result.OrderID = payload.OrderID
		qty, err := e.lot.ToTicks(payload.NewQuantity)
		if err != nil {
			return result, fmt.Errorf("new quantity: %w: %w", err, ErrInvalidParam)
		}
		changed, err := e.manager.ModifyOrder(payload.OrderID, qty)
		if err != nil {
			return result, err
		}
		result.Changed = changed
	case protocol.CmdDeleteOrder:
		var payload protocol.DeleteOrderCommand
		if err := e.decode(cmd, &payload); err != nil {
			return result, err
		}
		result.OrderID = payload.OrderID
		deleted, err := e.manager.DeleteOrder(payload.OrderID)
		if err != nil {
			return result, err
		}
		result.Changed = deleted
	default:
		return result, fmt.Errorf("command type %d: %w", cmd.Type, ErrUnknownCommand)
	}

	return result, nil
}

// Encode wraps a payload struct into a Command, deriving the type from the payload.
func (e *CommandExecutor) Encode(seqID uint64, payload any) (*protocol.Command, error) {
	var typ protocol.CommandType
	switch payload.(type) {
	case *protocol.AddOrderCommand, protocol.AddOrderCommand:
		typ = protocol.CmdAddOrder
	case *protocol.ModifyOrderCommand, protocol.ModifyOrderCommand:
		typ = protocol.CmdModifyOrder
	case *protocol.DeleteOrderCommand, protocol.DeleteOrderCommand:
		typ = protocol.CmdDeleteOrder
	default:
		return nil, fmt.Errorf("payload %T: %w", payload, ErrUnknownCommand)
	}

	bytes, err := e.serializer.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &protocol.Command{
		SeqID:   seqID,
		Type:    typ,
		Payload: bytes,
	}, nil
}

func (e *CommandExecutor) decode(cmd *protocol.Command, v any) error {
	if len(cmd.Payload) == 0 {
		return fmt.Errorf("%s: empty payload: %w", cmd.Type, ErrInvalidParam)
	}
	if err := e.serializer.Unmarshal(cmd.Payload, v); err != nil {
		return fmt.Errorf("%s: decode payload: %v: %w", cmd.Type, err, ErrInvalidParam)
	}
	return nil
}

func (e *CommandExecutor) toOrder(payload *protocol.AddOrderCommand) (Order, error) {
	price, err := e.tick.ToTicks(payload.Price)
	if err != nil {
		return Order{}, fmt.Errorf("price: %w: %w", err, ErrInvalidParam)
	}
	qty, err := e.lot.ToTicks(payload.Quantity)
	if err != nil {
		return Order{}, fmt.Errorf("quantity: %w: %w", err, ErrInvalidParam)
	}

	id := payload.OrderID
	if len(id) == 0 {
		id = NewOrderID()
	}
	return NewOrder(id, payload.Instrument, payload.Side, price, qty)
}
