package orderbook

import "errors"

var (
	ErrInvalidParam   = errors.New("the param is invalid")
	ErrNotFound       = errors.New("not found")
	ErrDuplicateOrder = errors.New("order already exists")
	ErrUnknownCommand = errors.New("unknown command type")
	ErrSequenceGap    = errors.New("sequence gap detected")
)
