package orderbook

// CalculateDepthChange calculates the depth change based on the book log.
// It returns a DepthChange struct indicating which level should be updated and by how much.
func CalculateDepthChange(log *BookLog) DepthChange {
	change := DepthChange{
		Instrument: log.Instrument,
		Side:       log.Side,
		Price:      log.Price,
	}

	switch log.Type {
	case LogTypeOpen:
		change.QuantityDiff = log.Quantity
		change.CountDiff = 1
	case LogTypeCancel:
		change.QuantityDiff = -log.Quantity
		change.CountDiff = -1
	case LogTypeAmend:
		// Price never changes on amend, so the order stays on the same level
		// whether it kept or lost its queue position.
		change.QuantityDiff = log.Quantity - log.OldQuantity
	default:
		return DepthChange{}
	}

	return change
}

// DepthChange represents a change in the aggregated depth of one price level.
type DepthChange struct {
	Instrument   string
	Side         Side
	Price        int64
	QuantityDiff int64
	CountDiff    int64
}

// IsZero reports whether the change leaves the level untouched.
func (c DepthChange) IsZero() bool {
	return c.QuantityDiff == 0 && c.CountDiff == 0
}
