package domain

import "time"

// StockState classifies a balance against its minimum threshold
type StockState string

// Stock states
const (
	StockOK  StockState = "ok"
	StockLow StockState = "low"
	StockOut StockState = "out"
)

// Crossing describes the direction of a stock state change
type Crossing string

// Crossing directions
const (
	CrossedIntoLow   Crossing = "into_low"
	CrossedIntoOut   Crossing = "into_out"
	CrossedRecovered Crossing = "recovered"
)

// StockThresholdCrossed is emitted after a movement commit changes a
// product's stock classification. Delivery is fire-and-forget; a failing
// observer never affects the committed movement.
type StockThresholdCrossed struct {
	ProductKey     string    `json:"product_key"`
	PreviousOnHand int       `json:"previous_on_hand"`
	NewOnHand      int       `json:"new_on_hand"`
	MinQuantity    int       `json:"min_quantity"`
	Crossed        Crossing  `json:"crossed"`
	MovementID     uint      `json:"movement_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Classify maps a stock state transition to a crossing direction. It
// returns "" when the movement did not change the classification.
func Classify(previous, next StockState) Crossing {
	if previous == next {
		return ""
	}
	switch {
	case next == StockOut:
		return CrossedIntoOut
	case next == StockLow && previous == StockOut:
		// Stock came back but is still at or below the threshold.
		return CrossedIntoLow
	case next == StockLow:
		return CrossedIntoLow
	default:
		return CrossedRecovered
	}
}
