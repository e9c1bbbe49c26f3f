package shared

import (
	"time"
)

// PriceBar represents an aggregated price observation for a ticker over a
// fixed time bucket. Bars are immutable once fetched and ordered ascending
// by timestamp.
type PriceBar struct {
	// Timestamp is the start of the aggregate window in epoch milliseconds.
	// The upstream provider reports these in UTC.
	Timestamp int64
	Open      float64
	Low       float64
	High      float64
	Close     float64
	Volume    float64
}

// Time returns the bar timestamp as a time.Time in UTC.
func (b *PriceBar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}
