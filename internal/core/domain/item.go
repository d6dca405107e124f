package domain

import "time"

type WindowState int

const (
	WindowNotYetOpen WindowState = iota
	WindowOpen
	WindowClosed
)

type Item struct {
	ID                int64
	Name              string
	RemainingQuantity int64
	StartTime         time.Time
	EndTime           time.Time
	CreatedAt         time.Time
}

// Window reports where now falls relative to the sale window. Both
// boundaries are inclusive.
func (i Item) Window(now time.Time) WindowState {
	switch {
	case now.Before(i.StartTime):
		return WindowNotYetOpen
	case now.After(i.EndTime):
		return WindowClosed
	default:
		return WindowOpen
	}
}
