package domain

import "time"

type ExposureState string

const (
	ExposureNotFound   ExposureState = "not_found"
	ExposureNotYetOpen ExposureState = "not_yet_open"
	ExposureClosed     ExposureState = "closed"
	ExposureOpen       ExposureState = "open"
)

// Exposure is the answer to "can this item be bought right now". Token is
// only set when State is ExposureOpen; the window fields are only set for
// ExposureNotYetOpen and ExposureClosed.
type Exposure struct {
	State     ExposureState
	ItemID    int64
	Token     string
	Now       time.Time
	StartTime time.Time
	EndTime   time.Time
}

func (e Exposure) Open() bool {
	return e.State == ExposureOpen
}
