package status

import (
	"bytes"
	"errors"
	"strconv"
)

// Sentinel errors for status updates.
var (
	ErrNotAMember     = errors.New("user is not a member of the room")
	ErrMalformedGauge = errors.New("gauge level is not a number")
)

// GaugeLevel is the live progress indicator carried in update payloads.
// Clients send it as a number or a numeric string; an empty string counts
// as zero. Absence is expressed by a nil *GaugeLevel, which leaves the
// stored value untouched.
type GaugeLevel int

// UnmarshalJSON accepts a JSON number, a numeric string, or an empty
// string (treated as zero).
func (g *GaugeLevel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	if len(data) == 0 || string(data) == "null" {
		*g = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrMalformedGauge
	}
	*g = GaugeLevel(n)
	return nil
}

// Update carries the fields of one status push. Nil fields are "keep the
// prior value".
type Update struct {
	Status     *string     `json:"status"`
	GaugeLevel *GaugeLevel `json:"gauge_level"`
}

// StatusUpdated is the payload broadcast to the other members of the room.
type StatusUpdated struct {
	Username   string `json:"username"`
	Status     string `json:"status"`
	GaugeLevel int    `json:"gauge_level"`
}
