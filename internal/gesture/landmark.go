package gesture

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices as produced by the 21-point hand model.
const (
	Wrist     = 0
	ThumbMCP  = 2
	ThumbTip  = 4
	IndexMCP  = 5
	IndexPIP  = 6
	IndexTip  = 8
	MiddleMCP = 9
	MiddlePIP = 10
	MiddleTip = 12
	RingMCP   = 13
	RingTip   = 16
	PinkyMCP  = 17
	PinkyTip  = 20

	LandmarkCount = 21
)

// Landmark is one point in normalized image space: x and y in [0,1] with y
// growing downwards, z relative depth.
type Landmark struct {
	X, Y, Z float64
}

// UnmarshalJSON accepts either [x, y, z] / [x, y] or {"x":..,"y":..,"z":..}.
func (l *Landmark) UnmarshalJSON(b []byte) error {
	var arr []float64
	if err := json.Unmarshal(b, &arr); err == nil {
		if len(arr) < 2 {
			return fmt.Errorf("landmark needs at least 2 coordinates, got %d", len(arr))
		}
		l.X, l.Y = arr[0], arr[1]
		if len(arr) > 2 {
			l.Z = arr[2]
		}
		return nil
	}
	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("parsing landmark: %w", err)
	}
	l.X, l.Y, l.Z = obj.X, obj.Y, obj.Z
	return nil
}

func dist2D(a, b Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Record is one detected hand in a detection frame.
type Record struct {
	Label     string     `json:"label"`
	Landmarks []Landmark `json:"landmarks"`
}

// Valid reports whether the record carries the full landmark set.
func (r Record) Valid() bool {
	return len(r.Landmarks) == LandmarkCount
}

// Frame is one detection result from the collaborator: zero to two hands.
type Frame struct {
	Hands []Record `json:"hands"`
}

// ErrBadFrame marks a line or message that is not a detection frame. The
// feed itself is still healthy.
var ErrBadFrame = errors.New("malformed detection frame")

// ParseFrame decodes one JSON detection frame. Decode failures wrap
// ErrBadFrame.
func ParseFrame(b []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrBadFrame, err)
	}
	return f, nil
}
