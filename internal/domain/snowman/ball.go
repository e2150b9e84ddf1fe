package snowman

import (
	"fmt"
	"strings"
)

type BallSize int

const (
	BallSmall BallSize = iota
	BallMedium
	BallLarge
)

func (s BallSize) Valid() bool {
	return s >= BallSmall && s <= BallLarge
}

// Grow returns the next size tier, capped at large.
func (s BallSize) Grow() BallSize {
	if s >= BallLarge {
		return BallLarge
	}
	return s + 1
}

func (s BallSize) String() string {
	switch s {
	case BallSmall:
		return "small"
	case BallMedium:
		return "medium"
	case BallLarge:
		return "large"
	default:
		return fmt.Sprintf("size(%d)", int(s))
	}
}

// Radius is the render radius for the tier; a stacked ball occupies twice
// this height.
func (s BallSize) Radius() float64 {
	switch s {
	case BallMedium:
		return 0.25
	case BallLarge:
		return 0.35
	default:
		return 0.15
	}
}

func ParseBallSizeName(name string) (BallSize, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "small":
		return BallSmall, true
	case "medium":
		return BallMedium, true
	case "large":
		return BallLarge, true
	default:
		return 0, false
	}
}
