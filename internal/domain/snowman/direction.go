package snowman

import (
	"math"
	"strings"
)

type Direction string

const (
	DirectionNone  Direction = ""
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

var directionRotation = map[Direction]float64{
	DirectionNone:  0,
	DirectionLeft:  math.Pi,
	DirectionRight: 0,
	DirectionUp:    math.Pi / 2,
	DirectionDown:  -math.Pi / 2,
}

// ParseDirection maps a plan token to a compass direction. Tokens that are not
// one of the four compass names map to DirectionNone.
func ParseDirection(token string) Direction {
	d := Direction(strings.ToLower(strings.TrimSpace(token)))
	if _, ok := directionRotation[d]; !ok {
		return DirectionNone
	}
	return d
}

// Rotation is the yaw, in radians, a renderer applies for d.
func (d Direction) Rotation() float64 {
	return directionRotation[d]
}
