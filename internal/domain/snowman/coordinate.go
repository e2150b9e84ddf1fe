package snowman

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrMalformedLocation = errors.New("malformed location")

type LocationError struct {
	Token string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMalformedLocation.Error(), e.Token)
}

func (e *LocationError) Unwrap() error {
	return ErrMalformedLocation
}

// Coordinate is a 0-indexed grid cell. It encodes as "row,col" so it can key
// JSON objects.
type Coordinate struct {
	Row int
	Col int
}

func (c Coordinate) String() string {
	return strconv.Itoa(c.Row) + "," + strconv.Itoa(c.Col)
}

// Location renders the 1-based planner token for c.
func (c Coordinate) Location() string {
	return fmt.Sprintf("loc_%d_%d", c.Row+1, c.Col+1)
}

func (c Coordinate) InBounds(gridSize int) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < gridSize && c.Col < gridSize
}

func (c Coordinate) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Coordinate) UnmarshalText(b []byte) error {
	parts := strings.Split(string(b), ",")
	if len(parts) != 2 {
		return fmt.Errorf("invalid coordinate %q", string(b))
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", string(b), err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", string(b), err)
	}
	c.Row, c.Col = row, col
	return nil
}

var locationPattern = regexp.MustCompile(`(?i)^loc_(\d+)_(\d+)$`)

// ParseLocation converts a 1-based loc_<R>_<C> token into a Coordinate.
func ParseLocation(token string) (Coordinate, error) {
	m := locationPattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return Coordinate{}, &LocationError{Token: token}
	}
	row, err := strconv.Atoi(m[1])
	if err != nil || row < 1 {
		return Coordinate{}, &LocationError{Token: token}
	}
	col, err := strconv.Atoi(m[2])
	if err != nil || col < 1 {
		return Coordinate{}, &LocationError{Token: token}
	}
	return Coordinate{Row: row - 1, Col: col - 1}, nil
}
