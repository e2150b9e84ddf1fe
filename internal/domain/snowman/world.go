package snowman

import "strings"

const DefaultGridSize = 5

// WorldModel is the parsed, normalized problem. Snow is defined for every cell
// of the grid and every ball in Balls has an entry in BallSize.
type WorldModel struct {
	GridSize  int                   `json:"grid_size"`
	Snow      map[Coordinate]bool   `json:"snow"`
	Balls     map[string]Coordinate `json:"balls"`
	BallSize  map[string]BallSize   `json:"ball_size"`
	Character Coordinate            `json:"character"`
	Domain    string                `json:"domain"`
}

// Numeric reports whether the problem targets the numeric variant of the
// domain. It is informational only.
func (w WorldModel) Numeric() bool {
	return strings.Contains(strings.ToLower(w.Domain), "snowman_numeric")
}

func (w WorldModel) Snapshot() Snapshot {
	return Snapshot{
		GridSize:  w.GridSize,
		Snow:      cloneSnow(w.Snow),
		Balls:     cloneBalls(w.Balls),
		BallSize:  cloneSizes(w.BallSize),
		Character: w.Character,
	}
}

// Snapshot is the world state carried by a single frame.
type Snapshot struct {
	GridSize  int                   `json:"grid_size"`
	Snow      map[Coordinate]bool   `json:"snow"`
	Balls     map[string]Coordinate `json:"balls"`
	BallSize  map[string]BallSize   `json:"ball_size"`
	Character Coordinate            `json:"character"`
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		GridSize:  s.GridSize,
		Snow:      cloneSnow(s.Snow),
		Balls:     cloneBalls(s.Balls),
		BallSize:  cloneSizes(s.BallSize),
		Character: s.Character,
	}
}

func cloneSnow(in map[Coordinate]bool) map[Coordinate]bool {
	out := make(map[Coordinate]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneBalls(in map[string]Coordinate) map[string]Coordinate {
	out := make(map[string]Coordinate, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneSizes(in map[string]BallSize) map[string]BallSize {
	out := make(map[string]BallSize, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
