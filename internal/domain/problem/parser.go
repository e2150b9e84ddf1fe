package problem

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"snowviz/internal/domain/snowman"
)

type declKind int

const (
	declTypedSnow declKind = iota + 1
	declBareSnow
	declBallAt
	declNumericSize
	declNamedSize
	declCharacter
)

var grammar = []struct {
	kind    declKind
	pattern *regexp.Regexp
}{
	{declTypedSnow, regexp.MustCompile(`(?i)\(\s*:?location_type\s+([^\s()]+)\s+(\d+)\s*\)`)},
	{declTypedSnow, regexp.MustCompile(`(?i)\(\s*=\s*\(\s*location_type\s+([^\s()]+)\s*\)\s*(\d+)\s*\)`)},
	{declBareSnow, regexp.MustCompile(`(?i)\(\s*snow\s+([^\s()]+)\s*\)`)},
	{declBallAt, regexp.MustCompile(`(?i)\(\s*ball_at\s+([^\s()]+)\s+([^\s()]+)\s*\)`)},
	{declNumericSize, regexp.MustCompile(`(?i)\(\s*:?ball_size\s+([^\s()]+)\s+(-?\d+)\s*\)`)},
	{declNumericSize, regexp.MustCompile(`(?i)\(\s*=\s*\(\s*ball_size\s+([^\s()]+)\s*\)\s*(-?\d+)\s*\)`)},
	{declNamedSize, regexp.MustCompile(`(?i)\(\s*ball_size_(small|medium|large)\s+([^\s()]+)\s*\)`)},
	{declCharacter, regexp.MustCompile(`(?i)\(\s*character_at\s+([^\s()]+)\s*\)`)},
}

var domainPattern = regexp.MustCompile(`(?i)\(\s*:domain\s+([^\s()]+)`)

type declaration struct {
	kind   declKind
	offset int
	text   string
	groups []string
}

// Parse turns problem text into a normalized world model. Declarations are
// applied in document order, so when a ball's size is declared twice the
// later declaration wins.
func Parse(content string) (snowman.WorldModel, error) {
	if strings.TrimSpace(content) == "" {
		return snowman.WorldModel{}, ErrEmptyInput
	}

	world := snowman.WorldModel{
		Snow:     map[snowman.Coordinate]bool{},
		Balls:    map[string]snowman.Coordinate{},
		BallSize: map[string]snowman.BallSize{},
		Domain:   "unknown",
	}
	if m := domainPattern.FindStringSubmatch(content); m != nil {
		world.Domain = m[1]
	}

	maxComponent := -1
	touch := func(c snowman.Coordinate) {
		if c.Row > maxComponent {
			maxComponent = c.Row
		}
		if c.Col > maxComponent {
			maxComponent = c.Col
		}
	}

	var character *declaration
	for _, d := range scan(content) {
		switch d.kind {
		case declTypedSnow, declBareSnow:
			c, err := location(d, d.groups[0])
			if err != nil {
				return snowman.WorldModel{}, err
			}
			if d.kind == declBareSnow {
				world.Snow[c] = true
			} else {
				world.Snow[c] = d.groups[1] == "1"
			}
			touch(c)
		case declBallAt:
			c, err := location(d, d.groups[1])
			if err != nil {
				return snowman.WorldModel{}, err
			}
			world.Balls[d.groups[0]] = c
			touch(c)
		case declNumericSize:
			n, err := strconv.Atoi(d.groups[1])
			size := snowman.BallSize(n)
			if err != nil || !size.Valid() {
				return snowman.WorldModel{}, &DeclarationError{
					Err:         &BallSizeError{Ball: d.groups[0], Value: d.groups[1]},
					Declaration: d.text,
					Offset:      d.offset,
				}
			}
			world.BallSize[d.groups[0]] = size
		case declNamedSize:
			size, _ := snowman.ParseBallSizeName(d.groups[0])
			world.BallSize[d.groups[1]] = size
		case declCharacter:
			c, err := location(d, d.groups[0])
			if err != nil {
				return snowman.WorldModel{}, err
			}
			if character != nil && c != world.Character {
				return snowman.WorldModel{}, &DeclarationError{
					Err:         ErrConflictingCharacter,
					Declaration: d.text,
					Offset:      d.offset,
				}
			}
			current := d
			character = &current
			world.Character = c
			touch(c)
		}
	}
	if character == nil {
		return snowman.WorldModel{}, &DeclarationError{Err: ErrMissingCharacter, Offset: -1}
	}

	for ball := range world.Balls {
		if _, ok := world.BallSize[ball]; !ok {
			world.BallSize[ball] = snowman.BallSmall
		}
	}

	world.GridSize = snowman.DefaultGridSize
	if maxComponent >= 0 {
		world.GridSize = maxComponent + 1
	}
	for r := 0; r < world.GridSize; r++ {
		for c := 0; c < world.GridSize; c++ {
			cell := snowman.Coordinate{Row: r, Col: c}
			if _, ok := world.Snow[cell]; !ok {
				world.Snow[cell] = false
			}
		}
	}
	return world, nil
}

func scan(content string) []declaration {
	var out []declaration
	for _, g := range grammar {
		for _, idx := range g.pattern.FindAllStringSubmatchIndex(content, -1) {
			d := declaration{kind: g.kind, offset: idx[0], text: content[idx[0]:idx[1]]}
			for i := 2; i+1 < len(idx); i += 2 {
				d.groups = append(d.groups, content[idx[i]:idx[i+1]])
			}
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].offset < out[j].offset })
	return out
}

func location(d declaration, token string) (snowman.Coordinate, error) {
	c, err := snowman.ParseLocation(token)
	if err != nil {
		return snowman.Coordinate{}, &DeclarationError{Err: err, Declaration: d.text, Offset: d.offset}
	}
	return c, nil
}
