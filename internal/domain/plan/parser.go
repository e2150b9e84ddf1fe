package plan

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptyPlan      = errors.New("empty plan")
	ErrNoValidActions = errors.New("no valid actions found")
)

// Keywords are the action names a plan line must mention to be retained.
var Keywords = []string{"move", "move_to", "move_ball", "push", "roll", "roll_ball", "goal", "move_character"}

var ordinalPrefix = regexp.MustCompile(`^\d+(?:\.\d+)?[.:]?\s*`)

// Parse returns the normalized action lines of a plan, in order. Comment
// lines and lines naming no known action are dropped.
func Parse(content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyPlan
	}
	var steps []string
	for _, raw := range strings.Split(content, "\n") {
		line, ok := NormalizeLine(raw)
		if !ok || !mentionsKeyword(line) {
			continue
		}
		steps = append(steps, line)
	}
	if len(steps) == 0 {
		return nil, ErrNoValidActions
	}
	return steps, nil
}

// NormalizeLine trims a plan line, strips an ordinal prefix such as "3." or
// "0.000:" and one layer of enclosing parentheses. It reports false for blank
// and comment lines.
func NormalizeLine(raw string) (string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, ";") {
		return "", false
	}
	line = ordinalPrefix.ReplaceAllString(line, "")
	line = strings.TrimPrefix(line, "(")
	line = strings.TrimSuffix(line, ")")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return line, true
}

func mentionsKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, k := range Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
