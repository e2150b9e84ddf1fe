package plan

import (
	"regexp"
	"strconv"
	"strings"
)

// SearchMetrics are the statistics a planner prints next to the plan it found.
type SearchMetrics struct {
	PlanLength      int `json:"plan_length"`
	PlanningTimeMs  int `json:"planning_time_ms"`
	SearchTimeMs    int `json:"search_time_ms"`
	HeuristicTimeMs int `json:"heuristic_time_ms"`
	GroundingTimeMs int `json:"grounding_time_ms"`
	ExpandedNodes   int `json:"expanded_nodes"`
	StatesEvaluated int `json:"states_evaluated"`
	DeadEnds        int `json:"dead_ends"`
	Duplicates      int `json:"duplicates"`
}

var (
	foundPlanBlock  = regexp.MustCompile(`(?is)found plan:(.*?)(?:plan-length|metric|planning time)`)
	timestampPrefix = regexp.MustCompile(`^\d+\.\d+:\s*`)

	metricPatterns = []struct {
		pattern *regexp.Regexp
		set     func(*SearchMetrics, int)
	}{
		{regexp.MustCompile(`(?i)plan-length:\s*(\d+)`), func(m *SearchMetrics, v int) { m.PlanLength = v }},
		{regexp.MustCompile(`(?i)planning time \(msec\):\s*(\d+)`), func(m *SearchMetrics, v int) { m.PlanningTimeMs = v }},
		{regexp.MustCompile(`(?i)search time \(msec\):\s*(\d+)`), func(m *SearchMetrics, v int) { m.SearchTimeMs = v }},
		{regexp.MustCompile(`(?i)heuristic time \(msec\):\s*(\d+)`), func(m *SearchMetrics, v int) { m.HeuristicTimeMs = v }},
		{regexp.MustCompile(`(?i)grounding time:\s*(\d+)`), func(m *SearchMetrics, v int) { m.GroundingTimeMs = v }},
		{regexp.MustCompile(`(?i)expanded nodes:\s*(\d+)`), func(m *SearchMetrics, v int) { m.ExpandedNodes = v }},
		{regexp.MustCompile(`(?i)states evaluated:\s*(\d+)`), func(m *SearchMetrics, v int) { m.StatesEvaluated = v }},
		{regexp.MustCompile(`(?i)number of dead-ends detected:\s*(\d+)`), func(m *SearchMetrics, v int) { m.DeadEnds = v }},
		{regexp.MustCompile(`(?i)number of duplicates detected:\s*(\d+)`), func(m *SearchMetrics, v int) { m.Duplicates = v }},
	}
)

// IsPlannerOutput reports whether content looks like a raw planner log rather
// than a bare plan.
func IsPlannerOutput(content string) bool {
	return foundPlanBlock.MatchString(content)
}

// ParsePlannerOutput extracts the parenthesised steps of the "found plan:"
// block together with the planner's search statistics. Steps go through the
// same normalization and keyword filter as Parse.
func ParsePlannerOutput(content string) ([]string, SearchMetrics, error) {
	if strings.TrimSpace(content) == "" {
		return nil, SearchMetrics{}, ErrEmptyPlan
	}
	var steps []string
	if m := foundPlanBlock.FindStringSubmatch(content); m != nil {
		for _, raw := range strings.Split(m[1], "\n") {
			line := strings.TrimSpace(raw)
			if line == "" || strings.HasPrefix(line, ";") {
				continue
			}
			line = timestampPrefix.ReplaceAllString(line, "")
			if !strings.HasPrefix(line, "(") || !strings.HasSuffix(line, ")") {
				continue
			}
			step, ok := NormalizeLine(line)
			if !ok || !mentionsKeyword(step) {
				continue
			}
			steps = append(steps, step)
		}
	}
	if len(steps) == 0 {
		return nil, SearchMetrics{}, ErrNoValidActions
	}
	metrics := ParseSearchMetrics(content)
	if metrics.PlanLength == 0 {
		metrics.PlanLength = len(steps)
	}
	return steps, metrics, nil
}

func ParseSearchMetrics(content string) SearchMetrics {
	var out SearchMetrics
	for _, mp := range metricPatterns {
		m := mp.pattern.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil {
			mp.set(&out, v)
		}
	}
	return out
}
