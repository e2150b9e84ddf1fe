package compare

import "github.com/pmezard/go-difflib/difflib"

type DiffOp string

const (
	DiffEqual  DiffOp = "equal"
	DiffDelete DiffOp = "delete"
	DiffInsert DiffOp = "insert"
)

type DiffLine struct {
	Op     DiffOp `json:"op"`
	Action string `json:"action"`
	// IndexA and IndexB are -1 when the line is absent from that plan.
	IndexA int `json:"index_a"`
	IndexB int `json:"index_b"`
}

// Diff aligns two action lists on their matching blocks. A replaced range is
// reported as its deletions followed by its insertions.
func Diff(a, b []string) []DiffLine {
	out := make([]DiffLine, 0, max(len(a), len(b)))
	if len(a) == 0 && len(b) == 0 {
		return out
	}
	m := difflib.NewMatcherWithJunk(a, b, false, nil)
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; k < op.I2-op.I1; k++ {
				out = append(out, DiffLine{Op: DiffEqual, Action: a[op.I1+k], IndexA: op.I1 + k, IndexB: op.J1 + k})
			}
		case 'd', 'r', 'i':
			for i := op.I1; i < op.I2; i++ {
				out = append(out, DiffLine{Op: DiffDelete, Action: a[i], IndexA: i, IndexB: -1})
			}
			for j := op.J1; j < op.J2; j++ {
				out = append(out, DiffLine{Op: DiffInsert, Action: b[j], IndexA: -1, IndexB: j})
			}
		}
	}
	return out
}
