package plan

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInsufficientTokens = errors.New("insufficient action tokens")

type Kind string

const (
	KindMove     Kind = "move"
	KindPushBall Kind = "push_ball"
	KindGoal     Kind = "goal"
	KindOther    Kind = "other"
)

var verbKinds = map[string]Kind{
	"move_character": KindMove,
	"move":           KindMove,
	"move_to":        KindMove,
	"move_ball":      KindPushBall,
	"push":           KindPushBall,
	"roll":           KindPushBall,
	"roll_ball":      KindPushBall,
	"goal":           KindGoal,
}

var minTokens = map[Kind]int{
	KindMove:     3,
	KindPushBall: 5,
}

// Action is one classified plan step: Move, PushBall, Goal or Other.
type Action interface {
	Kind() Kind
	Text() string
}

type Move struct {
	Line      string
	Verb      string
	From      string
	To        string
	Direction string
}

func (a Move) Kind() Kind   { return KindMove }
func (a Move) Text() string { return a.Line }

// PushBall rolls Ball from From to To. Via is the planner's intermediate
// location token, which the visualizer ignores.
type PushBall struct {
	Line      string
	Verb      string
	Ball      string
	From      string
	Via       string
	To        string
	Direction string
}

func (a PushBall) Kind() Kind   { return KindPushBall }
func (a PushBall) Text() string { return a.Line }

type Goal struct {
	Line string
}

func (a Goal) Kind() Kind   { return KindGoal }
func (a Goal) Text() string { return a.Line }

type Other struct {
	Line string
	Verb string
}

func (a Other) Kind() Kind   { return KindOther }
func (a Other) Text() string { return a.Line }

type TokenError struct {
	Action string
	Kind   Kind
	Got    int
	Want   int
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid %s action %q: got %d tokens, want at least %d", e.Kind, e.Action, e.Got, e.Want)
}

func (e *TokenError) Unwrap() error {
	return ErrInsufficientTokens
}

// Classify splits a normalized action line and maps its leading token onto an
// action variant. Location tokens are not interpreted here.
func Classify(line string) (Action, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Other{Line: line}, nil
	}
	verb := strings.ToLower(tokens[0])
	kind, ok := verbKinds[verb]
	if !ok {
		return Other{Line: line, Verb: verb}, nil
	}
	if want := minTokens[kind]; len(tokens) < want {
		return nil, &TokenError{Action: line, Kind: kind, Got: len(tokens), Want: want}
	}
	switch kind {
	case KindMove:
		return Move{Line: line, Verb: verb, From: tokens[1], To: tokens[2], Direction: optional(tokens, 3)}, nil
	case KindPushBall:
		return PushBall{
			Line:      line,
			Verb:      verb,
			Ball:      tokens[1],
			From:      tokens[2],
			Via:       tokens[3],
			To:        tokens[4],
			Direction: optional(tokens, 5),
		}, nil
	default:
		return Goal{Line: line}, nil
	}
}

func optional(tokens []string, i int) string {
	if i < len(tokens) {
		return tokens[i]
	}
	return ""
}
