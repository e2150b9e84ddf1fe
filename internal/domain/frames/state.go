package frames

import "snowviz/internal/domain/snowman"

// worldState is the single mutable copy of the world owned by one synthesis
// pass. Frames only ever see frozen copies of it.
type worldState struct {
	current snowman.Snapshot
	frozen  *snowman.Snapshot
}

func newWorldState(world snowman.WorldModel) *worldState {
	return &worldState{current: world.Snapshot()}
}

// freeze returns an immutable copy of the current state. The copy is reused
// until the next mutation.
func (s *worldState) freeze() snowman.Snapshot {
	if s.frozen == nil {
		snap := s.current.Clone()
		s.frozen = &snap
	}
	return *s.frozen
}

func (s *worldState) mutate(fn func(*snowman.Snapshot)) {
	fn(&s.current)
	s.frozen = nil
}
