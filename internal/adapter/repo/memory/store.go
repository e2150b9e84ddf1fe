package memory

import (
	"sync"

	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"
)

type Store struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	runs   map[string]ports.RunRecord
	order  []string
	errors map[string][]frames.ActionError
}

func NewStore() *Store {
	return &Store{
		runs:   make(map[string]ports.RunRecord),
		errors: make(map[string][]frames.ActionError),
	}
}
