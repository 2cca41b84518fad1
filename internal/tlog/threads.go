package tlog

import (
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultMaxThreads is the thread table capacity used when none is configured.
const DefaultMaxThreads = 8

// ErrThreadTableFull is returned when a new thread needs per-thread state
// and the table is already at capacity.
var ErrThreadTableFull = errors.New("log thread table is full")

type timedRegion struct {
	name  string
	src   Source
	start time.Duration
}

type threadState struct {
	indent  int
	regions []timedRegion
}

// threadTable holds indent and timed region state per OS thread. It is not
// synchronised; Log guards it.
type threadTable struct {
	limit  int
	states map[uint32]*threadState
}

func newThreadTable(limit int) *threadTable {
	if limit <= 0 {
		limit = DefaultMaxThreads
	}
	return &threadTable{
		limit:  limit,
		states: make(map[uint32]*threadState),
	}
}

func (t *threadTable) get(id uint32) *threadState {
	return t.states[id]
}

func (t *threadTable) getOrCreate(id uint32) (*threadState, error) {
	if state, ok := t.states[id]; ok {
		return state, nil
	}
	if len(t.states) >= t.limit {
		return nil, errors.Wrapf(ErrThreadTableFull, "thread %d (capacity %d)", id, t.limit)
	}
	state := &threadState{}
	t.states[id] = state
	return state, nil
}

func (t *threadTable) len() int {
	return len(t.states)
}
