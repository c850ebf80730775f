package transcript

import (
	"errors"
	"sync"
	"time"

	"github.com/papercomputeco/atelier/pkg/merkle"
)

// ErrInvalidTurn is returned by Append when a turn has no role or kind.
var ErrInvalidTurn = errors.New("turn requires a role and a kind")

// Transcript is the ordered history of turns for one session. Insertion order is
// display order and causal order. Only Append mutates it; there is no edit,
// truncate, or persistence.
//
// A single session writes to its transcript one request at a time, but HTTP
// reads can overlap that write, so access is guarded by a RWMutex.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
	head  *merkle.Node
	now   func() time.Time
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{now: time.Now}
}

// Append adds turn to the end of the transcript and returns the stored copy with
// its ID and CreatedAt set.
func (t *Transcript) Append(turn Turn) (Turn, error) {
	if turn.Role == "" || turn.Kind == "" {
		return Turn{}, ErrInvalidTurn
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node := merkle.NewNode(hashable{
		Role:    turn.Role,
		Kind:    turn.Kind,
		Content: turn.Content,
	}, t.head)

	turn.ID = node.Hash
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = t.now().UTC()
	}

	t.turns = append(t.turns, turn)
	t.head = node
	return turn, nil
}

// All returns the full ordered sequence of turns. The returned slice is a copy.
func (t *Transcript) All() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Since returns a copy of the turns appended after the first n.
func (t *Transcript) Since(n int) []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n >= len(t.turns) {
		return []Turn{}
	}

	out := make([]Turn, len(t.turns)-n)
	copy(out, t.turns[n:])
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Head returns the ID of the last turn, or "" for an empty transcript.
// Two transcripts with the same head hold the same turns in the same order.
func (t *Transcript) Head() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.head == nil {
		return ""
	}
	return t.head.Hash
}
