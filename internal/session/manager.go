package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns the session identifier, the transcript and the busy flag.
// The transcript is append-only: Append is the only way it grows and
// nothing removes or reorders entries.
type Manager struct {
	mu        sync.RWMutex
	id        string
	startedAt time.Time
	messages  []Message
	busy      bool
	listeners []func(Change)
}

// NewManager creates a manager with a freshly generated session id
func NewManager() *Manager {
	return &Manager{
		id:        uuid.New().String(),
		startedAt: time.Now(),
		messages:  []Message{},
	}
}

// ID returns the session identifier
func (m *Manager) ID() string {
	return m.id
}

// StartedAt returns when the session was created
func (m *Manager) StartedAt() time.Time {
	return m.startedAt
}

// Subscribe registers fn to be called after every state change.
// Listeners run on the goroutine that made the change, outside the lock.
func (m *Manager) Subscribe(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Append adds a message to the end of the transcript and returns its index
func (m *Manager) Append(msg Message) int {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.IsAgent() && msg.References == nil {
		msg.References = []string{}
	}
	// Own the slice so later edits by the caller cannot leak in.
	if msg.References != nil {
		msg.References = append([]string{}, msg.References...)
	}

	m.mu.Lock()
	m.messages = append(m.messages, msg)
	change := Change{Kind: ChangeAppend, Index: len(m.messages) - 1, Len: len(m.messages), Busy: m.busy}
	listeners := m.listeners
	m.mu.Unlock()

	notify(listeners, change)
	return change.Index
}

// Messages returns a copy of the transcript
func (m *Manager) Messages() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Message returns the message at index i
func (m *Manager) Message(i int) (Message, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i < 0 || i >= len(m.messages) {
		return Message{}, false
	}
	return m.messages[i], true
}

// Len returns the number of messages in the transcript
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// AgentIndexes returns the transcript positions of all agent messages, in order
func (m *Manager) AgentIndexes() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := []int{}
	for i, msg := range m.messages {
		if msg.IsAgent() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Busy reports whether an agent request is outstanding
func (m *Manager) Busy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busy
}

// SetBusy flips the busy flag. Only the exchange controller calls this.
func (m *Manager) SetBusy(busy bool) {
	m.mu.Lock()
	if m.busy == busy {
		m.mu.Unlock()
		return
	}
	m.busy = busy
	change := Change{Kind: ChangeBusy, Index: -1, Len: len(m.messages), Busy: busy}
	listeners := m.listeners
	m.mu.Unlock()

	notify(listeners, change)
}

// SetFeedback records a rating on the agent message at index i
func (m *Manager) SetFeedback(i int, fb Feedback) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.messages) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoSuchMessage, i)
	}
	if !m.messages[i].IsAgent() {
		m.mu.Unlock()
		return fmt.Errorf("%w: message %d", ErrNotRateable, i)
	}
	m.messages[i].Feedback = fb
	change := Change{Kind: ChangeFeedback, Index: i, Len: len(m.messages), Busy: m.busy}
	listeners := m.listeners
	m.mu.Unlock()

	notify(listeners, change)
	return nil
}

func notify(listeners []func(Change), c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}
