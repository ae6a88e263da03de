package server

import (
	"sync"

	"whisper-relay/common"
)

// mailbox holds undelivered messages per user until their next registration.
// Queues are unbounded, FIFO and live only for the process lifetime.
type mailbox struct {
	mu     sync.Mutex
	queues map[string][]common.MailboxEntry
}

func newMailbox() *mailbox {
	return &mailbox{queues: make(map[string][]common.MailboxEntry)}
}

func (m *mailbox) enqueue(userID string, entry common.MailboxEntry) {
	m.mu.Lock()
	m.queues[userID] = append(m.queues[userID], entry)
	m.mu.Unlock()
}

// drainAll returns the user's queued entries in insertion order and deletes
// the queue in the same step.
func (m *mailbox) drainAll(userID string) []common.MailboxEntry {
	m.mu.Lock()
	entries := m.queues[userID]
	delete(m.queues, userID)
	m.mu.Unlock()
	return entries
}
