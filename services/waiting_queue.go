package services

import "arguematch/models"

// WaitingQueue is the FIFO list of connections looking for a partner.
// A connection id is held at most once.
type WaitingQueue struct {
	entries []models.WaitingEntry
}

// NewWaitingQueue creates an empty queue
func NewWaitingQueue() *WaitingQueue {
	return &WaitingQueue{}
}

// Enqueue appends the entry unless its connection is already queued.
func (q *WaitingQueue) Enqueue(entry models.WaitingEntry) bool {
	if q.Contains(entry.ConnectionID) {
		return false
	}
	q.entries = append(q.entries, entry)
	return true
}

// PopHead removes and returns the longest waiting entry
func (q *WaitingQueue) PopHead() (models.WaitingEntry, bool) {
	if len(q.entries) == 0 {
		return models.WaitingEntry{}, false
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head, true
}

// PushFront restores an entry to the head of the queue.
func (q *WaitingQueue) PushFront(entry models.WaitingEntry) {
	if q.Contains(entry.ConnectionID) {
		return
	}
	q.entries = append([]models.WaitingEntry{entry}, q.entries...)
}

// Remove drops a connection from the queue and reports whether it was there.
func (q *WaitingQueue) Remove(connectionID string) bool {
	for i, entry := range q.entries {
		if entry.ConnectionID == connectionID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the connection is queued
func (q *WaitingQueue) Contains(connectionID string) bool {
	for _, entry := range q.entries {
		if entry.ConnectionID == connectionID {
			return true
		}
	}
	return false
}

// Len returns the queue length
func (q *WaitingQueue) Len() int {
	return len(q.entries)
}

// Snapshot returns a copy of the queue in service order
func (q *WaitingQueue) Snapshot() []models.WaitingEntry {
	out := make([]models.WaitingEntry, len(q.entries))
	copy(out, q.entries)
	return out
}
