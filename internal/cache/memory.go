// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries is the capacity of a Memory store created without explicit capacity.
const DefaultMaxEntries = 100

type memoryEntry struct {
	key    string
	value  []byte
	expiry time.Time
}

// Memory is an in-process LRU store with an optional time-to-live per entry. It is safe for
// concurrent use.
type Memory struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	entries    *list.List
	index      map[string]*list.Element
}

// NewMemory returns a Memory store holding at most maxEntries values. A non-positive ttl keeps
// entries until they are evicted.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    list.New(),
		index:      make(map[string]*list.Element),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.index[key]
	if !ok {
		return nil, false, nil
	}
	entry := elem.Value.(*memoryEntry)
	if m.expired(entry, time.Now()) {
		m.remove(elem)
		return nil, false, nil
	}
	m.entries.MoveToFront(elem)
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiry time.Time
	if m.ttl > 0 {
		expiry = time.Now().Add(m.ttl)
	}
	if elem, ok := m.index[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expiry = expiry
		m.entries.MoveToFront(elem)
		return nil
	}

	m.index[key] = m.entries.PushFront(&memoryEntry{key: key, value: value, expiry: expiry})
	for m.entries.Len() > m.maxEntries {
		m.remove(m.entries.Back())
	}
	return nil
}

// Len returns the number of stored entries including expired ones not yet purged.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries.Len()
}

// PurgeExpired removes all expired entries and returns how many were removed.
func (m *Memory) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var purged int
	for elem := m.entries.Back(); elem != nil; {
		prev := elem.Prev()
		if m.expired(elem.Value.(*memoryEntry), now) {
			m.remove(elem)
			purged++
		}
		elem = prev
	}
	return purged
}

func (m *Memory) expired(entry *memoryEntry, now time.Time) bool {
	return !entry.expiry.IsZero() && !now.Before(entry.expiry)
}

func (m *Memory) remove(elem *list.Element) {
	delete(m.index, elem.Value.(*memoryEntry).key)
	m.entries.Remove(elem)
}
