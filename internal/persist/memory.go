// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package persist

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory, grouped by tag. Used in tests and
// when persistence runs without a data directory.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]*Record)}
}

func (s *MemoryStore) save(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Tag] = append(s.records[rec.Tag], rec)
	return nil
}

func (s *MemoryStore) SaveMapAnnotation(_ context.Context, rec *Record) error {
	return s.save(rec)
}

func (s *MemoryStore) SaveTaskUpdate(_ context.Context, rec *Record) error {
	return s.save(rec)
}

func (s *MemoryStore) SaveTaskVerification(_ context.Context, rec *Record) error {
	return s.save(rec)
}

func (s *MemoryStore) SaveEmergencyAlert(_ context.Context, rec *Record) error {
	return s.save(rec)
}

func (s *MemoryStore) SaveAssetLocation(_ context.Context, rec *Record) error {
	return s.save(rec)
}

func (s *MemoryStore) SaveAssetStatus(_ context.Context, rec *Record) error {
	return s.save(rec)
}

func (s *MemoryStore) SaveChatMessage(_ context.Context, rec *Record) error {
	return s.save(rec)
}

// Records returns a snapshot of everything written for a tag.
func (s *MemoryStore) Records(tag string) []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Record(nil), s.records[tag]...)
}

// Count returns the number of records written for a tag.
func (s *MemoryStore) Count(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[tag])
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
