// TacOps Realtime - Tactical Operations Coordination Server
// Copyright 2026 abusallam
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abusallam/tacops-realtime

package persist

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/abusallam/tacops-realtime/internal/logging"
)

// Key prefixes, one keyspace per persisted tag.
const (
	annotationKeyPrefix   = "annotation:"
	taskUpdateKeyPrefix   = "task_update:"
	taskVerifyKeyPrefix   = "task_verification:"
	emergencyKeyPrefix    = "emergency:"
	assetLocKeyPrefix     = "asset_location:"
	assetStatusKeyPrefix  = "asset_status:"
	chatMessageKeyPrefix  = "chat:"
)

// BadgerStore writes event records to an embedded BadgerDB, one keyspace
// per tag. Keys embed the timestamp so a prefix scan returns records in
// write order.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	logging.Info().Str("path", path).Msg("event store opened")
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) save(prefix string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	key := []byte(fmt.Sprintf("%s%d:%s", prefix, rec.Timestamp.UnixNano(), rec.ID))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func (s *BadgerStore) SaveMapAnnotation(_ context.Context, rec *Record) error {
	return s.save(annotationKeyPrefix, rec)
}

func (s *BadgerStore) SaveTaskUpdate(_ context.Context, rec *Record) error {
	return s.save(taskUpdateKeyPrefix, rec)
}

func (s *BadgerStore) SaveTaskVerification(_ context.Context, rec *Record) error {
	return s.save(taskVerifyKeyPrefix, rec)
}

func (s *BadgerStore) SaveEmergencyAlert(_ context.Context, rec *Record) error {
	return s.save(emergencyKeyPrefix, rec)
}

func (s *BadgerStore) SaveAssetLocation(_ context.Context, rec *Record) error {
	return s.save(assetLocKeyPrefix, rec)
}

func (s *BadgerStore) SaveAssetStatus(_ context.Context, rec *Record) error {
	return s.save(assetStatusKeyPrefix, rec)
}

func (s *BadgerStore) SaveChatMessage(_ context.Context, rec *Record) error {
	return s.save(chatMessageKeyPrefix, rec)
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
