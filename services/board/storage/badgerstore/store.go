// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package badgerstore persists board decisions in an embedded BadgerDB.
//
// The store is append-only from the service's point of view: decisions
// are recorded once and never mutated. Reads are by ID or newest-first
// listing.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/quorumworks/boardroom/services/board/datatypes"
)

// decisionPrefix namespaces decision records in the keyspace.
const decisionPrefix = "decision/"

// ErrNotFound is returned when a decision ID has no record.
var ErrNotFound = errors.New("decision not found")

// Config holds configuration for the decision store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. If nil, that
	// output is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults: durable synchronous writes.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests: no disk I/O.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is the decision recorder. Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open creates the database directory if needed and opens the store.
// Caller must Close when done.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open decision store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordDecision persists one board decision. The decision must carry a
// non-empty ID; recording the same ID twice overwrites, which only
// happens if the caller reuses IDs.
func (s *Store) RecordDecision(ctx context.Context, decision *datatypes.BoardDecision) error {
	if decision == nil || decision.ID == "" {
		return errors.New("decision must have an ID")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("marshal decision %s: %w", decision.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(decisionPrefix+decision.ID), value)
	})
	if err != nil {
		return fmt.Errorf("record decision %s: %w", decision.ID, err)
	}
	return nil
}

// GetDecision loads one decision by ID. Returns ErrNotFound if absent.
func (s *Store) GetDecision(ctx context.Context, id string) (*datatypes.BoardDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var decision datatypes.BoardDecision
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(decisionPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &decision)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get decision %s: %w", id, err)
	}
	return &decision, nil
}

// ListDecisions returns up to limit decisions, newest first. A limit of
// zero or below means no limit.
func (s *Store) ListDecisions(ctx context.Context, limit int) ([]datatypes.BoardDecision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var decisions []datatypes.BoardDecision
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(decisionPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var d datatypes.BoardDecision
				if err := json.Unmarshal(val, &d); err != nil {
					// A corrupt record must not hide the healthy ones.
					slog.Error("Skipping undecodable decision record",
						"key", string(it.Item().Key()), "error", err)
					return nil
				}
				decisions = append(decisions, d)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}

	sort.Slice(decisions, func(i, j int) bool {
		return decisions[i].CreatedAt.After(decisions[j].CreatedAt)
	})
	if limit > 0 && len(decisions) > limit {
		decisions = decisions[:limit]
	}
	return decisions, nil
}
