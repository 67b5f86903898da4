// Package storage defines the persistence gateway the planner stores write
// through, plus the drivers that do not need an external database.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys under which the named collections are persisted. They match the
// browser local-storage keys so dumps can be imported unchanged.
const (
	KeyPlayers           = "five-planner-players"
	KeyGroups            = "five-planner-groups"
	KeyPitches           = "five-planner-pitches"
	KeyActiveSessions    = "five-planner-active-sessions"
	KeySelectedSessionID = "five-planner-selected-session-id"
	KeySessionHistory    = "five-planner-session-history"
)

// CoreKeys lists every key owned by the planner core, in load order.
var CoreKeys = []string{
	KeyPlayers,
	KeyGroups,
	KeyPitches,
	KeyActiveSessions,
	KeySelectedSessionID,
	KeySessionHistory,
}

var (
	// ErrKeyNotFound is returned by Load when nothing is stored under the key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrWrite matches every *WriteError.
	ErrWrite = errors.New("persistence write failed")
)

// Gateway is a key/value store of JSON documents.
type Gateway interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// WriteError reports a failed Save or Remove for a key.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrWrite) match any write failure.
func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// LoadJSON decodes the document stored under key into a T. found is false when
// the key is missing or holds JSON null.
func LoadJSON[T any](ctx context.Context, gw Gateway, key string) (value T, found bool, err error) {
	data, err := gw.Load(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("loading %s: %w", key, err)
	}
	if string(data) == "null" || len(data) == 0 {
		return value, false, nil
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return value, true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, gw Gateway, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := gw.Save(ctx, key, data); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

// RemoveKey deletes key, reporting failures as a *WriteError.
func RemoveKey(ctx context.Context, gw Gateway, key string) error {
	if err := gw.Remove(ctx, key); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}
