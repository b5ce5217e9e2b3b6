package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"defense-planner/internal/logger"
)

// Checker validates one raw record before it is decoded.
type Checker interface {
	ValidateBytes(data []byte) error
}

// Collection is a JSON array of records of type T stored under one key.
type Collection[T any] struct {
	backend Backend
	key     string
	checker Checker
	log     logger.Log
}

// NewCollection binds key on backend. checker may be nil.
func NewCollection[T any](backend Backend, key string, checker Checker, log logger.Log) *Collection[T] {
	return &Collection[T]{
		backend: backend,
		key:     key,
		checker: checker,
		log:     log.With(logger.String("key", key)),
	}
}

// Load reads the collection. A missing or unparsable blob yields an empty
// collection; records failing the shape check or decoding are skipped. Only
// backend failures are returned.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	data, err := c.backend.Get(ctx, c.key)
	if errors.Is(err, ErrNotFound) {
		c.log.Info("no stored collection, starting empty")
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		c.log.Warn("stored collection is not a JSON array, starting empty", logger.Error(err))
		return []T{}, nil
	}

	items := make([]T, 0, len(raws))
	for i, raw := range raws {
		if c.checker != nil {
			if err := c.checker.ValidateBytes(raw); err != nil {
				c.log.Warn("skipping invalid record", logger.Int("index", i), logger.Error(err))
				continue
			}
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			c.log.Warn("skipping undecodable record", logger.Int("index", i), logger.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Save replaces the stored collection with items, indented, non-ASCII kept
// as is.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.backend.Put(ctx, c.key, buf.Bytes()); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	c.log.Debug("collection saved", logger.Int("records", len(items)))
	return nil
}
