// Package keyvalue provides the persistent key-value capability backing the
// oracle state machine, with memory, Redis and PostgreSQL implementations.
package keyvalue

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value is stored under a key.
var ErrKeyNotFound = errors.New("key not found")

// Store is the persistence surface required by the oracle core.
// Writes staged in a Batch become visible only after a successful Apply;
// a failed Apply must leave none of them behind.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Apply(ctx context.Context, batch *Batch) error
}

// Op is a single staged write.
type Op struct {
	Key   string
	Value []byte
}

// Batch stages writes so a multi-key mutation lands atomically.
type Batch struct {
	ops []Op
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Set stages a write. Later writes to the same key win.
func (b *Batch) Set(key string, value []byte) {
	b.ops = append(b.ops, Op{Key: key, Value: value})
}

// Len reports the number of staged writes.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Ops returns the staged writes in insertion order.
func (b *Batch) Ops() []Op {
	return b.ops
}
