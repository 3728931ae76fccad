package gemini

import (
	"errors"
	"strings"
	"sync/atomic"
)

// ErrEmptyKeyPool is returned when a pool is built without any usable key.
var ErrEmptyKeyPool = errors.New("gemini: key pool is empty")

// KeyPool - cyclic set of interchangeable Gemini API keys shared by every request.
// The cursor advances atomically, so concurrent callers interleave keys without a lock.
type KeyPool struct {
	keys   []string
	cursor atomic.Uint64
}

// NewKeyPool - build a pool from keys, dropping blanks
func NewKeyPool(keys []string) (*KeyPool, error) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrEmptyKeyPool
	}
	return &KeyPool{keys: cleaned}, nil
}

// Next returns the slot index and key to use for the next attempt.
func (p *KeyPool) Next() (int, string) {
	n := p.cursor.Add(1) - 1
	slot := int(n % uint64(len(p.keys)))
	return slot, p.keys[slot]
}

// Size - number of keys in the pool
func (p *KeyPool) Size() int {
	return len(p.keys)
}
