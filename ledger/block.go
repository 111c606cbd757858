// Package ledger implements append-only, hash-chained channels of
// supervision records with integrity verification, optional sqlite
// durability, and tabular export.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// GenesisPrevHash is the previous-hash sentinel of every genesis block.
const GenesisPrevHash = "0"

// Block is one ledger entry. Blocks are immutable once appended.
type Block struct {
	Index     int            `json:"index"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
	PrevHash  string         `json:"previous_hash"`
	Hash      string         `json:"hash"`
}

// NewBlock constructs a block and computes its hash over the remaining
// fields.
func NewBlock(index int, timestamp string, data map[string]any, prevHash string) Block {
	b := Block{
		Index:     index,
		Timestamp: timestamp,
		Data:      data,
		PrevHash:  prevHash,
	}
	b.Hash = b.CalculateHash()
	return b
}

// CalculateHash returns the SHA-256 hex digest of the block's canonical
// serialization: JSON with sorted keys and non-primitive payload values
// coerced to strings. Two blocks with identical fields hash identically
// regardless of payload key insertion order.
func (b *Block) CalculateHash() string {
	canonical, err := json.Marshal(map[string]any{
		"index":         b.Index,
		"timestamp":     b.Timestamp,
		"data":          normalizeValue(b.Data),
		"previous_hash": b.PrevHash,
	})
	if err != nil {
		// Unreachable after normalizeValue, which only yields
		// JSON-encodable values.
		canonical = []byte(fmt.Sprintf("%v", b))
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// normalizeValue maps a payload value onto the JSON-encodable subset used
// for hashing: primitives pass through, maps and slices recurse, anything
// else is coerced to its string form.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		// Structured payload values (records, violation lists) must
		// hash the same before and after a store round-trip, which
		// decodes them as generic maps. Route them through JSON into
		// the generic form so both sides canonicalize identically.
		enc, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		var decoded any
		if err := json.Unmarshal(enc, &decoded); err != nil {
			return string(enc)
		}
		return normalizeValue(decoded)
	}
}
