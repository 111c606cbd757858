package ledger

import (
	"sync"
	"time"
)

// Channel is a named, append-only sequence of hash-chained blocks. Every
// channel starts with a genesis block created at construction. A single
// mutex guards append and verification; the design assumes one logical
// writer per channel.
type Channel struct {
	Name        string
	Description string

	mu     sync.Mutex
	blocks []Block
}

// NewChannel creates a channel and appends its genesis block.
func NewChannel(name, description string) *Channel {
	ch := &Channel{Name: name, Description: description}
	genesis := NewBlock(0, now(), map[string]any{
		"type":    "genesis",
		"channel": name,
	}, GenesisPrevHash)
	ch.blocks = append(ch.blocks, genesis)
	return ch
}

// RestoreChannel rebuilds a channel from previously persisted blocks so
// an existing chain continues across process restarts. An empty block
// slice yields a fresh channel with a new genesis block.
func RestoreChannel(name, description string, blocks []Block) *Channel {
	if len(blocks) == 0 {
		return NewChannel(name, description)
	}
	ch := &Channel{Name: name, Description: description}
	ch.blocks = append(ch.blocks, blocks...)
	return ch
}

// AddData appends a new block carrying data and returns it.
func (c *Channel) AddData(data map[string]any) Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	prevHash := GenesisPrevHash
	if n := len(c.blocks); n > 0 {
		prevHash = c.blocks[n-1].Hash
	}
	block := NewBlock(len(c.blocks), now(), data, prevHash)
	c.blocks = append(c.blocks, block)
	return block
}

// VerifyIntegrity checks, for every block after the genesis block, that
// its stored hash matches a fresh recomputation and that its previous-hash
// links to the preceding block's stored hash. It returns false on the
// first violation found.
func (c *Channel) VerifyIntegrity() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := 1; i < len(c.blocks); i++ {
		current := &c.blocks[i]
		if current.Hash != current.CalculateHash() {
			return false
		}
		if current.PrevHash != c.blocks[i-1].Hash {
			return false
		}
	}
	return true
}

// Blocks returns a copy of the chain for read-only consumption.
func (c *Channel) Blocks() []Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Len returns the chain length including the genesis block.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blocks)
}

// tamper replaces the stored block at index i. Test hook for simulating
// in-place mutation of an appended block.
func (c *Channel) tamper(i int, mutate func(*Block)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= 0 && i < len(c.blocks) {
		mutate(&c.blocks[i])
	}
}

func now() string {
	return time.Now().Format(time.RFC3339Nano)
}
