// Package testutil provides deterministic stand-ins for the engine's clock
// and id generator so event traces are byte-stable across runs.
package testutil

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Clock hands out strictly increasing timestamps, advancing by a fixed
// step on every call.
type Clock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewClock returns a clock starting at start and stepping by step.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{next: start, step: step}
}

// Now returns the next timestamp.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

// IDs hands out sequential ids per prefix: it_000001, it_000002, bd_000001.
type IDs struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewIDs returns a fresh sequential id generator.
func NewIDs() *IDs {
	return &IDs{counts: make(map[string]int64)}
}

// NewID returns the next id for the prefix.
func (g *IDs) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts[prefix]++
	return fmt.Sprintf("%s%06d", prefix, g.counts[prefix])
}

// Label reduces an id to its prefix and trailing digits for trace output,
// dropping leading zeros: it_000007 becomes it_7.
func Label(id string) string {
	i := strings.LastIndex(id, "_")
	if i < 0 {
		return id
	}
	digits := strings.TrimLeft(id[i+1:], "0")
	if digits == "" {
		digits = "0"
	}
	return id[:i+1] + digits
}
