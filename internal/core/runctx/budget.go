package runctx

import (
	"math"
	"sync/atomic"
)

// micro is the fixed point scale; one unit of currency is a million micros
const micro = 1_000_000

func toMicros(f float64) int64 {
	if f <= 0 {
		return 0
	}
	return int64(math.Round(f * micro))
}

func fromMicros(n int64) float64 { return float64(n) / micro }

// Budget is the per run spend ceiling for metered calls
// Spent never exceeds Cap: a charge that would overflow is rejected whole
type Budget struct {
	spent atomic.Int64
	cap   atomic.Int64
}

// NewBudget returns a budget with the given cap
func NewBudget(capacity float64) *Budget {
	b := &Budget{}
	b.cap.Store(toMicros(capacity))
	return b
}

// TrySpend charges x when it fits under the cap and reports whether it did
func (b *Budget) TrySpend(x float64) bool {
	want := toMicros(x)
	if want == 0 {
		return true
	}
	limit := b.cap.Load()
	for {
		cur := b.spent.Load()
		if cur+want > limit {
			return false
		}
		if b.spent.CompareAndSwap(cur, cur+want) {
			return true
		}
	}
}

// Refund gives back x of an earlier charge; spend never drops below zero
func (b *Budget) Refund(x float64) {
	give := toMicros(x)
	if give == 0 {
		return
	}
	for {
		cur := b.spent.Load()
		if b.spent.CompareAndSwap(cur, max(cur-give, 0)) {
			return
		}
	}
}

// Spent returns the amount charged so far
func (b *Budget) Spent() float64 { return fromMicros(b.spent.Load()) }

// Cap returns the ceiling
func (b *Budget) Cap() float64 { return fromMicros(b.cap.Load()) }

// Remaining returns cap minus spent
func (b *Budget) Remaining() float64 { return fromMicros(b.cap.Load() - b.spent.Load()) }

// Reset zeroes spend, used once at the start of a run
func (b *Budget) Reset() { b.spent.Store(0) }
