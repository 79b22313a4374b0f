package quota

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultMaxUses 是未登录用户每天允许的解读次数。
const DefaultMaxUses = 3

// Decision is the outcome of a quota check, read before any reservation.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// Governor tracks daily usage per client. It is the only component that
// touches the quota store. Check never mutates; RecordUse commits a slot and
// Refund rolls one back. The check-then-commit sequence is atomic only within
// one governor instance — concurrent clients of the same ID may undercount,
// which is an accepted limitation.
type Governor struct {
	mu      sync.Mutex
	store   Store
	maxUses int
	now     func() time.Time
}

// NewGovernor creates a governor backed by the given store.
func NewGovernor(store Store, maxUses int) *Governor {
	if maxUses <= 0 {
		maxUses = DefaultMaxUses
	}
	return &Governor{
		store:   store,
		maxUses: maxUses,
		now:     time.Now,
	}
}

// Max returns the configured daily limit.
func (g *Governor) Max() int {
	return g.maxUses
}

// Check reports whether the client has a quota slot left today.
// A record carrying a stale date is reinterpreted as count zero without any
// write — the next commit persists a fresh record for today.
func (g *Governor) Check(ctx context.Context, clientID string) (Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	count, err := g.todayCount(ctx, clientID)
	if err != nil {
		return Decision{}, err
	}

	if count >= g.maxUses {
		return Decision{Allowed: false, Remaining: 0, ResetAt: g.nextReset()}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: g.maxUses - count,
		ResetAt:   g.nextReset(),
	}, nil
}

// RecordUse commits one quota slot for today and returns the new remaining
// count. Called once the generation service has accepted the request, never
// for submissions that failed validation or were rejected by Check.
func (g *Governor) RecordUse(ctx context.Context, clientID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	count, err := g.todayCount(ctx, clientID)
	if err != nil {
		return 0, err
	}

	count++
	record := Record{Count: count, Date: g.today()}
	if err := g.store.Put(ctx, clientID, record); err != nil {
		return 0, err
	}

	remaining := g.maxUses - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Refund rolls back one committed slot. Only same-day records are touched and
// the count never drops below zero.
func (g *Governor) Refund(ctx context.Context, clientID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	count, err := g.todayCount(ctx, clientID)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	record := Record{Count: count - 1, Date: g.today()}
	if err := g.store.Put(ctx, clientID, record); err != nil {
		return err
	}

	log.Printf("[quota] refunded one slot for client=%s", clientID)
	return nil
}

func (g *Governor) today() string {
	return g.now().Format(DateLayout)
}

// todayCount reads the stored count, treating absent, stale-dated, or
// unreadable records as zero.
func (g *Governor) todayCount(ctx context.Context, clientID string) (int, error) {
	record, err := g.store.Get(ctx, clientID)
	if err != nil {
		return 0, err
	}
	if record == nil || record.Date != g.today() || record.Count < 0 {
		return 0, nil
	}
	return record.Count, nil
}

// nextReset returns the start of the next calendar day in local time.
func (g *Governor) nextReset() time.Time {
	now := g.now()
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
