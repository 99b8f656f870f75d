// Package engine implements the operations layer: item creation, bond
// drafting and execution, holologue synthesis, the ledger view, and
// curation. Every operation takes an explicit Session and runs as one
// logical transaction against the store: events appended, snapshots
// upserted, closed by a store.commit marker. Failures append a terminal
// *_failed event instead of rolling back.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/holographic-rest/field-kit/internal/ledger"
	"github.com/holographic-rest/field-kit/internal/policy"
	"github.com/holographic-rest/field-kit/internal/qdpi"
	"github.com/holographic-rest/field-kit/internal/store"
)

// IDGenerator assigns prefixed object and event ids.
type IDGenerator interface {
	NewID(prefix string) string
}

type randomIDs struct{}

func (randomIDs) NewID(prefix string) string { return qdpi.RandomID(prefix) }

// Engine executes operations against one data directory. Safe for
// sequential use; the store serializes the writes underneath.
type Engine struct {
	store  *store.Store
	policy *policy.Policy
	synth  Synthesizer
	ids    IDGenerator
	now    func() time.Time
	log    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock substitutes the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs substitutes the id generator.
func WithIDs(ids IDGenerator) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithSynthesizer substitutes the synthesizer.
func WithSynthesizer(s Synthesizer) Option {
	return func(e *Engine) { e.synth = s }
}

// WithLogger substitutes the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPolicy substitutes a pre-loaded policy.
func WithPolicy(p *policy.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// New builds an Engine over the store. Defaults: embedded policy, stub
// synthesizer, random ids, wall clock, discarded logs.
func New(s *store.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store: s,
		synth: StubSynthesizer{},
		ids:   randomIDs{},
		now:   time.Now,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.policy == nil {
		p, err := policy.Load()
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.policy = p
	}
	return e, nil
}

// Store exposes the underlying store for read-only callers.
func (e *Engine) Store() *store.Store { return e.store }

// Policy exposes the loaded policy.
func (e *Engine) Policy() *policy.Policy { return e.policy }

// newEvent builds an unappended event for the episode, with the id drawn
// from the engine's generator.
func (e *Engine) newEvent(episodeID string, p qdpi.Payload) (qdpi.Event, error) {
	ev, err := qdpi.New(episodeID, p, e.now())
	if err != nil {
		return qdpi.Event{}, err
	}
	ev.ID = e.ids.NewID(qdpi.PrefixEvent)
	return ev, nil
}

// append builds and appends an event in one step.
func (e *Engine) append(episodeID string, p qdpi.Payload) (qdpi.Event, error) {
	ev, err := e.newEvent(episodeID, p)
	if err != nil {
		return qdpi.Event{}, err
	}
	appended, err := e.store.Append(ev)
	if err != nil {
		return qdpi.Event{}, err
	}
	e.log.Debug("event appended",
		"name", string(appended.Name),
		"episode", appended.EpisodeID,
		"seq", appended.Seq)
	return appended, nil
}

// appendDelta appends a credits.delta for the reason, computing the new
// balance from the full log fold. Returns the balance after. The decorate
// hook fills the reason-specific reference fields.
func (e *Engine) appendDelta(episodeID string, reason qdpi.Reason, decorate func(*qdpi.CreditsDelta)) (int64, error) {
	delta, err := e.policy.DeltaFor(reason)
	if err != nil {
		return 0, err
	}
	// Credits belong to the network, so the fold spans every episode.
	balance, err := ledger.Balance(e.store, "")
	if err != nil {
		return 0, err
	}
	after := balance + delta

	cd := qdpi.CreditsDelta{Delta: delta, BalanceAfter: after, Reason: reason}
	if decorate != nil {
		decorate(&cd)
	}
	if _, err := e.append(episodeID, cd); err != nil {
		return 0, err
	}
	return after, nil
}

// commit closes a logical transaction with the store.commit marker.
func (e *Engine) commit(episodeID, itemID string, modifiedIDs []string) error {
	ev, err := e.newEvent(episodeID, qdpi.Commit{
		ItemID:      itemID,
		EpisodeID:   episodeID,
		ModifiedIDs: modifiedIDs,
	})
	if err != nil {
		return err
	}
	if _, err := e.store.Commit(ev); err != nil {
		return err
	}
	return nil
}

// commitFailed records the terminal failure marker. Best effort: if this
// append fails too the original error still reaches the caller.
func (e *Engine) commitFailed(episodeID, reason string) {
	ev, err := e.newEvent(episodeID, qdpi.CommitFailed{Reason: reason})
	if err != nil {
		e.log.Error("commit_failed marker not built", "err", err)
		return
	}
	if _, err := e.store.CommitFailed(ev); err != nil {
		e.log.Error("commit_failed marker not appended", "err", err)
	}
}
