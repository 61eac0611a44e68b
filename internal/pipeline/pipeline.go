// Package pipeline is the host side of the trigger contract: it applies
// transactions to the document store, invokes the registered triggers, and
// applies whatever they derive.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"shadowcal/internal/model"
	"shadowcal/internal/presenter"
	"shadowcal/internal/store"
	"shadowcal/internal/trigger"
)

// errDuplicate marks a create that hit a uniqueness constraint: a replayed
// transaction with a deterministic id. Safe to drop.
var errDuplicate = errors.New("duplicate document")

const (
	applyRetries = 3
	retryBase    = 50 * time.Millisecond
)

// Hook receives every applied transaction. Used for the websocket feed and
// the push notifier; a nil hook is skipped.
type Hook func(tx model.Transaction, derived bool)

type Pipeline struct {
	events     *store.EventStore
	calendars  *store.CalendarStore
	accounts   *store.AccountStore
	txlog      *store.TxStore
	reader     *Reader
	presenters *presenter.Registry
	triggers   []trigger.Registration
	applied    Hook
	logger     *slog.Logger
}

func New(r *Reader, txlog *store.TxStore, presenters *presenter.Registry, applied Hook, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		events:     r.Events,
		calendars:  r.Calendars,
		accounts:   r.Accounts,
		txlog:      txlog,
		reader:     r,
		presenters: presenters,
		triggers:   trigger.Registrations(),
		applied:    applied,
		logger:     logger,
	}
}

// Process applies one incoming transaction, runs the triggers, and keeps
// applying derived transactions until the batch settles. Derived transactions
// re-enter the triggers; the reconciler's owner-access checks bound the
// recursion. Returns every transaction applied, the incoming one first.
func (p *Pipeline) Process(ctx context.Context, tx model.Transaction) ([]model.Transaction, error) {
	snapshot := trigger.Snapshot{}
	ctl := trigger.Control{
		Store:      p.reader,
		Removed:    snapshot,
		Presenters: p.presenters,
		Logger:     p.logger,
	}

	var applied []model.Transaction
	queue := []model.Transaction{tx}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		derived := len(applied) > 0

		if err := p.applyWithRetry(ctx, next, snapshot); err != nil {
			if errors.Is(err, errDuplicate) {
				p.logger.Info("dropping replayed transaction",
					"tx", next.ID, "object", next.ObjectID)
				continue
			}
			return applied, fmt.Errorf("apply transaction %s: %w", next.ID, err)
		}
		applied = append(applied, next)

		if p.applied != nil {
			p.applied(next, derived)
		}

		for _, reg := range p.triggers {
			if !reg.Match(next) {
				continue
			}
			out, err := reg.Fn(ctx, ctl, next)
			if err != nil {
				return applied, fmt.Errorf("trigger %s: %w", reg.Name, err)
			}
			queue = append(queue, out...)
		}
	}

	return applied, nil
}

func (p *Pipeline) applyWithRetry(ctx context.Context, tx model.Transaction, snapshot trigger.Snapshot) error {
	backoff := retry.WithMaxRetries(applyRetries, retry.NewFibonacci(retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := p.apply(ctx, tx, snapshot)
		if err == nil || errors.Is(err, errDuplicate) {
			return err
		}
		// Transient sqlite contention is worth retrying; everything else is
		// a real failure.
		if strings.Contains(err.Error(), "database is locked") ||
			strings.Contains(err.Error(), "SQLITE_BUSY") {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (p *Pipeline) apply(ctx context.Context, tx model.Transaction, snapshot trigger.Snapshot) error {
	switch tx.Kind {
	case model.TxCreate:
		if err := p.applyCreate(ctx, tx); err != nil {
			return err
		}
	case model.TxUpdate:
		if tx.ObjectClass != model.ClassEvent {
			return fmt.Errorf("update of unsupported class %q", tx.ObjectClass)
		}
		if err := p.events.ApplyOperations(ctx, tx.ObjectID, tx.Actor, tx.Operations); err != nil {
			return err
		}
	case model.TxRemove:
		if tx.ObjectClass != model.ClassEvent {
			return fmt.Errorf("remove of unsupported class %q", tx.ObjectClass)
		}
		removed, err := p.events.Delete(ctx, tx.ObjectID)
		if err != nil {
			return err
		}
		if removed != nil {
			snapshot[tx.ObjectID] = removed
		}
	default:
		return fmt.Errorf("unknown transaction kind %q", tx.Kind)
	}

	return p.txlog.Append(ctx, tx)
}

func (p *Pipeline) applyCreate(ctx context.Context, tx model.Transaction) error {
	var err error
	switch tx.ObjectClass {
	case model.ClassEvent:
		ev, ok := tx.EventPayload()
		if !ok {
			return fmt.Errorf("event create %s carries no event payload", tx.ID)
		}
		err = p.events.Create(ctx, ev)
	case model.ClassCalendar:
		cal, ok := tx.CalendarPayload()
		if !ok {
			return fmt.Errorf("calendar create %s carries no calendar payload", tx.ID)
		}
		err = p.calendars.Create(ctx, cal)
	case model.ClassAccount:
		acc, ok := tx.AccountPayload()
		if !ok {
			return fmt.Errorf("account create %s carries no account payload", tx.ID)
		}
		err = p.accounts.CreateAccount(ctx, acc)
	case model.ClassPerson:
		person, ok := tx.Document.(*model.Person)
		if !ok {
			return fmt.Errorf("person create %s carries no person payload", tx.ID)
		}
		err = p.accounts.CreatePerson(ctx, person)
	default:
		return fmt.Errorf("create of unsupported class %q", tx.ObjectClass)
	}

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", errDuplicate, tx.ObjectID)
	}
	return err
}
