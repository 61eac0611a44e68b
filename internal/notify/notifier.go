package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shadowcal/internal/model"
	"shadowcal/internal/store"
)

const sendTimeout = 10 * time.Second

// sender abstracts the web push service for testing.
type sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// Notifier pushes a notification to an event copy's holder whenever the
// reconciler touches their copy. Expired subscriptions are pruned as they are
// discovered.
type Notifier struct {
	sender sender
	subs   *store.PushStore
	logger *slog.Logger
}

func NewNotifier(svc *Service, subs *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{sender: svc, subs: subs, logger: logger}
}

// TransactionApplied reports one applied transaction. Only derived event
// transactions notify: those are the reconciler writing into someone else's
// calendar. Client-submitted transactions notify no one; the actor made the
// change themselves.
func (n *Notifier) TransactionApplied(tx model.Transaction, derived bool) {
	if !derived || tx.ObjectClass != model.ClassEvent {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	subs, err := n.subs.ByAccount(ctx, tx.Actor)
	if err != nil {
		n.logger.Error("list push subscriptions", "account", tx.Actor, "error", err)
		return
	}

	payload := payloadFor(tx)
	for i := range subs {
		if err := n.sender.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := n.subs.DeleteByEndpoint(ctx, subs[i].Endpoint); err != nil {
					n.logger.Error("prune expired subscription", "error", err)
				}
				continue
			}
			n.logger.Error("send push", "account", tx.Actor, "error", err)
		}
	}
}

func payloadFor(tx model.Transaction) Payload {
	p := Payload{
		URL: "/calendar",
		Tag: fmt.Sprintf("event-%s", tx.ObjectID),
	}

	switch tx.Kind {
	case model.TxCreate:
		p.Title = "New event"
		if ev, ok := tx.EventPayload(); ok {
			p.Body = fmt.Sprintf("%s was added to your calendar", ev.Title)
		} else {
			p.Body = "An event was added to your calendar"
		}
	case model.TxUpdate:
		p.Title = "Event updated"
		p.Body = "An event in your calendar changed"
	case model.TxRemove:
		p.Title = "Event removed"
		p.Body = "An event was removed from your calendar"
	}
	return p
}
