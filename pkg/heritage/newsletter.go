package heritage

import (
	"context"
	"errors"

	"github.com/tendant/heritage-content/pkg/heritage/store"
)

// Subscribe activates the newsletter subscription for email. An unknown
// address is inserted as active, an inactive one is reactivated and an
// active one is left unchanged.
func (s *service) Subscribe(ctx context.Context, email string) (*SubscriptionResult, error) {
	email = NormalizeEmail(email)
	if !IsValidEmail(email) {
		return nil, &EntityError{Entity: KindSubscriber, ID: email, Op: "subscribe", Err: ErrInvalidEmail}
	}

	existing, err := store.FindOne[NewsletterSubscriber](ctx, s.subscribers, store.Eq("email", email))
	switch {
	case err == nil && existing.IsActive:
		return &SubscriptionResult{Email: email, Status: SubscriptionAlreadyActive}, nil
	case err == nil:
		if _, err := s.subscribers.SetOne(ctx, store.Fields{"is_active": true}, store.Eq("email", email)); err != nil {
			return nil, &EntityError{Entity: KindSubscriber, ID: email, Op: "subscribe", Err: err}
		}
		s.logger.Info("Newsletter subscription reactivated", "email", email)
		return &SubscriptionResult{Email: email, Status: SubscriptionReactivated}, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, &EntityError{Entity: KindSubscriber, ID: email, Op: "subscribe", Err: err}
	}

	subscriber := NewNewsletterSubscriber(email, s.timestamp())
	if err := s.subscribers.InsertOne(ctx, subscriber); err != nil {
		// A concurrent subscribe for the same address won the unique index
		if errors.Is(err, store.ErrDuplicate) {
			return &SubscriptionResult{Email: email, Status: SubscriptionAlreadyActive}, nil
		}
		return nil, &EntityError{Entity: KindSubscriber, ID: email, Op: "subscribe", Err: err}
	}
	s.logger.Info("Newsletter subscriber added", "email", email)
	return &SubscriptionResult{Email: email, Status: SubscriptionCreated}, nil
}

// Unsubscribe marks the subscriber inactive. It succeeds for an already
// inactive subscriber and returns ErrNotFound for an unknown address.
func (s *service) Unsubscribe(ctx context.Context, email string) (*SubscriptionResult, error) {
	email = NormalizeEmail(email)

	matched, err := s.subscribers.SetOne(ctx, store.Fields{"is_active": false}, store.Eq("email", email))
	if err != nil {
		return nil, &EntityError{Entity: KindSubscriber, ID: email, Op: "unsubscribe", Err: err}
	}
	if matched == 0 {
		return nil, &EntityError{Entity: KindSubscriber, ID: email, Op: "unsubscribe", Err: ErrNotFound}
	}
	s.logger.Info("Newsletter subscription cancelled", "email", email)
	return &SubscriptionResult{Email: email, Status: SubscriptionCancelled}, nil
}

func (s *service) ListActiveSubscribers(ctx context.Context) ([]*NewsletterSubscriber, error) {
	subscribers, err := store.FindAll[NewsletterSubscriber](ctx, s.subscribers, store.FindOptions{
		Filters: []store.Filter{store.Eq("is_active", true)},
		Sort:    store.Desc("subscribed_at"),
	})
	if err != nil {
		return nil, &EntityError{Entity: KindSubscriber, Op: "list", Err: err}
	}
	return subscribers, nil
}

func (s *service) CountActiveSubscribers(ctx context.Context) (int64, error) {
	n, err := s.subscribers.Count(ctx, store.Eq("is_active", true))
	if err != nil {
		return 0, &EntityError{Entity: KindSubscriber, Op: "count", Err: err}
	}
	return n, nil
}
