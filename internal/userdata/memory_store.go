package userdata

import (
	"context"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryStore struct {
	mu            sync.RWMutex
	accounts      []Account
	subscriptions []NewsletterSubscription
	contacts      []ContactSubmission
	pageViews     []PageView
	actions       []UserAction
	conversions   []Conversion
	consents      []ConsentRecord
}

// NewInMemoryStore creates a new in-memory personal-data store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddAccount seeds an account record.
func (s *InMemoryStore) AddAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, a)
}

// AddNewsletterSubscription seeds a newsletter subscription record.
func (s *InMemoryStore) AddNewsletterSubscription(n NewsletterSubscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = append(s.subscriptions, n)
}

// AddContactSubmission seeds a contact submission record.
func (s *InMemoryStore) AddContactSubmission(c ContactSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, c)
}

// AddPageView seeds a page view record.
func (s *InMemoryStore) AddPageView(p PageView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageViews = append(s.pageViews, p)
}

// AddUserAction seeds a user action record.
func (s *InMemoryStore) AddUserAction(a UserAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, a)
}

// AddConversion seeds a conversion record.
func (s *InMemoryStore) AddConversion(c Conversion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversions = append(s.conversions, c)
}

// AddConsentRecord seeds a consent record.
func (s *InMemoryStore) AddConsentRecord(c ConsentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consents = append(s.consents, c)
}

// GetAccountByEmail retrieves the account registered under the given email.
func (s *InMemoryStore) GetAccountByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.accounts {
		if EmailsEqual(s.accounts[i].Email, email) {
			account := s.accounts[i]
			return &account, nil
		}
	}
	return nil, ErrAccountNotFound
}

// ListNewsletterSubscriptions returns newsletter subscriptions for the email.
func (s *InMemoryStore) ListNewsletterSubscriptions(_ context.Context, email string) ([]NewsletterSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []NewsletterSubscription
	for _, n := range s.subscriptions {
		if EmailsEqual(n.Email, email) {
			out = append(out, n)
		}
	}
	return out, nil
}

// DeleteNewsletterSubscriptions removes newsletter subscriptions for the email.
func (s *InMemoryStore) DeleteNewsletterSubscriptions(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.subscriptions[:0]
	deleted := 0
	for _, n := range s.subscriptions {
		if EmailsEqual(n.Email, email) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.subscriptions = kept
	return deleted, nil
}

// ListContactSubmissions returns contact-form submissions for the email.
func (s *InMemoryStore) ListContactSubmissions(_ context.Context, email string) ([]ContactSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ContactSubmission
	for _, c := range s.contacts {
		if EmailsEqual(c.Email, email) {
			out = append(out, c)
		}
	}
	return out, nil
}

// DeleteContactSubmissions removes contact-form submissions for the email.
func (s *InMemoryStore) DeleteContactSubmissions(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.contacts[:0]
	deleted := 0
	for _, c := range s.contacts {
		if EmailsEqual(c.Email, email) {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	s.contacts = kept
	return deleted, nil
}

// ListPageViews returns analytics page views for the account.
func (s *InMemoryStore) ListPageViews(_ context.Context, accountID string) ([]PageView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PageView
	for _, p := range s.pageViews {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	return out, nil
}

// DeletePageViews removes analytics page views for the account.
func (s *InMemoryStore) DeletePageViews(_ context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pageViews[:0]
	deleted := 0
	for _, p := range s.pageViews {
		if p.AccountID == accountID {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	s.pageViews = kept
	return deleted, nil
}

// ListUserActions returns tracked actions for the account.
func (s *InMemoryStore) ListUserActions(_ context.Context, accountID string) ([]UserAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []UserAction
	for _, a := range s.actions {
		if a.AccountID == accountID {
			out = append(out, a)
		}
	}
	return out, nil
}

// DeleteUserActions removes tracked actions for the account.
func (s *InMemoryStore) DeleteUserActions(_ context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.actions[:0]
	deleted := 0
	for _, a := range s.actions {
		if a.AccountID == accountID {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	s.actions = kept
	return deleted, nil
}

// ListConversions returns conversion events for the account.
func (s *InMemoryStore) ListConversions(_ context.Context, accountID string) ([]Conversion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Conversion
	for _, c := range s.conversions {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

// DeleteConversions removes conversion events for the account.
func (s *InMemoryStore) DeleteConversions(_ context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.conversions[:0]
	deleted := 0
	for _, c := range s.conversions {
		if c.AccountID == accountID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	s.conversions = kept
	return deleted, nil
}

// ListConsentRecords returns consent decisions for the email.
func (s *InMemoryStore) ListConsentRecords(_ context.Context, email string) ([]ConsentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ConsentRecord
	for _, c := range s.consents {
		if EmailsEqual(c.Email, email) {
			out = append(out, c)
		}
	}
	return out, nil
}

// DeleteConsentRecords removes consent decisions for the email.
func (s *InMemoryStore) DeleteConsentRecords(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.consents[:0]
	deleted := 0
	for _, c := range s.consents {
		if EmailsEqual(c.Email, email) {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	s.consents = kept
	return deleted, nil
}
