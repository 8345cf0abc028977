package store

import (
	"database/sql"
	"fmt"

	"github.com/okantomi/chorewheel/internal/model"
)

// PushStore persists web push subscriptions per tenant.
type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := scanner.Scan(&sub.ID, &sub.TenantID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

const subscriptionCols = `id, tenant_id, endpoint, p256dh_key, auth_key, created_at`

// Upsert stores a subscription, replacing any existing row for the same
// endpoint (a browser re-subscribing rotates keys).
func (s *PushStore) Upsert(tenantID int64, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (tenant_id, endpoint, p256dh_key, auth_key) VALUES (?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET tenant_id = excluded.tenant_id, p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key`,
		tenantID, endpoint, p256dh, auth,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListByTenant(tenantID int64) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *PushStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription by endpoint: %w", err)
	}
	return nil
}
