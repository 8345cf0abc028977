package model

import "time"

// PushSubscription stores a browser push endpoint for a tenant.
type PushSubscription struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}
