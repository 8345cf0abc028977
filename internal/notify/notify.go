// Package notify implements the outbound notification dispatcher: email via
// Postmark plus web push to subscribed browsers. A failed delivery to one
// recipient or channel never blocks the others.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/okantomi/chorewheel/internal/email"
	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/push"
	"github.com/okantomi/chorewheel/internal/rotation"
	"github.com/okantomi/chorewheel/internal/store"
)

// TenantDirectory resolves tenant ids to contact details.
type TenantDirectory interface {
	Tenant(id int64) (*model.Tenant, error)
}

// Dispatcher fans notifications out to email and web push. The email client
// or push service may be nil/unconfigured; the corresponding channel is then
// skipped.
type Dispatcher struct {
	tenants TenantDirectory
	email   *email.Client
	push    *push.Service
	subs    *store.PushStore
	logger  *slog.Logger
}

func NewDispatcher(tenants TenantDirectory, emailClient *email.Client, pushSvc *push.Service, subs *store.PushStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		tenants: tenants,
		email:   emailClient,
		push:    pushSvc,
		subs:    subs,
		logger:  logger,
	}
}

var _ rotation.Notifier = (*Dispatcher)(nil)

// Reminder tells a tenant their household's chores are due today.
func (d *Dispatcher) Reminder(tenantID int64, occupantName, dateLabel string) error {
	subject := fmt.Sprintf("Chores due today for %s", occupantName)
	text := fmt.Sprintf("It's %s — %s's chores are due today. Don't forget to mark them done.", dateLabel, occupantName)
	html := fmt.Sprintf("<p>It's %s — <strong>%s</strong>'s chores are due today.</p>", dateLabel, occupantName)

	return d.toTenant(tenantID, subject, text, html, push.Payload{
		Title: "Chores due today",
		Body:  fmt.Sprintf("%s's chores are due today", occupantName),
		URL:   "/chores/today",
		Tag:   "chore-reminder",
	})
}

// SwapProposed tells the target occupant's tenant about a new swap proposal.
func (d *Dispatcher) SwapProposed(targetTenantID int64, requesterName, targetName, weekID string) error {
	subject := fmt.Sprintf("%s wants to swap chore weeks with %s", requesterName, targetName)
	text := fmt.Sprintf("%s proposed trading their chore week %s with %s. Approve or reject the request.", requesterName, weekID, targetName)
	html := fmt.Sprintf("<p><strong>%s</strong> proposed trading their chore week %s with %s.</p>", requesterName, weekID, targetName)

	return d.toTenant(targetTenantID, subject, text, html, push.Payload{
		Title: "Chore swap proposed",
		Body:  fmt.Sprintf("%s wants to trade week %s", requesterName, weekID),
		URL:   "/swaps",
		Tag:   "swap-proposed",
	})
}

// SwapResolved tells the requester's tenant how their proposal was answered.
func (d *Dispatcher) SwapResolved(requesterTenantID int64, responderName string, approved bool) error {
	verdict := "rejected"
	if approved {
		verdict = "approved"
	}
	subject := fmt.Sprintf("Your chore swap was %s", verdict)
	text := fmt.Sprintf("%s %s your chore swap request.", responderName, verdict)
	html := fmt.Sprintf("<p><strong>%s</strong> %s your chore swap request.</p>", responderName, verdict)

	return d.toTenant(requesterTenantID, subject, text, html, push.Payload{
		Title: fmt.Sprintf("Swap %s", verdict),
		Body:  text,
		URL:   "/swaps",
		Tag:   "swap-resolved",
	})
}

// AdminReport emails one administrator a summary of today's completions.
func (d *Dispatcher) AdminReport(adminEmail, adminName, unitName, dateLabel string, completions []rotation.CompletionSummary) error {
	if d.email == nil || !d.email.Configured() {
		return nil
	}

	subject := fmt.Sprintf("%s chore report for %s", unitName, dateLabel)

	var text, html strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nChore status for %s on %s:\n\n", adminName, unitName, dateLabel)
	fmt.Fprintf(&html, "<p>Hi %s,</p><p>Chore status for %s on %s:</p><ul>", adminName, unitName, dateLabel)
	for _, c := range completions {
		fmt.Fprintf(&text, "- %s: %s — %s\n", c.OccupantName, c.ChoreName, c.Status)
		fmt.Fprintf(&html, "<li>%s: %s — %s</li>", c.OccupantName, c.ChoreName, c.Status)
	}
	html.WriteString("</ul>")

	return d.email.Send(adminEmail, subject, text.String(), html.String())
}

// toTenant delivers to a tenant's email address and every push subscription
// they hold. Channel failures are logged, not propagated, except when the
// tenant cannot be resolved at all.
func (d *Dispatcher) toTenant(tenantID int64, subject, text, html string, payload push.Payload) error {
	tenant, err := d.tenants.Tenant(tenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return fmt.Errorf("tenant %d not found", tenantID)
	}

	if d.email != nil && d.email.Configured() && tenant.Email != "" {
		if err := d.email.Send(tenant.Email, subject, text, html); err != nil {
			d.logger.Warn("email delivery failed", "tenant_id", tenantID, "error", err)
		}
	}

	if d.push != nil && d.subs != nil {
		subs, err := d.subs.ListByTenant(tenantID)
		if err != nil {
			d.logger.Warn("push subscriptions lookup failed", "tenant_id", tenantID, "error", err)
			return nil
		}
		for _, sub := range subs {
			if err := d.push.Send(&sub, payload); err != nil {
				if errors.Is(err, push.ErrExpired) {
					d.subs.DeleteByEndpoint(sub.Endpoint)
				} else {
					d.logger.Warn("push delivery failed", "tenant_id", tenantID, "error", err)
				}
			}
		}
	}

	return nil
}
