package clients

import (
	"context"
	"fmt"

	"caseflow/internal/domain"
	ws "caseflow/internal/transport/websocket"
)

// CaseNotifier publishes case events to the websocket hub. Services call it
// strictly after the mutation has committed; delivery is fire-and-forget.
type CaseNotifier struct {
	hub *ws.Hub
}

func NewCaseNotifier(hub *ws.Hub) *CaseNotifier {
	return &CaseNotifier{hub: hub}
}

func (c *CaseNotifier) publish(userID int64, msgType string, data map[string]interface{}) error {
	if c.hub == nil {
		return nil
	}
	c.hub.Broadcast(userID, &ws.Message{
		Type:    msgType,
		Channel: fmt.Sprintf("case_updates#%d", userID),
		Data:    data,
	})
	return nil
}

func (c *CaseNotifier) CaseAssigned(ctx context.Context, userID int64, cs *domain.Case) error {
	return c.publish(userID, "case_assigned", map[string]interface{}{
		"case_id":     cs.ID,
		"case_number": cs.CaseNumber,
		"status":      cs.Status,
	})
}

func (c *CaseNotifier) NoteAdded(ctx context.Context, userID int64, cs *domain.Case, n *domain.Note) error {
	data := map[string]interface{}{
		"case_id":     cs.ID,
		"case_number": cs.CaseNumber,
		"note_id":     n.ID,
	}
	if n.FollowUpDate != nil {
		data["follow_up_date"] = n.FollowUpDate.Format("2006-01-02")
	}
	return c.publish(userID, "note_added", data)
}

func (c *CaseNotifier) PromisedPaymentAdded(ctx context.Context, userID int64, cs *domain.Case, p *domain.PromisedPayment) error {
	return c.publish(userID, "promised_payment_added", map[string]interface{}{
		"case_id":       cs.ID,
		"case_number":   cs.CaseNumber,
		"payment_id":    p.ID,
		"amount":        p.Amount,
		"currency":      p.Currency,
		"promised_date": p.PromisedDate.Format("2006-01-02"),
	})
}

func (c *CaseNotifier) PromisedPaymentUpdated(ctx context.Context, userID int64, cs *domain.Case, p *domain.PromisedPayment) error {
	return c.publish(userID, "promised_payment_updated", map[string]interface{}{
		"case_id":     cs.ID,
		"case_number": cs.CaseNumber,
		"payment_id":  p.ID,
		"status":      p.Status,
	})
}

func (c *CaseNotifier) EscalationInitiated(ctx context.Context, userID int64, cs *domain.Case, p *domain.EscalationPayment) error {
	return c.publish(userID, "escalation_initiated", map[string]interface{}{
		"case_id":     cs.ID,
		"case_number": cs.CaseNumber,
		"payment_id":  p.ID,
		"amount":      p.Amount,
		"currency":    p.Currency,
	})
}

func (c *CaseNotifier) CaseEscalated(ctx context.Context, userID int64, cs *domain.Case) error {
	data := map[string]interface{}{
		"case_id":     cs.ID,
		"case_number": cs.CaseNumber,
		"status":      cs.Status,
	}
	if cs.EscalationDate != nil {
		data["escalation_date"] = cs.EscalationDate
	}
	return c.publish(userID, "case_escalated", data)
}
