package rest

import (
	"time"

	"caseflow/internal/domain"

	"github.com/shopspring/decimal"
)

type PartyResponse struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type CaseResponse struct {
	ID         string        `json:"id"`
	CaseNumber string        `json:"case_number"`
	Debtor     PartyResponse `json:"debtor"`
	Creditor   PartyResponse `json:"creditor"`

	DebtAmount decimal.Decimal `json:"debt_amount"`
	Currency   string          `json:"currency"`

	Status   string `json:"status"`
	Priority string `json:"priority"`

	AssignedTo *int64     `json:"assigned_to,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`

	EscalationFee  decimal.Decimal `json:"escalation_fee"`
	EscalationDate *time.Time      `json:"escalation_date,omitempty"`

	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Overdue          bool            `json:"overdue"`

	Notes            []NoteResponse            `json:"notes,omitempty"`
	PromisedPayments []PromisedPaymentResponse `json:"promised_payments,omitempty"`
	Documents        []DocumentResponse        `json:"documents,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoteResponse struct {
	ID           string     `json:"id"`
	AuthorID     int64      `json:"author_id"`
	Content      string     `json:"content"`
	NotedAt      time.Time  `json:"noted_at"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type PromisedPaymentResponse struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PromisedDate  string          `json:"promised_date"`
	Notes         string          `json:"notes,omitempty"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Status        string          `json:"status"`
	Overdue       bool            `json:"overdue"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type EscalationPaymentResponse struct {
	ID          string          `json:"id"`
	CaseID      string          `json:"case_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ConfirmedAt *time.Time      `json:"confirmed_at,omitempty"`
}

type DocumentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  int64     `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
	URL         string    `json:"url,omitempty"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func newPartyResponse(p domain.Party) PartyResponse {
	return PartyResponse{Name: p.Name, Email: p.Email, Phone: p.Phone}
}

func newCaseResponse(c *domain.Case, now time.Time) CaseResponse {
	resp := CaseResponse{
		ID:               c.ID,
		CaseNumber:       c.CaseNumber,
		Debtor:           newPartyResponse(c.Debtor),
		Creditor:         newPartyResponse(c.Creditor),
		DebtAmount:       c.DebtAmount,
		Currency:         c.Currency,
		Status:           string(c.Status),
		Priority:         string(c.Priority),
		AssignedTo:       c.AssignedTo,
		AssignedAt:       c.AssignedAt,
		EscalationFee:    c.EscalationFee,
		EscalationDate:   c.EscalationDate,
		TotalPaid:        c.TotalPaid(),
		RemainingBalance: c.RemainingBalance(),
		Overdue:          c.Overdue(now),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	for _, n := range c.Notes {
		resp.Notes = append(resp.Notes, newNoteResponse(&n))
	}
	for _, p := range c.PromisedPayments {
		resp.PromisedPayments = append(resp.PromisedPayments, newPromisedPaymentResponse(&p, now))
	}
	for _, d := range c.Documents {
		resp.Documents = append(resp.Documents, newDocumentResponse(&d, ""))
	}
	return resp
}

func newNoteResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:           n.ID,
		AuthorID:     n.AuthorID,
		Content:      n.Content,
		NotedAt:      n.NotedAt,
		FollowUpDate: n.FollowUpDate,
		CreatedAt:    n.CreatedAt,
	}
}

func newPromisedPaymentResponse(p *domain.PromisedPayment, now time.Time) PromisedPaymentResponse {
	return PromisedPaymentResponse{
		ID:            p.ID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PromisedDate:  p.PromisedDate.Format("2006-01-02"),
		Notes:         p.Notes,
		PaymentMethod: p.PaymentMethod,
		Status:        string(p.Status),
		Overdue:       p.Overdue(now),
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
}

func newEscalationPaymentResponse(p *domain.EscalationPayment) EscalationPaymentResponse {
	return EscalationPaymentResponse{
		ID:          p.ID,
		CaseID:      p.CaseID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		ConfirmedAt: p.ConfirmedAt,
	}
}

func newDocumentResponse(d *domain.Document, url string) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		Name:        d.Name,
		ContentType: d.ContentType,
		Size:        d.Size,
		UploadedBy:  d.UploadedBy,
		UploadedAt:  d.UploadedAt,
		URL:         url,
	}
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
	}
}
