package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"caseflow/internal/domain"
)

type CasesFilter struct {
	Status     *domain.CaseStatus
	AssignedTo *int64
	Overdue    bool
}

type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `
	c.id, c.case_number,
	c.debtor_name, c.debtor_email, c.debtor_phone,
	c.creditor_name, c.creditor_email, c.creditor_phone,
	c.debt_amount, c.currency, c.status, c.priority,
	c.assigned_to, c.assigned_at,
	c.escalation_fee, c.escalation_date,
	c.created_at, c.updated_at`

func scanCase(row interface{ Scan(...any) error }) (*domain.Case, error) {
	var c domain.Case
	if err := row.Scan(
		&c.ID, &c.CaseNumber,
		&c.Debtor.Name, &c.Debtor.Email, &c.Debtor.Phone,
		&c.Creditor.Name, &c.Creditor.Email, &c.Creditor.Phone,
		&c.DebtAmount, &c.Currency, &c.Status, &c.Priority,
		&c.AssignedTo, &c.AssignedAt,
		&c.EscalationFee, &c.EscalationDate,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// NextCaseNumber reserves a human-readable case number from the shared
// sequence, e.g. CASE-2026-00042.
func (r *CaseRepository) NextCaseNumber(ctx context.Context, now time.Time) (string, error) {
	var seq int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('case_number_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("next case number: %w", err)
	}
	return fmt.Sprintf("CASE-%d-%05d", now.UTC().Year(), seq), nil
}

func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cases (
			id, case_number,
			debtor_name, debtor_email, debtor_phone,
			creditor_name, creditor_email, creditor_phone,
			debt_amount, currency, status, priority,
			escalation_fee, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)`,
		c.ID, c.CaseNumber,
		c.Debtor.Name, c.Debtor.Email, c.Debtor.Phone,
		c.Creditor.Name, c.Creditor.Email, c.Creditor.Phone,
		c.DebtAmount, c.Currency, c.Status, c.Priority,
		c.EscalationFee, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

// GetByID loads a case with its notes, promised payments and documents.
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	row := r.db.QueryRowContext(ctx, `SELECT`+caseColumns+` FROM cases c WHERE c.id = $1`, id)
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if c.Notes, err = r.loadNotes(ctx, id); err != nil {
		return nil, err
	}
	if c.PromisedPayments, err = r.loadPromisedPayments(ctx, id); err != nil {
		return nil, err
	}
	if c.Documents, err = r.ListDocuments(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CaseRepository) List(ctx context.Context, f CasesFilter) ([]domain.Case, error) {
	base := `SELECT` + caseColumns + ` FROM cases c`

	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.Status != nil {
		where = append(where, fmt.Sprintf("c.status = $%d", i))
		args = append(args, *f.Status)
		i++
	}
	if f.AssignedTo != nil {
		where = append(where, fmt.Sprintf("c.assigned_to = $%d", i))
		args = append(args, *f.AssignedTo)
		i++
	}
	if f.Overdue {
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM promised_payments pp
			WHERE pp.case_id = c.id
			  AND pp.status = 'pending'
			  AND pp.promised_date < $%d
		)`, i))
		args = append(args, time.Now().UTC().Truncate(24*time.Hour))
		i++
	}

	query := base + " WHERE " + strings.Join(where, " AND ") + " ORDER BY c.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Assign sets the assignee and advances a new case to assigned in one guarded
// update. Re-assignment at any non-terminal status keeps notes and payments
// untouched.
func (r *CaseRepository) Assign(ctx context.Context, caseID string, userID int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cases
		SET assigned_to = $2,
		    assigned_at = $3,
		    status = CASE WHEN status = 'new' THEN 'assigned' ELSE status END,
		    updated_at = $3
		WHERE id = $1 AND status NOT IN ('resolved', 'closed')`,
		caseID, userID, at,
	)
	if err != nil {
		return fmt.Errorf("assign case: %w", err)
	}
	return r.guard(ctx, res, caseID)
}

// UpdateStatus applies a direct status edit guarded by the expected current
// status, so concurrent edits resolve to exactly one winner.
func (r *CaseRepository) UpdateStatus(ctx context.Context, caseID string, from, to domain.CaseStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cases SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		caseID, from, to, at,
	)
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	return r.guard(ctx, res, caseID)
}

// AddNote appends a note. When advance is set the case moves to
// follow_up_required, but only from assigned or in_progress: a concurrent move
// to a more advanced status wins and the note still lands.
func (r *CaseRepository) AddNote(ctx context.Context, n *domain.Note, advance bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO case_notes (id, case_id, author_id, content, noted_at, follow_up_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.CaseID, n.AuthorID, n.Content, n.NotedAt, n.FollowUpDate, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	if advance {
		_, err = tx.ExecContext(ctx, `
			UPDATE cases SET status = 'follow_up_required', updated_at = $2
			WHERE id = $1 AND status IN ('assigned', 'in_progress')`,
			n.CaseID, n.CreatedAt,
		)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE cases SET updated_at = $2 WHERE id = $1`, n.CaseID, n.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("touch case: %w", err)
	}

	return tx.Commit()
}

func (r *CaseRepository) AddPromisedPayment(ctx context.Context, p *domain.PromisedPayment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO promised_payments (id, case_id, amount, currency, promised_date, notes, payment_method, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.CaseID, p.Amount, p.Currency, p.PromisedDate, p.Notes, p.PaymentMethod, p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert promised payment: %w", err)
	}
	return nil
}

// MarkPromisedPaymentPaid transitions a pending entry to paid. The status
// guard in the WHERE clause makes a second mark, or a mark on a cancelled
// entry, lose with ErrInvalidState.
func (r *CaseRepository) MarkPromisedPaymentPaid(ctx context.Context, caseID, paymentID, method string, at time.Time) (*domain.PromisedPayment, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE promised_payments
		SET status = 'paid', paid_at = $3, payment_method = $4
		WHERE id = $1 AND case_id = $2 AND status = 'pending'
		RETURNING id, case_id, amount, currency, promised_date, notes, payment_method, status, paid_at, created_at`,
		paymentID, caseID, at, method,
	)
	return r.scanPromisedUpdate(ctx, row, caseID, paymentID)
}

// CancelPromisedPayment transitions a pending entry to cancelled, excluding it
// from balance arithmetic.
func (r *CaseRepository) CancelPromisedPayment(ctx context.Context, caseID, paymentID string) (*domain.PromisedPayment, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE promised_payments
		SET status = 'cancelled'
		WHERE id = $1 AND case_id = $2 AND status = 'pending'
		RETURNING id, case_id, amount, currency, promised_date, notes, payment_method, status, paid_at, created_at`,
		paymentID, caseID,
	)
	return r.scanPromisedUpdate(ctx, row, caseID, paymentID)
}

func (r *CaseRepository) scanPromisedUpdate(ctx context.Context, row *sql.Row, caseID, paymentID string) (*domain.PromisedPayment, error) {
	p, err := scanPromisedPayment(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// No pending row matched: distinguish unknown id from terminal state.
	var status string
	err = r.db.QueryRowContext(ctx,
		`SELECT status FROM promised_payments WHERE id = $1 AND case_id = $2`,
		paymentID, caseID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("promised payment is %s: %w", status, domain.ErrInvalidState)
}

// GetOrCreatePendingEscalation makes initiation idempotent: the partial unique
// index on (case_id) WHERE status='pending' swallows the insert when a pending
// payment already exists, and the follow-up select returns whichever row won.
func (r *CaseRepository) GetOrCreatePendingEscalation(ctx context.Context, p *domain.EscalationPayment) (*domain.EscalationPayment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO escalation_payments (id, case_id, amount, currency, status, created_at)
		VALUES ($1,$2,$3,$4,'pending',$5)
		ON CONFLICT (case_id) WHERE status = 'pending' DO NOTHING`,
		p.ID, p.CaseID, p.Amount, p.Currency, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert escalation payment: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT id, case_id, amount, currency, status, created_at, confirmed_at
		FROM escalation_payments
		WHERE case_id = $1 AND status = 'pending'`,
		p.CaseID,
	)
	existing, err := scanEscalationPayment(row)
	if err != nil {
		return nil, fmt.Errorf("load pending escalation payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return existing, nil
}

// ConfirmEscalation is the all-or-nothing second phase of the gate: the
// payment flips to confirmed and the case to escalated_to_legal in one
// transaction. Concurrent confirms on the same payment id leave exactly one
// winner; the loser sees ErrInvalidState and no partial mutation.
func (r *CaseRepository) ConfirmEscalation(ctx context.Context, caseID, paymentID string, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE escalation_payments
		SET status = 'confirmed', confirmed_at = $3
		WHERE id = $1 AND case_id = $2 AND status = 'pending'`,
		paymentID, caseID, at,
	)
	if err != nil {
		return fmt.Errorf("confirm escalation payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		err = tx.QueryRowContext(ctx,
			`SELECT status FROM escalation_payments WHERE id = $1 AND case_id = $2`,
			paymentID, caseID,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("escalation payment is %s: %w", status, domain.ErrInvalidState)
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE cases
		SET status = 'escalated_to_legal', escalation_date = $2, updated_at = $2
		WHERE id = $1 AND status NOT IN ('resolved', 'closed', 'escalated_to_legal')`,
		caseID, at,
	)
	if err != nil {
		return fmt.Errorf("escalate case: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("case cannot be escalated in its current status: %w", domain.ErrInvalidState)
	}

	return tx.Commit()
}

// CancelEscalation voids a dangling pending escalation payment so a later
// initiate can mint a fresh one.
func (r *CaseRepository) CancelEscalation(ctx context.Context, caseID, paymentID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE escalation_payments
		SET status = 'cancelled'
		WHERE id = $1 AND case_id = $2 AND status = 'pending'`,
		paymentID, caseID,
	)
	if err != nil {
		return fmt.Errorf("cancel escalation payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		err = r.db.QueryRowContext(ctx,
			`SELECT status FROM escalation_payments WHERE id = $1 AND case_id = $2`,
			paymentID, caseID,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("escalation payment is %s: %w", status, domain.ErrInvalidState)
	}
	return nil
}

func (r *CaseRepository) AddDocument(ctx context.Context, d *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO case_documents (id, case_id, name, object_key, content_type, size, uploaded_by, uploaded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.CaseID, d.Name, d.ObjectKey, d.ContentType, d.Size, d.UploadedBy, d.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *CaseRepository) ListDocuments(ctx context.Context, caseID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, case_id, name, object_key, content_type, size, uploaded_by, uploaded_at
		FROM case_documents
		WHERE case_id = $1
		ORDER BY uploaded_at`,
		caseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.CaseID, &d.Name, &d.ObjectKey, &d.ContentType, &d.Size, &d.UploadedBy, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CalendarEvents projects promised-payment dates, note follow-ups and
// escalation dates into one read-only event stream for calendar consumers.
func (r *CaseRepository) CalendarEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT 'promised_payment' AS type, c.id, c.case_number, pp.promised_date AS date
		FROM promised_payments pp
		JOIN cases c ON c.id = pp.case_id
		WHERE pp.status = 'pending' AND pp.promised_date BETWEEN $1 AND $2
		UNION ALL
		SELECT 'follow_up', c.id, c.case_number, cn.follow_up_date
		FROM case_notes cn
		JOIN cases c ON c.id = cn.case_id
		WHERE cn.follow_up_date IS NOT NULL AND cn.follow_up_date BETWEEN $1 AND $2
		UNION ALL
		SELECT 'escalation', c.id, c.case_number, c.escalation_date
		FROM cases c
		WHERE c.escalation_date IS NOT NULL AND c.escalation_date BETWEEN $1 AND $2
		ORDER BY date`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CalendarEvent
	for rows.Next() {
		var e domain.CalendarEvent
		if err := rows.Scan(&e.Type, &e.CaseID, &e.CaseNumber, &e.Date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *CaseRepository) loadNotes(ctx context.Context, caseID string) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, case_id, author_id, content, noted_at, follow_up_date, created_at
		FROM case_notes
		WHERE case_id = $1
		ORDER BY created_at`,
		caseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.CaseID, &n.AuthorID, &n.Content, &n.NotedAt, &n.FollowUpDate, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *CaseRepository) loadPromisedPayments(ctx context.Context, caseID string) ([]domain.PromisedPayment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, case_id, amount, currency, promised_date, notes, payment_method, status, paid_at, created_at
		FROM promised_payments
		WHERE case_id = $1
		ORDER BY created_at`,
		caseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PromisedPayment
	for rows.Next() {
		p, err := scanPromisedPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPromisedPayment(row interface{ Scan(...any) error }) (*domain.PromisedPayment, error) {
	var p domain.PromisedPayment
	if err := row.Scan(
		&p.ID, &p.CaseID, &p.Amount, &p.Currency, &p.PromisedDate,
		&p.Notes, &p.PaymentMethod, &p.Status, &p.PaidAt, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanEscalationPayment(row interface{ Scan(...any) error }) (*domain.EscalationPayment, error) {
	var p domain.EscalationPayment
	if err := row.Scan(&p.ID, &p.CaseID, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.ConfirmedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// guard maps a zero-row guarded update to the right error kind: unknown case
// id vs. a state that no longer permits the mutation.
func (r *CaseRepository) guard(ctx context.Context, res sql.Result, caseID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var status string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM cases WHERE id = $1`, caseID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("case is %s: %w", status, domain.ErrInvalidState)
}
