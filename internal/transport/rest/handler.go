package rest

import (
	"context"
	"net/http"
	"time"

	"caseflow/internal/domain"
	"caseflow/internal/repository"
	"caseflow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type CaseService interface {
	Create(ctx context.Context, actor domain.Actor, in service.CreateCaseInput) (*domain.Case, error)
	Get(ctx context.Context, caseID string) (*domain.Case, error)
	List(ctx context.Context, f repository.CasesFilter) ([]domain.Case, error)
	Assign(ctx context.Context, actor domain.Actor, caseID string, userID int64) (*domain.Case, error)
	AddNote(ctx context.Context, actor domain.Actor, caseID string, in service.NoteInput) (*domain.Note, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, caseID string, to domain.CaseStatus) (*domain.Case, error)
	AttachDocument(ctx context.Context, actor domain.Actor, caseID, name, objectKey, contentType string, size int64) (*domain.Document, error)
}

type LedgerService interface {
	AddPromisedPayment(ctx context.Context, actor domain.Actor, caseID string, in service.PromisedPaymentInput) (*domain.PromisedPayment, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, caseID, paymentID string, in service.UpdatePromisedPaymentInput) (*domain.PromisedPayment, error)
}

type EscalationService interface {
	Initiate(ctx context.Context, actor domain.Actor, caseID string) (*domain.EscalationPayment, error)
	Confirm(ctx context.Context, actor domain.Actor, caseID, paymentID string) (*domain.Case, error)
	Cancel(ctx context.Context, actor domain.Actor, caseID, paymentID string) error
	Fee(ctx context.Context, caseID string) (domain.Money, error)
}

type ProjectionService interface {
	Summary(ctx context.Context, caseID string) (*service.CaseSummary, error)
	AssignableUsers(ctx context.Context) ([]domain.User, error)
	CalendarEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error)
}

type DocumentStorage interface {
	Upload(ctx context.Context, caseID, fileName, contentType string, data []byte) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Handler struct {
	cases       CaseService
	ledger      LedgerService
	escalations EscalationService
	projections ProjectionService
	storage     DocumentStorage
}

func NewHandler(cases CaseService, ledger LedgerService, escalations EscalationService, projections ProjectionService, storage DocumentStorage) *Handler {
	return &Handler{
		cases:       cases,
		ledger:      ledger,
		escalations: escalations,
		projections: projections,
		storage:     storage,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Route("/cases", func(r chi.Router) {
		r.Post("/", h.createCase)
		r.Get("/", h.listCases)

		r.Route("/{case_id}", func(r chi.Router) {
			r.Get("/", h.getCase)
			r.Get("/summary", h.getCaseSummary)
			r.Patch("/status", h.updateCaseStatus)
			r.Post("/assign", h.assignCase)
			r.Post("/notes", h.addNote)

			r.Post("/promised-payments", h.addPromisedPayment)
			r.Patch("/promised-payments/{payment_id}", h.updatePromisedPayment)

			r.Get("/escalation-fee", h.getEscalationFee)
			r.Post("/escalation", h.initiateEscalation)
			r.Post("/escalation/{payment_id}/confirm", h.confirmEscalation)
			r.Delete("/escalation/{payment_id}", h.cancelEscalation)

			r.Post("/documents", h.uploadDocument)
			r.Get("/documents", h.listDocuments)
		})
	})

	r.Get("/users/assignable", h.listAssignableUsers)
	r.Get("/calendar", h.calendarEvents)

	return r
}
