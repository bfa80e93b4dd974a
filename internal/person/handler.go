package person

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/loanbook/internal/ledger"
	"github.com/fkhayef/loanbook/pkg/request"
	"github.com/fkhayef/loanbook/pkg/response"
)

// Handler handles HTTP requests for people and their transactions
type Handler struct {
	service *Service
}

// NewHandler creates a new person handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for person endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/reconcile", h.Reconcile)
	r.Post("/reconcile", h.Repair)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)

	// Transactions
	r.Get("/{id}/transactions", h.ListTransactions)
	r.Post("/{id}/transactions", h.AddTransaction)
	r.Put("/{id}/transactions/{txId}", h.UpdateTransaction)
	r.Delete("/{id}/transactions/{txId}", h.DeleteTransaction)
	r.Patch("/{id}/transactions/{txId}/status", h.SetStatus)

	// Installment plans
	r.Post("/{id}/installment-plans", h.SubmitPlan)
	r.Get("/{id}/installment-groups", h.Groups)
	r.Post("/{id}/installments/{txId}/pay", h.PayInstallment)

	return r
}

// InstallmentRoutes returns the router for ledger-independent installment helpers
func (h *Handler) InstallmentRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/preview", h.Preview)
	return r
}

// List handles GET /people
// @Summary      List people
// @Tags         people
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]ledger.Person}
// @Router       /people [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	people := h.service.List()
	response.JSONWithMeta(w, http.StatusOK, people, &response.Meta{Total: len(people)})
}

// Create handles POST /people
// @Summary      Create a person
// @Tags         people
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePersonRequest true "Person"
// @Success      201 {object} response.APIResponse{data=ledger.Person}
// @Failure      400 {object} response.APIResponse
// @Router       /people [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	p, err := h.service.Create(&req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, p)
}

// Reconcile handles GET /people/reconcile
// @Summary      Report aggregate drift
// @Description  Refold every person's transactions and list the people whose stored totals disagree
// @Tags         people
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=ReconcileResponse}
// @Router       /people/reconcile [get]
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.service.Reconcile(false))
}

// Repair handles POST /people/reconcile
// @Summary      Repair aggregate drift
// @Tags         people
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=ReconcileResponse}
// @Router       /people/reconcile [post]
func (h *Handler) Repair(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.service.Reconcile(true))
}

// GetByID handles GET /people/{id}
// @Summary      Get person by ID
// @Tags         people
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Success      200 {object} response.APIResponse{data=ledger.Person}
// @Failure      404 {object} response.APIResponse
// @Router       /people/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

// Delete handles DELETE /people/{id}
// @Summary      Delete a person
// @Description  Removes the person, their transactions and their share links. Unknown ids are ignored.
// @Tags         people
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Success      204
// @Router       /people/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.service.Delete(chi.URLParam(r, "id"))
	response.NoContent(w)
}

// ListTransactions handles GET /people/{id}/transactions
// @Summary      List a person's transactions
// @Description  With grouped=true the rows come back grouped by installment plan
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Param        grouped query bool false "Group by installment plan"
// @Success      200 {object} response.APIResponse{data=[]ledger.Transaction}
// @Failure      404 {object} response.APIResponse
// @Router       /people/{id}/transactions [get]
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if grouped, _ := strconv.ParseBool(r.URL.Query().Get("grouped")); grouped {
		h.writeGroups(w, id)
		return
	}

	txs, err := h.service.Transactions(id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, txs, &response.Meta{Total: len(txs)})
}

// AddTransaction handles POST /people/{id}/transactions
// @Summary      Record a loan or payment
// @Description  Payments default to Paid. scheduled=true records a future payment as Pending.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Param        request body TransactionRequest true "Transaction"
// @Success      201 {object} response.APIResponse{data=ledger.Transaction}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /people/{id}/transactions [post]
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	tx, err := h.service.AddTransaction(chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, tx)
}

// UpdateTransaction handles PUT /people/{id}/transactions/{txId}
// @Summary      Edit a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Param        txId path string true "Transaction ID"
// @Param        request body TransactionRequest true "Transaction"
// @Success      200 {object} response.APIResponse{data=ledger.Transaction}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /people/{id}/transactions/{txId} [put]
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	tx, err := h.service.UpdateTransaction(chi.URLParam(r, "id"), chi.URLParam(r, "txId"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /people/{id}/transactions/{txId}
// @Summary      Delete a transaction
// @Tags         transactions
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Param        txId path string true "Transaction ID"
// @Success      204
// @Router       /people/{id}/transactions/{txId} [delete]
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	h.service.DeleteTransaction(chi.URLParam(r, "id"), chi.URLParam(r, "txId"))
	response.NoContent(w)
}

// SetStatus handles PATCH /people/{id}/transactions/{txId}/status
// @Summary      Toggle a payment's status
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Param        txId path string true "Transaction ID"
// @Param        request body StatusRequest true "New status"
// @Success      200 {object} response.APIResponse{data=ledger.Transaction}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /people/{id}/transactions/{txId}/status [patch]
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	tx, err := h.service.SetStatus(chi.URLParam(r, "id"), chi.URLParam(r, "txId"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tx)
}

// SubmitPlan handles POST /people/{id}/installment-plans
// @Summary      Lend money paid back in installments
// @Description  Records the loan and one scheduled payment per installment, atomically
// @Tags         installments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Param        request body InstallmentPlanRequest true "Plan"
// @Success      201 {object} response.APIResponse{data=ledger.Plan}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /people/{id}/installment-plans [post]
func (h *Handler) SubmitPlan(w http.ResponseWriter, r *http.Request) {
	var req InstallmentPlanRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	plan, err := h.service.SubmitPlan(chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, plan)
}

// Groups handles GET /people/{id}/installment-groups
// @Summary      Installment groups of a person
// @Tags         installments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Success      200 {object} response.APIResponse{data=ledger.Grouping}
// @Failure      404 {object} response.APIResponse
// @Router       /people/{id}/installment-groups [get]
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	h.writeGroups(w, chi.URLParam(r, "id"))
}

func (h *Handler) writeGroups(w http.ResponseWriter, personID string) {
	g, err := h.service.Grouped(personID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, g)
}

// PayInstallment handles POST /people/{id}/installments/{txId}/pay
// @Summary      Pay a scheduled installment
// @Description  Replaces the scheduled payment with a settled one. The body is optional.
// @Tags         installments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Person ID"
// @Param        txId path string true "Scheduled installment ID"
// @Param        request body PayInstallmentRequest false "Overrides"
// @Success      201 {object} response.APIResponse{data=ledger.Transaction}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /people/{id}/installments/{txId}/pay [post]
func (h *Handler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	var req PayInstallmentRequest
	if r.ContentLength != 0 {
		if err := request.Decode(r, &req); err != nil {
			response.ValidationError(w, err)
			return
		}
	}

	tx, err := h.service.PayInstallment(chi.URLParam(r, "id"), chi.URLParam(r, "txId"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, tx)
}

// Preview handles POST /installments/preview
// @Summary      Preview an installment schedule
// @Description  Generates due dates and amounts without recording anything
// @Tags         installments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PreviewRequest true "Schedule"
// @Success      200 {object} response.APIResponse{data=PreviewResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /installments/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	preview, err := h.service.Preview(&req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, preview)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrPersonNotFound), errors.Is(err, ledger.ErrTransactionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ledger.ErrNotScheduled):
		response.Conflict(w, err.Error())
	case errors.Is(err, ledger.ErrEmptyName),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidType),
		errors.Is(err, ledger.ErrInvalidStatus),
		errors.Is(err, ledger.ErrMissingDate),
		errors.Is(err, ledger.ErrNotPayment),
		errors.Is(err, ledger.ErrInvalidInstallments),
		errors.Is(err, ledger.ErrInvalidFrequency):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "Failed to process request")
	}
}
