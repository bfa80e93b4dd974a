package expense

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/loanbook/internal/ledger"
	"github.com/fkhayef/loanbook/pkg/request"
	"github.com/fkhayef/loanbook/pkg/response"
)

// Handler handles HTTP requests for split expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new split expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for split expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	// Participant operations
	r.Post("/{id}/participants/{pid}/paid", h.SetPaid)

	return r
}

// List handles GET /split-expenses
// @Summary      List split expenses
// @Tags         split-expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]ledger.SplitExpense}
// @Router       /split-expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	expenses := h.service.List()
	response.JSONWithMeta(w, http.StatusOK, expenses, &response.Meta{Total: len(expenses)})
}

// Create handles POST /split-expenses
// @Summary      Create a split expense
// @Description  Create an expense with participant shares computed using the EQUAL, EXACT, PERCENTAGE or INDIVIDUAL strategy
// @Tags         split-expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SplitExpenseRequest true "Split expense"
// @Success      201 {object} response.APIResponse{data=ledger.SplitExpense}
// @Failure      400 {object} response.APIResponse
// @Router       /split-expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req SplitExpenseRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	e, err := h.service.Create(&req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, e)
}

// GetByID handles GET /split-expenses/{id}
// @Summary      Get split expense by ID
// @Tags         split-expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ledger.SplitExpense}
// @Failure      404 {object} response.APIResponse
// @Router       /split-expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, e)
}

// Update handles PUT /split-expenses/{id}
// @Summary      Update a split expense
// @Tags         split-expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Expense ID"
// @Param        request body SplitExpenseRequest true "Split expense"
// @Success      200 {object} response.APIResponse{data=ledger.SplitExpense}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /split-expenses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req SplitExpenseRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	e, err := h.service.Update(chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, e)
}

// Delete handles DELETE /split-expenses/{id}
// @Summary      Delete a split expense
// @Description  Also removes the expense's share links. Unknown ids are ignored.
// @Tags         split-expenses
// @Security     BearerAuth
// @Param        id path string true "Expense ID"
// @Success      204
// @Router       /split-expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.service.Delete(chi.URLParam(r, "id"))
	response.NoContent(w)
}

// SetPaid handles POST /split-expenses/{id}/participants/{pid}/paid
// @Summary      Set a participant's paid flag
// @Tags         split-expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Expense ID"
// @Param        pid path string true "Participant ID"
// @Param        request body SetPaidRequest true "Paid flag"
// @Success      200 {object} response.APIResponse{data=ledger.SplitExpense}
// @Failure      404 {object} response.APIResponse
// @Router       /split-expenses/{id}/participants/{pid}/paid [post]
func (h *Handler) SetPaid(w http.ResponseWriter, r *http.Request) {
	var req SetPaidRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	e, err := h.service.SetPaid(chi.URLParam(r, "id"), chi.URLParam(r, "pid"), req.Paid)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, e)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrSplitExpenseNotFound), errors.Is(err, ledger.ErrParticipantNotFound):
		response.NotFound(w, err.Error())
	default:
		// Everything else is a rejected split or a failed expense validation
		response.BadRequest(w, err.Error())
	}
}
