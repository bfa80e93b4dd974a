package notification

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/loanbook/pkg/response"
)

// Handler handles HTTP requests for installment reminders
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/summary", h.Summary)

	return r
}

// List handles GET /notifications
// @Summary      Installment reminders
// @Description  Scheduled installments that are overdue or due within the window, most urgent first
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        days query int false "Look-ahead window in days" default(7)
// @Param        overdue_only query bool false "Only overdue installments"
// @Success      200 {object} response.APIResponse{data=[]Reminder}
// @Router       /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reminders := h.service.Reminders(windowDays(r), r.URL.Query().Get("overdue_only") == "true")
	response.JSONWithMeta(w, http.StatusOK, reminders, &response.Meta{Total: len(reminders)})
}

// Summary handles GET /notifications/summary
// @Summary      Count installment reminders
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        days query int false "Look-ahead window in days" default(7)
// @Success      200 {object} response.APIResponse{data=Summary}
// @Router       /notifications/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, Summarize(h.service.Reminders(windowDays(r), false)))
}

func windowDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 0 || days > 365 {
		return DefaultWindowDays
	}
	return days
}
