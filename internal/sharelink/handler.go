package sharelink

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/loanbook/internal/ledger"
	"github.com/fkhayef/loanbook/pkg/request"
	"github.com/fkhayef/loanbook/pkg/response"
)

// PasswordHeader carries the password of a protected link
const PasswordHeader = "X-Share-Password"

// Handler handles HTTP requests for share links
type Handler struct {
	service *Service
}

// NewHandler creates a new share link handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for managing link records (authenticated)
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/person", h.IssuePerson)
	r.Post("/expense", h.IssueExpense)
	r.Delete("/{id}", h.Delete)

	return r
}

// PublicRoutes returns the router visitors resolve links through
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/expense/{token}", h.ResolveExpense)
	r.Get("/{token}", h.ResolvePerson)

	return r
}

// List handles GET /share-links
// @Summary      List share links
// @Tags         share-links
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=LinksResponse}
// @Router       /share-links [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	links := h.service.List()
	response.JSONWithMeta(w, http.StatusOK, links, &response.Meta{Total: len(links.People) + len(links.Expenses)})
}

// IssuePerson handles POST /share-links/person
// @Summary      Share a person's ledger
// @Description  Issue a signed, optionally expiring and password protected link. expiryDays 0 never expires.
// @Tags         share-links
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body IssuePersonLinkRequest true "Link options"
// @Success      201 {object} response.APIResponse{data=ledger.ShareLink}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /share-links/person [post]
func (h *Handler) IssuePerson(w http.ResponseWriter, r *http.Request) {
	var req IssuePersonLinkRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	link, err := h.service.IssuePersonLink(req)
	if err != nil {
		h.issueError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, link)
}

// IssueExpense handles POST /share-links/expense
// @Summary      Share a split expense
// @Tags         share-links
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body IssueExpenseLinkRequest true "Link options"
// @Success      201 {object} response.APIResponse{data=ledger.ExpenseShareLink}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /share-links/expense [post]
func (h *Handler) IssueExpense(w http.ResponseWriter, r *http.Request) {
	var req IssueExpenseLinkRequest
	if err := request.Decode(r, &req); err != nil {
		response.ValidationError(w, err)
		return
	}

	link, err := h.service.IssueExpenseLink(req)
	if err != nil {
		h.issueError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, link)
}

func (h *Handler) issueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrPersonNotFound), errors.Is(err, ledger.ErrSplitExpenseNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNegativeExpiry):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "Failed to issue share link")
	}
}

// Delete handles DELETE /share-links/{id}
// @Summary      Delete a share link
// @Tags         share-links
// @Security     BearerAuth
// @Param        id path string true "Link ID"
// @Success      204
// @Router       /share-links/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.service.Delete(chi.URLParam(r, "id"))
	response.NoContent(w)
}

// ResolvePerson handles GET /shared/{token}
// @Summary      Open a shared person ledger
// @Tags         shared
// @Produce      json
// @Param        token path string true "Share token"
// @Param        X-Share-Password header string false "Password of a protected link"
// @Success      200 {object} response.APIResponse{data=PersonView}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      410 {object} response.APIResponse
// @Router       /shared/{token} [get]
func (h *Handler) ResolvePerson(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ResolvePerson(chi.URLParam(r, "token"), r.URL.Query(), r.Header.Get(PasswordHeader))
	if err != nil {
		resolveError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// ResolveExpense handles GET /shared/expense/{token}
// @Summary      Open a shared split expense
// @Tags         shared
// @Produce      json
// @Param        token path string true "Share token"
// @Param        X-Share-Password header string false "Password of a protected link"
// @Success      200 {object} response.APIResponse{data=ExpenseView}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      410 {object} response.APIResponse
// @Router       /shared/expense/{token} [get]
func (h *Handler) ResolveExpense(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ResolveExpense(chi.URLParam(r, "token"), r.URL.Query(), r.Header.Get(PasswordHeader))
	if err != nil {
		resolveError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

func resolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLinkExpired):
		response.Gone(w, "LINK_EXPIRED", err.Error())
	case errors.Is(err, ErrPasswordRequired):
		response.Error(w, http.StatusUnauthorized, "PASSWORD_REQUIRED", err.Error())
	case errors.Is(err, ErrWrongPassword):
		response.Error(w, http.StatusForbidden, "WRONG_PASSWORD", err.Error())
	case errors.Is(err, ErrLinkNotFound):
		response.NotFound(w, ErrLinkNotFound.Error())
	default:
		response.Error(w, http.StatusBadRequest, "INVALID_LINK", ErrInvalidLink.Error())
	}
}
