package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/saisanthosh2218/expense-tracker/internal/analytics"
	"github.com/saisanthosh2218/expense-tracker/internal/middleware"
	"github.com/saisanthosh2218/expense-tracker/internal/models"
	"github.com/saisanthosh2218/expense-tracker/internal/repository"
	"github.com/saisanthosh2218/expense-tracker/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// Handler exposes the HTTP API
type Handler struct {
	svc      *service.Service
	log      *logrus.Logger
	validate *validator.Validate
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{
		svc:      svc,
		log:      log,
		validate: validator.New(),
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createTransactionRequest struct {
	Type        string           `json:"type" validate:"required,oneof=income expense"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Date        string           `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type updateTransactionRequest struct {
	Type        *string          `json:"type" validate:"omitempty,oneof=income expense"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Date        *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, token, err := h.svc.Register(req.Username, req.Email, req.Password)
	if errors.Is(err, repository.ErrEmailTaken) {
		h.writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, token, err := h.svc.Login(req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// CurrentUser returns the authenticated user's profile
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	user, err := h.svc.CurrentUser(userID)
	if errors.Is(err, repository.ErrNotFound) {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// ListTransactions returns the owned transactions, newest first. The
// optional type, search, start and end query parameters feed the filter
// layer and combine with AND.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	f := analytics.Filter{
		Type:   r.URL.Query().Get("type"),
		Search: r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
		f.StartDate = &t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
		f.EndDate = &t
	}

	txs, err := h.svc.ListTransactions(userID, f)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, txs)
}

// CreateTransaction adds a transaction for the authenticated user
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req createTransactionRequest
	if !h.decode(w, r, &req) {
		return
	}

	in := service.CreateTransactionInput{
		Type:        models.TransactionType(req.Type),
		Amount:      *req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != "" {
		date, _ := time.Parse(dateLayout, req.Date)
		in.Date = date
	}

	tx, err := h.svc.CreateTransaction(userID, in)
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

// GetTransaction returns a single owned transaction
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	tx, err := h.svc.GetTransaction(userID, id)
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}

// UpdateTransaction applies a partial update to an owned transaction;
// only supplied fields change
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	var req updateTransactionRequest
	if !h.decode(w, r, &req) {
		return
	}

	patch := models.TransactionPatch{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		patch.Type = &t
	}
	if req.Date != nil {
		date, _ := time.Parse(dateLayout, *req.Date)
		patch.Date = &date
	}

	tx, err := h.svc.UpdateTransaction(userID, id, patch)
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}

// DeleteTransaction removes an owned transaction
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	if err := h.svc.DeleteTransaction(userID, id); err != nil {
		h.domainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"msg": "Transaction removed"})
}

// Summary returns income, expense and balance totals over the owned set
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	summary, err := h.svc.Summary(userID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// CategorySummary returns per-(type, category) totals over the owned set
func (h *Handler) CategorySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	totals, err := h.svc.CategorySummary(userID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, totals)
}

// MonthlySeries returns per-month totals for one year; the year query
// parameter defaults to the current year
func (h *Handler) MonthlySeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := time.Parse("2006", v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "year must be YYYY")
			return
		}
		year = parsed.Year()
	}

	series, err := h.svc.MonthlySeries(userID, year)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, series)
}

// decode parses and validates a JSON request body, reporting 400 on
// failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return "Missing required field: " + fe.Field()
		case "email":
			return "Invalid email address"
		case "oneof":
			return "Invalid value for field: " + fe.Field()
		case "datetime":
			return "Invalid date, expected YYYY-MM-DD"
		default:
			return "Invalid value for field: " + fe.Field()
		}
	}
	return "Invalid request body"
}

// domainError maps service and store outcomes to status codes
func (h *Handler) domainError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeError(w, http.StatusBadRequest, ve.Reason)
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Transaction not found")
	default:
		h.serverError(w, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.log.Errorf("Request failed: %v", err)
	h.writeError(w, http.StatusInternalServerError, "Server error")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"msg": msg})
}
