package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/saisanthosh2218/expense-tracker/internal/analytics"
	"github.com/saisanthosh2218/expense-tracker/internal/config"
	"github.com/saisanthosh2218/expense-tracker/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for a bad email or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports a rejected field on create or update. It is
// raised before anything reaches the store.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Store is the persistence contract the service depends on. Every
// owner-scoped operation takes the owner id explicitly; a record owned by
// someone else behaves exactly like a missing one.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)

	CreateTransaction(tx *models.Transaction) error
	ListTransactions(ownerID int64) ([]models.Transaction, error)
	GetTransaction(id uuid.UUID, ownerID int64) (*models.Transaction, error)
	UpdateTransaction(id uuid.UUID, ownerID int64, patch models.TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(id uuid.UUID, ownerID int64) error
	SumByType(ownerID int64) (map[models.TransactionType]decimal.Decimal, error)
	SumByTypeAndCategory(ownerID int64) ([]models.CategoryTotal, error)
}

// Service handles business logic
type Service struct {
	store  Store
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(store Store, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, log: log, config: cfg}
}

// Register creates a new user with hashed password and returns the user
// together with a signed token
func (s *Service) Register(username, email, password string) (*models.User, string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashedPassword),
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (*models.User, string, error) {
	user, err := s.store.FindUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return user, token, nil
}

// CurrentUser loads the profile of an authenticated user
func (s *Service) CurrentUser(userID int64) (*models.User, error) {
	return s.store.FindUserByID(userID)
}

func (s *Service) generateToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.JWTTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// CreateTransactionInput carries the validated fields of a new transaction.
// A zero Date means "today".
type CreateTransactionInput struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
}

// CreateTransaction validates the input and stores a new record owned by
// ownerID
func (s *Service) CreateTransaction(ownerID int64, in CreateTransactionInput) (*models.Transaction, error) {
	if !in.Type.Valid() {
		return nil, invalid("type must be income or expense")
	}
	if in.Amount.IsNegative() {
		return nil, invalid("amount must not be negative")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, invalid("category is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("description is required")
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	tx := &models.Transaction{
		UserID:      ownerID,
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        date,
	}
	if err := s.store.CreateTransaction(tx); err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %s created for user %d", tx.ID, ownerID)
	return tx, nil
}

// ListTransactions returns the owned set narrowed by the filter, newest
// first
func (s *Service) ListTransactions(ownerID int64, f analytics.Filter) ([]models.Transaction, error) {
	txs, err := s.store.ListTransactions(ownerID)
	if err != nil {
		return nil, err
	}
	return analytics.Apply(txs, f), nil
}

// GetTransaction returns a single owned transaction
func (s *Service) GetTransaction(ownerID int64, id uuid.UUID) (*models.Transaction, error) {
	return s.store.GetTransaction(id, ownerID)
}

// UpdateTransaction validates the supplied fields and applies a partial
// update to an owned transaction
func (s *Service) UpdateTransaction(ownerID int64, id uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error) {
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, invalid("type must be income or expense")
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		return nil, invalid("amount must not be negative")
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		return nil, invalid("category must not be empty")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, invalid("description must not be empty")
	}

	tx, err := s.store.UpdateTransaction(id, ownerID, patch)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %s updated for user %d", id, ownerID)
	return tx, nil
}

// DeleteTransaction removes an owned transaction
func (s *Service) DeleteTransaction(ownerID int64, id uuid.UUID) error {
	if err := s.store.DeleteTransaction(id, ownerID); err != nil {
		return err
	}
	s.log.Infof("Transaction %s deleted for user %d", id, ownerID)
	return nil
}

// Summary returns income and expense totals for the owner's full set.
// The grouped reduction runs in the store; tests hold it to the same
// semantics as analytics.Summarize.
func (s *Service) Summary(ownerID int64) (models.Summary, error) {
	totals, err := s.store.SumByType(ownerID)
	if err != nil {
		return models.Summary{}, err
	}
	income := decimal.Zero
	if v, ok := totals[models.TypeIncome]; ok {
		income = v
	}
	expenses := decimal.Zero
	if v, ok := totals[models.TypeExpense]; ok {
		expenses = v
	}
	return models.Summary{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}, nil
}

// CategorySummary returns per-(type, category) totals for the owner's
// full set
func (s *Service) CategorySummary(ownerID int64) ([]models.CategoryTotal, error) {
	totals, err := s.store.SumByTypeAndCategory(ownerID)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = []models.CategoryTotal{}
	}
	return totals, nil
}

// MonthlySeries returns per-month income and expense totals for one
// calendar year of the owner's set
func (s *Service) MonthlySeries(ownerID int64, year int) (models.MonthlySeries, error) {
	txs, err := s.store.ListTransactions(ownerID)
	if err != nil {
		return models.MonthlySeries{}, err
	}
	return analytics.MonthlySeries(txs, year), nil
}
