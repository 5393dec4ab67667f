package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/saisanthosh2218/expense-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// Sentinel outcomes of the store contract. A transaction owned by another
// user is reported as ErrNotFound, identically to a missing one, so that
// cross-owner probes cannot confirm a record exists.
var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers retrieves all registered users
func (r *Repository) ListUsers() ([]models.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		ORDER BY id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateTransaction inserts a new transaction owned by tx.UserID
func (r *Repository) CreateTransaction(tx *models.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	query := `
		INSERT INTO transactions (id, user_id, type, amount, category, description, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query,
		tx.ID, tx.UserID, string(tx.Type), tx.Amount, tx.Category, tx.Description, tx.Date).
		Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListTransactions retrieves every transaction owned by ownerID,
// newest first
func (r *Repository) ListTransactions(ownerID int64) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, category, description, date, created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

// GetTransaction retrieves a single transaction if ownerID owns it
func (r *Repository) GetTransaction(id uuid.UUID, ownerID int64) (*models.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, category, description, date, created_at, updated_at
		FROM transactions
		WHERE id = $1 AND user_id = $2`
	row := r.db.QueryRow(query, id, ownerID)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// UpdateTransaction applies a partial update to an owned transaction.
// Nil patch fields keep their stored values.
func (r *Repository) UpdateTransaction(id uuid.UUID, ownerID int64, patch models.TransactionPatch) (*models.Transaction, error) {
	var typ, category, description, date, amount any
	if patch.Type != nil {
		typ = string(*patch.Type)
	}
	if patch.Amount != nil {
		amount = *patch.Amount
	}
	if patch.Category != nil {
		category = *patch.Category
	}
	if patch.Description != nil {
		description = *patch.Description
	}
	if patch.Date != nil {
		date = *patch.Date
	}

	query := `
		UPDATE transactions
		SET type        = COALESCE($3, type),
		    amount      = COALESCE($4, amount),
		    category    = COALESCE($5, category),
		    description = COALESCE($6, description),
		    date        = COALESCE($7, date),
		    updated_at  = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, type, amount, category, description, date, created_at, updated_at`
	row := r.db.QueryRow(query, id, ownerID, typ, amount, category, description, date)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// DeleteTransaction removes an owned transaction
func (r *Repository) DeleteTransaction(id uuid.UUID, ownerID int64) error {
	res, err := r.db.Exec(`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SumByType computes the grouped income and expense totals for one owner
// in SQL. The totals match analytics.Summarize over the same rows since
// amounts are stored as NUMERIC and summed exactly.
func (r *Repository) SumByType(ownerID int64) (map[models.TransactionType]decimal.Decimal, error) {
	query := `
		SELECT type, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
		GROUP BY type`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum by type: %w", err)
	}
	defer rows.Close()

	totals := make(map[models.TransactionType]decimal.Decimal)
	for rows.Next() {
		var typ string
		var total decimal.Decimal
		if err := rows.Scan(&typ, &total); err != nil {
			return nil, fmt.Errorf("failed to scan grouped sum: %w", err)
		}
		totals[models.TransactionType(typ)] = total
	}
	return totals, rows.Err()
}

// SumByTypeAndCategory computes grouped totals keyed by (type, category)
// for one owner in SQL
func (r *Repository) SumByTypeAndCategory(ownerID int64) ([]models.CategoryTotal, error) {
	query := `
		SELECT type, category, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1
		GROUP BY type, category`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum by category: %w", err)
	}
	defer rows.Close()

	var totals []models.CategoryTotal
	for rows.Next() {
		var ct models.CategoryTotal
		var typ string
		if err := rows.Scan(&typ, &ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan grouped sum: %w", err)
		}
		ct.Type = models.TransactionType(typ)
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var typ string
	err := s.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount, &tx.Category,
		&tx.Description, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	tx.Type = models.TransactionType(typ)
	return tx, nil
}
