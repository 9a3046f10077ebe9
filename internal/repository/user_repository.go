package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document already exists")
)

type UserRepository interface {
	Create(user *domain.User) error
	FindByUsername(username string) (*domain.User, error)
	FindByID(id string) (*domain.User, error)
}

type userDoc struct {
	DocID     string    `json:"_id"`
	Rev       string    `json:"_rev,omitempty"`
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

type userRepository struct {
	db *kivik.DB
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		db: client.DB(dbName),
	}
}

func userDocID(username string) string {
	return fmt.Sprintf("user:%s", username)
}

// Create stores the user under a username-derived document ID, so a
// concurrent duplicate signup surfaces as a store-level conflict rather
// than racing a separate existence check.
func (r *userRepository) Create(user *domain.User) error {
	doc := userDoc{
		DocID:     userDocID(user.Username),
		ID:        user.ID,
		Username:  user.Username,
		Password:  user.Password,
		CreatedAt: user.CreatedAt,
	}

	if _, err := r.db.Put(context.Background(), doc.DocID, doc); err != nil {
		if kivik.HTTPStatus(err) == 409 {
			return ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByUsername(username string) (*domain.User, error) {
	row := r.db.Get(context.Background(), userDocID(username))

	var doc userDoc
	if err := row.ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return docToUser(&doc), nil
}

func (r *userRepository) FindByID(id string) (*domain.User, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"id": id,
		},
		"limit": 1,
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query user by id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}

	var doc userDoc
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return docToUser(&doc), nil
}

func docToUser(doc *userDoc) *domain.User {
	return &domain.User{
		ID:        doc.ID,
		Username:  doc.Username,
		Password:  doc.Password,
		CreatedAt: doc.CreatedAt,
	}
}
