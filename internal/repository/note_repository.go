package repository

import (
	"context"
	"fmt"
	"time"

	"notes-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type NoteRepository interface {
	Create(note *domain.Note) error
	FindByOwner(id, ownerID string) (*domain.Note, error)
	ListByOwner(ownerID string) ([]*domain.Note, error)
	Update(note *domain.Note) error
	Delete(id, ownerID string) error
}

type noteDoc struct {
	DocID     string    `json:"_id"`
	Rev       string    `json:"_rev,omitempty"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type noteRepository struct {
	db *kivik.DB
}

func NewNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &noteRepository{
		db: client.DB(dbName),
	}
}

func noteDocID(id string) string {
	return fmt.Sprintf("note:%s", id)
}

func (r *noteRepository) Create(note *domain.Note) error {
	doc := noteDoc{
		DocID:     noteDocID(note.ID),
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		OwnerID:   note.OwnerID,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}

	if _, err := r.db.Put(context.Background(), doc.DocID, doc); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// FindByOwner filters on both the note ID and the owner, so a note held
// by a different owner is indistinguishable from an absent one.
func (r *noteRepository) FindByOwner(id, ownerID string) (*domain.Note, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"_id":      noteDocID(id),
			"owner_id": ownerID,
		},
		"limit": 1,
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}

	var doc noteDoc
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}

	return docToNote(&doc), nil
}

func (r *noteRepository) ListByOwner(ownerID string) ([]*domain.Note, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"owner_id": ownerID,
		},
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var doc noteDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, docToNote(&doc))
	}

	return notes, nil
}

func (r *noteRepository) Update(note *domain.Note) error {
	row := r.db.Get(context.Background(), noteDocID(note.ID))

	var existing noteDoc
	if err := row.ScanDoc(&existing); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get note for update: %w", err)
	}

	if existing.OwnerID != note.OwnerID {
		return ErrNotFound
	}

	doc := noteDoc{
		DocID:     existing.DocID,
		Rev:       existing.Rev,
		ID:        existing.ID,
		Title:     note.Title,
		Content:   note.Content,
		OwnerID:   existing.OwnerID,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}

	if _, err := r.db.Put(context.Background(), doc.DocID, doc); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (r *noteRepository) Delete(id, ownerID string) error {
	row := r.db.Get(context.Background(), noteDocID(id))

	var doc noteDoc
	if err := row.ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get note for delete: %w", err)
	}

	if doc.OwnerID != ownerID {
		return ErrNotFound
	}

	if _, err := r.db.Delete(context.Background(), doc.DocID, doc.Rev); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}

func docToNote(doc *noteDoc) *domain.Note {
	return &domain.Note{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		OwnerID:   doc.OwnerID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
