package service

import (
	"errors"
	"fmt"
	"time"

	"notes-server/internal/domain"
	"notes-server/internal/repository"

	"github.com/google/uuid"
)

type NoteService struct {
	repo repository.NoteRepository
}

func NewNoteService(repo repository.NoteRepository) *NoteService {
	return &NoteService{
		repo: repo,
	}
}

// Create always takes the owner from the authenticated identity; any
// owner supplied in the request body is ignored.
func (s *NoteService) Create(ownerID string, req *domain.CreateNoteRequest) (string, error) {
	now := time.Now()

	note := &domain.Note{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Content:   req.Content,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(note); err != nil {
		return "", fmt.Errorf("failed to create note: %w", err)
	}

	return note.ID, nil
}

func (s *NoteService) List(ownerID string) ([]*domain.NoteResponse, error) {
	notes, err := s.repo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	responses := make([]*domain.NoteResponse, 0, len(notes))
	for _, n := range notes {
		responses = append(responses, noteToResponse(n))
	}

	return responses, nil
}

func (s *NoteService) Get(ownerID, noteID string) (*domain.NoteResponse, error) {
	note, err := s.repo.FindByOwner(noteID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return noteToResponse(note), nil
}

func (s *NoteService) Update(ownerID, noteID string, req *domain.UpdateNoteRequest) error {
	note := &domain.Note{
		ID:        noteID,
		Title:     req.Title,
		Content:   req.Content,
		OwnerID:   ownerID,
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Update(note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (s *NoteService) Delete(ownerID, noteID string) error {
	if err := s.repo.Delete(noteID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}

func noteToResponse(n *domain.Note) *domain.NoteResponse {
	return &domain.NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		OwnerID:   n.OwnerID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
