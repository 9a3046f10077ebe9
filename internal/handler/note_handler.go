package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"notes-server/internal/domain"
	"notes-server/internal/middleware"
	"notes-server/internal/service"
	"notes-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	ownerID := middleware.GetUserID(r)

	noteID, err := h.service.Create(ownerID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create note")
		return
	}

	response.Created(w, domain.CreateNoteResponse{NoteID: noteID})
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r)

	notes, err := h.service.List(ownerID)
	if err != nil {
		response.InternalError(w, "Failed to list notes")
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	ownerID := middleware.GetUserID(r)

	note, err := h.service.Get(ownerID, noteID)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to get note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	ownerID := middleware.GetUserID(r)

	if err := h.service.Update(ownerID, noteID, &req); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to update note")
		return
	}

	response.Message(w, "Note updated successfully")
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	ownerID := middleware.GetUserID(r)

	if err := h.service.Delete(ownerID, noteID); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(w, "Note not found")
			return
		}
		response.InternalError(w, "Failed to delete note")
		return
	}

	response.Message(w, "Note deleted successfully")
}
