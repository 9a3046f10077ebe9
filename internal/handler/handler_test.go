package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"notes-server/internal/domain"
	"notes-server/internal/middleware"
	"notes-server/internal/repository"
	"notes-server/internal/service"

	"github.com/gorilla/mux"
)

type memUserRepo struct {
	users map[string]*domain.User
}

func (m *memUserRepo) Create(user *domain.User) error {
	if _, exists := m.users[user.Username]; exists {
		return repository.ErrConflict
	}
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *memUserRepo) FindByUsername(username string) (*domain.User, error) {
	if u, ok := m.users[username]; ok {
		found := *u
		return &found, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) FindByID(id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memNoteRepo struct {
	notes map[string]*domain.Note
}

func (m *memNoteRepo) Create(note *domain.Note) error {
	stored := *note
	m.notes[note.ID] = &stored
	return nil
}

func (m *memNoteRepo) FindByOwner(id, ownerID string) (*domain.Note, error) {
	if n, ok := m.notes[id]; ok && n.OwnerID == ownerID {
		found := *n
		return &found, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memNoteRepo) ListByOwner(ownerID string) ([]*domain.Note, error) {
	var notes []*domain.Note
	for _, n := range m.notes {
		if n.OwnerID == ownerID {
			found := *n
			notes = append(notes, &found)
		}
	}
	return notes, nil
}

func (m *memNoteRepo) Update(note *domain.Note) error {
	existing, ok := m.notes[note.ID]
	if !ok || existing.OwnerID != note.OwnerID {
		return repository.ErrNotFound
	}
	existing.Title = note.Title
	existing.Content = note.Content
	existing.UpdatedAt = note.UpdatedAt
	return nil
}

func (m *memNoteRepo) Delete(id, ownerID string) error {
	if n, ok := m.notes[id]; ok && n.OwnerID == ownerID {
		delete(m.notes, id)
		return nil
	}
	return repository.ErrNotFound
}

// newTestRouter mirrors the route wiring in cmd/server.
func newTestRouter() *mux.Router {
	userRepo := &memUserRepo{users: make(map[string]*domain.User)}
	noteRepo := &memNoteRepo{notes: make(map[string]*domain.Note)}

	authService := service.NewAuthService(userRepo)
	noteService := service.NewNoteService(noteRepo)

	authHandler := NewAuthHandler(authService)
	noteHandler := NewNoteHandler(noteService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(authService))

	protected.HandleFunc("/notes", noteHandler.Create).Methods("POST")
	protected.HandleFunc("/notes", noteHandler.List).Methods("GET")
	protected.HandleFunc("/notes/{id}", noteHandler.Get).Methods("GET")
	protected.HandleFunc("/notes/{id}", noteHandler.Update).Methods("PUT")
	protected.HandleFunc("/notes/{id}", noteHandler.Delete).Methods("DELETE")

	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func signup(t *testing.T, r http.Handler, username, password string) string {
	t.Helper()

	w := doJSON(t, r, "POST", "/api/auth/signup", "", map[string]string{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup returned %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp domain.SignupResponse
	decodeBody(t, w, &resp)
	return resp.UserID
}

func login(t *testing.T, r http.Handler, username, password string) string {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp domain.LoginResponse
	decodeBody(t, w, &resp)
	return resp.AccessToken
}

func TestSignupDuplicateUsername(t *testing.T) {
	r := newTestRouter()

	signup(t, r, "alice", "pw1")

	w := doJSON(t, r, "POST", "/api/auth/signup", "", map[string]string{
		"username": "alice",
		"password": "pw2",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate signup returned %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	r := newTestRouter()

	signup(t, r, "alice", "pw1")

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login with wrong password returned %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestNotesRequireToken(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, "GET", "/api/notes", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated list returned %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = doJSON(t, r, "GET", "/api/notes", "no-such-user", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("list with unknown token returned %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestNoteLifecycle(t *testing.T) {
	r := newTestRouter()

	userID := signup(t, r, "alice", "pw1")
	token := login(t, r, "alice", "pw1")

	if token != "alice" {
		t.Fatalf("login token = %q, want %q", token, "alice")
	}

	w := doJSON(t, r, "POST", "/api/notes", token, map[string]string{
		"title":   "T",
		"content": "C",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create note returned %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	var created domain.CreateNoteResponse
	decodeBody(t, w, &created)

	w = doJSON(t, r, "GET", "/api/notes/"+created.NoteID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get note returned %d, want %d", w.Code, http.StatusOK)
	}
	var note domain.NoteResponse
	decodeBody(t, w, &note)
	if note.Title != "T" || note.Content != "C" {
		t.Errorf("get note = {%q, %q}, want {\"T\", \"C\"}", note.Title, note.Content)
	}
	if note.OwnerID != userID {
		t.Errorf("get note owner = %q, want %q", note.OwnerID, userID)
	}

	w = doJSON(t, r, "GET", "/api/notes", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list notes returned %d, want %d", w.Code, http.StatusOK)
	}
	var list []domain.NoteResponse
	decodeBody(t, w, &list)
	if len(list) != 1 {
		t.Errorf("list returned %d notes, want 1", len(list))
	}

	w = doJSON(t, r, "PUT", "/api/notes/"+created.NoteID, token, map[string]string{
		"title":   "T2",
		"content": "C2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update note returned %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	w = doJSON(t, r, "GET", "/api/notes/"+created.NoteID, token, nil)
	decodeBody(t, w, &note)
	if note.Title != "T2" || note.Content != "C2" {
		t.Errorf("get after update = {%q, %q}, want {\"T2\", \"C2\"}", note.Title, note.Content)
	}

	w = doJSON(t, r, "DELETE", "/api/notes/"+created.NoteID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete note returned %d, want %d", w.Code, http.StatusOK)
	}

	w = doJSON(t, r, "GET", "/api/notes/"+created.NoteID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete returned %d, want %d", w.Code, http.StatusNotFound)
	}

	w = doJSON(t, r, "DELETE", "/api/notes/"+created.NoteID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete returned %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestNoteOwnerIsolation(t *testing.T) {
	r := newTestRouter()

	signup(t, r, "alice", "pw1")
	signup(t, r, "bob", "pw2")
	aliceToken := login(t, r, "alice", "pw1")
	bobToken := login(t, r, "bob", "pw2")

	w := doJSON(t, r, "POST", "/api/notes", aliceToken, map[string]string{
		"title": "private",
	})
	var created domain.CreateNoteResponse
	decodeBody(t, w, &created)

	w = doJSON(t, r, "GET", "/api/notes/"+created.NoteID, bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-owner get returned %d, want %d", w.Code, http.StatusNotFound)
	}

	w = doJSON(t, r, "PUT", "/api/notes/"+created.NoteID, bobToken, map[string]string{"title": "stolen"})
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-owner update returned %d, want %d", w.Code, http.StatusNotFound)
	}

	w = doJSON(t, r, "DELETE", "/api/notes/"+created.NoteID, bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-owner delete returned %d, want %d", w.Code, http.StatusNotFound)
	}

	w = doJSON(t, r, "GET", "/api/notes", bobToken, nil)
	var list []domain.NoteResponse
	decodeBody(t, w, &list)
	if len(list) != 0 {
		t.Errorf("cross-owner list returned %d notes, want 0", len(list))
	}
}

func TestCreateNoteIgnoresClientOwner(t *testing.T) {
	r := newTestRouter()

	userID := signup(t, r, "alice", "pw1")
	token := login(t, r, "alice", "pw1")

	w := doJSON(t, r, "POST", "/api/notes", token, map[string]string{
		"title":    "T",
		"owner_id": "someone-else",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create note returned %d, want %d", w.Code, http.StatusCreated)
	}
	var created domain.CreateNoteResponse
	decodeBody(t, w, &created)

	w = doJSON(t, r, "GET", "/api/notes/"+created.NoteID, token, nil)
	var note domain.NoteResponse
	decodeBody(t, w, &note)
	if note.OwnerID != userID {
		t.Errorf("note owner = %q, want authenticated user %q", note.OwnerID, userID)
	}
}

func TestCreateNoteValidation(t *testing.T) {
	r := newTestRouter()

	signup(t, r, "alice", "pw1")
	token := login(t, r, "alice", "pw1")

	w := doJSON(t, r, "POST", "/api/notes", token, map[string]string{
		"content": "no title",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("create without title returned %d, want %d", w.Code, http.StatusBadRequest)
	}
}
