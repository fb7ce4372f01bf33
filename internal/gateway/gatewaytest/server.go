// Package gatewaytest provides an in-memory support backend speaking the
// gateway wire format. Tests run it behind httptest; the devserver command
// serves it for local development.
package gatewaytest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Rorical/AgentDesk/internal/models"
)

// Operation names a backend endpoint for call recording and failure
// injection.
type Operation string

const (
	OpChangePassword Operation = "change_password"
	OpUpdateProfile  Operation = "update_profile"
	OpUploadFile     Operation = "upload_file"
	OpListLanguages  Operation = "list_languages"
	OpUpdateLanguage Operation = "update_language"
	OpCurrentAgent   Operation = "current_agent"
)

// MaxUploadBytes is the largest file the fake backend accepts.
const MaxUploadBytes = 2 << 20

// Failure is an injected response for the next call of an operation.
type Failure struct {
	Status  int
	Message string
}

type storedFile struct {
	name        string
	contentType string
	content     []byte
}

// Server is the fake backend. The zero value is not usable; call NewServer.
type Server struct {
	mu        sync.Mutex
	token     string
	publicURL string
	agent     models.AgentIdentity
	password  string
	languages []models.Language
	files     map[string]storedFile
	calls     map[Operation]int
	failures  map[Operation]Failure
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires requests to carry the bearer token.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithAgent seeds the signed-in agent and the password.
func WithAgent(agent models.AgentIdentity, password string) Option {
	return func(s *Server) {
		s.agent = agent
		s.password = password
	}
}

// WithLanguages replaces the supported-language list.
func WithLanguages(languages []models.Language) Option {
	return func(s *Server) { s.languages = languages }
}

// WithLogger routes request logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a fake backend with a default agent.
func NewServer(opts ...Option) *Server {
	s := &Server{
		agent: models.AgentIdentity{
			ID:           "agent-1",
			Name:         "Ada Lovelace",
			Email:        "ada@example.com",
			Language:     "en",
			Availability: models.Online,
		},
		password: "secret",
		languages: []models.Language{
			{Code: "en", Name: "English"},
			{Code: "fr", Name: "Français"},
			{Code: "es", Name: "Español"},
			{Code: "pt-BR", Name: "Português (Brasil)"},
		},
		files:    map[string]storedFile{},
		calls:    map[Operation]int{},
		failures: map[Operation]Failure{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPublicURL sets the prefix used for uploaded file URLs. httptest only
// knows its address after start, so tests call this afterwards.
func (s *Server) SetPublicURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publicURL = url
}

// FailNext makes the next call of op answer with status and message.
func (s *Server) FailNext(op Operation, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = Failure{Status: status, Message: message}
}

// Calls returns how many requests reached op, failed ones included.
func (s *Server) Calls(op Operation) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls returns the number of recorded requests.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// Agent returns a copy of the stored agent.
func (s *Server) Agent() models.AgentIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent
}

// Password returns the stored password.
func (s *Server) Password() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password
}

// Handler returns the chi router serving the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/files/{id}", s.handleFile)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/agents/me", s.record(OpCurrentAgent, s.handleCurrentAgent))
		r.Patch("/agents/me", s.record(OpUpdateProfile, s.handleUpdateProfile))
		r.Post("/agents/me/password", s.record(OpChangePassword, s.handleChangePassword))
		r.Patch("/agents/{id}/language", s.record(OpUpdateLanguage, s.handleUpdateLanguage))
		r.Get("/languages", s.record(OpListLanguages, s.handleListLanguages))
		r.Post("/files", s.record(OpUploadFile, s.handleUpload))
	})
	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// record counts the call and answers with an injected failure if one is
// pending.
func (s *Server) record(op Operation, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[op]++
		failure, failing := s.failures[op]
		delete(s.failures, op)
		s.mu.Unlock()

		s.logger.Info("request", "op", string(op), "method", r.Method, "path", r.URL.Path)
		if failing {
			writeError(w, failure.Status, failure.Message)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleCurrentAgent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Agent())
}

type profilePatch struct {
	Email        *string              `json:"email"`
	AvatarURL    *string              `json:"avatar_url"`
	Name         *string              `json:"name"`
	Availability *models.Availability `json:"availability"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch profilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if patch.Email != nil && !looksLikeEmail(*patch.Email) {
		writeError(w, http.StatusUnprocessableEntity, "email is invalid")
		return
	}

	s.mu.Lock()
	if patch.Email != nil {
		s.agent.Email = *patch.Email
	}
	if patch.AvatarURL != nil {
		s.agent.AvatarURL = *patch.AvatarURL
	}
	if patch.Name != nil {
		s.agent.Name = *patch.Name
	}
	if patch.Availability != nil {
		s.agent.Availability = *patch.Availability
	}
	agent := s.agent
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, agent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if body.OldPassword != s.password {
		writeError(w, http.StatusForbidden, "current password is incorrect")
		return
	}
	if len(body.NewPassword) < 6 {
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 6 characters")
		return
	}
	s.password = body.NewPassword
	s.agent.PasswordChangeRequired = false
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateLanguage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s.mu.Lock()
	if chi.URLParam(r, "id") != s.agent.ID {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	s.agent.Language = body.Language
	agent := s.agent
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, agent)
}

func (s *Server) handleListLanguages(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	languages := append([]models.Language(nil), s.languages...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, languages)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+(64<<10))
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file")
		return
	}
	if len(content) > MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	public, _ := strconv.ParseBool(r.FormValue("public"))
	contentType := http.DetectContentType(content)

	id := uuid.NewString()
	s.mu.Lock()
	s.files[id] = storedFile{name: header.Filename, contentType: contentType, content: content}
	url := fmt.Sprintf("%s/files/%s", s.publicURL, id)
	s.mu.Unlock()

	s.logger.Info("stored file", "id", id, "owner", r.FormValue("owner_id"),
		"category", r.FormValue("category"), "public", public)
	writeJSON(w, http.StatusCreated, map[string]any{
		"url":          url,
		"name":         header.Filename,
		"content_type": contentType,
		"size":         len(content),
	})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	file, ok := s.files[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", file.contentType)
	w.Write(file.content)
}

func looksLikeEmail(value string) bool {
	at := -1
	for i, r := range value {
		if r == '@' {
			if at >= 0 {
				return false
			}
			at = i
		}
	}
	return at > 0 && at < len(value)-1
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, map[string]string{"message": message})
}
