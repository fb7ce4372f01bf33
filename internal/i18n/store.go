package i18n

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/Rorical/AgentDesk/internal/apperrors"
	"github.com/Rorical/AgentDesk/internal/models"
	"github.com/Rorical/AgentDesk/internal/storage"
)

// Preferences persists the chosen language between sessions.
type Preferences interface {
	GetPreference(key string) (string, error)
	SetPreference(key, value string) error
}

// Remote is the slice of the gateway the store needs.
type Remote interface {
	ListLanguages(ctx context.Context) ([]models.Language, error)
	UpdateLanguage(ctx context.Context, agentID, code string) (models.AgentIdentity, error)
}

// DefaultSyncTimeout bounds a background language preference sync.
const DefaultSyncTimeout = 10 * time.Second

// Store is the process-wide locale state: loaded bundles, the current
// language, and the lazily fetched list of languages the backend supports.
// SetLanguage is the only way to change the current language.
type Store struct {
	catalog     *Catalog
	prefs       Preferences
	remote      Remote
	logger      *slog.Logger
	syncTimeout time.Duration

	mu        sync.RWMutex
	current   string
	ready     bool
	languages []models.Language
	fetched   bool

	fetch singleflight.Group
	syncs sync.WaitGroup
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for silent failures.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithSyncTimeout overrides DefaultSyncTimeout.
func WithSyncTimeout(timeout time.Duration) StoreOption {
	return func(s *Store) { s.syncTimeout = timeout }
}

// NewStore creates a store over catalog. prefs and remote may be nil: the
// language is then neither persisted nor synced.
func NewStore(catalog *Catalog, prefs Preferences, remote Remote, opts ...StoreOption) *Store {
	s := &Store{
		catalog:     catalog,
		prefs:       prefs,
		remote:      remote,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		syncTimeout: DefaultSyncTimeout,
		current:     BaseLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init picks the starting language: the persisted override from a previous
// session, else the locale environment, else the base language. It must run
// once, after the bundles are loaded and before the UI renders.
func (s *Store) Init(getenv func(string) string) string {
	code := s.restore()
	if code == "" {
		if detected, ok := s.catalog.DetectFromEnv(getenv); ok {
			code = detected
		}
	}
	if code == "" {
		code = BaseLanguage
	}

	s.mu.Lock()
	s.current = code
	s.ready = true
	s.mu.Unlock()

	s.logger.Debug("locale ready", "language", code)
	return code
}

func (s *Store) restore() string {
	if s.prefs == nil {
		return ""
	}
	value, err := s.prefs.GetPreference(storage.KeyLanguage)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("reading persisted language", "error", err)
		}
		return ""
	}
	code, ok := s.resolve(value)
	if !ok {
		s.logger.Warn("ignoring unparseable persisted language", "language", value)
		return ""
	}
	return code
}

// resolve maps code onto a bundled code when one matches. Other valid
// language tags are kept as is; their lookups fall back to the base bundle.
func (s *Store) resolve(code string) (string, bool) {
	if normalized, ok := s.catalog.Normalize(code); ok {
		return normalized, true
	}
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if err != nil || tag == language.Und {
		return "", false
	}
	return tag.String(), true
}

// Ready reports whether Init has run.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Current returns the active language code.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Catalog returns the loaded bundles.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

// T looks key up in the current language.
func (s *Store) T(key string) string {
	return s.catalog.Lookup(key, s.Current())
}

// Lookup looks key up in code with base-language fallback. It never fails;
// the key itself is the last resort.
func (s *Store) Lookup(key, code string) string {
	if normalized, ok := s.catalog.Normalize(code); ok {
		code = normalized
	}
	return s.catalog.Lookup(key, code)
}

// SetLanguage switches the current language and persists the choice. The
// switch is visible to T and Lookup as soon as SetLanguage returns. When
// agent is given, the preference is also pushed to the backend in the
// background; a failed push is logged and never reverts the local switch.
func (s *Store) SetLanguage(code string, agent *models.AgentIdentity) (string, error) {
	normalized, ok := s.resolve(code)
	if !ok {
		return "", apperrors.Error{
			Kind:    apperrors.KindValidation,
			Key:     "errors.unsupported_language",
			Message: "unsupported language " + strings.TrimSpace(code),
		}
	}

	s.mu.Lock()
	s.current = normalized
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SetPreference(storage.KeyLanguage, normalized); err != nil {
			s.logger.Warn("persisting language", "language", normalized, "error", err)
		}
	}

	if agent != nil && agent.ID != "" && s.remote != nil {
		s.syncs.Add(1)
		go s.syncPreference(agent.ID, normalized)
	}
	return normalized, nil
}

func (s *Store) syncPreference(agentID, code string) {
	defer s.syncs.Done()
	ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
	defer cancel()

	if _, err := s.remote.UpdateLanguage(ctx, agentID, code); err != nil {
		s.logger.Warn("language preference sync failed", "agent", agentID, "language", code, "error", err)
		return
	}
	s.logger.Debug("language preference synced", "agent", agentID, "language", code)
}

// Wait blocks until background preference syncs have finished.
func (s *Store) Wait() {
	s.syncs.Wait()
}

// ListSupportedLanguages returns the languages the backend supports. The
// first successful fetch is cached for the session; concurrent callers share
// one request. Failures are logged and yield an empty list.
func (s *Store) ListSupportedLanguages(ctx context.Context) []models.Language {
	s.mu.RLock()
	if s.fetched {
		out := append([]models.Language(nil), s.languages...)
		s.mu.RUnlock()
		return out
	}
	s.mu.RUnlock()

	if s.remote == nil {
		return []models.Language{}
	}

	value, err, _ := s.fetch.Do("languages", func() (any, error) {
		languages, err := s.remote.ListLanguages(ctx)
		if err != nil {
			return nil, err
		}
		named := make([]models.Language, 0, len(languages))
		for _, lang := range languages {
			if strings.TrimSpace(lang.Code) == "" {
				continue
			}
			if strings.TrimSpace(lang.Name) == "" {
				lang.Name = s.DisplayName(lang.Code)
			}
			named = append(named, lang)
		}

		s.mu.Lock()
		s.languages = named
		s.fetched = true
		s.mu.Unlock()
		return named, nil
	})
	if err != nil {
		s.logger.Warn("listing supported languages", "error", err)
		return []models.Language{}
	}
	return append([]models.Language(nil), value.([]models.Language)...)
}

// Labels lists the bundled languages with their display names, base
// language first. The picker shows these while the remote list is loading.
func (s *Store) Labels() []models.Language {
	codes := s.catalog.Codes()
	out := make([]models.Language, 0, len(codes))
	for _, code := range codes {
		out = append(out, models.Language{Code: code, Name: s.DisplayName(code)})
	}
	return out
}

// DisplayName names code in its own language, e.g. "français" for fr. The
// bundle name wins when one is bundled.
func (s *Store) DisplayName(code string) string {
	if bundle, ok := s.catalog.Bundle(code); ok {
		return bundle.Name
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}
