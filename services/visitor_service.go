package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/utils"

	"github.com/google/uuid"
)

// ============================================================================
// VISITOR SESSIONS
// Transient per-visitor state (selected categories, form, last search),
// stored encrypted with a sliding expiry
// ============================================================================

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// StoredSession is a session row; State holds the sealed JSON document.
type StoredSession struct {
	ID        string
	State     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore persists sealed visitor sessions.
type SessionStore interface {
	Insert(ctx context.Context, s StoredSession) error
	Load(ctx context.Context, id string, now time.Time) (StoredSession, error)
	Save(ctx context.Context, s StoredSession) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// encryptedState is the JSONB wrapper around the sealed document.
type encryptedState struct {
	Encrypted string `json:"encrypted"`
}

type VisitorService struct {
	store  SessionStore
	sealer *utils.Sealer
	ttl    time.Duration
	now    func() time.Time
}

func NewVisitorService(store SessionStore, sealer *utils.Sealer, ttl time.Duration) *VisitorService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &VisitorService{store: store, sealer: sealer, ttl: ttl, now: time.Now}
}

// Create opens an empty session.
func (s *VisitorService) Create(ctx context.Context) (*models.VisitorSession, error) {
	now := s.now()
	session := &models.VisitorSession{
		ID: uuid.New().String(),
		State: models.VisitorState{
			Categories: []models.ProductLine{},
			Form:       models.FormInput{},
		},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	sealed, err := s.seal(session.State)
	if err != nil {
		return nil, err
	}
	err = s.store.Insert(ctx, StoredSession{
		ID:        session.ID,
		State:     sealed,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	utils.LogSessionAction("created", session.ID)
	return session, nil
}

// Get loads a live session.
func (s *VisitorService) Get(ctx context.Context, id string) (*models.VisitorSession, error) {
	row, err := s.store.Load(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	state, err := s.open(row.State)
	if err != nil {
		return nil, err
	}
	return &models.VisitorSession{
		ID:        row.ID,
		State:     state,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Update replaces the fields present in req and slides the expiry.
func (s *VisitorService) Update(ctx context.Context, id string, req models.UpdateSessionRequest) (*models.VisitorSession, error) {
	return s.mutate(ctx, id, func(state *models.VisitorState) error {
		if req.Categories != nil {
			for _, p := range req.Categories {
				if !p.Valid() {
					return fmt.Errorf("%w: %s", ErrUnknownProduct, p)
				}
			}
			state.Categories = req.Categories
		}
		if req.Form != nil {
			state.Form = req.Form
		}
		if req.Email != nil {
			state.Email = strings.TrimSpace(*req.Email)
		}
		return nil
	})
}

// RecordSearch remembers the parameters of the visitor's latest search.
func (s *VisitorService) RecordSearch(ctx context.Context, id string, params []models.SearchParams) (*models.VisitorSession, error) {
	return s.mutate(ctx, id, func(state *models.VisitorState) error {
		state.LastSearch = params
		return nil
	})
}

func (s *VisitorService) mutate(ctx context.Context, id string, apply func(*models.VisitorState) error) (*models.VisitorSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(&session.State); err != nil {
		return nil, err
	}

	now := s.now()
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(s.ttl)

	sealed, err := s.seal(session.State)
	if err != nil {
		return nil, err
	}
	err = s.store.Save(ctx, StoredSession{
		ID:        session.ID,
		State:     sealed,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *VisitorService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogSessionAction("deleted", id)
	return nil
}

// CleanExpired removes sessions past their expiry.
func (s *VisitorService) CleanExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, s.now())
}

func (s *VisitorService) seal(state models.VisitorState) ([]byte, error) {
	plain, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	encrypted, err := s.sealer.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt session: %w", err)
	}
	return json.Marshal(encryptedState{Encrypted: encrypted})
}

func (s *VisitorService) open(raw []byte) (models.VisitorState, error) {
	var state models.VisitorState
	var wrapper encryptedState
	if err := json.Unmarshal(raw, &wrapper); err != nil || wrapper.Encrypted == "" {
		return state, fmt.Errorf("session state is not sealed")
	}
	plain, err := s.sealer.Decrypt(wrapper.Encrypted)
	if err != nil {
		return state, fmt.Errorf("failed to decrypt session: %w", err)
	}
	if err := json.Unmarshal(plain, &state); err != nil {
		return state, err
	}
	if state.Categories == nil {
		state.Categories = []models.ProductLine{}
	}
	if state.Form == nil {
		state.Form = models.FormInput{}
	}
	return state, nil
}

// ============================================================================
// STORES
// ============================================================================

// PostgresSessionStore keeps sessions in the visitor_sessions table.
type PostgresSessionStore struct {
	DB *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{DB: db}
}

func (p *PostgresSessionStore) Insert(ctx context.Context, s StoredSession) error {
	query := `
		INSERT INTO visitor_sessions (id, state, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := p.DB.ExecContext(ctx, query, s.ID, s.State, s.CreatedAt, s.UpdatedAt, s.ExpiresAt)
	return err
}

func (p *PostgresSessionStore) Load(ctx context.Context, id string, now time.Time) (StoredSession, error) {
	query := `
		SELECT id, state, created_at, updated_at, expires_at
		FROM visitor_sessions
		WHERE id = $1 AND expires_at > $2
	`
	var s StoredSession
	err := p.DB.QueryRowContext(ctx, query, id, now).Scan(&s.ID, &s.State, &s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrSessionNotFound
	}
	return s, err
}

func (p *PostgresSessionStore) Save(ctx context.Context, s StoredSession) error {
	query := `
		UPDATE visitor_sessions
		SET state = $1, updated_at = $2, expires_at = $3
		WHERE id = $4
	`
	result, err := p.DB.ExecContext(ctx, query, s.State, s.UpdatedAt, s.ExpiresAt, s.ID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (p *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	_, err := p.DB.ExecContext(ctx, "DELETE FROM visitor_sessions WHERE id = $1", id)
	return err
}

func (p *PostgresSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := p.DB.ExecContext(ctx, "DELETE FROM visitor_sessions WHERE expires_at < $1", now)
	if err != nil {
		return 0, fmt.Errorf("failed to clean sessions: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// MemorySessionStore keeps sessions in process.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]StoredSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]StoredSession)}
}

func (m *MemorySessionStore) Insert(_ context.Context, s StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *MemorySessionStore) Load(_ context.Context, id string, now time.Time) (StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || !now.Before(s.ExpiresAt) {
		return StoredSession{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemorySessionStore) Save(_ context.Context, s StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}
