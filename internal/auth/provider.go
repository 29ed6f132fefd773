// Package auth is the authentication provider: credential login/register
// against the cloud user table, a remembered session token in the local
// store, and a subscription stream delivering the current identity.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"mindguard/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

const sessionTokenTTL = 30 * 24 * time.Hour

// SessionStore remembers the signed session token across restarts.
// *store.GuestStore satisfies it.
type SessionStore interface {
	LoadSession(ctx context.Context) (string, error)
	SaveSession(ctx context.Context, token string) error
	ClearSession(ctx context.Context) error
}

// Provider authenticates users and broadcasts identity changes. Subscribers
// receive the current identity immediately and a new delivery on every
// change; a nil delivery means signed out.
type Provider struct {
	db        *sqlx.DB
	sessions  SessionStore
	jwtSecret []byte
	log       *slog.Logger

	mu      sync.Mutex
	current *models.User
	subs    []chan *models.User
}

func NewProvider(db *sqlx.DB, sessions SessionStore, jwtSecret []byte, log *slog.Logger) *Provider {
	return &Provider{db: db, sessions: sessions, jwtSecret: jwtSecret, log: log}
}

// Updates subscribes to identity changes with an immediate replay of the
// current state.
func (p *Provider) Updates() <-chan *models.User {
	ch := make(chan *models.User, 8)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	current := p.current
	p.mu.Unlock()
	ch <- current
	return ch
}

func (p *Provider) broadcast(user *models.User) {
	p.mu.Lock()
	p.current = user
	subs := p.subs
	p.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- user:
		default:
			p.log.Warn("auth subscriber lagging, delivery dropped")
		}
	}
}

// setCurrent records the identity for future replay without notifying
// subscribers. Used on login, where the session coordinator switches scope
// itself after migration completes.
func (p *Provider) setCurrent(user *models.User) {
	p.mu.Lock()
	p.current = user
	p.mu.Unlock()
}

// CurrentUser returns the identity the provider last established, or nil.
func (p *Provider) CurrentUser() *models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Resume replays any remembered session on startup. Subscribers always get
// an initial delivery, nil when no valid session was found.
func (p *Provider) Resume(ctx context.Context) {
	token, err := p.sessions.LoadSession(ctx)
	if err != nil || token == "" {
		p.broadcast(nil)
		return
	}
	userID, err := p.ParseToken(token)
	if err != nil {
		p.log.Warn("remembered session invalid, discarding", slog.Any("err", err))
		_ = p.sessions.ClearSession(ctx)
		p.broadcast(nil)
		return
	}
	user, err := p.LookupByID(ctx, userID)
	if err != nil {
		p.log.Warn("remembered session user not found", slog.Any("err", err))
		_ = p.sessions.ClearSession(ctx)
		p.broadcast(nil)
		return
	}
	p.broadcast(user)
}

// Login verifies credentials, issues a session token, and remembers it.
// It does not notify subscribers; the caller completes authentication
// through the session coordinator first.
func (p *Provider) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	var row struct {
		models.User
		PasswordHash string `db:"password_hash"`
	}
	err := p.db.GetContext(ctx, &row,
		`SELECT id, name, email, joined_at, avatar, password_hash FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("auth: lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	user := row.User
	token, err := p.issueToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("auth: issue token: %w", err)
	}
	if err := p.sessions.SaveSession(ctx, token); err != nil {
		p.log.Warn("could not remember session", slog.Any("err", err))
	}
	p.setCurrent(&user)
	return &user, token, nil
}

// Register creates an account and signs it in.
func (p *Provider) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("auth: hash password: %w", err)
	}

	user := models.User{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  email,
		Avatar: avatarURL(name),
	}
	err = p.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, avatar) VALUES ($1, $2, $3, $4, $5) RETURNING joined_at`,
		user.ID, user.Name, user.Email, string(hashed), user.Avatar).Scan(&user.JoinedAt)
	if err != nil {
		return nil, "", ErrEmailTaken
	}

	token, err := p.issueToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("auth: issue token: %w", err)
	}
	if err := p.sessions.SaveSession(ctx, token); err != nil {
		p.log.Warn("could not remember session", slog.Any("err", err))
	}
	p.setCurrent(&user)
	return &user, token, nil
}

// Logout forgets the remembered session and notifies subscribers.
func (p *Provider) Logout(ctx context.Context) error {
	if err := p.sessions.ClearSession(ctx); err != nil {
		p.log.Warn("could not clear remembered session", slog.Any("err", err))
	}
	p.broadcast(nil)
	return nil
}

// LookupByID loads a user's profile.
func (p *Provider) LookupByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := p.db.GetContext(ctx, &user,
		`SELECT id, name, email, joined_at, avatar FROM users WHERE id=$1`, id)
	if err != nil {
		return nil, fmt.Errorf("auth: lookup user: %w", err)
	}
	return &user, nil
}

func (p *Provider) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(sessionTokenTTL).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.jwtSecret)
}

// ParseToken validates a session token and returns its subject user id.
func (p *Provider) ParseToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return p.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=0D9488&color=fff"
}
