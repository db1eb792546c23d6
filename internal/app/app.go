package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"studyhub/internal/store"
	"studyhub/pkg/auth"
	"studyhub/pkg/domain"
	"studyhub/pkg/events"
	"studyhub/pkg/storage"
)

// Points awarded for contributions.
const (
	pointsPaperUpload = 10
	pointsPostCreated = 5
	pointsReply       = 2
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	SessionTTL     time.Duration
	JWTSecret      string
	DownloadURLTTL time.Duration

	// Injectable dependencies; defaults are built from the fields above.
	Store    store.Store
	Sessions store.SessionStore
	Objects  storage.ObjectStore
	Events   events.Publisher
}

// App is the core application service wiring storage, sessions, object
// storage, and the activity event publisher together.
type App struct {
	store       store.Store
	sessions    store.SessionStore
	objects     storage.ObjectStore
	events      events.Publisher
	downloadTTL time.Duration
}

// New constructs the application. Without a database URL the in-memory
// store is used; without Redis or a JWT secret sessions stay in-process.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.DownloadURLTTL == 0 {
		cfg.DownloadURLTTL = 15 * time.Minute
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL != "" {
			var err error
			dataStore, err = store.NewGormStore(cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("init postgres store: %w", err)
			}
		} else {
			dataStore = store.NewMemoryStore()
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.JWTSecret != "":
			sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		case cfg.RedisAddr != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			sessionStore = store.NewMemorySessionStore()
		}
	}

	objectStore := cfg.Objects
	if objectStore == nil {
		objectStore = storage.NewMemoryObjectStore()
	}

	publisher := cfg.Events
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &App{
		store:       dataStore,
		sessions:    sessionStore,
		objects:     objectStore,
		events:      publisher,
		downloadTTL: cfg.DownloadURLTTL,
	}, nil
}

// SignUp registers a new user and issues a session token.
//
// Username and email uniqueness is a check-then-create: two racing signups
// for the same name can both pass the check. The store does not enforce
// uniqueness atomically; the Postgres backend adds unique indexes on top.
func (a *App) SignUp(username, email, password string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return domain.User{}, "", ValidationError("username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, "", ValidationError("invalid email address")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", ValidationError(err.Error())
	}
	if _, taken, err := a.store.GetUserByUsername(username); err != nil {
		return domain.User{}, "", fmt.Errorf("check username: %w", err)
	} else if taken {
		return domain.User{}, "", ErrUsernameTaken
	}
	if _, taken, err := a.store.GetUserByEmail(email); err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	} else if taken {
		return domain.User{}, "", ErrEmailTaken
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user, err := a.store.CreateUser(domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(username, password string) (domain.User, string, error) {
	user, ok, err := a.store.GetUserByUsername(strings.TrimSpace(username))
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUser(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Logout removes a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// GetUser returns a user's public profile.
func (a *App) GetUser(id int64) (domain.User, error) {
	user, ok, err := a.store.GetUser(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// recordActivity appends to the activity log and publishes the event.
// Publishing is best-effort: a broker failure is logged, not returned.
func (a *App) recordActivity(ctx context.Context, userID int64, typ domain.ActivityType, targetID int64, targetType domain.TargetType, metadata map[string]any) {
	activity, err := a.store.LogActivity(domain.Activity{
		UserID:     userID,
		Type:       typ,
		TargetID:   targetID,
		TargetType: targetType,
		Metadata:   metadata,
	})
	if err != nil {
		slog.Error("log activity", "type", typ, "user_id", userID, "err", err)
		return
	}
	if err := a.events.PublishActivity(ctx, activity); err != nil {
		slog.Warn("publish activity event", "type", typ, "activity_id", activity.ID, "err", err)
	}
}
