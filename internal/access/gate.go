package access

import (
	"crypto/subtle"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Role is the permission state of the local user.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleAdmin  Role = "admin"
)

const (
	DefaultPassword   = "admin123"
	MinPasswordLength = 4

	authKey     = "todolist_admin_auth"
	passwordKey = "todolist_admin_password"
)

var ErrPasswordTooShort = domain.NewError(domain.ErrCodeInvalid, "new password must be at least 4 characters")

// Gate is the admin/viewer switch. It guards nothing by itself: callers ask
// Require before mutating. The secret is stored in plain text.
type Gate struct {
	store  repository.KeyValueStore
	logger *zap.Logger

	mu     sync.Mutex
	admin  bool
	secret string
}

// New loads the persisted role and secret, falling back to viewer and DefaultPassword.
func New(store repository.KeyValueStore, logger *zap.Logger) (*Gate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{store: store, logger: logger, secret: DefaultPassword}

	flag, ok, err := store.Get(authKey)
	if err != nil {
		return nil, domain.Unavailable("load admin flag", err)
	}
	g.admin = ok && string(flag) == "true"

	secret, ok, err := store.Get(passwordKey)
	if err != nil {
		return nil, domain.Unavailable("load admin password", err)
	}
	if ok && len(secret) > 0 {
		g.secret = string(secret)
	}
	return g, nil
}

// Login switches to admin when password matches the secret exactly.
func (g *Gate) Login(password string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.matchesLocked(password) {
		g.logger.Info("admin login rejected")
		return domain.ErrAuthFailure
	}
	if err := g.persistRoleLocked(true); err != nil {
		return err
	}
	g.admin = true
	return nil
}

// Logout drops admin rights even when the flag cannot be saved.
func (g *Gate) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.admin = false
	return g.persistRoleLocked(false)
}

// ChangePassword replaces the secret. The role is left unchanged.
func (g *Gate) ChangePassword(current, next string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.matchesLocked(current) {
		return domain.ErrAuthFailure
	}
	if utf8.RuneCountInString(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if err := g.store.Put(passwordKey, []byte(next)); err != nil {
		return domain.Unavailable("save admin password", err)
	}
	g.secret = next
	g.logger.Info("admin password changed")
	return nil
}

func (g *Gate) IsAdmin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.admin
}

func (g *Gate) Role() Role {
	if g.IsAdmin() {
		return RoleAdmin
	}
	return RoleViewer
}

// Require returns domain.ErrForbidden unless the gate is in admin mode.
func (g *Gate) Require() error {
	if !g.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (g *Gate) matchesLocked(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(g.secret)) == 1
}

func (g *Gate) persistRoleLocked(admin bool) error {
	value := "false"
	if admin {
		value = "true"
	}
	if err := g.store.Put(authKey, []byte(value)); err != nil {
		return domain.Unavailable("save admin flag", err)
	}
	return nil
}
