package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/qrave1/confeet-agent/internal/domain/models"
)

var ErrNotLoggedIn = errors.New("user is not logged in")

type accessClaims struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`

	jwt.RegisteredClaims
}

// Provider отдает пользователя из access token, выданного при логине.
// Подпись проверяет сервер, здесь токен только читается.
type Provider struct {
	user      *models.User
	expiresAt time.Time

	now func() time.Time
}

func NewProvider(accessToken string) (*Provider, error) {
	claims := new(accessClaims)

	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("access token has no subject: %w", ErrNotLoggedIn)
	}

	p := &Provider{
		user: &models.User{
			ID:     claims.Subject,
			Name:   claims.Name,
			Email:  claims.Email,
			Avatar: claims.Avatar,
		},
		now: time.Now,
	}

	if claims.ExpiresAt != nil {
		p.expiresAt = claims.ExpiresAt.Time
	}

	return p, nil
}

// GetUser возвращает nil, если сессия истекла
func (p *Provider) GetUser() *models.User {
	if !p.IsLoggedIn() {
		return nil
	}

	u := *p.user

	return &u
}

func (p *Provider) IsLoggedIn() bool {
	if p.user == nil {
		return false
	}

	return p.expiresAt.IsZero() || p.now().Before(p.expiresAt)
}
