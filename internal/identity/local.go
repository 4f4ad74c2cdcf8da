package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/repository"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

// LocalProvider keeps email/password identities in the document store and
// issues its own HS256 session tokens. It stands in for Firebase when the API
// runs without a Google project.
type LocalProvider struct {
	creds  repository.CredentialRepository
	tokens *utils.TokenIssuer
}

func NewLocalProvider(creds repository.CredentialRepository, tokens *utils.TokenIssuer) *LocalProvider {
	return &LocalProvider{creds: creds, tokens: tokens}
}

func (p *LocalProvider) VerifyToken(_ context.Context, token string) (*Identity, error) {
	claims, err := p.tokens.Validate(token)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, err
	}
	return &Identity{UID: claims.UserID, Email: claims.Email}, nil
}

func (p *LocalProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	cred := &models.Credential{
		UID:          uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
	}
	if err := p.creds.Insert(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return cred.UID, nil
}

func (p *LocalProvider) Login(ctx context.Context, email, password string) (string, *Identity, error) {
	cred, err := p.creds.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !utils.CheckPasswordHash(password, cred.PasswordHash) {
		return "", nil, ErrBadCredentials
	}
	token, err := p.tokens.Generate(cred.UID, cred.Email)
	if err != nil {
		return "", nil, err
	}
	return token, &Identity{UID: cred.UID, Email: cred.Email}, nil
}
