package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/bloodlink/bloodlink/internal/shared"
)

const (
	roleCacheKeyPrefix  = "role:"
	resetTokenKeyPrefix = "pwreset:"
	resetTokenTTL       = 15 * time.Minute
)

// MailEnqueuer queues transactional email delivery.
type MailEnqueuer interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) error
}

// Service wraps authentication and role-resolution business rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
	client *redis.Client
	mail   MailEnqueuer
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager, client *redis.Client, mail MailEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, client: client, mail: mail, logger: logger}
}

// RegisterInput captures the registration form.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	AvatarURL  string
	BloodGroup string
	DistrictID *int64
	Upazila    string
}

// Register creates an account with the donor role and signs the caller in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	account, err := s.repo.Create(ctx, Account{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: string(hash),
		AvatarURL:    in.AvatarURL,
		BloodGroup:   in.BloodGroup,
		DistrictID:   in.DistrictID,
		Upazila:      in.Upazila,
		Role:         shared.RoleDonor,
		Status:       shared.StatusActive,
	})
	if err != nil {
		return nil, err
	}

	if s.mail != nil {
		if err := s.mail.EnqueueEmail(ctx, account.Email, "Welcome to BloodLink",
			"Your donor account is ready. Thank you for joining."); err != nil {
			s.logger.Warn("enqueue welcome mail", slog.Any("error", err))
		}
	}

	return s.issueCredential(account)
}

// Login validates email/password credentials and issues a token. Blocked
// accounts cannot sign in.
func (s *Service) Login(ctx context.Context, email, password string) (*Credential, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if account.Status == shared.StatusBlocked {
		return nil, shared.ErrAccountBlocked
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.issueCredential(account)
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	return s.tokens.Revoke(ctx, claims)
}

// RequestPasswordReset issues a one-time reset token and emails it to the
// account. An unknown email yields no error so the endpoint cannot be used
// to probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := s.client.Set(ctx, resetTokenKeyPrefix+token, normalized, resetTokenTTL).Err(); err != nil {
		return fmt.Errorf("auth: store reset token: %w", err)
	}

	if s.mail != nil {
		if err := s.mail.EnqueueEmail(ctx, normalized, "Reset your BloodLink password",
			"Use this code within 15 minutes to choose a new password: "+token); err != nil {
			s.logger.Warn("enqueue reset mail", slog.Any("error", err))
		}
	}
	return nil
}

// ConfirmPasswordReset exchanges a valid reset token for a new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	email, err := s.client.GetDel(ctx, resetTokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.ErrInvalidCredentials
		}
		return fmt.Errorf("auth: reset token lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, email, string(hash))
}

// Resolve maps an email to its role and account status, cached per email
// for the token lifetime. A failed lookup yields RoleUnresolved and the
// error; it never falls back to a privileged role.
func (s *Service) Resolve(ctx context.Context, email string) (shared.Role, shared.AccountStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return shared.RoleUnresolved, "", shared.ErrNotFound
	}

	if cached, err := s.client.Get(ctx, roleCacheKeyPrefix+normalized).Result(); err == nil {
		if role, status, ok := decodeRoleCache(cached); ok {
			return role, status, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("role cache read", slog.Any("error", err))
	}

	account, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		return shared.RoleUnresolved, "", err
	}

	encoded := string(account.Role) + "|" + string(account.Status)
	if err := s.client.Set(ctx, roleCacheKeyPrefix+normalized, encoded, s.tokens.TTL()).Err(); err != nil {
		s.logger.Warn("role cache write", slog.Any("error", err))
	}
	return account.Role, account.Status, nil
}

// InvalidateRole drops the cached role for an email. Called after an admin
// changes a role or status so the change is observed immediately.
func (s *Service) InvalidateRole(ctx context.Context, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return s.client.Del(ctx, roleCacheKeyPrefix+normalized).Err()
}

func (s *Service) issueCredential(account *Account) (*Credential, error) {
	token, claims, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}
	return &Credential{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		User: CredentialedUser{
			ID:        account.ID,
			Name:      account.Name,
			Email:     account.Email,
			AvatarURL: account.AvatarURL,
			Role:      account.Role,
		},
	}, nil
}

func decodeRoleCache(value string) (shared.Role, shared.AccountStatus, bool) {
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return shared.RoleUnresolved, "", false
	}
	role := shared.ParseRole(parts[0])
	if !role.Resolved() {
		return shared.RoleUnresolved, "", false
	}
	return role, shared.AccountStatus(parts[1]), true
}

func newResetToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
