package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"assetadmin/internal/config"
	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/internal/utils"
	"assetadmin/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotExists      = errors.New("user not exists")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp expired")
	ErrNotificationFailed = errors.New("reset code could not be delivered")
)

// DuplicateFieldError is returned by Register when a unique field is taken.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return e.Field + " already exists"
}

// AccountLockedError carries the time left before the wallet may log in.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	minutes := int(math.Ceil(e.Remaining.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("you have exceed the number of limit.you can login after %d minutes.", minutes)
}

type AuthService interface {
	Register(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ValidateOTP(ctx context.Context, otp string) error
	ResetPassword(ctx context.Context, code, newPassword string) error

	// Authenticate resolves a bearer token to its wallet.
	Authenticate(ctx context.Context, token string) (*models.Wallet, error)
}

// LoginResult serialises as the wallet with token and roles added.
type LoginResult struct {
	Wallet *models.Wallet
	Token  string
	Roles  []*models.Role
}

func (r *LoginResult) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(r.Wallet)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	out["token"] = r.Token
	out["roles"] = r.Roles
	return json.Marshal(out)
}

type AuthRepositories struct {
	Wallets interfaces.Repository[models.Wallet]
	Tokens  interfaces.Repository[models.UserTokens]
}

type authService struct {
	repos       AuthRepositories
	permissions PermissionService
	notifier    NotificationService
	cache       CacheService
	security    *config.SecurityConfig
	logger      *logger.Logger
	now         func() time.Time
}

func NewAuthService(
	repos AuthRepositories,
	permissions PermissionService,
	notifier NotificationService,
	cache CacheService,
	security *config.SecurityConfig,
	log *logger.Logger,
) AuthService {
	return &authService{
		repos:       repos,
		permissions: permissions,
		notifier:    notifier,
		cache:       cache,
		security:    security,
		logger:      log,
		now:         time.Now,
	}
}

func (s *authService) Register(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	if wallet.WalletAddress != "" {
		if err := s.ensureUnique(ctx, "walletAddress", wallet.WalletAddress); err != nil {
			return nil, err
		}
	}
	if wallet.Email != "" {
		if err := s.ensureUnique(ctx, "email", wallet.Email); err != nil {
			return nil, err
		}
	}

	if err := wallet.BeforeCreate(); err != nil {
		return nil, err
	}
	if err := s.repos.Wallets.Create(ctx, wallet); err != nil {
		return nil, err
	}

	s.logger.WithUserID(wallet.ID).Info("Wallet registered")
	return wallet, nil
}

func (s *authService) ensureUnique(ctx context.Context, field, value string) error {
	n, err := s.repos.Wallets.Count(ctx, bson.M{field: value})
	if err != nil {
		return err
	}
	if n > 0 {
		return &DuplicateFieldError{Field: field}
	}
	return nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	wallet, err := s.repos.Wallets.FindOne(ctx, bson.M{
		"$or": bson.A{
			bson.M{"walletAddress": username},
			bson.M{"email": username},
		},
		"isDeleted": bson.M{"$ne": true},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrUserNotExists
		}
		return nil, err
	}
	if !wallet.Active() {
		return nil, ErrUserNotExists
	}

	now := s.now()
	if err := s.checkLockout(ctx, wallet, now); err != nil {
		return nil, err
	}

	if !wallet.PasswordMatches(password) {
		if _, err := s.repos.Wallets.UpdateOne(ctx, bson.M{"_id": wallet.ID}, bson.M{
			"loginRetryLimit": wallet.LoginRetryLimit + 1,
		}); err != nil {
			return nil, err
		}
		s.logger.LogSecurityEvent("login_failed", "medium", map[string]interface{}{
			"user_id": wallet.ID.Hex(),
			"retries": wallet.LoginRetryLimit + 1,
		})
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateToken(wallet.ID, username, s.security.JWTAdminSecret, s.security.JWTExpiry, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.repos.Tokens.Create(ctx, &models.UserTokens{
		UserID:           models.ObjectID(wallet.ID),
		Token:            token,
		TokenExpiredTime: &expiresAt,
	}); err != nil {
		return nil, err
	}

	if wallet.LoginRetryLimit != 0 || wallet.LoginReactiveTime != nil {
		updated, err := s.repos.Wallets.UpdateOne(ctx, bson.M{"_id": wallet.ID}, bson.M{
			"loginRetryLimit":   0,
			"loginReactiveTime": nil,
		})
		if err != nil {
			return nil, err
		}
		wallet = updated
	}

	roles, err := s.permissions.RolesOf(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithUserID(wallet.ID).Info("Wallet logged in")
	return &LoginResult{Wallet: wallet, Token: token, Roles: roles}, nil
}

// checkLockout enforces the retry limit. A lock that has run out resets the
// counter.
func (s *authService) checkLockout(ctx context.Context, wallet *models.Wallet, now time.Time) error {
	if wallet.LoginRetryLimit < s.security.MaxLoginAttempts {
		return nil
	}

	if wallet.LoginReactiveTime == nil {
		until := now.Add(s.security.LoginLockoutTime)
		if _, err := s.repos.Wallets.UpdateOne(ctx, bson.M{"_id": wallet.ID}, bson.M{
			"loginReactiveTime": until,
			"loginRetryLimit":   wallet.LoginRetryLimit + 1,
		}); err != nil {
			return err
		}
		s.logger.LogSecurityEvent("account_locked", "high", map[string]interface{}{
			"user_id": wallet.ID.Hex(),
		})
		return &AccountLockedError{Remaining: s.security.LoginLockoutTime}
	}

	if now.Before(*wallet.LoginReactiveTime) {
		return &AccountLockedError{Remaining: wallet.LoginReactiveTime.Sub(now)}
	}

	updated, err := s.repos.Wallets.UpdateOne(ctx, bson.M{"_id": wallet.ID}, bson.M{
		"loginRetryLimit":   0,
		"loginReactiveTime": nil,
	})
	if err != nil {
		return err
	}
	*wallet = *updated
	return nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if _, err := s.repos.Tokens.UpdateMany(ctx, bson.M{"token": token}, bson.M{"isTokenExpired": true}); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, utils.CacheKeyToken+token); err != nil {
		s.logger.WithError(err).Warn("Failed to evict token cache")
	}
	return nil
}

// EvictSessions returns a WriteHook that drops every cached session.
func EvictSessions(cache CacheService, log *logger.Logger) WriteHook {
	return func(ctx context.Context) {
		if _, err := cache.DeletePattern(ctx, utils.CacheKeyToken+"*"); err != nil {
			log.WithError(err).Warn("Failed to evict token cache")
		}
	}
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	wallet, err := s.repos.Wallets.FindOne(ctx, bson.M{"email": email, "isDeleted": bson.M{"$ne": true}})
	if err != nil {
		return err
	}

	code, err := utils.GenerateRandomNumericString(s.security.ResetCodeLength)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.security.ResetCodeExpiry)

	if _, err := s.repos.Wallets.UpdateOne(ctx, bson.M{"_id": wallet.ID}, bson.M{
		"resetPasswordLink": models.ResetPasswordLink{Code: code, ExpireTime: &expiresAt},
	}); err != nil {
		return err
	}

	if err := s.notifier.SendResetCode(ctx, wallet, code, expiresAt); err != nil {
		s.logger.WithError(err).WithUserID(wallet.ID).Error("Failed to deliver reset code")
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

func (s *authService) walletByCode(ctx context.Context, code string) (*models.Wallet, error) {
	wallet, err := s.repos.Wallets.FindOne(ctx, bson.M{"resetPasswordLink.code": code})
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}

	link := wallet.ResetPasswordLink
	if link == nil || link.ExpireTime == nil || !s.now().Before(*link.ExpireTime) {
		return nil, ErrOTPExpired
	}
	return wallet, nil
}

func (s *authService) ValidateOTP(ctx context.Context, otp string) error {
	_, err := s.walletByCode(ctx, otp)
	return err
}

func (s *authService) ResetPassword(ctx context.Context, code, newPassword string) error {
	wallet, err := s.walletByCode(ctx, code)
	if err != nil {
		return err
	}

	hashed, err := models.HashPassword(newPassword)
	if err != nil {
		return err
	}

	updated, err := s.repos.Wallets.UpdateOne(ctx, bson.M{"_id": wallet.ID}, bson.M{
		"password":          hashed,
		"resetPasswordLink": nil,
		"loginRetryLimit":   0,
		"loginReactiveTime": nil,
	})
	if err != nil {
		return err
	}

	if err := s.notifier.SendPasswordChanged(ctx, updated, s.now()); err != nil {
		s.logger.WithError(err).WithUserID(wallet.ID).Warn("Failed to send password change notice")
	}
	return nil
}

type cachedSession struct {
	Wallet    *models.Wallet `json:"wallet"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.Wallet, error) {
	claims, err := utils.ValidateToken(token, s.security.JWTAdminSecret)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthorized
	}

	now := s.now()
	var session cachedSession
	if err := s.cache.Get(ctx, utils.CacheKeyToken+token, &session); err == nil {
		if session.Wallet != nil && session.Wallet.ID == userID && now.Before(session.ExpiresAt) {
			return session.Wallet, nil
		}
	} else if !isCacheMiss(err) {
		s.logger.WithError(err).Warn("Token cache read failed")
	}

	wallet, err := s.repos.Wallets.FindByID(ctx, userID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if wallet.IsDeleted || !wallet.Active() {
		return nil, ErrUnauthorized
	}

	row, err := s.repos.Tokens.FindOne(ctx, bson.M{"token": token, "userId": userID})
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !row.Usable(now) {
		return nil, ErrUnauthorized
	}

	ttl := s.security.TokenCacheTTL
	expiresAt := now.Add(ttl)
	if row.TokenExpiredTime != nil && row.TokenExpiredTime.Before(expiresAt) {
		expiresAt = *row.TokenExpiredTime
	}
	if err := s.cache.Set(ctx, utils.CacheKeyToken+token, cachedSession{Wallet: wallet, ExpiresAt: expiresAt}, expiresAt.Sub(now)); err != nil {
		s.logger.WithError(err).Warn("Token cache write failed")
	}
	return wallet, nil
}

// ActorID extracts the caller id, tolerating a nil wallet in tests.
func ActorID(wallet *models.Wallet) primitive.ObjectID {
	if wallet == nil {
		return primitive.NilObjectID
	}
	return wallet.ID
}
