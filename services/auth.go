package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AliRajag51/bookstore-backend/models"
	"github.com/AliRajag51/bookstore-backend/utils"
)

const (
	minPasswordLength = 8
	resetTokenBytes   = 32
	resetTokenTTL     = time.Hour

	MsgResetRequested = "If the account exists, a reset link will be sent"

	msgInvalidCredentials = "Invalid credentials"
	msgNotAuthenticated   = "Not authenticated"
	msgRegisterConflict   = "Unable to register with these details"
	msgRegisterRequired   = "First name, last name, email, and password required"
	msgTermsRequired      = "Terms must be accepted"
	msgPasswordTooShort   = "Password must be at least 8 characters"
	msgInvalidResetToken  = "Invalid or expired reset token"
)

// SessionMinter issues session credentials.
type SessionMinter interface {
	Issue(userID uint, role string) (string, error)
}

type AuthService struct {
	db          *gorm.DB
	sessions    SessionMinter
	notifier    Notifier
	frontendURL string
	log         *logrus.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(db *gorm.DB, sessions SessionMinter, notifier Notifier, frontendURL string, log *logrus.Logger) *AuthService {
	return &AuthService{
		db:          db,
		sessions:    sessions,
		notifier:    notifier,
		frontendURL: frontendURL,
		log:         log,
		now:         time.Now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and signs them in.
func (s *AuthService) Register(ctx context.Context, data models.RegisterData) (models.User, string, error) {
	firstName := strings.TrimSpace(data.FirstName)
	lastName := strings.TrimSpace(data.LastName)
	email := NormalizeEmail(data.Email)

	switch {
	case firstName == "" || lastName == "" || email == "" || data.Password == "":
		return models.User{}, "", Validation(msgRegisterRequired)
	case !data.AcceptedTerms:
		return models.User{}, "", Validation(msgTermsRequired)
	case len(data.Password) < minPasswordLength:
		return models.User{}, "", Validation(msgPasswordTooShort)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.User{}, "", Internal("Registration failed", err)
	}
	if count > 0 {
		return models.User{}, "", Conflict(msgRegisterConflict)
	}

	hashed, err := utils.HashPassword(data.Password)
	if err != nil {
		return models.User{}, "", Internal("Registration failed", err)
	}

	user := models.User{
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		Password:      hashed,
		AcceptedTerms: true,
		Role:          models.RoleUser,
		IsActive:      true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, "", Conflict(msgRegisterConflict)
		}
		return models.User{}, "", Internal("Registration failed", err)
	}

	token, err := s.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return models.User{}, "", Internal("Registration failed", err)
	}
	return user, token, nil
}

// Login checks the credentials. Unknown emails, wrong passwords and disabled
// accounts produce the same error.
func (s *AuthService) Login(ctx context.Context, data models.LoginData) (models.User, string, error) {
	email := NormalizeEmail(data.Email)
	if email == "" || data.Password == "" {
		return models.User{}, "", Validation("Email and password required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Spend the same bcrypt work as a real comparison.
		_ = utils.ComparePasswords(s.dummyPasswordHash(), data.Password)
		return models.User{}, "", Unauthenticated(msgInvalidCredentials)
	}
	if err != nil {
		return models.User{}, "", Internal("Login failed", err)
	}

	if err := utils.ComparePasswords(user.Password, data.Password); err != nil || !user.IsActive {
		return models.User{}, "", Unauthenticated(msgInvalidCredentials)
	}

	token, err := s.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return models.User{}, "", Internal("Login failed", err)
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	} else {
		user.LastLogin = &now
	}
	return user, token, nil
}

// CurrentUser resolves the session identity to a live, active user.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, Unauthenticated(msgNotAuthenticated)
	}
	if err != nil {
		return models.User{}, Internal("Check auth failed", err)
	}
	if !user.IsActive {
		return models.User{}, Unauthenticated(msgNotAuthenticated)
	}
	return user, nil
}

// RequestReset emails a one-hour reset link when the address belongs to an
// active account. The caller always answers with MsgResetRequested.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return Validation("Email required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return Internal("Forgot password failed", err)
	}

	token, err := utils.GenerateCode(resetTokenBytes)
	if err != nil {
		return Internal("Forgot password failed", err)
	}
	hashed := utils.HashToken(token)
	expires := s.now().UTC().Add(resetTokenTTL)

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password_reset_token":   hashed,
		"password_reset_expires": expires,
	}).Error; err != nil {
		return Internal("Forgot password failed", err)
	}

	msg, err := passwordResetEmail(user, s.frontendURL, token)
	if err != nil {
		s.log.WithError(err).Error("Failed to render password reset email")
		return nil
	}
	if !s.notifier.Enqueue(msg) {
		s.log.WithField("user_id", user.ID).Warn("Password reset email was not queued")
	}
	return nil
}

// PerformReset replaces the password of the user holding an unexpired token
// and clears the token in the same statement, so a token works once.
func (s *AuthService) PerformReset(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" || password == "" {
		return Validation("Token and password required")
	}
	if len(password) < minPasswordLength {
		return Validation(msgPasswordTooShort)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return Internal("Reset password failed", err)
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("password_reset_token = ? AND password_reset_expires > ?", utils.HashToken(token), s.now().UTC()).
		Updates(map[string]any{
			"password":               hashed,
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	if result.Error != nil {
		return Internal("Reset password failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return Validation(msgInvalidResetToken)
	}
	return nil
}

// PurgeExpiredResetTokens clears reset tokens whose expiry has passed.
func (s *AuthService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("password_reset_expires IS NOT NULL AND password_reset_expires <= ?", s.now().UTC()).
		Updates(map[string]any{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	if result.Error != nil {
		return 0, Internal("Failed to purge reset tokens", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("not-a-real-password")
	})
	return s.dummyHash
}
