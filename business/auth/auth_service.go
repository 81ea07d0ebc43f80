package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"vintnercrm/domain"
	"vintnercrm/pkg/logger"
	"vintnercrm/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

// TokenStore holds the active session per operator so tokens can be revoked.
type TokenStore interface {
	StoreSession(ctx context.Context, userID, refreshToken string, ttl time.Duration) error
	SessionRefreshToken(ctx context.Context, userID string) (string, error)
	DeleteSession(ctx context.Context, userID string) error
}

const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"

	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var validRoles = map[string]bool{
	RoleOperator: true,
	RoleAdmin:    true,
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authService struct {
	userRepo   UserRepository
	tokenStore TokenStore
	validate   *validator.Validate
	refreshKey string
}

func NewAuthService(
	userRepo UserRepository,
	tokenStore TokenStore,
	validate *validator.Validate,
	refreshKey string,
) *authService {
	return &authService{
		userRepo:   userRepo,
		tokenStore: tokenStore,
		validate:   validate,
		refreshKey: refreshKey,
	}
}

func (s *authService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.User{}, errors.New("invalid email format")
	}

	if err := s.validate.Var(user.Password, "required,min=8"); err != nil {
		logger.Error("Invalid user password", err)
		return domain.User{}, errors.New("password must be at least 8 characters")
	}

	if user.Role != "" && !validRoles[user.Role] {
		return domain.User{}, errors.New("invalid role")
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err == nil && existingUser.ID > 0 {
		logger.Error("Email already exists")
		return domain.User{}, errors.New("email already exists")
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	role := user.Role
	if role == "" {
		role = RoleOperator
	}

	newUser := domain.User{
		FullName: user.FullName,
		Email:    user.Email,
		Password: string(passwordHash),
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	newUser.Password = ""
	return newUser, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (TokenPair, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Invalid user credentials", err)
		return TokenPair{}, domain.User{}, errors.New("invalid credentials")
	}

	if ok := utils.CheckPassword(password, user.Password); !ok {
		logger.Error("User password incorrect")
		return TokenPair{}, domain.User{}, errors.New("invalid credentials")
	}

	userIDStr := strconv.FormatUint(uint64(user.ID), 10)

	pair, err := s.issueTokens(ctx, userIDStr, user.Role)
	if err != nil {
		return TokenPair{}, domain.User{}, err
	}

	user.Password = ""
	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token is invalidated; one session per operator.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.decodeRefreshToken(refreshToken)
	if err != nil {
		logger.Error("Invalid refresh token", err)
		return TokenPair{}, errors.New("invalid or expired refresh token")
	}

	stored, err := s.tokenStore.SessionRefreshToken(ctx, userID)
	if err != nil || stored != refreshToken {
		logger.Error("Refresh token revoked or superseded")
		return TokenPair{}, errors.New("invalid or expired refresh token")
	}

	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return TokenPair{}, errors.New("invalid or expired refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, uint(id))
	if err != nil {
		logger.Error("Failed to get user for refresh", err)
		return TokenPair{}, errors.New("invalid or expired refresh token")
	}

	return s.issueTokens(ctx, userID, user.Role)
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.tokenStore.DeleteSession(ctx, userID); err != nil {
		logger.Error("Failed to delete session", err)
		return err
	}
	return nil
}

// GetUserByID retrieves an operator by ID
func (s *authService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

func (s *authService) issueTokens(ctx context.Context, userID, role string) (TokenPair, error) {
	accessToken, err := utils.GenerateJWT(userID, role, accessTokenTTL)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return TokenPair{}, errors.New("failed to generate token")
	}

	refreshToken, err := s.encodeRefreshToken(userID)
	if err != nil {
		logger.Error("Failed to generate refresh token", err)
		return TokenPair{}, errors.New("failed to generate token")
	}

	if err := s.tokenStore.StoreSession(ctx, userID, refreshToken, refreshTokenTTL); err != nil {
		logger.Error("Failed to store session", err)
		return TokenPair{}, errors.New("failed to store session")
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// refresh token layout: "userID|expUnix|nonce", AES encrypted then base64.
func (s *authService) encodeRefreshToken(userID string) (string, error) {
	expAt := time.Now().Add(refreshTokenTTL).Unix()
	plain := fmt.Sprintf("%v|%v|%v", userID, expAt, uuid.NewString())

	encrypted, err := goshortcute.AESCBCEncrypt([]byte(plain), []byte(s.refreshKey))
	if err != nil {
		return "", fmt.Errorf("encrypt refresh token: %w", err)
	}

	return goshortcute.StringtoBase64Encode(encrypted), nil
}

func (s *authService) decodeRefreshToken(token string) (string, error) {
	decoded := goshortcute.StringtoBase64Decode(token)
	plain, err := goshortcute.AESCBCDecrypt([]byte(decoded), []byte(s.refreshKey))
	if err != nil {
		return "", fmt.Errorf("decrypt refresh token: %w", err)
	}

	parts := strings.Split(plain, "|")
	if len(parts) != 3 {
		return "", errors.New("malformed refresh token")
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", errors.New("malformed refresh token")
	}
	if time.Now().After(time.Unix(ts, 0)) {
		return "", errors.New("refresh token expired")
	}

	return parts[0], nil
}
