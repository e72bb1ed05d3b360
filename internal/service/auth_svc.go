package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"depot_gas_v1_202608/internal/model"
	"depot_gas_v1_202608/internal/repository"
)

// ==================== 认证事件 ====================

const (
	AuthEventSignedIn  = "signed_in"
	AuthEventSignedOut = "signed_out"
)

// AuthEvent 认证状态变化事件
type AuthEvent struct {
	Type   string
	UserID string
}

// AuthSession 当前登录会话
type AuthSession struct {
	AccessToken string
	UserID      string
	Email       string
	ExpiresAt   time.Time
}

// Valid 会话是否仍然有效
func (s *AuthSession) Valid() bool {
	return s != nil && time.Now().Before(s.ExpiresAt)
}

// AuthProvider 认证提供方抽象
// 会话引擎只依赖这三个能力，便于替换外部认证服务
type AuthProvider interface {
	GetSession() *AuthSession
	OnAuthStateChange(cb func(AuthEvent))
	SignOut() error
}

// ==================== JWT 配置 ====================

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
	Issuer         string
}

// DefaultJWTConfig 默认JWT配置
func DefaultJWTConfig(secret string) *JWTConfig {
	return &JWTConfig{
		SecretKey:      secret,
		AccessTokenTTL: 24 * time.Hour,
		Issuer:         "depot-gas",
	}
}

// SessionClaims JWT载荷
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ==================== AuthService ====================

// AuthService 本地认证服务，实现 AuthProvider
type AuthService struct {
	profileRepo repository.ProfileRepository
	cfg         *JWTConfig

	mu        sync.RWMutex
	current   *AuthSession
	callbacks []func(AuthEvent)
}

func NewAuthService(profileRepo repository.ProfileRepository, cfg *JWTConfig) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		cfg:         cfg,
	}
}

// SignIn 邮箱密码登录
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.generateToken(profile)
	if err != nil {
		return nil, fmt.Errorf("生成Token失败: %w", err)
	}

	// 最后登录时间只做尽力更新
	if err := s.profileRepo.UpdateLastLogin(ctx, profile.UserID); err != nil {
		log.Printf("[Auth] 更新最后登录时间失败: %v", err)
	}

	session := &AuthSession{
		AccessToken: token,
		UserID:      profile.UserID,
		Email:       profile.Email,
		ExpiresAt:   expiresAt,
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.emit(AuthEvent{Type: AuthEventSignedIn, UserID: profile.UserID})
	return session, nil
}

// GetSession 获取当前会话，已过期返回 nil
func (s *AuthService) GetSession() *AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.current.Valid() {
		return nil
	}
	return s.current
}

// SignOut 退出登录
func (s *AuthService) SignOut() error {
	s.mu.Lock()
	userID := ""
	if s.current != nil {
		userID = s.current.UserID
	}
	s.current = nil
	s.mu.Unlock()

	if userID != "" {
		s.emit(AuthEvent{Type: AuthEventSignedOut, UserID: userID})
	}
	return nil
}

// OnAuthStateChange 注册认证状态回调
func (s *AuthService) OnAuthStateChange(cb func(AuthEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// ParseToken 解析并验证Token
func (s *AuthService) ParseToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名方法: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword 生成密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("密码哈希失败: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) generateToken(profile *model.Profile) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	claims := &SessionClaims{
		UserID: profile.UserID,
		Email:  profile.Email,
		Role:   profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   profile.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) emit(event AuthEvent) {
	s.mu.RLock()
	callbacks := make([]func(AuthEvent), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}
