package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"capstone/internal/pkg/config"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

// UserClaims 身份目录签发的Token声明
// Role 仅作参考, 授权时以 users 表中的角色为准
type UserClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"` // access
	jwt.RegisteredClaims
}

// Manager Token 解析器
type Manager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// NewManager 创建 Token 解析器
func NewManager(cfg *config.JWTConfig) *Manager {
	ttl := time.Duration(cfg.AccessTokenExpire) * time.Second
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Manager{
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		accessTTL: ttl,
	}
}

// GenerateAccessToken 生成访问Token（测试与运维工具使用, 线上由身份目录签发）
func (m *Manager) GenerateAccessToken(userID int64, role string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID: userID,
		Role:   role,
		Type:   constants.JWTTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken 解析并验证Token
func (m *Manager) ValidateToken(tokenString string) (*UserClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgErrors.ErrTokenExpired
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeUnauthorized, "解析Token失败", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, pkgErrors.ErrInvalidToken
	}
	if claims.Type != constants.JWTTypeAccess {
		return nil, pkgErrors.New(pkgErrors.CodeUnauthorized, "无效的Token类型")
	}

	return claims, nil
}
