package security

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultJWTSecret  = "CopilotHub"
	JWTExpirationTime = time.Hour * 24
	jwtIssuer         = "CopilotHub"
)

// UserClaims Token 中携带的用户身份
type UserClaims struct {
	UserID uint64   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

var jwtSecret atomic.Value

var parser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuer(jwtIssuer),
	jwt.WithExpirationRequired(),
)

func init() {
	jwtSecret.Store([]byte(defaultJWTSecret))
}

// SetSecret 使用配置中的签名密钥，空串时保持默认值
func SetSecret(secret string) {
	if secret == "" {
		return
	}
	jwtSecret.Store([]byte(secret))
}

func secret() []byte {
	return jwtSecret.Load().([]byte)
}

// GenerateToken 生成一个新的 JWT Token
func GenerateToken(userID uint64, roles []string) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(JWTExpirationTime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
	if err != nil {
		return "", fmt.Errorf("签名 Token 失败: %w", err)
	}

	return tokenString, nil
}

// ValidateToken 校验签名、签发方与过期时间并解析出 Claims
func ValidateToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token 解析失败: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token 无效或已过期")
	}
	return claims, nil
}

// ExtractSignature 从 Token 字符串中提取签名
func ExtractSignature(tokenString string) (string, error) {
	if strings.Count(tokenString, ".") != 2 {
		return "", errors.New("token 格式不正确")
	}
	return tokenString[strings.LastIndexByte(tokenString, '.')+1:], nil
}
