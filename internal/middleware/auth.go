package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
	"github.com/wfunc/switcher-game/internal/utils"
)

const (
	ctxPlayerID   = "playerID"
	ctxPlayerName = "playerName"
	ctxIdentifier = "identifier"
)

// TokenValidator 校验玩家令牌
type TokenValidator interface {
	ValidateToken(token string) (*utils.PlayerClaims, error)
}

// AuthMiddleware 玩家身份认证中间件
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequirePlayer 需要玩家令牌的中间件
func (m *AuthMiddleware) RequirePlayer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			abort(c, apperrors.New(apperrors.ErrAuthentication, "缺少认证令牌"))
			return
		}

		claims, err := m.validator.ValidateToken(token)
		if err != nil {
			code := apperrors.ErrTokenInvalid
			if err == utils.ErrExpiredToken {
				code = apperrors.ErrTokenExpired
			}
			abort(c, apperrors.New(code, err.Error()))
			return
		}

		c.Set(ctxPlayerID, claims.PlayerID)
		c.Set(ctxPlayerName, claims.Name)
		c.Set(ctxIdentifier, claims.Identifier)
		c.Next()
	}
}

func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), apperrors.NewErrorResponse(err, c.GetHeader("X-Request-ID")))
}

// ExtractToken 依次从 Authorization、X-Access-Token 与 token 查询参数读取令牌
func ExtractToken(c *gin.Context) string {
	if bearer := c.GetHeader("Authorization"); bearer != "" {
		parts := strings.SplitN(bearer, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if token := c.GetHeader("X-Access-Token"); token != "" {
		return token
	}
	// 浏览器 WebSocket 无法自定义请求头
	return c.Query("token")
}

// GetPlayerID 从上下文获取玩家ID
func GetPlayerID(c *gin.Context) (uint, bool) {
	id, ok := c.Get(ctxPlayerID)
	if !ok {
		return 0, false
	}
	playerID, ok := id.(uint)
	return playerID, ok
}

// GetPlayerName 从上下文获取玩家名
func GetPlayerName(c *gin.Context) string {
	return c.GetString(ctxPlayerName)
}
