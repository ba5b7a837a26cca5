package server

import (
	"strings"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/GusSegura/ecommerce-full/internal/auth"
	"github.com/GusSegura/ecommerce-full/internal/config"
)

// AuthMiddleware 解析 Bearer token 并把已验证的身份放进请求上下文。
// 解析结果先查 Redis 缓存，未命中再做签名校验。
func AuthMiddleware(jwtCfg *config.JWTConfig, cache *auth.TokenCache) iris.Handler {
	return func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}

		var claims *auth.Claims
		if cache != nil {
			cached, hit, err := cache.Get(ctx.Request().Context(), token)
			if err != nil {
				zap.L().Warn("token cache lookup failed", zap.Error(err))
			} else if hit {
				claims = cached
			}
		}
		if claims == nil {
			parsed, err := auth.ParseToken(jwtCfg, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
				return
			}
			claims = parsed
			if cache != nil {
				if err := cache.Set(ctx.Request().Context(), token, claims); err != nil {
					zap.L().Warn("token cache store failed", zap.Error(err))
				}
			}
		}

		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("username", claims.Username)
		ctx.Values().Set("role", claims.Role)
		ctx.Next()
	}
}

// RequireAdmin 仅允许 admin 角色通过
func RequireAdmin() iris.Handler {
	return func(ctx iris.Context) {
		if ctx.Values().GetString("role") != "admin" {
			ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": "admin only"})
			return
		}
		ctx.Next()
	}
}
