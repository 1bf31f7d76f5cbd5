package middlewares

import (
	"strconv"

	"github.com/comexdata/customs_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware lifts the actor identity set by the upstream API gateway
// into the request context. Authentication itself happens at the gateway;
// this backend only needs who acted, for history and resolution records.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if v := c.Request.Header.Get("X-User-Id"); v != "" {
			if userId, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetUserIdInContext(ctx, userId)
			}
		}
		if v := c.Request.Header.Get("X-User-Name"); v != "" {
			ctx = utils.SetUserNameInContext(ctx, v)
		}
		if v := c.Request.Header.Get("X-Username"); v != "" {
			ctx = utils.SetUsernameInContext(ctx, v)
		}
		// Role "A" marks platform admins; see models.UserRoleAdmin.
		if v := c.Request.Header.Get("X-User-Role"); v != "" {
			ctx = utils.SetIsAdminInContext(ctx, v == "A")
		}
		ctx = utils.SetClientIpInContext(ctx, c.ClientIP())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
