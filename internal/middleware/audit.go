package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	"github.com/AyaSox/Recruitment-system-sub000/internal/service"
)

// Audit records an audit entry after a successful request. The actor is
// resolved from the request's JWT claims; anonymous requests record the
// system actor.
func Audit(audit *service.AuditService, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= 400 || audit == nil {
			return
		}

		actor := models.SystemActor()
		if claimsValue, ok := c.Get(ContextUserKey); ok {
			if claims, ok := claimsValue.(*models.JWTClaims); ok {
				actor = claims.Actor()
			}
		}

		_ = audit.Record(c.Request.Context(), service.AuditRecord{
			Actor:      actor,
			Action:     action,
			Resource:   resource,
			ResourceID: c.Param("id"),
			IP:         service.ClientIP(c.GetHeader("X-Forwarded-For"), c.GetHeader("X-Real-IP"), c.Request.RemoteAddr),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
