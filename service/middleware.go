package service

import (
	"pyape/logutils"
	"pyape/orm"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// SessionMiddleware gives every request its own database session and ends it
// once the handlers return. The session scope is always generated here; a
// client X-Request-ID is only echoed and logged.
func SessionMiddleware(db *orm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := uuid.New().String()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = scope
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(RequestIDKey, requestID)

		ctx := orm.WithScope(c.Request.Context(), scope)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if err := db.Remove(ctx); err != nil {
			logutils.Log.WithFields(logutils.Fields{
				RequestIDKey: requestID,
				"scope":      scope,
			}).Warn("remove session: ", err)
		}
	}
}
