package ui

import (
	"net/http"
	"time"

	"dataportal/app"
	"dataportal/domain/core"
	"dataportal/internal"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "dataportal.session"

// sessionMiddleware makes sure every request carries a session id cookie.
// A missing or malformed cookie, or one naming a session the store does not
// hold, starts a new session.
func sessionMiddleware(service *app.ExplorerService, cookieName string, secure bool, logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		raw, _ := c.Cookie(cookieName)
		id, err := core.ParseSessionID(raw)
		known := false
		if err == nil {
			known, err = service.SessionExists(ctx, id)
			if err != nil {
				logger.Error("[Session] failed to look up session %s: %v", id, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
		}
		if !known {
			id, err = service.NewSession(ctx)
			if err != nil {
				logger.Error("[Session] failed to create session: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, id.String(), 0, "/", "", secure, true)
		}

		c.Set(sessionContextKey, id)
		c.Next()
	}
}

// sessionID returns the session id set by sessionMiddleware
func sessionID(c *gin.Context) core.SessionID {
	if v, ok := c.Get(sessionContextKey); ok {
		if id, ok := v.(core.SessionID); ok {
			return id
		}
	}
	return ""
}

// requestLogger logs one line per request at debug level
func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("[HTTP] %s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), internal.Since(start))
	}
}
