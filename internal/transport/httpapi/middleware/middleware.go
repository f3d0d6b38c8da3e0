package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"papertrade/data/session"
	"papertrade/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionCookie = "session_token"

type Session interface {
	GetSession(ctx context.Context, token string) (userID int64, err error)
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		rqID := uuid.NewString()
		c.Set("rqID", rqID)

		slog.Info(
			"start request",
			slog.String("rqID", rqID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)

		defer func() {
			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.Int("status", c.Writer.Status()),
				slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
			)
		}()

		c.Next()
	}
}

// Auth guards every route behind a session token. Requests without a valid
// session never reach the ledger service.
func Auth(sessionStore Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.CreateCtxFromGin(c)
		rqID := utils.GetRequestIDFromCtx(ctx)

		token, err := c.Cookie(SessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		userID, err := sessionStore.GetSession(ctx, token)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
