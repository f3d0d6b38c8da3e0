package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

func CtxWithRqID(ctx context.Context, rqID string) context.Context {
	return context.WithValue(ctx, rqIDKey{}, rqID)
}

// CreateCtxFromGin builds a request-scoped context carrying the request ID
// set by the logging middleware. Falls back to a fresh uuid when absent.
func CreateCtxFromGin(c *gin.Context) context.Context {
	rqID, ok := c.Get("rqID")
	if !ok {
		return CtxWithRqID(c.Request.Context(), uuid.NewString())
	}
	return CtxWithRqID(c.Request.Context(), rqID.(string))
}
