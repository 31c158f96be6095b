package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/salon/api/transport"
	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/pkg/httpcontext"
)

// Authenticator resolves a bearer token to the caller and its session id.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (domain.Caller, string, error)
}

// JWTAuth rejects requests without a valid bearer token bound to a live session
// and forwards the caller identity to handlers through request headers.
func JWTAuth(auth Authenticator, timeout time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			// Identity headers are only ever set here.
			ctx.Request.Header.Del(httpcontext.HeaderUserID)
			ctx.Request.Header.Del(httpcontext.HeaderUserRole)
			ctx.Request.Header.Del(httpcontext.HeaderSessionID)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "missing bearer token")
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), timeout)
			caller, sessionID, err := auth.Authenticate(stdCtx, tokenString)
			cancel()
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeUnavailable) {
					logger.Error("session lookup failed", zap.Error(err))
					reject(ctx, fasthttp.StatusServiceUnavailable, domain.ErrCodeUnavailable, "service temporarily unavailable")
					return
				}
				logger.Warn("invalid bearer token",
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.Error(err),
				)
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
				return
			}

			ctx.Request.Header.Set(httpcontext.HeaderUserID, caller.UserID)
			ctx.Request.Header.Set(httpcontext.HeaderUserRole, caller.Role)
			ctx.Request.Header.Set(httpcontext.HeaderSessionID, sessionID)

			next(ctx)
		}
	}
}

// extractToken reads the Authorization header, falling back to the access_token
// query parameter for EventSource clients that cannot set headers.
func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}
	return string(ctx.QueryArgs().Peek("access_token"))
}

func reject(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(transport.NewError(string(code), message, nil).String())
}
