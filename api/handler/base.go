package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/salon/api/transport"
	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/pkg/httpcontext"
	"github.com/fastygo/salon/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondInvalid(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), message, nil))
}

// respondError maps a domain error to its HTTP status. Storage and internal
// failures are logged with detail and answered with a generic message.
func (h baseHandler) respondError(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)

	message := err.Error()
	var meta interface{}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		message = dErr.Message
		if dErr.Field != "" {
			meta = transport.ErrorMeta{Field: dErr.Field}
		}
	}

	switch code {
	case string(domain.ErrCodeUnavailable):
		logger.WithRequestID(stdCtx, h.logger).Error("request failed", zap.Error(err))
		message = "service temporarily unavailable, please retry"
	case string(domain.ErrCodeInternal):
		logger.WithRequestID(stdCtx, h.logger).Error("request failed", zap.Error(err))
		message = "internal error"
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, meta))
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeInvalidTransition):
		return http.StatusConflict, string(domain.ErrCodeInvalidTransition)
	case domain.IsDomainError(err, domain.ErrCodeUnavailable):
		return http.StatusServiceUnavailable, string(domain.ErrCodeUnavailable)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// caller reads the identity the auth middleware placed on the request.
func caller(ctx *fasthttp.RequestCtx) domain.Caller {
	return domain.Caller{
		UserID: string(ctx.Request.Header.Peek(httpcontext.HeaderUserID)),
		Role:   string(ctx.Request.Header.Peek(httpcontext.HeaderUserRole)),
	}
}

func pathID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
