package middleware

import (
	"context"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/salon/domain"
	"github.com/fastygo/salon/pkg/httpcontext"
)

type fakeAuth struct {
	tokens map[string]domain.Caller
	err    error
}

func (a *fakeAuth) Authenticate(_ context.Context, raw string) (domain.Caller, string, error) {
	if a.err != nil {
		return domain.Caller{}, "", a.err
	}
	caller, ok := a.tokens[raw]
	if !ok {
		return domain.Caller{}, "", domain.ErrUnauthorized
	}
	return caller, "sess-" + raw, nil
}

func newAuth() *fakeAuth {
	return &fakeAuth{tokens: map[string]domain.Caller{
		"good": {UserID: "u-1", Role: domain.RoleStaff},
	}}
}

func run(mw func(fasthttp.RequestHandler) fasthttp.RequestHandler, prepare func(*fasthttp.RequestCtx)) (*fasthttp.RequestCtx, bool, string) {
	var (
		called bool
		userID string
	)
	handler := mw(func(ctx *fasthttp.RequestCtx) {
		called = true
		userID = string(ctx.Request.Header.Peek(httpcontext.HeaderUserID))
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/v1/appointments")
	prepare(ctx)
	handler(ctx)
	return ctx, called, userID
}

func TestJWTAuth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		prepare func(*fasthttp.RequestCtx)
		status  int
		called  bool
		userID  string
	}{
		{
			name:    "bearer header",
			prepare: func(ctx *fasthttp.RequestCtx) { ctx.Request.Header.Set("Authorization", "Bearer good") },
			status:  fasthttp.StatusOK,
			called:  true,
			userID:  "u-1",
		},
		{
			name:    "query token",
			prepare: func(ctx *fasthttp.RequestCtx) { ctx.Request.SetRequestURI("/api/v1/events?access_token=good") },
			status:  fasthttp.StatusOK,
			called:  true,
			userID:  "u-1",
		},
		{
			name:    "missing token",
			prepare: func(*fasthttp.RequestCtx) {},
			status:  fasthttp.StatusUnauthorized,
		},
		{
			name:    "unknown token",
			prepare: func(ctx *fasthttp.RequestCtx) { ctx.Request.Header.Set("Authorization", "Bearer bad") },
			status:  fasthttp.StatusUnauthorized,
		},
		{
			name: "spoofed identity header",
			prepare: func(ctx *fasthttp.RequestCtx) {
				ctx.Request.Header.Set(httpcontext.HeaderUserID, "intruder")
			},
			status: fasthttp.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, called, userID := run(JWTAuth(newAuth(), 0, nil), tc.prepare)
			if ctx.Response.StatusCode() != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, ctx.Response.StatusCode())
			}
			if called != tc.called {
				t.Fatalf("expected handler called=%v, got %v", tc.called, called)
			}
			if userID != tc.userID {
				t.Fatalf("expected user id %q, got %q", tc.userID, userID)
			}
		})
	}
}

func TestJWTAuth_StoreUnavailable(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{err: domain.WrapError(domain.ErrCodeUnavailable, "storage unavailable", context.DeadlineExceeded)}
	ctx, called, _ := run(JWTAuth(auth, 0, nil), func(ctx *fasthttp.RequestCtx) {
		ctx.Request.Header.Set("Authorization", "Bearer good")
	})
	if called {
		t.Fatalf("expected handler not to run")
	}
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", ctx.Response.StatusCode())
	}
}

func TestAccessLog_PassesThrough(t *testing.T) {
	t.Parallel()

	handler := AccessLog(nil)(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusTeapot)
	})
	ctx := &fasthttp.RequestCtx{}
	handler(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusTeapot {
		t.Fatalf("expected 418, got %d", ctx.Response.StatusCode())
	}
	if len(ctx.Request.Header.Peek(httpcontext.HeaderRequestID)) == 0 {
		t.Fatalf("expected request id to be pinned on the request")
	}
}
