package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/ruslanbektulqinov01/todo-api/api/transport"
	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/pkg/httpcontext"
)

// SessionCookie must match the cookie set by the login handler.
const SessionCookie = "session_id"

const userIDKey = "auth_user_id"

// SessionResolver maps a session identifier to its authenticated user.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*domain.User, error)
}

// SessionAuth authenticates the request from its session cookie and
// stamps the resolved user id onto the request. Missing, unknown and
// expired sessions all produce the same 401.
func SessionAuth(resolver SessionResolver, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			sessionID := string(ctx.Request.Header.Cookie(SessionCookie))
			if sessionID == "" {
				reject(ctx)
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			defer cancel()

			user, err := resolver.Resolve(stdCtx, sessionID)
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("session resolution failed", zap.Error(err))
				}
				reject(ctx)
				return
			}

			ctx.SetUserValue(userIDKey, user.ID)
			next(ctx)
		}
	}
}

// UserID returns the authenticated user id stamped by SessionAuth.
func UserID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := ctx.UserValue(userIDKey).(int64)
	return id, ok
}

func reject(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(http.StatusUnauthorized)
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), domain.ErrUnauthorized.Message))
	ctx.SetBody(body)
}
