package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/ruslanbektulqinov01/todo-api/api/transport"
	"github.com/ruslanbektulqinov01/todo-api/domain"
	"github.com/ruslanbektulqinov01/todo-api/internal/middleware"
	"github.com/ruslanbektulqinov01/todo-api/pkg/httpcontext"
	authUC "github.com/ruslanbektulqinov01/todo-api/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a new user
// @Tags auth
// @Router /register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	username := string(ctx.PostArgs().Peek("username"))
	password := string(ctx.PostArgs().Peek("password"))
	if username == "" || password == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "username and password are required"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.Register(stdCtx, username, password); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondMessage(ctx, http.StatusOK, "User registered successfully")
}

// @Summary Log in and establish a session
// @Tags auth
// @Router /login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	username := string(ctx.PostArgs().Peek("username"))
	password := string(ctx.PostArgs().Peek("password"))
	if username == "" || password == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "username and password are required"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.Login(stdCtx, username, password)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	h.setSessionCookie(ctx, session.ID)
	h.respondMessage(ctx, http.StatusOK, "Login successful")
}

// @Summary Log out and clear the session
// @Tags auth
// @Router /logout [get]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	sessionID := string(ctx.Request.Header.Cookie(middleware.SessionCookie))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, sessionID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	ctx.Response.Header.DelClientCookie(middleware.SessionCookie)
	h.respondMessage(ctx, http.StatusOK, "Logout successful")
}

func (h *AuthHandler) setSessionCookie(ctx *fasthttp.RequestCtx, sessionID string) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(middleware.SessionCookie)
	cookie.SetValue(sessionID)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetMaxAge(int(h.uc.SessionTTL().Seconds()))
	ctx.Response.Header.SetCookie(cookie)
}
