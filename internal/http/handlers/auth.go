package handlers

import (
	"errors"
	"net/http"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const recentActivity = 5

// Home is the public landing page. Logged-in users also see their latest
// account activity.
func (h *Handler) Home(c *gin.Context) {
	data := gin.H{}
	if uid, ok := getUserID(c); ok {
		logs, err := h.Audit.Recent(c.Request.Context(), uid, recentActivity)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("failed to load activity", "error", err, "user_id", uid)
		}
		data["Activity"] = logs
	}
	h.render(c, http.StatusOK, "home.html", data)
}

func (h *Handler) SignupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "signupuser.html", gin.H{
		"Title": "Sign up",
		"Form":  service.SignupForm{},
	})
}

func (h *Handler) Signup(c *gin.Context) {
	var form service.SignupForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	u, ferrs, err := h.Auth.Register(c.Request.Context(), form)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if len(ferrs) > 0 {
		h.render(c, http.StatusOK, "signupuser.html", gin.H{
			"Title": "Sign up",
			"Form":  service.SignupForm{Username: form.Username, Email: form.Email},
			"Error": ferrs.First(),
		})
		return
	}

	if !h.startSession(c, u) {
		return
	}
	h.Audit.LogWithRequest(c.Request.Context(), u.ID, domain.AuditActionSignup, domain.AuditCategoryAuth, c.ClientIP(), c.Request.UserAgent(), nil)
	c.Redirect(http.StatusFound, "/current/")
}

func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "loginuser.html", gin.H{
		"Title": "Login",
		"Form":  service.LoginForm{},
	})
}

func (h *Handler) Login(c *gin.Context) {
	var form service.LoginForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	fail := func(msg string) {
		h.render(c, http.StatusOK, "loginuser.html", gin.H{
			"Title": "Login",
			"Form":  service.LoginForm{Username: form.Username},
			"Error": msg,
		})
	}

	if ferrs := service.ValidateLogin(&form); len(ferrs) > 0 {
		fail(ferrs.First())
		return
	}

	ctx := c.Request.Context()
	u, err := h.Auth.Authenticate(ctx, form.Username, form.Password)
	switch {
	case errors.Is(err, domain.ErrUnknownUser), errors.Is(err, domain.ErrInvalidCredentials):
		h.Audit.LogWithRequest(ctx, 0, domain.AuditActionLoginFailed, domain.AuditCategoryAuth, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
			"username": form.Username,
		})
		fail(h.Auth.LoginMessage(err))
		return
	case err != nil:
		h.serverError(c, err)
		return
	}

	if !h.startSession(c, u) {
		return
	}
	h.Audit.LogWithRequest(ctx, u.ID, domain.AuditActionLogin, domain.AuditCategoryAuth, c.ClientIP(), c.Request.UserAgent(), nil)
	c.Redirect(http.StatusFound, "/current/")
}

// Logout is POST only; the route sits behind RequireLogin and CSRF.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if s, ok := middleware.CurrentSession(c); ok {
		if err := h.Auth.EndSession(ctx, s.ID); err != nil {
			h.serverError(c, err)
			return
		}
		h.Audit.LogWithRequest(ctx, s.UserID, domain.AuditActionLogout, domain.AuditCategoryAuth, c.ClientIP(), c.Request.UserAgent(), nil)
	}
	h.clearCookie(c)
	c.Redirect(http.StatusFound, "/")
}

// startSession replaces any current session with a new one for u and sets
// the cookie. On failure the error page is already rendered.
func (h *Handler) startSession(c *gin.Context, u *domain.User) bool {
	ctx := c.Request.Context()
	if old, ok := middleware.CurrentSession(c); ok {
		if err := h.Auth.EndSession(ctx, old.ID); err != nil {
			logger.WithContext(ctx).Warn("failed to drop previous session", "error", err)
		}
	}

	sess, err := h.Auth.StartSession(ctx, u)
	if err != nil {
		h.serverError(c, err)
		return false
	}
	tok, err := h.Codec.Encode(sess)
	if err != nil {
		h.serverError(c, err)
		return false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, tok, int(time.Until(sess.ExpiresAt).Seconds()), "/", "", h.cfg.CookieSecure, true)
	return true
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
}
