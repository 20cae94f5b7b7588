package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	ctxUser    = "user"
	ctxUserID  = "user_id"
	ctxSession = "session"

	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// Resolver loads the session and user referenced by a cookie token.
type Resolver interface {
	Resolve(ctx context.Context, sessionID string, userID int64) (*domain.User, *session.Session, error)
}

// Session attaches the logged-in user to the context when the cookie
// points at a live session. Anything else leaves the request anonymous.
func Session(resolver Resolver, codec *session.Codec, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(cookieName)
		if err != nil || tok == "" {
			c.Next()
			return
		}

		sid, uid, err := codec.Decode(tok)
		if err != nil {
			c.Next()
			return
		}

		u, sess, err := resolver.Resolve(c.Request.Context(), sid, uid)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				logger.WithContext(c.Request.Context()).Warn("session lookup failed", "error", err)
			}
			c.Next()
			return
		}

		c.Set(ctxUser, u)
		c.Set(ctxUserID, u.ID)
		c.Set(ctxSession, sess)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok && s != nil
}

// RequireLogin sends anonymous visitors to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, "/login/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CSRF rejects state-changing requests of a logged-in user that do not
// carry the session's token in the form or the X-CSRF-Token header.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		sess, ok := CurrentSession(c)
		if !ok {
			c.Next()
			return
		}

		token := c.GetHeader(CSRFHeader)
		if token == "" {
			token = c.PostForm(CSRFField)
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(sess.CSRFToken)) != 1 {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Status":  http.StatusForbidden,
				"Message": "CSRF verification failed. Request aborted.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
