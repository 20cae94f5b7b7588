package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/session"

	"github.com/gin-gonic/gin"
)

type fakeResolver struct {
	sessions map[string]*session.Session
}

func (f *fakeResolver) Resolve(_ context.Context, sid string, uid int64) (*domain.User, *session.Session, error) {
	s, ok := f.sessions[sid]
	if !ok || s.UserID != uid {
		return nil, nil, session.ErrNoSession
	}
	return &domain.User{ID: uid, Username: "alice"}, s, nil
}

func setup(t *testing.T) (*gin.Engine, *session.Session, string) {
	t.Helper()
	sess, err := session.New(7, time.Hour)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	codec := session.NewCodec("test-secret")
	tok, err := codec.Encode(sess)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	res := &fakeResolver{sessions: map[string]*session.Session{sess.ID: sess}}
	r := newEngine()
	r.Use(Session(res, codec, "sessionid"), CSRF())
	r.GET("/whoami", func(c *gin.Context) {
		if u, ok := CurrentUser(c); ok {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/private", RequireLogin(), func(c *gin.Context) { c.String(http.StatusOK, "secret") })
	r.POST("/action", func(c *gin.Context) { c.String(http.StatusOK, "done") })
	return r, sess, tok
}

func do(r http.Handler, req *http.Request, cookie string) *httptest.ResponseRecorder {
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionResolvesUser(t *testing.T) {
	r, _, tok := setup(t)

	cases := []struct {
		name   string
		cookie string
		want   string
	}{
		{"no cookie", "", "anonymous"},
		{"valid cookie", tok, "alice"},
		{"garbage cookie", "not-a-token", "anonymous"},
		{"tampered cookie", tok + "x", "anonymous"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, httptest.NewRequest(http.MethodGet, "/whoami", nil), tc.cookie)
			if w.Body.String() != tc.want {
				t.Fatalf("expected %q got %q", tc.want, w.Body.String())
			}
		})
	}
}

func TestSessionWrongSecretIsAnonymous(t *testing.T) {
	r, sess, _ := setup(t)
	forged, err := session.NewCodec("other-secret").Encode(sess)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	w := do(r, httptest.NewRequest(http.MethodGet, "/whoami", nil), forged)
	if w.Body.String() != "anonymous" {
		t.Fatalf("forged token accepted: %q", w.Body.String())
	}
}

func TestRequireLoginRedirects(t *testing.T) {
	r, _, tok := setup(t)

	w := do(r, httptest.NewRequest(http.MethodGet, "/private", nil), "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login/" {
		t.Fatalf("expected redirect to /login/, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = do(r, httptest.NewRequest(http.MethodGet, "/private", nil), tok)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/action", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCSRF(t *testing.T) {
	r, sess, tok := setup(t)

	// anonymous posts are not checked
	if w := do(r, postForm(url.Values{}), ""); w.Code != http.StatusOK {
		t.Fatalf("anonymous: expected 200 got %d", w.Code)
	}
	if w := do(r, postForm(url.Values{}), tok); w.Code != http.StatusForbidden {
		t.Fatalf("missing token: expected 403 got %d", w.Code)
	}
	if w := do(r, postForm(url.Values{CSRFField: {"wrong"}}), tok); w.Code != http.StatusForbidden {
		t.Fatalf("wrong token: expected 403 got %d", w.Code)
	}
	if w := do(r, postForm(url.Values{CSRFField: {sess.CSRFToken}}), tok); w.Code != http.StatusOK {
		t.Fatalf("form token: expected 200 got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/action", nil)
	req.Header.Set(CSRFHeader, sess.CSRFToken)
	if w := do(r, req, tok); w.Code != http.StatusOK {
		t.Fatalf("header token: expected 200 got %d", w.Code)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}
