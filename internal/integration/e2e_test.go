package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"todo_webapp/internal/db"
	"todo_webapp/internal/domain"
	httpserver "todo_webapp/internal/http"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/session"
	"todo_webapp/internal/web"
	"todo_webapp/internal/ws"
)

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]+)"`)

// TestE2E_Postgres runs the whole stack on PostgreSQL, and on Redis when
// REDIS_ADDR is set.
func TestE2E_Postgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pool := db.Connect(dsn)
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var sessions session.Store = session.NewMemoryStore()
	redisClient := db.ConnectRedis(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), 0)
	if redisClient != nil {
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient)
	}

	users := repository.NewUserRepository(pool)
	hub := ws.NewHub()
	h := handlers.NewHandler(
		service.NewAuthService(users, sessions, service.AuthOptions{SessionTTL: time.Hour, HashCost: bcrypt.MinCost}),
		service.NewTaskService(repository.NewTaskRepository(pool), 4, hub),
		service.NewAuditService(repository.NewAuditRepository(pool)),
		session.NewCodec("test-secret"),
		hub,
		handlers.HandlerConfig{Location: time.UTC},
	)
	tmpl, err := web.Templates(time.UTC)
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	httpserver.RegisterRoutes(r, h,
		handlers.NewHealthHandler(map[string]handlers.Pinger{"database": pool}, "test"),
		middleware.NewRateLimiter(redisClient),
		httpserver.Limits{AuthRate: 1000, AuthWindow: time.Minute})

	srv := httptest.NewServer(r)
	defer srv.Close()

	username := fmt.Sprintf("it%d", time.Now().UnixNano()%1e9)
	defer func() {
		if u, err := users.GetByUsername(ctx, username); err == nil {
			_ = users.Delete(ctx, u.ID)
		}
	}()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 5 * time.Second}
	form := func(path string, v url.Values) string {
		t.Helper()
		res, err := client.PostForm(srv.URL+path, v)
		if err != nil {
			t.Fatalf("post %s: %v", path, err)
		}
		defer res.Body.Close()
		return res.Request.URL.Path
	}
	page := func(path string) string {
		t.Helper()
		res, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		defer res.Body.Close()
		b, _ := io.ReadAll(res.Body)
		return string(b)
	}
	csrf := func() string {
		m := csrfPattern.FindStringSubmatch(page("/create/"))
		if m == nil {
			t.Fatal("no csrf token")
		}
		return m[1]
	}

	if landed := form("/signup/", url.Values{
		"username":  {username},
		"email":     {strings.ToUpper(username) + "@Example.com"},
		"password1": {"Password123"},
		"password2": {"Password123"},
	}); landed != "/current/" {
		t.Fatalf("signup landed on %s", landed)
	}

	u, err := users.GetByUsername(ctx, username)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.Email != username+"@example.com" {
		t.Fatalf("email not lower-cased: %s", u.Email)
	}

	header := http.Header{}
	for _, c := range jar.Cookies(mustParse(t, srv.URL)) {
		header.Add("Cookie", c.String())
	}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	form("/create/", url.Values{"csrf_token": {csrf()}, "title": {"Buy milk"}, "deadline_datetime": {"2025-01-01T10:00"}})
	if !strings.Contains(page("/current/"), "Buy milk") {
		t.Fatal("task missing from current list")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev domain.TaskEvent
	if err := conn.ReadJSON(&ev); err != nil || ev.Type != domain.EventTaskCreated {
		t.Fatalf("expected task_created event, got %+v (%v)", ev, err)
	}

	id := fmt.Sprint(ev.TaskID)
	form("/todo/"+id+"/complete", url.Values{"csrf_token": {csrf()}})
	if strings.Contains(page("/current/"), "Buy milk") || !strings.Contains(page("/completed/"), "Buy milk") {
		t.Fatal("task not moved to completed")
	}

	form("/todo/"+id+"/delete", url.Values{"csrf_token": {csrf()}})
	if strings.Contains(page("/completed/"), "Buy milk") {
		t.Fatal("task not deleted")
	}

	logs, err := repository.NewAuditRepository(pool).GetByUserID(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(logs) < 4 {
		t.Fatalf("expected signup and task audit entries, got %d", len(logs))
	}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}
