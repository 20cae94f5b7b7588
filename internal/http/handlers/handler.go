package handlers

import (
	"net/http"
	"strconv"
	"time"

	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/service"
	"todo_webapp/internal/session"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
)

const DefaultCookieName = "sessionid"

// HandlerConfig holds cookie and presentation settings
type HandlerConfig struct {
	CookieName   string
	CookieSecure bool
	// Location is the zone deadlines are entered and shown in.
	Location *time.Location
	// AllowedOrigin, when set, is the only Origin accepted on /ws.
	AllowedOrigin string
}

type Handler struct {
	Auth  *service.AuthService
	Tasks *service.TaskService
	Audit *service.AuditService
	Codec *session.Codec
	Hub   *ws.Hub

	cfg HandlerConfig
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService, audit *service.AuditService, codec *session.Codec, hub *ws.Hub, cfg HandlerConfig) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Handler{
		Auth:  auth,
		Tasks: tasks,
		Audit: audit,
		Codec: codec,
		Hub:   hub,
		cfg:   cfg,
	}
}

func (h *Handler) CookieName() string { return h.cfg.CookieName }

// render adds the layout values (current user, CSRF token) to data.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if u, ok := middleware.CurrentUser(c); ok {
		data["User"] = u
	}
	if s, ok := middleware.CurrentSession(c); ok {
		data["CSRF"] = s.CSRFToken
	}
	c.HTML(status, name, data)
}

func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error.html", gin.H{
		"Title":   "Not found",
		"Status":  http.StatusNotFound,
		"Message": "The page you are looking for does not exist.",
	})
}

func (h *Handler) MethodNotAllowed(c *gin.Context) {
	h.render(c, http.StatusMethodNotAllowed, "error.html", gin.H{
		"Title":   "Method not allowed",
		"Status":  http.StatusMethodNotAllowed,
		"Message": "This action needs to be confirmed with the form button.",
	})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.WithContext(c.Request.Context()).Error("request failed", "error", err, "path", c.Request.URL.Path)
	h.render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Server error",
		"Status":  http.StatusInternalServerError,
		"Message": "Something went wrong. Please try again later.",
	})
}

// getUserID returns the id of the logged-in user.
func getUserID(c *gin.Context) (int64, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return 0, false
	}
	return u.ID, true
}

// taskID parses the :id path parameter. Unparseable ids are reported the
// same way as missing tasks.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
