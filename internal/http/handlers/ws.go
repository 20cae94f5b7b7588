package handlers

import (
	"net/http"
	"net/url"

	"todo_webapp/internal/logger"
	"todo_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// checkOrigin accepts same-host origins, or only allowedOrigin when set.
// Requests without an Origin header (non-browser clients) are accepted.
func checkOrigin(allowedOrigin string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if allowedOrigin != "" {
			return origin == allowedOrigin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	}
}

// WS upgrades a logged-in session to a task event stream.
func (h *Handler) WS(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(h.cfg.AllowedOrigin),
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithContext(c.Request.Context()).Warn("ws upgrade error", "error", err)
		return
	}

	client := ws.NewClient(uid, conn, h.Hub)
	go client.Run()
}
