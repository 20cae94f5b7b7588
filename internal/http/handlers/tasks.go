package handlers

import (
	"context"
	"errors"
	"net/http"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// destinations is the allow-list for the "next" redirect value.
var destinations = map[string]string{
	"current":     "current",
	"completed":   "completed",
	"/current/":   "current",
	"/completed/": "completed",
}

// nextName maps a client-supplied "next" value to a known destination
// name, falling back to the active list.
func nextName(raw string) string {
	if name, ok := destinations[raw]; ok {
		return name
	}
	return "current"
}

func nextPath(raw string) string {
	return "/" + nextName(raw) + "/"
}

func (h *Handler) CreatePage(c *gin.Context) {
	h.render(c, http.StatusOK, "createtodo.html", gin.H{
		"Title":       "Create",
		"Form":        service.TaskForm{},
		"FieldErrors": map[string]string{},
	})
}

func (h *Handler) Create(c *gin.Context) {
	uid, _ := getUserID(c)

	var form service.TaskForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	in, ferrs := service.ValidateTask(form, h.cfg.Location)
	if len(ferrs) > 0 {
		h.render(c, http.StatusOK, "createtodo.html", gin.H{
			"Title":       "Create",
			"Form":        form,
			"FieldErrors": ferrs.ByField(),
			"Error":       ferrs.First(),
		})
		return
	}

	t, err := h.Tasks.Create(c.Request.Context(), uid, in)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.Audit.LogTask(c.Request.Context(), uid, domain.AuditActionTaskCreate, t.ID, c.ClientIP(), c.Request.UserAgent())
	c.Redirect(http.StatusFound, "/current/")
}

func (h *Handler) Current(c *gin.Context) {
	h.list(c, false, "currenttodos.html", "Current")
}

func (h *Handler) Completed(c *gin.Context) {
	h.list(c, true, "completedtodos.html", "Completed")
}

func (h *Handler) list(c *gin.Context, done bool, tmpl, title string) {
	uid, _ := getUserID(c)

	tasks, page, err := h.Tasks.List(c.Request.Context(), uid, done, c.Query("page"))
	if err != nil {
		h.serverError(c, err)
		return
	}

	next, empty := "current", "You have no current todos."
	if done {
		next, empty = "completed", "You have no completed todos."
	}
	h.render(c, http.StatusOK, tmpl, gin.H{
		"Title": title,
		"Tasks": tasks,
		"Page":  page,
		"Done":  done,
		"Next":  next,
		"Empty": empty,
	})
}

// loadTask resolves :id to a task of the current user. Missing, foreign and
// malformed ids all render the same 404 page.
func (h *Handler) loadTask(c *gin.Context) (*domain.Task, bool) {
	uid, _ := getUserID(c)
	id, ok := taskID(c)
	if !ok {
		h.NotFound(c)
		return nil, false
	}

	t, err := h.Tasks.Get(c.Request.Context(), uid, id)
	if errors.Is(err, domain.ErrNotFound) {
		h.NotFound(c)
		return nil, false
	}
	if err != nil {
		h.serverError(c, err)
		return nil, false
	}
	return t, true
}

func (h *Handler) ViewTask(c *gin.Context) {
	t, ok := h.loadTask(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "viewtodo.html", gin.H{
		"Title":       t.Title,
		"Task":        t,
		"Form":        service.TaskFormFrom(t, h.cfg.Location),
		"FieldErrors": map[string]string{},
		"Next":        nextName(c.Query("next")),
	})
}

// UpdateTask saves the editable fields and redirects to the allow-listed
// "next" destination.
func (h *Handler) UpdateTask(c *gin.Context) {
	t, ok := h.loadTask(c)
	if !ok {
		return
	}

	var form service.TaskForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	in, ferrs := service.ValidateTask(form, h.cfg.Location)
	if len(ferrs) > 0 {
		h.render(c, http.StatusOK, "viewtodo.html", gin.H{
			"Title":       t.Title,
			"Task":        t,
			"Form":        form,
			"FieldErrors": ferrs.ByField(),
			"Error":       ferrs.First(),
			"Next":        nextName(next),
		})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Tasks.Update(ctx, t.UserID, t.ID, in); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	h.Audit.LogTask(ctx, t.UserID, domain.AuditActionTaskUpdate, t.ID, c.ClientIP(), c.Request.UserAgent())
	c.Redirect(http.StatusFound, nextPath(next))
}

func (h *Handler) CompleteTask(c *gin.Context) {
	h.mutate(c, domain.AuditActionTaskComplete, h.Tasks.Complete)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	h.mutate(c, domain.AuditActionTaskDelete, h.Tasks.Delete)
}

// mutate runs a POST-only state change on one of the user's tasks and
// returns to the active list.
func (h *Handler) mutate(c *gin.Context, action string, fn func(ctx context.Context, userID, id int64) error) {
	uid, _ := getUserID(c)
	id, ok := taskID(c)
	if !ok {
		h.NotFound(c)
		return
	}

	ctx := c.Request.Context()
	if err := fn(ctx, uid, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	h.Audit.LogTask(ctx, uid, action, id, c.ClientIP(), c.Request.UserAgent())
	c.Redirect(http.StatusFound, "/current/")
}
