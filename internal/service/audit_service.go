package service

import (
	"context"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

// AuditService handles audit logging
type AuditService struct {
	repo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// LogWithRequest creates an audit log with request info (IP, User-Agent).
// userID 0 records an anonymous event. Failures are logged, never returned.
func (s *AuditService) LogWithRequest(ctx context.Context, userID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	log := &domain.AuditLog{
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}
	if userID != 0 {
		log.UserID = &userID
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.WithContext(ctx).Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogTask logs a task action of the owner
func (s *AuditService) LogTask(ctx context.Context, userID int64, action string, taskID int64, ip, userAgent string) {
	s.LogWithRequest(ctx, userID, action, domain.AuditCategoryTask, ip, userAgent, map[string]interface{}{
		"task_id": taskID,
	})
}

// Recent returns the user's latest audit entries
func (s *AuditService) Recent(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}
