package auditlog

import (
	"context"
	"encoding/json"
	"log"

	"gorm.io/datatypes"
)

// Service is consumed by every module that records operator-visible actions.
type Service interface {
	LogAction(ctx context.Context, actorID, eventID *string, action string, details map[string]interface{}, ip, status string)
	List(filter Filter) ([]AuditLog, int64, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

// LogAction writes one audit entry. Audit failures are logged and swallowed:
// auditing must never fail the operation it describes.
func (s *service) LogAction(ctx context.Context, actorID, eventID *string, action string, details map[string]interface{}, ip, status string) {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}

	entry := &AuditLog{
		ActorID:   actorID,
		EventID:   eventID,
		Action:    action,
		Details:   datatypes.JSON(payload),
		IPAddress: ip,
		Status:    status,
	}

	if err := s.repo.Create(entry); err != nil {
		log.Printf("⚠️ Failed to write audit log (%s): %v", action, err)
	}
}

func (s *service) List(filter Filter) ([]AuditLog, int64, error) {
	return s.repo.List(filter)
}
