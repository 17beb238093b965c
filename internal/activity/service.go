package activity

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/neiist-dev/activities-backend/internal/auditlog"
	"github.com/neiist-dev/activities-backend/internal/notion"
	"github.com/neiist-dev/activities-backend/utils"
)

const listCacheKey = "activities:list"
const listCacheTTL = 2 * time.Minute

// SourceFetcher is the content source adapter consumed by the reconciler.
type SourceFetcher interface {
	FetchAllEvents(ctx context.Context) ([]notion.SourceEvent, error)
}

// SyncResult summarizes one content -> store reconciliation pass.
type SyncResult struct {
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// Service wraps the internal event store and the reconciler.
type Service struct {
	Repo     *Repository
	Source   SourceFetcher
	AuditSvc auditlog.Service
}

func NewService(repo *Repository, source SourceFetcher, auditSvc auditlog.Service) *Service {
	return &Service{Repo: repo, Source: source, AuditSvc: auditSvc}
}

// SyncFromSource runs one reconciliation pass: fetch, plan, apply. Re-running
// against unchanged input applies an empty plan.
func (s *Service) SyncFromSource(ctx context.Context) (SyncResult, error) {
	sourceEvents, err := s.Source.FetchAllEvents(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	snapshot, err := s.Repo.Snapshot()
	if err != nil {
		return SyncResult{}, err
	}

	plan := BuildPlan(sourceEvents, snapshot)
	if plan.Skipped > 0 {
		s.AuditSvc.LogAction(ctx, nil, nil, auditlog.ActionEventSkipped,
			map[string]interface{}{"skipped": plan.Skipped}, "", "failure")
	}

	if plan.Empty() {
		return SyncResult{Unchanged: plan.Unchanged, Skipped: plan.Skipped}, nil
	}

	if err := s.Repo.ApplyPlan(plan); err != nil {
		return SyncResult{}, err
	}

	utils.CacheInvalidate(ctx, listCacheKey)
	log.Printf("✅ Reconciled events: %d upserted, %d deleted, %d unchanged, %d skipped",
		len(plan.Upserts), len(plan.DeleteIDs), plan.Unchanged, plan.Skipped)

	return SyncResult{
		Updated:   len(plan.Upserts),
		Deleted:   len(plan.DeleteIDs),
		Unchanged: plan.Unchanged,
		Skipped:   plan.Skipped,
	}, nil
}

// ListEvents serves the reconciled event list, cached briefly in Redis since
// every member calendar page hits it.
func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	if data := utils.CacheGet(ctx, listCacheKey); data != nil {
		var cached []Event
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	events, err := s.Repo.ListEvents()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(events); err == nil {
		utils.CacheSet(ctx, listCacheKey, data, listCacheTTL)
	}

	return events, nil
}

// InvalidateListCache drops the cached event list after out-of-band changes,
// e.g. a signup altering the counts shown in listings.
func InvalidateListCache(ctx context.Context) {
	utils.CacheInvalidate(ctx, listCacheKey)
}

func (s *Service) GetEvent(id string) (*Event, error) {
	return s.Repo.GetEventByID(id)
}

// UpdateProperties applies an admin edit, creating the properties row on
// first customization. Canonical event fields are untouched.
func (s *Service) UpdateProperties(ctx context.Context, req *UpdatePropertiesRequest, actorID, ip string) error {
	if _, err := s.Repo.GetEventByID(req.EventID); err != nil {
		s.AuditSvc.LogAction(ctx, &actorID, &req.EventID, auditlog.ActionPropertiesUpdated,
			map[string]interface{}{"error": "event not found"}, ip, "failure")
		return err
	}

	props := &Properties{
		EventID:             req.EventID,
		SignupEnabled:       req.SignupEnabled,
		SignupDeadline:      req.SignupDeadline,
		MaxAttendees:        req.MaxAttendees,
		CustomIcon:          req.CustomIcon,
		DescriptionOverride: req.DescriptionOverride,
	}

	if err := s.Repo.SaveProperties(props); err != nil {
		s.AuditSvc.LogAction(ctx, &actorID, &req.EventID, auditlog.ActionPropertiesUpdated,
			map[string]interface{}{"error": err.Error()}, ip, "failure")
		return err
	}

	utils.CacheInvalidate(ctx, listCacheKey)
	s.AuditSvc.LogAction(ctx, &actorID, &req.EventID, auditlog.ActionPropertiesUpdated,
		map[string]interface{}{
			"signup_enabled": req.SignupEnabled,
			"max_attendees":  req.MaxAttendees,
			"custom_icon":    req.CustomIcon,
		}, ip, "success")

	return nil
}
