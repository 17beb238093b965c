package syncjob

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/neiist-dev/activities-backend/config"
	"github.com/neiist-dev/activities-backend/internal/activity"
	"github.com/neiist-dev/activities-backend/internal/auditlog"
	"github.com/neiist-dev/activities-backend/internal/calendar"
	"github.com/neiist-dev/activities-backend/internal/member"
	"github.com/neiist-dev/activities-backend/utils"
)

// ErrRunInProgress means a pass of the same kind is already running; callers
// should retry after it finishes.
var ErrRunInProgress = errors.New("a sync run of this kind is already in progress")

// Scheduler owns the two periodic passes: content reconciliation and mirror
// propagation. Both can also be triggered manually through the API.
type Scheduler struct {
	Cfg        *config.Config
	Activities *activity.Service
	Members    *member.Service
	Mirror     *calendar.Mirror
	Repo       *Repository
	AuditSvc   auditlog.Service

	cron        *cron.Cron
	contentMu   sync.Mutex
	calendarsMu sync.Mutex
}

func NewScheduler(cfg *config.Config, activities *activity.Service, members *member.Service, mirror *calendar.Mirror, repo *Repository, auditSvc auditlog.Service) *Scheduler {
	return &Scheduler{
		Cfg:        cfg,
		Activities: activities,
		Members:    members,
		Mirror:     mirror,
		Repo:       repo,
		AuditSvc:   auditSvc,
		cron:       cron.New(),
	}
}

// Start registers the cron entries and begins scheduling.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.Cfg.NotionSyncSpec, func() {
		if _, err := s.RunContentSync(context.Background()); err != nil && !errors.Is(err, ErrRunInProgress) {
			log.Printf("❌ Scheduled content sync failed: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.Cfg.CalendarSyncSpec, func() {
		if _, err := s.RunCalendarSync(context.Background()); err != nil && !errors.Is(err, ErrRunInProgress) {
			log.Printf("❌ Scheduled calendar sync failed: %v", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("✅ Sync scheduler started (content: %s, calendars: %s)",
		s.Cfg.NotionSyncSpec, s.Cfg.CalendarSyncSpec)
	return nil
}

// Stop halts scheduling and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) newRun(kind string) *SyncRun {
	return &SyncRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

func (s *Scheduler) finishRun(ctx context.Context, run *SyncRun) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.DurationMS = now.Sub(run.StartedAt).Milliseconds()
	if err := s.Repo.Update(run); err != nil {
		log.Printf("⚠️ Failed to persist sync run %s: %v", run.ID, err)
	}
	utils.PublishSyncEvent(ctx, run.ID, run)
}

// RunContentSync performs one source -> store reconciliation pass.
func (s *Scheduler) RunContentSync(ctx context.Context) (*SyncRun, error) {
	if !s.contentMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.contentMu.Unlock()

	run := s.newRun(KindContent)
	if err := s.Repo.Create(run); err != nil {
		return nil, err
	}

	result, err := s.Activities.SyncFromSource(ctx)
	if err != nil {
		run.Status = StatusFailure
		run.Error = err.Error()
		s.finishRun(ctx, run)
		return run, err
	}

	run.Status = StatusSuccess
	run.Updated = result.Updated
	run.Deleted = result.Deleted
	run.Unchanged = result.Unchanged
	run.Skipped = result.Skipped
	s.finishRun(ctx, run)
	return run, nil
}

// RunCalendarSync propagates the store to every active member's mirror,
// fanning out over a bounded worker pool. One member failing is recorded and
// skipped; the pass carries on.
func (s *Scheduler) RunCalendarSync(ctx context.Context) (*SyncRun, error) {
	if s.Mirror == nil {
		return nil, errors.New("calendar mirroring is not configured")
	}

	if !s.calendarsMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.calendarsMu.Unlock()

	run := s.newRun(KindCalendars)
	if err := s.Repo.Create(run); err != nil {
		return nil, err
	}

	events, err := s.Activities.ListEvents(ctx)
	if err != nil {
		run.Status = StatusFailure
		run.Error = err.Error()
		s.finishRun(ctx, run)
		return run, err
	}

	members, err := s.Members.ListActive()
	if err != nil {
		run.Status = StatusFailure
		run.Error = err.Error()
		s.finishRun(ctx, run)
		return run, err
	}

	jobs := make([]Job, 0, len(members))
	for i := range members {
		m := members[i]
		jobs = append(jobs, Job{
			Name: m.ISTID,
			Fn: func(ctx context.Context) error {
				return s.Mirror.SyncMemberCalendar(ctx, &m, events)
			},
		})
	}

	for _, result := range RunPool(ctx, s.Cfg.SyncWorkers, jobs) {
		if result.Err == nil {
			run.MembersSynced++
			continue
		}
		run.MembersFailed++
		istid := result.Name
		log.Printf("⚠️ Mirror sync failed for %s: %v", istid, result.Err)
		s.AuditSvc.LogAction(ctx, &istid, nil, auditlog.ActionMirrorSyncFailed,
			map[string]interface{}{"error": result.Err.Error()}, "", "failure")
	}

	switch {
	case run.MembersFailed == 0:
		run.Status = StatusSuccess
	case run.MembersSynced > 0:
		run.Status = StatusPartial
	default:
		run.Status = StatusFailure
	}
	s.finishRun(ctx, run)
	return run, nil
}
