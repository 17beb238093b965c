package activity

import (
	"errors"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Snapshot returns every stored event, the reconciler's point-in-time view.
func (r *Repository) Snapshot() ([]Event, error) {
	var events []Event
	err := r.DB.Order("starts_at ASC").Find(&events).Error
	return events, err
}

// ApplyPlan commits a reconciliation plan. Each upsert is a single Save so a
// concurrent reader never observes a half-written row; each delete cascades to
// the event's properties and signups in one transaction.
func (r *Repository) ApplyPlan(plan Plan) error {
	for i := range plan.Upserts {
		if err := r.DB.Save(&plan.Upserts[i]).Error; err != nil {
			return err
		}
	}

	for _, id := range plan.DeleteIDs {
		err := r.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM activity_signups WHERE event_id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id = ?", id).Delete(&Properties{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", id).Delete(&Event{}).Error
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// GetEventByID loads one event with its properties and signup count attached.
func (r *Repository) GetEventByID(id string) (*Event, error) {
	var e Event
	if err := r.DB.First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}

	props, err := r.GetProperties(id)
	if err != nil {
		return nil, err
	}
	e.Properties = props

	var count int64
	if err := r.DB.Table("activity_signups").Where("event_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	e.SignupCount = int(count)

	return &e, nil
}

// ListEvents returns all events ordered by start, with properties and signup
// counts attached for rendering.
func (r *Repository) ListEvents() ([]Event, error) {
	var events []Event
	if err := r.DB.Order("starts_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return events, nil
	}

	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}

	var props []Properties
	if err := r.DB.Where("event_id IN ?", ids).Find(&props).Error; err != nil {
		return nil, err
	}
	propsByID := make(map[string]*Properties, len(props))
	for i := range props {
		propsByID[props[i].EventID] = &props[i]
	}

	type signupCount struct {
		EventID string
		Count   int
	}
	var counts []signupCount
	if err := r.DB.Table("activity_signups").
		Select("event_id, COUNT(*) AS count").
		Where("event_id IN ?", ids).
		Group("event_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	countByID := make(map[string]int, len(counts))
	for _, c := range counts {
		countByID[c.EventID] = c.Count
	}

	for i := range events {
		events[i].Properties = propsByID[events[i].ID]
		events[i].SignupCount = countByID[events[i].ID]
	}

	return events, nil
}

// GetProperties returns nil (no error) when the event was never customized.
func (r *Repository) GetProperties(eventID string) (*Properties, error) {
	var props Properties
	err := r.DB.First(&props, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &props, nil
}

// SaveProperties creates the row lazily on first edit, updates it afterwards.
func (r *Repository) SaveProperties(props *Properties) error {
	return r.DB.Save(props).Error
}
