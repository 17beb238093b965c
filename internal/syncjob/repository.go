package syncjob

import "gorm.io/gorm"

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(run *SyncRun) error {
	return r.DB.Create(run).Error
}

func (r *Repository) Update(run *SyncRun) error {
	return r.DB.Save(run).Error
}

// List returns recent runs, newest first.
func (r *Repository) List(page, limit int) ([]SyncRun, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var runs []SyncRun
	err := r.DB.Order("started_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
