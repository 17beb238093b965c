package member

import "gorm.io/gorm"

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(m *Member) error {
	return r.DB.Create(m).Error
}

func (r *Repository) GetByISTID(istid string) (*Member, error) {
	var m Member
	if err := r.DB.First(&m, "istid = ?", istid).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) GetByEmail(email string) (*Member, error) {
	var m Member
	if err := r.DB.First(&m, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListActive returns the members whose calendar mirrors are maintained.
func (r *Repository) ListActive() ([]Member, error) {
	var members []Member
	err := r.DB.Where("active = ?", true).Order("istid ASC").Find(&members).Error
	return members, err
}

func (r *Repository) Update(m *Member) error {
	return r.DB.Save(m).Error
}
