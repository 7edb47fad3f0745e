package repository

import (
	"errors"

	"live_stream_service/internal/video/domain"

	"gorm.io/gorm"
)

// ErrVideoNotFound returned when no record matches the id
var ErrVideoNotFound = errors.New("video not found")

// VideoRepo definition status store access
type VideoRepo interface {
	AutoMigrate() error
	Create(video *domain.Video) error
	GetByID(id string) (*domain.Video, error)
	ListNewestFirst() ([]domain.Video, error)
	Update(video *domain.Video) error
}

type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepo create VideoRepo
func NewVideoRepo(db *gorm.DB) VideoRepo {
	return &videoRepo{db: db}
}

func (r *videoRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Video{})
}

func (r *videoRepo) Create(video *domain.Video) error {
	return r.db.Create(video).Error
}

// GetByID get Video by id, ErrVideoNotFound when absent
func (r *videoRepo) GetByID(id string) (*domain.Video, error) {
	var v domain.Video
	if err := r.db.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListNewestFirst all records ordered by creation time descending
func (r *videoRepo) ListNewestFirst() ([]domain.Video, error) {
	var videos []domain.Video
	if err := r.db.Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// Update writes the whole record back. The finalize paths overwrite rather
// than accumulate, so a redelivered job repeating this write is harmless.
func (r *videoRepo) Update(video *domain.Video) error {
	return r.db.Save(video).Error
}
