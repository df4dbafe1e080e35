package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bmapp/model"

	"gorm.io/gorm"
)

// gormColumns maps searchable/sortable field names onto audio_clips columns.
var gormColumns = map[string]string{
	FieldTitle:        "title",
	FieldCategory:     "category",
	FieldArtistName:   "artist_name",
	SortCreatedAt:     "created_at",
	SortPriority:      "priority",
	SortRating:        "rating",
	SortDownloadCount: "download_count",
}

// gormAudioRepository GORM 实现 (MySQL 8+, relies on REGEXP_LIKE).
type gormAudioRepository struct {
	db *gorm.DB
}

// NewGormAudioRepository 创建 GORM 音频仓库
func NewGormAudioRepository(db *gorm.DB) AudioRepository {
	return &gormAudioRepository{db: db}
}

func (r *gormAudioRepository) Create(ctx context.Context, clip *model.AudioClip) error {
	if clip.ID == "" {
		clip.ID = model.NewClipID()
	}
	clip.ID = strings.ToLower(clip.ID)
	if clip.CreatedAt.IsZero() {
		clip.CreatedAt = time.Now().UTC()
	}
	clip.UpdatedAt = clip.CreatedAt

	err := r.db.WithContext(ctx).Create(clip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert audio clip: %w", err)
	}
	return nil
}

func (r *gormAudioRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	var count int64
	err := r.scope(ctx, filter).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count audio clips: %w", err)
	}
	return count, nil
}

func (r *gormAudioRepository) Find(ctx context.Context, filter Filter, s Sort, skip, limit int) ([]*model.AudioClip, error) {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	column := gormColumns[sortField(s)]

	q := r.scope(ctx, filter).
		Order(fmt.Sprintf("%s %s", column, dir)).
		Order(fmt.Sprintf("id %s", dir)).
		Offset(skip)
	if limit > 0 {
		q = q.Limit(limit)
	}

	clips := make([]*model.AudioClip, 0, limit)
	if err := q.Find(&clips).Error; err != nil {
		return nil, fmt.Errorf("find audio clips: %w", err)
	}
	for _, c := range clips {
		c.ApplyDefaults()
	}
	return clips, nil
}

func (r *gormAudioRepository) FindByID(ctx context.Context, id string) (*model.AudioClip, error) {
	var clip model.AudioClip
	err := r.db.WithContext(ctx).Where("id = ?", strings.ToLower(id)).First(&clip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find audio clip %s: %w", id, err)
	}
	clip.ApplyDefaults()
	return &clip, nil
}

func (r *gormAudioRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.AudioClip, error) {
	if len(ids) == 0 {
		return []*model.AudioClip{}, nil
	}
	lowered := make([]string, len(ids))
	for i, id := range ids {
		lowered[i] = strings.ToLower(id)
	}

	var clips []*model.AudioClip
	if err := r.db.WithContext(ctx).Where("id IN ?", lowered).Find(&clips).Error; err != nil {
		return nil, fmt.Errorf("find audio clips by ids: %w", err)
	}
	for _, c := range clips {
		c.ApplyDefaults()
	}
	return clips, nil
}

// EnsureIndexes migrates the audio_clips table, creating the category, type,
// priority, rating, download_count and created_at indexes.
func (r *gormAudioRepository) EnsureIndexes(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&model.AudioClip{}); err != nil {
		return fmt.Errorf("migrate audio_clips: %w", err)
	}
	return nil
}

func (r *gormAudioRepository) scope(ctx context.Context, filter Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.AudioClip{})

	if filter.Type != "" {
		q = q.Where("LOWER(type) = ?", strings.ToLower(filter.Type))
	}

	if filter.Pattern != "" {
		fields := filter.Fields
		if len(fields) == 0 {
			fields = []string{FieldTitle, FieldCategory, FieldArtistName}
		}
		clauses := make([]string, 0, len(fields))
		args := make([]interface{}, 0, len(fields))
		for _, f := range fields {
			col, ok := gormColumns[f]
			if !ok {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("REGEXP_LIKE(%s, ?, 'i')", col))
			args = append(args, filter.Pattern)
		}
		if len(clauses) > 0 {
			q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
		}
	}
	return q
}
