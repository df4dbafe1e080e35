package repository

import (
	"context"
	"errors"

	"bmapp/model"
)

// Searchable clip fields. The values are the JSON/BSON field names; each
// backend maps them onto its own column names.
const (
	FieldTitle      = "title"
	FieldCategory   = "category"
	FieldArtistName = "artist_name"
)

// Sortable clip fields.
const (
	SortCreatedAt     = "createdAt"
	SortPriority      = "priority"
	SortRating        = "rating"
	SortDownloadCount = "download_count"
)

// ErrDuplicateID is returned by Create when the id is already taken.
var ErrDuplicateID = errors.New("audio id already exists")

// Filter selects catalog records. Zero value matches everything.
type Filter struct {
	// Pattern is a case-insensitive regular expression (RE2/PCRE compatible
	// subset: literals, escapes and ".*") matched against any of Fields.
	Pattern string
	// Fields lists the fields Pattern is tested against (logical OR).
	Fields []string
	// Type, when non-empty, must equal the stored type case-insensitively.
	Type string
}

// Sort orders the result of Find. Ties are always broken by id in the same
// direction so that pages never overlap.
type Sort struct {
	Field string
	Desc  bool
}

// NewestFirst is the default catalog order.
var NewestFirst = Sort{Field: SortCreatedAt, Desc: true}

// AudioRepository is the persistence contract of the audio catalog.
type AudioRepository interface {
	Create(ctx context.Context, clip *model.AudioClip) error
	Count(ctx context.Context, filter Filter) (int64, error)
	Find(ctx context.Context, filter Filter, sort Sort, skip, limit int) ([]*model.AudioClip, error)
	// FindByID returns nil, nil when no record has the id.
	FindByID(ctx context.Context, id string) (*model.AudioClip, error)
	// FindByIDs returns the records that exist, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*model.AudioClip, error)
	EnsureIndexes(ctx context.Context) error
}

func sortField(s Sort) string {
	switch s.Field {
	case SortPriority, SortRating, SortDownloadCount:
		return s.Field
	default:
		return SortCreatedAt
	}
}
