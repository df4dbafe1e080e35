package repository

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"bmapp/model"
)

// memoryAudioRepository keeps the catalog in process. It backs tests and
// CATALOG_DRIVER=memory development runs.
type memoryAudioRepository struct {
	mu    sync.RWMutex
	clips map[string]*model.AudioClip
}

// NewMemoryAudioRepository creates an empty in-memory catalog.
func NewMemoryAudioRepository() AudioRepository {
	return &memoryAudioRepository{clips: make(map[string]*model.AudioClip)}
}

func (r *memoryAudioRepository) Create(_ context.Context, clip *model.AudioClip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clip.ID == "" {
		clip.ID = model.NewClipID()
	}
	clip.ID = strings.ToLower(clip.ID)
	if _, exists := r.clips[clip.ID]; exists {
		return ErrDuplicateID
	}
	if clip.CreatedAt.IsZero() {
		clip.CreatedAt = time.Now().UTC()
	}
	if clip.UpdatedAt.IsZero() {
		clip.UpdatedAt = clip.CreatedAt
	}
	stored := *clip
	r.clips[clip.ID] = &stored
	return nil
}

func (r *memoryAudioRepository) Count(_ context.Context, filter Filter) (int64, error) {
	match, err := compileMemoryFilter(filter)
	if err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.clips {
		if match(c) {
			n++
		}
	}
	return n, nil
}

func (r *memoryAudioRepository) Find(_ context.Context, filter Filter, s Sort, skip, limit int) ([]*model.AudioClip, error) {
	match, err := compileMemoryFilter(filter)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := make([]*model.AudioClip, 0, len(r.clips))
	for _, c := range r.clips {
		if match(c) {
			cp := *c
			matched = append(matched, &cp)
		}
	}
	r.mu.RUnlock()

	less := memoryLess(s)
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []*model.AudioClip{}, nil
	}
	end := len(matched)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return matched[skip:end], nil
}

func (r *memoryAudioRepository) FindByID(_ context.Context, id string) (*model.AudioClip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clips[strings.ToLower(id)]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memoryAudioRepository) FindByIDs(_ context.Context, ids []string) ([]*model.AudioClip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.AudioClip, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.clips[strings.ToLower(id)]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryAudioRepository) EnsureIndexes(context.Context) error {
	return nil
}

func compileMemoryFilter(filter Filter) (func(*model.AudioClip) bool, error) {
	var re *regexp.Regexp
	if filter.Pattern != "" {
		var err error
		re, err = regexp.Compile("(?i)" + filter.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile filter pattern: %w", err)
		}
	}
	fields := filter.Fields
	if len(fields) == 0 {
		fields = []string{FieldTitle, FieldCategory, FieldArtistName}
	}

	return func(c *model.AudioClip) bool {
		if filter.Type != "" && !strings.EqualFold(string(c.Type), filter.Type) {
			return false
		}
		if re == nil {
			return true
		}
		for _, f := range fields {
			if re.MatchString(memoryFieldValue(c, f)) {
				return true
			}
		}
		return false
	}, nil
}

func memoryFieldValue(c *model.AudioClip, field string) string {
	switch field {
	case FieldTitle:
		return c.Title
	case FieldCategory:
		return c.Category
	case FieldArtistName:
		return c.ArtistName
	}
	return ""
}

func memoryLess(s Sort) func(a, b *model.AudioClip) bool {
	field := sortField(s)
	return func(a, b *model.AudioClip) bool {
		var cmp int
		switch field {
		case SortPriority:
			cmp = compareInts(a.Priority, b.Priority)
		case SortRating:
			cmp = compareFloats(a.Rating, b.Rating)
		case SortDownloadCount:
			cmp = compareInts(a.DownloadCount, b.DownloadCount)
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cmp == 0 {
			cmp = strings.Compare(a.ID, b.ID)
		}
		if s.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
