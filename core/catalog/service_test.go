package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bmapp/model"
	"bmapp/repository"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo repository.AudioRepository, clips ...*model.AudioClip) {
	t.Helper()
	for i, c := range clips {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = baseTime.Add(time.Duration(i) * time.Minute)
		}
		if c.AudioURL == "" {
			c.AudioURL = "https://cdn.example.com/audio/" + c.Title + ".mp3"
		}
		c.ApplyDefaults()
		if err := repo.Create(context.Background(), c); err != nil {
			t.Fatalf("seed Create() error = %v", err)
		}
	}
}

func TestSearchSanitizesUnparsedParams(t *testing.T) {
	repo := repository.NewMemoryAudioRepository()
	clips := make([]*model.AudioClip, 130)
	for i := range clips {
		clips[i] = &model.AudioClip{Title: fmt.Sprintf("Clip %03d", i), Category: "Ambient"}
	}
	seed(t, repo, clips...)

	svc := NewService(repo, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		params    SearchParams
		wantPage  int
		wantLimit int
	}{
		{"zero value", SearchParams{}, 1, 20},
		{"negative", SearchParams{Page: -3, Limit: -5}, 1, 20},
		{"limit above max", SearchParams{Page: 1, Limit: 500}, 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Search(ctx, tt.params)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if page.Page != tt.wantPage || page.Limit != tt.wantLimit || len(page.Items) != tt.wantLimit || !page.HasMore {
				t.Errorf("page=%d limit=%d items=%d hasMore=%v, want page=%d limit=%d",
					page.Page, page.Limit, len(page.Items), page.HasMore, tt.wantPage, tt.wantLimit)
			}
		})
	}

	for _, limit := range []int{0, -1} {
		page, err := svc.SearchByCategory(ctx, "", 0, limit)
		if err != nil {
			t.Fatalf("SearchByCategory() error = %v", err)
		}
		if page.Page != 1 || page.Limit != DefaultLimit || len(page.Items) != DefaultLimit {
			t.Errorf("SearchByCategory(limit=%d): page=%d limit=%d items=%d", limit, page.Page, page.Limit, len(page.Items))
		}
	}
}

func TestSearchPagination(t *testing.T) {
	repo := repository.NewMemoryAudioRepository()
	clips := make([]*model.AudioClip, 45)
	for i := range clips {
		clips[i] = &model.AudioClip{Title: fmt.Sprintf("Track %02d", i), Category: "🎹 Piano"}
	}
	seed(t, repo, clips...)

	svc := NewService(repo, nil)
	ctx := context.Background()

	wantLens := []int{20, 20, 5}
	wantMore := []bool{true, true, false}
	seen := make(map[string]bool)
	var last time.Time

	for i := range wantLens {
		page, err := svc.Search(ctx, ParseSearchParams(fmt.Sprint(i+1), "20", "", ""))
		if err != nil {
			t.Fatalf("Search page %d error = %v", i+1, err)
		}
		if len(page.Items) != wantLens[i] || page.HasMore != wantMore[i] || page.Total != 45 {
			t.Errorf("page %d: len=%d hasMore=%v total=%d, want len=%d hasMore=%v total=45",
				i+1, len(page.Items), page.HasMore, page.Total, wantLens[i], wantMore[i])
		}
		for _, c := range page.Items {
			if seen[c.ID] {
				t.Errorf("clip %s returned twice", c.ID)
			}
			seen[c.ID] = true
			if !last.IsZero() && c.CreatedAt.After(last) {
				t.Errorf("clip %s out of order: %v after %v", c.ID, c.CreatedAt, last)
			}
			last = c.CreatedAt
		}
	}
	if len(seen) != 45 {
		t.Errorf("saw %d distinct clips, want 45", len(seen))
	}

	beyond, err := svc.Search(ctx, ParseSearchParams("4", "20", "", ""))
	if err != nil {
		t.Fatalf("Search beyond last page error = %v", err)
	}
	if len(beyond.Items) != 0 || beyond.HasMore {
		t.Errorf("beyond last page: len=%d hasMore=%v", len(beyond.Items), beyond.HasMore)
	}
}

func TestSearchQueryMatching(t *testing.T) {
	repo := repository.NewMemoryAudioRepository()
	seed(t, repo,
		&model.AudioClip{Title: "Lo-Fi Chill", Category: "🎧 Lo-Fi"},
		&model.AudioClip{Title: "Rock Anthem", Category: "🎸 Rock"},
		&model.AudioClip{Title: "Rain", Category: "Nature", ArtistName: "Lo Finch", Type: model.AudioTypeSound},
	)
	svc := NewService(repo, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		query  string
		typ    string
		titles []string
	}{
		{"lo fi matches title and artist", "lo fi", "", []string{"Rain", "Lo-Fi Chill"}},
		{"emoji query", "🎧 Lo-Fi", "", []string{"Rain", "Lo-Fi Chill"}},
		{"category match", "rock", "", []string{"Rock Anthem"}},
		{"type filter", "lo fi", "SOUND", []string{"Rain"}},
		{"all means no filter", "lo fi", "ALL", []string{"Rain", "Lo-Fi Chill"}},
		{"no match", "jazz", "", nil},
		{"empty query", "", "null", []string{"Rain", "Rock Anthem", "Lo-Fi Chill"}},
		{"regex chars are literal", ".*", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Search(ctx, ParseSearchParams("", "", tt.query, tt.typ))
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(page.Items) != len(tt.titles) {
				t.Fatalf("Search(%q) returned %d items, want %d", tt.query, len(page.Items), len(tt.titles))
			}
			for i, c := range page.Items {
				if c.Title != tt.titles[i] {
					t.Errorf("item %d = %q, want %q", i, c.Title, tt.titles[i])
				}
			}
		})
	}
}

func TestSearchByCategory(t *testing.T) {
	repo := repository.NewMemoryAudioRepository()
	seed(t, repo,
		&model.AudioClip{Title: "Lo-Fi Chill", Category: "🎧 Lo-Fi"},
		&model.AudioClip{Title: "Lo-Fi Rock", Category: "🎸 Rock"},
	)
	svc := NewService(repo, nil)
	ctx := context.Background()

	page, err := svc.SearchByCategory(ctx, "lo-fi", 1, 20)
	if err != nil {
		t.Fatalf("SearchByCategory() error = %v", err)
	}
	if page.Total != 1 || page.Items[0].Title != "Lo-Fi Chill" {
		t.Errorf("SearchByCategory(lo-fi) total=%d, want only Lo-Fi Chill", page.Total)
	}

	all, err := svc.SearchByCategory(ctx, "🎵", 0, 500)
	if err != nil {
		t.Fatalf("SearchByCategory() error = %v", err)
	}
	if all.Total != 2 || all.Page != 1 || all.Limit != MaxLimit {
		t.Errorf("empty category: total=%d page=%d limit=%d", all.Total, all.Page, all.Limit)
	}
}

// countingRepo counts FindByID calls and can be made to fail.
type countingRepo struct {
	repository.AudioRepository
	findByID int
	err      error
}

func (r *countingRepo) FindByID(ctx context.Context, id string) (*model.AudioClip, error) {
	r.findByID++
	if r.err != nil {
		return nil, r.err
	}
	return r.AudioRepository.FindByID(ctx, id)
}

func (r *countingRepo) Find(ctx context.Context, f repository.Filter, s repository.Sort, skip, limit int) ([]*model.AudioClip, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.AudioRepository.Find(ctx, f, s, skip, limit)
}

func TestGet(t *testing.T) {
	mem := repository.NewMemoryAudioRepository()
	clip := &model.AudioClip{Title: "Waves"}
	seed(t, mem, clip)

	repo := &countingRepo{AudioRepository: mem}
	detail := NewDetailCache(8, time.Minute)
	svc := NewService(repo, detail)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "not-a-valid-id"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Get(invalid) error = %v, want ErrInvalidID", err)
	}
	if _, err := svc.Get(ctx, model.NewClipID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}

	got, err := svc.Get(ctx, clip.ID)
	if err != nil || got.Title != "Waves" {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	calls := repo.findByID
	if _, err := svc.Get(ctx, clip.ID); err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if repo.findByID != calls {
		t.Errorf("second Get() hit the store; want a cache hit")
	}
	if detail.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", detail.Len())
	}
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	repo := &countingRepo{AudioRepository: repository.NewMemoryAudioRepository(), err: boom}
	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Search(ctx, ParseSearchParams("", "", "x", "")); !errors.Is(err, ErrStore) || !errors.Is(err, boom) {
		t.Errorf("Search() error = %v, want ErrStore wrapping cause", err)
	}
	if _, err := svc.Get(ctx, model.NewClipID()); !errors.Is(err, ErrStore) {
		t.Errorf("Get() error = %v, want ErrStore", err)
	}
}

func TestLookupKeepsOrder(t *testing.T) {
	repo := repository.NewMemoryAudioRepository()
	a, b := &model.AudioClip{Title: "A"}, &model.AudioClip{Title: "B"}
	seed(t, repo, a, b)
	svc := NewService(repo, nil)

	got, err := svc.Lookup(context.Background(), []string{b.ID, model.NewClipID(), a.ID})
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(got) != 2 || got[0].Title != "B" || got[1].Title != "A" {
		t.Errorf("Lookup() = %v, want [B A]", got)
	}
}
