package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// FavoriteStore keeps each user's favorite clip ids.
type FavoriteStore interface {
	// Add is a no-op when the clip is already a favorite; it keeps its
	// original position.
	Add(ctx context.Context, userID int64, clipID string) error
	// Remove is idempotent.
	Remove(ctx context.Context, userID int64, clipID string) error
	// List returns clip ids, most recently added first.
	List(ctx context.Context, userID int64) ([]string, error)
}

// GetFavoritesKey 根据用户ID生成收藏的Redis键
func GetFavoritesKey(userID int64) string {
	return fmt.Sprintf("favorites:%d", userID)
}

// RedisFavorites stores favorites in a sorted set per user, scored by the
// time they were added (unix millis).
type RedisFavorites struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisFavorites(client *redis.Client) *RedisFavorites {
	return &RedisFavorites{client: client, now: time.Now}
}

func (f *RedisFavorites) Add(ctx context.Context, userID int64, clipID string) error {
	err := f.client.ZAddNX(ctx, GetFavoritesKey(userID), &redis.Z{
		Score:  float64(f.now().UnixMilli()),
		Member: strings.ToLower(clipID),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (f *RedisFavorites) Remove(ctx context.Context, userID int64, clipID string) error {
	if err := f.client.ZRem(ctx, GetFavoritesKey(userID), strings.ToLower(clipID)).Err(); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (f *RedisFavorites) List(ctx context.Context, userID int64) ([]string, error) {
	ids, err := f.client.ZRevRange(ctx, GetFavoritesKey(userID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// MemoryFavorites is the in-process FavoriteStore used when Redis is not
// configured.
type MemoryFavorites struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]map[string]int64
}

func NewMemoryFavorites() *MemoryFavorites {
	return &MemoryFavorites{users: make(map[int64]map[string]int64)}
}

func (f *MemoryFavorites) Add(_ context.Context, userID int64, clipID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	set, ok := f.users[userID]
	if !ok {
		set = make(map[string]int64)
		f.users[userID] = set
	}
	clipID = strings.ToLower(clipID)
	if _, exists := set[clipID]; !exists {
		f.seq++
		set[clipID] = f.seq
	}
	return nil
}

func (f *MemoryFavorites) Remove(_ context.Context, userID int64, clipID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.users[userID], strings.ToLower(clipID))
	return nil
}

func (f *MemoryFavorites) List(_ context.Context, userID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	set := f.users[userID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return set[ids[i]] > set[ids[j]] })
	return ids, nil
}
