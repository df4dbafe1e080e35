package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"bmapp/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AudioCollection is the MongoDB collection holding the catalog.
const AudioCollection = "audios"

// mongoAudioRepository stores clips as documents keyed by their hex id.
type mongoAudioRepository struct {
	coll *mongo.Collection
}

// NewMongoAudioRepository creates a repository over db.audios.
func NewMongoAudioRepository(db *mongo.Database) AudioRepository {
	return &mongoAudioRepository{coll: db.Collection(AudioCollection)}
}

func (r *mongoAudioRepository) Create(ctx context.Context, clip *model.AudioClip) error {
	if clip.ID == "" {
		clip.ID = model.NewClipID()
	}
	clip.ID = strings.ToLower(clip.ID)
	if clip.CreatedAt.IsZero() {
		clip.CreatedAt = time.Now().UTC()
	}
	clip.UpdatedAt = clip.CreatedAt

	if _, err := r.coll.InsertOne(ctx, clip); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert audio clip: %w", err)
	}
	return nil
}

func (r *mongoAudioRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("count audio clips: %w", err)
	}
	return n, nil
}

func (r *mongoAudioRepository) Find(ctx context.Context, filter Filter, s Sort, skip, limit int) ([]*model.AudioClip, error) {
	dir := 1
	if s.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortField(s), Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find audio clips: %w", err)
	}
	defer cur.Close(ctx)

	clips := make([]*model.AudioClip, 0, limit)
	if err := cur.All(ctx, &clips); err != nil {
		return nil, fmt.Errorf("decode audio clips: %w", err)
	}
	for _, c := range clips {
		c.ApplyDefaults()
	}
	return clips, nil
}

func (r *mongoAudioRepository) FindByID(ctx context.Context, id string) (*model.AudioClip, error) {
	var clip model.AudioClip
	err := r.coll.FindOne(ctx, mongoIDFilter([]string{id})).Decode(&clip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find audio clip %s: %w", id, err)
	}
	clip.ApplyDefaults()
	return &clip, nil
}

func (r *mongoAudioRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.AudioClip, error) {
	if len(ids) == 0 {
		return []*model.AudioClip{}, nil
	}
	cur, err := r.coll.Find(ctx, mongoIDFilter(ids))
	if err != nil {
		return nil, fmt.Errorf("find audio clips by ids: %w", err)
	}
	defer cur.Close(ctx)

	var clips []*model.AudioClip
	if err := cur.All(ctx, &clips); err != nil {
		return nil, fmt.Errorf("decode audio clips: %w", err)
	}
	for _, c := range clips {
		c.ApplyDefaults()
	}
	return clips, nil
}

// EnsureIndexes declares the same indexes the catalog has always carried:
// category, type ascending; priority, rating, download_count, createdAt descending.
func (r *mongoAudioRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: -1}}},
		{Keys: bson.D{{Key: "rating", Value: -1}}},
		{Keys: bson.D{{Key: "download_count", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create audio indexes: %w", err)
	}
	return nil
}

// mongoIDFilter matches ids stored as hex strings and, for records written
// before the string layout, as ObjectIDs.
func mongoIDFilter(ids []string) bson.M {
	candidates := make(bson.A, 0, 2*len(ids))
	for _, id := range ids {
		id = strings.ToLower(id)
		candidates = append(candidates, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			candidates = append(candidates, oid)
		}
	}
	return bson.M{"_id": bson.M{"$in": candidates}}
}

func mongoFilter(filter Filter) bson.M {
	q := bson.M{}
	if filter.Type != "" {
		q["type"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.Type) + "$", Options: "i"}
	}
	if filter.Pattern != "" {
		fields := filter.Fields
		if len(fields) == 0 {
			fields = []string{FieldTitle, FieldCategory, FieldArtistName}
		}
		or := make(bson.A, 0, len(fields))
		for _, f := range fields {
			or = append(or, bson.M{f: primitive.Regex{Pattern: filter.Pattern, Options: "i"}})
		}
		q["$or"] = or
	}
	return q
}
