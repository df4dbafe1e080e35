package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"bmapp/db"
	"bmapp/model"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}
}

// setupMySQL starts a MySQL 8 container and returns a GORM connection to it.
func setupMySQL(t *testing.T) *gorm.DB {
	t.Helper()
	skipUnlessIntegration(t)
	ctx := context.Background()

	container, err := mysql.Run(ctx,
		"mysql:8.0.36",
		mysql.WithDatabase("bmapp"),
		mysql.WithUsername("bmapp"),
		mysql.WithPassword("bmapp-secret"),
	)
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate mysql container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "charset=utf8mb4", "parseTime=True", "loc=UTC")
	if err != nil {
		t.Fatalf("failed to get mysql dsn: %v", err)
	}
	gdb, err := db.OpenGorm(dsn)
	if err != nil {
		t.Fatalf("OpenGorm() error = %v", err)
	}
	t.Cleanup(func() { _ = db.CloseGormDB() })
	return gdb
}

// setupMongo starts a MongoDB container and returns a fresh database.
func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	skipUnlessIntegration(t)
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongodb container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate mongodb container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get mongodb uri: %v", err)
	}
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo.Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("bmapp_test")
}

func TestGormAudioRepository(t *testing.T) {
	gdb := setupMySQL(t)
	exerciseAudioRepository(t, NewGormAudioRepository(gdb))
}

func TestGormUserRepository(t *testing.T) {
	gdb := setupMySQL(t)
	exerciseUserRepository(t, NewGormUserRepository(gdb))
}

func TestMongoAudioRepository(t *testing.T) {
	mdb := setupMongo(t)
	exerciseAudioRepository(t, NewMongoAudioRepository(mdb))
}

func TestMongoAudioRepositoryLegacyObjectIDs(t *testing.T) {
	mdb := setupMongo(t)
	ctx := context.Background()

	oid := primitive.NewObjectID()
	_, err := mdb.Collection(AudioCollection).InsertOne(ctx, bson.M{
		"_id":       oid,
		"title":     "Legacy Waves",
		"category":  "Ambient",
		"duration":  42,
		"audioUrl":  "https://cdn.example.com/audio/legacy.mp3",
		"createdAt": time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}

	repo := NewMongoAudioRepository(mdb)
	clip, err := repo.FindByID(ctx, strings.ToUpper(oid.Hex()))
	if err != nil || clip == nil {
		t.Fatalf("FindByID(legacy) = %v, %v", clip, err)
	}
	if clip.ID != oid.Hex() || clip.ArtistName != model.DefaultArtistName || clip.SchemaVersion != 1 {
		t.Errorf("legacy clip = %+v", clip)
	}

	many, err := repo.FindByIDs(ctx, []string{oid.Hex()})
	if err != nil || len(many) != 1 {
		t.Errorf("FindByIDs(legacy) = %d clips, %v", len(many), err)
	}
}

func TestMongoUserRepository(t *testing.T) {
	mdb := setupMongo(t)
	exerciseUserRepository(t, NewMongoUserRepository(mdb))
}
