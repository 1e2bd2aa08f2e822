package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/d0x2f/retro.tools-backend/internal/app/bootstrap"
)

// SetupTestDB connects to a local MongoDB instance and returns a
// database scoped to the current test. The test is skipped when no
// MongoDB is reachable, so the Mongo-backed suites only run where a
// database is available (CI, or a dev box with mongod running).
//
// The database is dropped when the test finishes.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("RETRO_TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongodb not available at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("mongodb not reachable at %s: %v", uri, err)
	}

	db := client.Database(fmt.Sprintf("retro_test_%d", time.Now().UnixNano()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with a generous timeout for test
// database operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// EnsureIndexes creates the service's indexes on the test database.
// Store behaviors that lean on unique indexes (duplicate-join
// absorption, single owner per board) need these in place.
func EnsureIndexes(t *testing.T, db *mongo.Database) {
	t.Helper()

	ctx, cancel := TestContext()
	defer cancel()

	if err := bootstrap.EnsureSchema(ctx, nil, bootstrap.AppConfig{}, bootstrap.DBDeps{MongoDatabase: db}, zap.NewNop()); err != nil {
		t.Fatalf("failed to ensure indexes: %v", err)
	}
}
