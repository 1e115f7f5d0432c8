package utils

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testMongoURI string

func init() {
	loadTestEnv()
}

// loadTestEnv loads the .env file from the project root, if any.
func loadTestEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "..", "..")
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
		godotenv.Load()
	}

	testMongoURI = os.Getenv("MONGO_URI_TEST")
	if testMongoURI == "" {
		testMongoURI = os.Getenv("MONGO_URI")
	}
}

// SetupTestDB connects to the test MongoDB and drops the given collections.
// The test is skipped when no Mongo URI is configured.
func SetupTestDB(t *testing.T, dbName string, collections ...string) *mongo.Database {
	t.Helper()
	if testMongoURI == "" {
		t.Skip("MONGO_URI_TEST / MONGO_URI not set; skipping MongoDB-backed test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(testMongoURI).SetServerSelectionTimeout(5*time.Second))
	require.NoError(t, err, "Failed to connect to MongoDB")
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("MongoDB at %s not reachable: %v", testMongoURI, err)
	}
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})

	database := client.Database(dbName)
	for _, collection := range collections {
		_ = database.Collection(collection).Drop(context.Background())
	}

	return database
}

// GetTestMongoURI returns the test MongoDB URI for direct use if needed.
func GetTestMongoURI() string {
	if testMongoURI == "" {
		loadTestEnv()
	}
	return testMongoURI
}
