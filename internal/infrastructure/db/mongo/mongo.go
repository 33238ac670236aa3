package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	backend        = "mongo"

	collectionUsers = "users"
	collectionBooks = "books"
	collectionMeta  = "meta"

	seedMarker       = "seed"
	usernameIndex    = "username_1"
	duplicateKeyCode = 11000
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Initialize creates the indexes the repositories rely on and seeds the
// default catalog the first time it runs against a database. The meta/seed
// marker is written only after the seed books are stored, so an interrupted
// seed is retried on the next start and deleting every book never re-seeds.
func Initialize(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(collectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(usernameIndex),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	books := db.Collection(collectionBooks)
	if _, err := books.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "seq", Value: 1}}}); err != nil {
		return fmt.Errorf("create books index: %w", err)
	}

	meta := db.Collection(collectionMeta)
	err = meta.FindOne(ctx, bson.M{"_id": seedMarker}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("read seed marker: %w", err)
	}

	seed := domain.SeedBooks(time.Now())
	docs := make([]any, 0, len(seed))
	for i, b := range seed {
		docs = append(docs, toMongoBook(b, int64(i+1)))
	}
	// Books left over from an interrupted seed are already in place.
	_, err = books.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !onlyDuplicateKeys(err) {
		return fmt.Errorf("seed books: %w", err)
	}

	_, err = meta.UpdateOne(ctx,
		bson.M{"_id": seedMarker},
		bson.M{"$setOnInsert": bson.M{"seeded_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mark seed: %w", err)
	}
	return nil
}

// onlyDuplicateKeys reports whether every write error in a bulk insert is a
// duplicate key violation.
func onlyDuplicateKeys(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != duplicateKeyCode {
			return false
		}
	}
	return true
}

// writeFailed counts a failed write and wraps err in domain.ErrPersistence.
func writeFailed(op string, err error) error {
	metrics.StoreWriteErrorsTotal.WithLabelValues(backend).Inc()
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

// Pinger reports MongoDB reachability for readiness probes.
type Pinger struct {
	client *mongo.Client
}

func NewPinger(client *mongo.Client) *Pinger {
	return &Pinger{client: client}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}
