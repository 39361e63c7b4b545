package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cyderes/trending-topics-service/internal/config"
	"github.com/cyderes/trending-topics-service/internal/models"
)

// MongoDBStorage implements Storage interface using MongoDB
type MongoDBStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoDBStorage connects to cfg.MongoDBURI and ensures the listing index
func NewMongoDBStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*MongoDBStorage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	collection := client.Database(cfg.MongoDatabase).Collection(cfg.TableName)
	_, err = collection.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "is_hidden", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Info("mongodb storage ready", "database", cfg.MongoDatabase, "collection", cfg.TableName)
	return &MongoDBStorage{client: client, collection: collection, logger: logger}, nil
}

// InsertMany performs an ordered insert. MongoDB stops at the first failed
// document, so everything before it is reported as stored.
func (m *MongoDBStorage) InsertMany(ctx context.Context, candidates []models.CandidateTrend) ([]models.Trend, error) {
	trends := newTrends(candidates)

	docs := make([]interface{}, len(trends))
	for i := range trends {
		docs[i] = trends[i]
	}

	_, err := m.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return trends, nil
	}

	stored := insertedPrefix(err)
	if stored > 0 {
		return nil, &PartialInsertError{
			Inserted: trends[:stored],
			Failed:   len(trends) - stored,
			Err:      err,
		}
	}
	return nil, fmt.Errorf("failed to insert trends: %w", err)
}

// insertedPrefix returns how many documents of an ordered insert landed
// before the first write error
func insertedPrefix(err error) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return 0
	}
	first := bwe.WriteErrors[0].Index
	for _, we := range bwe.WriteErrors[1:] {
		if we.Index < first {
			first = we.Index
		}
	}
	return first
}

// List returns a filtered page ordered newest first
func (m *MongoDBStorage) List(ctx context.Context, filter Filter) ([]models.Trend, int, error) {
	query := mongoFilter(filter)

	total, err := m.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count trends: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	cursor, err := m.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find trends: %w", err)
	}
	defer cursor.Close(ctx)

	trends := []models.Trend{}
	if err := cursor.All(ctx, &trends); err != nil {
		return nil, 0, fmt.Errorf("failed to decode trends: %w", err)
	}
	for i := range trends {
		trends[i].CreatedAt = trends[i].CreatedAt.UTC()
	}

	return trends, int(total), nil
}

func mongoFilter(filter Filter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Hidden != nil {
		query["is_hidden"] = *filter.Hidden
	}
	return query
}

// GetByID retrieves a specific trend by ID
func (m *MongoDBStorage) GetByID(ctx context.Context, id string) (*models.Trend, error) {
	var trend models.Trend
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trend)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trend %s: %w", id, err)
	}
	trend.CreatedAt = trend.CreatedAt.UTC()
	return &trend, nil
}

// SetHidden updates the visibility flag and returns the stored record
func (m *MongoDBStorage) SetHidden(ctx context.Context, id string, hidden bool) (*models.Trend, error) {
	var trend models.Trend
	err := m.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_hidden": hidden}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&trend)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update trend %s: %w", id, err)
	}
	trend.CreatedAt = trend.CreatedAt.UTC()
	return &trend, nil
}

// Ping checks the MongoDB connection
func (m *MongoDBStorage) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close disconnects the MongoDB client
func (m *MongoDBStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
