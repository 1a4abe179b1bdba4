package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/poultryops/internal/domain/models"
)

const snapshotCollection = "batch_snapshots"

// Repository defines the interface for snapshot storage.
type Repository interface {
	SaveSnapshots(ctx context.Context, snapshots []models.BatchSnapshot) error
	History(ctx context.Context, batchID string, limit int64) ([]models.BatchSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects, pings and makes sure the history index exists.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: snapshotCollection,
	}

	_, err = r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "batch_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create snapshot index: %w", err)
	}

	return r, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveSnapshots inserts one document per snapshot.
func (r *MongoDBRepository) SaveSnapshots(ctx context.Context, snapshots []models.BatchSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	docs := make([]interface{}, len(snapshots))
	for i, s := range snapshots {
		docs[i] = s
	}

	if _, err := r.collection().InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert batch snapshots: %w", err)
	}
	return nil
}

// History returns the newest snapshots of a batch first.
func (r *MongoDBRepository) History(ctx context.Context, batchID string, limit int64) ([]models.BatchSnapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.collection().Find(ctx, bson.M{"batch_id": batchID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for %s: %w", batchID, err)
	}
	defer cur.Close(ctx)

	out := []models.BatchSnapshot{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots for %s: %w", batchID, err)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

var _ Repository = (*MongoDBRepository)(nil)
