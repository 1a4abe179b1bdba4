package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/mamadbah2/poultryops/internal/domain/models"
)

func mockRepo(mt *mtest.T) *MongoDBRepository {
	return &MongoDBRepository{client: mt.Client, dbName: "poultryops", collName: snapshotCollection}
}

func TestSaveSnapshots(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inserts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		err := mockRepo(mt).SaveSnapshots(context.Background(), []models.BatchSnapshot{
			{BatchID: "B2024-001", BatchCode: "B2024-001", CurrentBirds: 4492},
			{BatchID: "B2024-002", BatchCode: "B2024-002", CurrentBirds: 2694},
		})
		require.NoError(t, err)
	})

	mt.Run("empty is a no-op", func(mt *mtest.T) {
		require.NoError(t, mockRepo(mt).SaveSnapshots(context.Background(), nil))
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		err := mockRepo(mt).SaveSnapshots(context.Background(), []models.BatchSnapshot{{BatchID: "B2024-001"}})
		assert.ErrorContains(t, err, "failed to insert batch snapshots")
	})
}

func TestHistory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes newest first", func(mt *mtest.T) {
		taken := time.Date(2024, time.April, 18, 20, 0, 0, 0, time.UTC)
		ns := "poultryops." + snapshotCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "batch_id", Value: "B2024-001"}, {Key: "current_birds", Value: 4492}, {Key: "mortality_rate", Value: 0.16}, {Key: "created_at", Value: taken}},
			bson.D{{Key: "batch_id", Value: "B2024-001"}, {Key: "current_birds", Value: 4495}, {Key: "created_at", Value: taken.Add(-24 * time.Hour)}},
		))

		out, err := mockRepo(mt).History(context.Background(), "B2024-001", 30)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, 4492, out[0].CurrentBirds)
		assert.Equal(t, 0.16, out[0].MortalityRate)
		assert.True(t, out[0].CreatedAt.Equal(taken))
	})

	mt.Run("no documents", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "poultryops."+snapshotCollection, mtest.FirstBatch))

		out, err := mockRepo(mt).History(context.Background(), "B2099-001", 0)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
}
