package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyderes/trending-topics-service/internal/models"
)

// fakeDynamoDB keeps items in memory and implements the calls the storage uses
type fakeDynamoDB struct {
	dynamodbiface.DynamoDBAPI

	items          map[string]map[string]*dynamodb.AttributeValue
	transactCalls  int
	failOnTransact int // 1-based call number that fails, 0 never
	lastScan       *dynamodb.ScanInput
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: map[string]map[string]*dynamodb.AttributeValue{}}
}

func (f *fakeDynamoDB) TransactWriteItemsWithContext(_ aws.Context, in *dynamodb.TransactWriteItemsInput, _ ...request.Option) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transactCalls++
	if f.transactCalls == f.failOnTransact {
		return nil, awserr.New(dynamodb.ErrCodeTransactionCanceledException, "transaction cancelled", nil)
	}
	for _, item := range in.TransactItems {
		f.items[*item.Put.Item["id"].S] = item.Put.Item
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamoDB) ScanPagesWithContext(_ aws.Context, in *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, _ ...request.Option) error {
	f.lastScan = in

	// Two pages to exercise the page loop; filtering is left to the client side check.
	var all []map[string]*dynamodb.AttributeValue
	for _, item := range f.items {
		all = append(all, item)
	}
	half := len(all) / 2
	if !fn(&dynamodb.ScanOutput{Items: all[:half]}, false) {
		return nil
	}
	fn(&dynamodb.ScanOutput{Items: all[half:]}, true)
	return nil
}

func (f *fakeDynamoDB) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[*in.Key["id"].S]}, nil
}

func (f *fakeDynamoDB) UpdateItemWithContext(_ aws.Context, in *dynamodb.UpdateItemInput, _ ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	item, ok := f.items[*in.Key["id"].S]
	if !ok {
		return nil, awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "conditional check failed", nil)
	}
	item["is_hidden"] = in.ExpressionAttributeValues[":h"]
	return &dynamodb.UpdateItemOutput{Attributes: item}, nil
}

func newTestDynamoDB(t *testing.T) (*DynamoDBStorage, *fakeDynamoDB) {
	t.Helper()
	fake := newFakeDynamoDB()
	return newDynamoDBStorage(fake, "trends", slog.New(slog.NewTextHandler(io.Discard, nil))), fake
}

func candidates(n int, category string) []models.CandidateTrend {
	out := make([]models.CandidateTrend, n)
	for i := range out {
		out[i] = models.CandidateTrend{Title: "trend", Category: category, Source: models.SourceManual}
	}
	return out
}

func TestDynamoDB_InsertManyChunks(t *testing.T) {
	store, fake := newTestDynamoDB(t)

	created, err := store.InsertMany(context.Background(), candidates(250, "Educational"))
	require.NoError(t, err)

	assert.Len(t, created, 250)
	assert.Equal(t, 3, fake.transactCalls)
	assert.Len(t, fake.items, 250)
}

func TestDynamoDB_InsertManyPartial(t *testing.T) {
	store, fake := newTestDynamoDB(t)
	fake.failOnTransact = 2

	created, err := store.InsertMany(context.Background(), candidates(150, "Educational"))
	assert.Nil(t, created)

	var partial *PartialInsertError
	require.ErrorAs(t, err, &partial)
	assert.Len(t, partial.Inserted, 100)
	assert.Equal(t, 50, partial.Failed)
}

func TestDynamoDB_InsertManyFirstChunkFails(t *testing.T) {
	store, fake := newTestDynamoDB(t)
	fake.failOnTransact = 1

	_, err := store.InsertMany(context.Background(), candidates(3, "Educational"))
	require.Error(t, err)

	var partial *PartialInsertError
	assert.NotErrorAs(t, err, &partial)
	assert.Contains(t, err.Error(), "failed to store trends")
}

func TestDynamoDB_List(t *testing.T) {
	store, fake := newTestDynamoDB(t)
	ctx := context.Background()

	_, err := store.InsertMany(ctx, candidates(3, "Educational"))
	require.NoError(t, err)
	_, err = store.InsertMany(ctx, candidates(2, "Entertainment"))
	require.NoError(t, err)

	page, total, err := store.List(ctx, Filter{Category: "Educational", Hidden: boolPtr(false), Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)
	require.NotNil(t, fake.lastScan.FilterExpression)
	assert.NotEmpty(t, fake.lastScan.ExpressionAttributeValues)

	all, total, err := store.List(ctx, Filter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, all, 5)
	assert.Nil(t, fake.lastScan.FilterExpression)
}

func TestDynamoDB_SetHiddenAndGet(t *testing.T) {
	store, _ := newTestDynamoDB(t)
	ctx := context.Background()

	created, err := store.InsertMany(ctx, candidates(1, "Educational"))
	require.NoError(t, err)
	id := created[0].ID

	updated, err := store.SetHidden(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, updated.IsHidden)
	assert.WithinDuration(t, created[0].CreatedAt, updated.CreatedAt, time.Millisecond)

	got, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsHidden)

	_, err = store.SetHidden(ctx, "missing", true)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDynamoTrend_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	trend := models.Trend{ID: "t1", Title: "A", Category: "News", Source: models.SourceLLM, CreatedAt: now}

	item, err := dynamodbattribute.MarshalMap(toDynamoTrend(trend))
	require.NoError(t, err)
	assert.NotNil(t, item["created_at"].N)

	var back dynamoTrend
	require.NoError(t, dynamodbattribute.UnmarshalMap(item, &back))
	assert.Equal(t, trend.ID, back.model().ID)
	assert.True(t, now.Equal(back.model().CreatedAt))
}

func TestSortAndPaginate(t *testing.T) {
	base := time.Now().UTC()
	trends := []models.Trend{
		{ID: "b", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(time.Second)},
		{ID: "a", CreatedAt: base},
	}

	sortTrends(trends)
	assert.Equal(t, []string{"c", "a", "b"}, []string{trends[0].ID, trends[1].ID, trends[2].ID})

	assert.Len(t, paginate(trends, 2, 0), 2)
	assert.Equal(t, "b", paginate(trends, 2, 2)[0].ID)
	assert.Empty(t, paginate(trends, 2, 5))
}
