package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"

	"github.com/cyderes/trending-topics-service/internal/config"
	"github.com/cyderes/trending-topics-service/internal/models"
)

// maxTransactItems is the DynamoDB limit of items per TransactWriteItems call
const maxTransactItems = 100

// DynamoDBStorage implements Storage interface using AWS DynamoDB
type DynamoDBStorage struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
	logger    *slog.Logger
}

// dynamoTrend is the item layout; created_at is kept in unix milliseconds
type dynamoTrend struct {
	ID        string `dynamodbav:"id"`
	Title     string `dynamodbav:"title"`
	Summary   string `dynamodbav:"summary"`
	Category  string `dynamodbav:"category"`
	Source    string `dynamodbav:"source"`
	IsHidden  bool   `dynamodbav:"is_hidden"`
	CreatedAt int64  `dynamodbav:"created_at"`
}

func toDynamoTrend(t models.Trend) dynamoTrend {
	return dynamoTrend{
		ID:        t.ID,
		Title:     t.Title,
		Summary:   t.Summary,
		Category:  t.Category,
		Source:    string(t.Source),
		IsHidden:  t.IsHidden,
		CreatedAt: t.CreatedAt.UnixMilli(),
	}
}

func (d dynamoTrend) model() models.Trend {
	return models.Trend{
		ID:        d.ID,
		Title:     d.Title,
		Summary:   d.Summary,
		Category:  d.Category,
		Source:    models.Source(d.Source),
		IsHidden:  d.IsHidden,
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
	}
}

// NewDynamoDBStorage creates a new DynamoDB storage instance
func NewDynamoDBStorage(cfg config.StorageConfig, logger *slog.Logger) (*DynamoDBStorage, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}

	// For local testing with DynamoDB Local
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	storage := newDynamoDBStorage(dynamodb.New(sess), cfg.TableName, logger)

	// Create table if it doesn't exist (for local testing)
	if err := storage.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure table exists: %w", err)
	}

	logger.Info("dynamodb storage ready", "table", cfg.TableName, "region", cfg.Region)
	return storage, nil
}

func newDynamoDBStorage(client dynamodbiface.DynamoDBAPI, tableName string, logger *slog.Logger) *DynamoDBStorage {
	return &DynamoDBStorage{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// ensureTable creates the DynamoDB table if it doesn't exist
func (d *DynamoDBStorage) ensureTable() error {
	_, err := d.client.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	if err == nil {
		return nil
	}

	input := &dynamodb.CreateTableInput{
		TableName: aws.String(d.tableName),
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("id"),
				KeyType:       aws.String("HASH"),
			},
		},
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("id"),
				AttributeType: aws.String("S"),
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	}

	if _, err := d.client.CreateTable(input); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return d.client.WaitUntilTableExists(&dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
}

// InsertMany writes trends in transactions of up to 100 items. Each chunk is
// all-or-nothing; a failure after the first chunk is a PartialInsertError.
func (d *DynamoDBStorage) InsertMany(ctx context.Context, candidates []models.CandidateTrend) ([]models.Trend, error) {
	trends := newTrends(candidates)

	for start := 0; start < len(trends); start += maxTransactItems {
		end := min(start+maxTransactItems, len(trends))

		items := make([]*dynamodb.TransactWriteItem, 0, end-start)
		for _, t := range trends[start:end] {
			item, err := dynamodbattribute.MarshalMap(toDynamoTrend(t))
			if err != nil {
				return nil, fmt.Errorf("failed to marshal trend %s: %w", t.ID, err)
			}
			items = append(items, &dynamodb.TransactWriteItem{
				Put: &dynamodb.Put{
					TableName:           aws.String(d.tableName),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			})
		}

		_, err := d.client.TransactWriteItemsWithContext(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items,
		})
		if err != nil {
			if start == 0 {
				return nil, fmt.Errorf("failed to store trends: %w", err)
			}
			return nil, &PartialInsertError{
				Inserted: trends[:start],
				Failed:   len(trends) - start,
				Err:      err,
			}
		}
	}

	return trends, nil
}

// List scans the table with a server-side filter, then orders and pages
// the matches in memory
func (d *DynamoDBStorage) List(ctx context.Context, filter Filter) ([]models.Trend, int, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(d.tableName),
	}

	if cond, ok := dynamoCondition(filter); ok {
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to build filter: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var (
		matched []models.Trend
		pageErr error
	)
	err := d.client.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		var items []dynamoTrend
		if err := dynamodbattribute.UnmarshalListOfMaps(page.Items, &items); err != nil {
			pageErr = fmt.Errorf("failed to unmarshal trends: %w", err)
			return false
		}
		for _, item := range items {
			if t := item.model(); filter.matches(t) {
				matched = append(matched, t)
			}
		}
		return true
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan trends: %w", err)
	}
	if pageErr != nil {
		return nil, 0, pageErr
	}

	sortTrends(matched)
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func dynamoCondition(filter Filter) (expression.ConditionBuilder, bool) {
	var conds []expression.ConditionBuilder
	if filter.Category != "" {
		conds = append(conds, expression.Name("category").Equal(expression.Value(filter.Category)))
	}
	if filter.Hidden != nil {
		conds = append(conds, expression.Name("is_hidden").Equal(expression.Value(*filter.Hidden)))
	}

	switch len(conds) {
	case 0:
		return expression.ConditionBuilder{}, false
	case 1:
		return conds[0], true
	default:
		return expression.And(conds[0], conds[1], conds[2:]...), true
	}
}

// GetByID retrieves a specific trend by ID
func (d *DynamoDBStorage) GetByID(ctx context.Context, id string) (*models.Trend, error) {
	result, err := d.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       dynamoKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get trend %s: %w", id, err)
	}
	if result.Item == nil {
		return nil, models.ErrNotFound
	}

	var item dynamoTrend
	if err := dynamodbattribute.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trend: %w", err)
	}

	trend := item.model()
	return &trend, nil
}

// SetHidden updates the visibility flag of an existing item
func (d *DynamoDBStorage) SetHidden(ctx context.Context, id string, hidden bool) (*models.Trend, error) {
	result, err := d.client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(d.tableName),
		Key:                 dynamoKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
		UpdateExpression:    aws.String("SET is_hidden = :h"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":h": {BOOL: aws.Bool(hidden)},
		},
		ReturnValues: aws.String(dynamodb.ReturnValueAllNew),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update trend %s: %w", id, err)
	}

	var item dynamoTrend
	if err := dynamodbattribute.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trend: %w", err)
	}

	trend := item.model()
	return &trend, nil
}

func dynamoKey(id string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"id": {S: aws.String(id)},
	}
}

// Ping checks that the table is reachable
func (d *DynamoDBStorage) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	return err
}

// Close closes the DynamoDB connection
func (d *DynamoDBStorage) Close() error {
	// DynamoDB client doesn't need explicit closing
	return nil
}
