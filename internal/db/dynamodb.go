package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Sachin7123/mindguard/internal/clients"
	"github.com/Sachin7123/mindguard/internal/dataset"
	"github.com/Sachin7123/mindguard/internal/models"
)

const DEFAULT_MERGED_TABLE_NAME = "MindguardMergedPosts"

var dbClient *dynamodb.Client

func InitDynamoDB() {
	dbClient = clients.GetDynamoDBClient()
}

func tableName() string {
	if name := os.Getenv("MINDGUARD_TABLE"); name != "" {
		return name
	}
	return DEFAULT_MERGED_TABLE_NAME
}

// BatchInsertMergedRecords writes merged records to the sink table in
// chunks of 25 (the BatchWriteItem limit), retrying unprocessed items with
// doubling backoff.
func BatchInsertMergedRecords(ctx context.Context, records []models.MergedRecord) error {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	const maxBatchSize = 25
	for i := 0; i < len(records); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := i + maxBatchSize
		if end > len(records) {
			end = len(records)
		}

		writeRequests := make([]types.WriteRequest, 0, maxBatchSize)
		for _, record := range records[i:end] {
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{
					Item: RecordToDynamoDBItem(record),
				},
			})
		}

		out, err := dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				tableName(): writeRequests,
			},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to batch write merged records: %w", err)
		}

		retryCount := 0
		backoff := 500 * time.Millisecond
		for len(out.UnprocessedItems) > 0 && retryCount < 3 {
			time.Sleep(backoff)
			backoff *= 2

			slog.Warn("[DynamoDB] Retrying unprocessed merged records...",
				slog.Int("attempt", retryCount+1),
				slog.Int("remaining", len(out.UnprocessedItems[tableName()])))

			out, err = dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Retry error %w", err)
			}

			retryCount++
		}

		if len(out.UnprocessedItems) > 0 {
			slog.Error("[DynamoDB] Some merged records failed after retries",
				slog.Int("remaining", len(out.UnprocessedItems[tableName()])))
		}
	}

	slog.Info("[DynamoDB] Successfully stored merged records",
		slog.Int("count", len(records)))
	return nil
}

// ScanMergedRecords reads the whole sink table back as a dataset. Table
// items always carry the full merged schema, so every column is marked
// present.
func ScanMergedRecords(ctx context.Context) (*dataset.Dataset, error) {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	ds := &dataset.Dataset{
		Columns: map[string]bool{
			dataset.ColTitle: true, dataset.ColText: true,
			dataset.ColScore: true, dataset.ColURL: true,
			dataset.ColCreatedUTC: true, dataset.ColSubreddit: true,
			dataset.ColLexiconLabel: true, dataset.ColLexiconPolarity: true,
			dataset.ColNeuralLabel: true, dataset.ColNeuralConfidence: true,
		},
	}

	input := &dynamodb.ScanInput{
		TableName: aws.String(tableName()),
	}
	paginator := dynamodb.NewScanPaginator(dbClient, input)

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for merged records failed: %w", err)
		}

		var page []mergedItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal merged record page",
				slog.String("error", err.Error()))
			return nil, err
		}
		for _, item := range page {
			ds.Records = append(ds.Records, item.toRecord())
		}
	}

	slog.Info("[DynamoDB] Successfully retrieved merged records",
		slog.Int("count", len(ds.Records)))
	return ds, nil
}

// mergedItem is the flat attribute layout of one table item.
type mergedItem struct {
	PostID           string   `dynamodbav:"post_id"`
	Title            string   `dynamodbav:"title"`
	Text             string   `dynamodbav:"text"`
	Score            int      `dynamodbav:"score"`
	URL              string   `dynamodbav:"url"`
	CreatedUTC       int64    `dynamodbav:"created_utc"`
	Subreddit        string   `dynamodbav:"subreddit"`
	LexiconLabel     string   `dynamodbav:"lexicon_label"`
	LexiconPolarity  *float64 `dynamodbav:"lexicon_polarity"`
	NeuralLabel      string   `dynamodbav:"neural_label"`
	NeuralConfidence *float64 `dynamodbav:"neural_confidence"`
}

func (m mergedItem) toRecord() models.MergedRecord {
	record := models.MergedRecord{
		RawPost: models.RawPost{
			PostID:    m.PostID,
			Title:     m.Title,
			Body:      m.Text,
			Score:     m.Score,
			URL:       m.URL,
			Subreddit: m.Subreddit,
		},
		LexiconLabel:     m.LexiconLabel,
		LexiconPolarity:  m.LexiconPolarity,
		NeuralLabel:      m.NeuralLabel,
		NeuralConfidence: m.NeuralConfidence,
	}
	if m.CreatedUTC != 0 {
		record.CreatedUTC = time.Unix(m.CreatedUTC, 0).UTC()
	}
	return record
}

func RecordToDynamoDBItem(record models.MergedRecord) map[string]types.AttributeValue {
	item := make(map[string]types.AttributeValue)

	item["post_id"] = &types.AttributeValueMemberS{Value: record.PostID}
	item["title"] = &types.AttributeValueMemberS{Value: record.Title}
	item["score"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", record.Score)}
	item["subreddit"] = &types.AttributeValueMemberS{Value: record.Subreddit}
	item["lexicon_label"] = &types.AttributeValueMemberS{Value: record.LexiconLabel}
	item["neural_label"] = &types.AttributeValueMemberS{Value: record.NeuralLabel}

	if record.Body != "" {
		item["text"] = &types.AttributeValueMemberS{Value: record.Body}
	}
	if record.URL != "" {
		item["url"] = &types.AttributeValueMemberS{Value: record.URL}
	}
	if !record.CreatedUTC.IsZero() {
		item["created_utc"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", record.CreatedUTC.Unix())}
	}
	if record.LexiconPolarity != nil {
		item["lexicon_polarity"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%f", *record.LexiconPolarity)}
	}
	if record.NeuralConfidence != nil {
		item["neural_confidence"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%f", *record.NeuralConfidence)}
	}

	return item
}
