// Package ledger persists finished run reports to DynamoDB so past runs can
// be inspected: a completed process does not imply every step succeeded.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"datalake/internal/datalake"
)

type DynamoClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Writer stores one item per pipeline run.
type Writer struct {
	ddb   DynamoClient
	table string
}

func NewWriter(client DynamoClient, table string) *Writer {
	return &Writer{ddb: client, table: table}
}

// Write records the report under PK "RUN#<started-at>". Step results are
// stored as a DynamoDB list so individual outcomes stay queryable.
func (w *Writer) Write(ctx context.Context, rep *datalake.RunReport) error {
	steps, err := attributevalue.Marshal(rep.Steps)
	if err != nil {
		return fmt.Errorf("marshal run steps: %w", err)
	}

	item := map[string]types.AttributeValue{
		"PK":          &types.AttributeValueMemberS{Value: "RUN#" + rep.StartedAt.Format(time.RFC3339Nano)},
		"SK":          &types.AttributeValueMemberS{Value: "REPORT"},
		"StartedAt":   &types.AttributeValueMemberS{Value: rep.StartedAt.Format(time.RFC3339)},
		"FinishedAt":  &types.AttributeValueMemberS{Value: rep.FinishedAt.Format(time.RFC3339)},
		"DataRecords": &types.AttributeValueMemberN{Value: strconv.Itoa(rep.DataRecords)},
		"Failed":      &types.AttributeValueMemberBOOL{Value: rep.Failed()},
		"Steps":       steps,
	}

	if _, err := w.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(w.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("ddb put run report: %w", err)
	}
	return nil
}
