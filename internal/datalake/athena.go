package datalake

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
)

// analyticsDatabase is the logical database the configuration statement
// establishes for future queries.
const analyticsDatabase = "nba_analytics"

type AthenaClient interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
}

// AthenaConfigurator registers the default query result location. The
// statement is CREATE DATABASE IF NOT EXISTS, so the call is naturally
// idempotent and needs no already-exists branch.
type AthenaConfigurator struct {
	athena         AthenaClient
	database       string
	outputLocation string
}

func NewAthenaConfigurator(client AthenaClient, database, outputLocation string) *AthenaConfigurator {
	return &AthenaConfigurator{
		athena:         client,
		database:       database,
		outputLocation: outputLocation,
	}
}

func (c *AthenaConfigurator) EnsureOutputLocation(ctx context.Context) error {
	_, err := c.athena.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String("CREATE DATABASE IF NOT EXISTS " + analyticsDatabase),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(c.database),
		},
		ResultConfiguration: &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(c.outputLocation),
		},
	})
	if err != nil {
		return classify("athena StartQueryExecution", err)
	}
	return nil
}
