// Package config loads the pipeline configuration from the environment
// into an explicit struct that is passed to every component. There is no
// module-level configuration state.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const (
	// DefaultRegion is the region for which S3 rejects a location constraint.
	DefaultRegion = "us-east-1"

	rawDataPrefix       = "raw-data/"
	rawDataKey          = rawDataPrefix + "nba_player_data.jsonl"
	athenaResultsPrefix = "athena-results/"
)

// SSMClient is the subset of the SSM API used to resolve the sports API key.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Config holds everything the pipeline needs. Construct it once with Load
// and hand it to the component constructors.
type Config struct {
	Region       string
	BucketName   string
	GlueDatabase string

	SportsAPIKey      string
	SportsAPIKeyParam string // SSM parameter name, used when SportsAPIKey is empty
	NBAEndpoint       string

	HTTPTimeout time.Duration

	// Optional post-run destinations. Empty disables the step.
	RunLedgerTable string
	AlertsTopicArn string
}

// Load builds a Config from environment variables.
//
// Env:
// - AWS_REGION (default "us-east-1")
// - S3_BUCKET_NAME (required)
// - GLUE_DATABASE_NAME (required)
// - SPORTS_DATA_API_KEY or SPORTS_DATA_API_KEY_PARAM (one required)
// - NBA_ENDPOINT (required)
// - HTTP_TIMEOUT_SECONDS (default "30")
// - RUN_LEDGER_TABLE (optional)
// - ALERTS_TOPIC_ARN (optional)
func Load() (*Config, error) {
	cfg := &Config{
		Region:            strings.TrimSpace(os.Getenv("AWS_REGION")),
		BucketName:        strings.TrimSpace(os.Getenv("S3_BUCKET_NAME")),
		GlueDatabase:      strings.TrimSpace(os.Getenv("GLUE_DATABASE_NAME")),
		SportsAPIKey:      strings.TrimSpace(os.Getenv("SPORTS_DATA_API_KEY")),
		SportsAPIKeyParam: strings.TrimSpace(os.Getenv("SPORTS_DATA_API_KEY_PARAM")),
		NBAEndpoint:       strings.TrimSpace(os.Getenv("NBA_ENDPOINT")),
		RunLedgerTable:    strings.TrimSpace(os.Getenv("RUN_LEDGER_TABLE")),
		AlertsTopicArn:    strings.TrimSpace(os.Getenv("ALERTS_TOPIC_ARN")),
		HTTPTimeout:       30 * time.Second,
	}

	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeout = time.Duration(n) * time.Second
		}
	}

	if cfg.BucketName == "" {
		return nil, fmt.Errorf("missing env S3_BUCKET_NAME")
	}
	if cfg.GlueDatabase == "" {
		return nil, fmt.Errorf("missing env GLUE_DATABASE_NAME")
	}
	if cfg.NBAEndpoint == "" {
		return nil, fmt.Errorf("missing env NBA_ENDPOINT")
	}
	if cfg.SportsAPIKey == "" && cfg.SportsAPIKeyParam == "" {
		return nil, fmt.Errorf("missing env SPORTS_DATA_API_KEY (or SPORTS_DATA_API_KEY_PARAM)")
	}

	return cfg, nil
}

// ResolveAPIKey fetches the sports API key from SSM Parameter Store when it
// was not supplied directly. No-op if the key is already set.
func (c *Config) ResolveAPIKey(ctx context.Context, client SSMClient) error {
	if c.SportsAPIKey != "" {
		return nil
	}
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(c.SportsAPIKeyParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("ssm GetParameter %s: %w", c.SportsAPIKeyParam, err)
	}
	key := strings.TrimSpace(aws.ToString(out.Parameter.Value))
	if key == "" {
		return fmt.Errorf("ssm parameter %s is empty", c.SportsAPIKeyParam)
	}
	c.SportsAPIKey = key
	return nil
}

// RawDataKey is the object key the serialized batch is uploaded under.
func (c *Config) RawDataKey() string {
	return rawDataKey
}

// RawDataLocation is the S3 URI prefix the Glue table points at. It is
// derived from the same constant as RawDataKey so the catalog can never
// reference a different location than the upload writes to.
func (c *Config) RawDataLocation() string {
	return fmt.Sprintf("s3://%s/%s", c.BucketName, rawDataPrefix)
}

// AthenaOutputLocation is where Athena writes query results.
func (c *Config) AthenaOutputLocation() string {
	return fmt.Sprintf("s3://%s/%s", c.BucketName, athenaResultsPrefix)
}
