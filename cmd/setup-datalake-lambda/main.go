package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"datalake/internal/config"
	"datalake/internal/datalake"
	"datalake/internal/ledger"
	"datalake/internal/notify"
	"datalake/internal/sportsdata"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	if err := cfg.ResolveAPIKey(ctx, ssm.NewFromConfig(awsCfg)); err != nil {
		log.Fatalf("resolve sports api key: %v", err)
	}

	p := datalake.NewPipeline(
		cfg,
		datalake.NewBucketProvisioner(s3.NewFromConfig(awsCfg), cfg.BucketName, cfg.Region),
		datalake.NewCatalogProvisioner(glue.NewFromConfig(awsCfg), cfg.GlueDatabase),
		datalake.NewAthenaConfigurator(athena.NewFromConfig(awsCfg), cfg.GlueDatabase, cfg.AthenaOutputLocation()),
		sportsdata.NewClient(cfg.NBAEndpoint, cfg.SportsAPIKey, cfg.HTTPTimeout),
	)
	if cfg.RunLedgerTable != "" {
		p = p.WithReportSink(ledger.NewWriter(dynamodb.NewFromConfig(awsCfg), cfg.RunLedgerTable))
	}
	if cfg.AlertsTopicArn != "" {
		p = p.WithNotifier(notify.NewPublisher(sns.NewFromConfig(awsCfg), cfg.AlertsTopicArn))
	}

	lambda.Start(func(ctx context.Context) (*datalake.RunReport, error) {
		return p.Run(ctx), nil
	})
}
