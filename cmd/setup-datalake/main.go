package main

import (
	"context"
	"fmt"
	"log"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"datalake/internal/config"
	"datalake/internal/datalake"
	"datalake/internal/ledger"
	"datalake/internal/notify"
	"datalake/internal/sportsdata"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "setup-datalake",
		Short: "Provision the NBA analytics data lake and load player data",
		Long: "Creates the S3 bucket, Glue database and table, and the Athena output\n" +
			"location, then fetches NBA player data and uploads it as line-delimited\n" +
			"JSON. Provisioning is best-effort: step failures are reported, not fatal.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "path to an env file with the pipeline configuration")
	return cmd
}

func run(ctx context.Context, envFile string) error {
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	if err := cfg.ResolveAPIKey(ctx, ssm.NewFromConfig(awsCfg)); err != nil {
		return fmt.Errorf("resolve sports api key: %w", err)
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

	rep := p.Run(ctx)
	fmt.Print(rep.Summary())
	return nil
}
