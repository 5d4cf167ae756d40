package datalake

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalake/internal/config"
	"datalake/internal/sportsdata"
)

func testConfig() *config.Config {
	return &config.Config{
		Region:       "us-east-1",
		BucketName:   "lake-bucket",
		GlueDatabase: "nba_db",
	}
}

func testPipeline(cfg *config.Config, s3c *fakeS3, gluec *fakeGlue, athenac *fakeAthena, fetch fetcherFunc) *Pipeline {
	return NewPipeline(
		cfg,
		NewBucketProvisioner(s3c, cfg.BucketName, cfg.Region).WithReadyPoll(time.Millisecond, 3),
		NewCatalogProvisioner(gluec, cfg.GlueDatabase),
		NewAthenaConfigurator(athenac, cfg.GlueDatabase, cfg.AthenaOutputLocation()),
		fetch,
	)
}

func TestPipeline_EndToEnd(t *testing.T) {
	cfg := testConfig()
	s3c := &fakeS3{}
	gluec := &fakeGlue{}
	athenac := &fakeAthena{}

	records := []sportsdata.Record{
		{"PlayerID": 1, "FirstName": "A", "LastName": "B", "Team": "X", "Position": "G", "Points": 10},
		{"PlayerID": 2, "FirstName": "C", "LastName": "D", "Team": "Y", "Position": "F", "Points": 20},
	}
	p := testPipeline(cfg, s3c, gluec, athenac, func(_ context.Context) ([]sportsdata.Record, error) {
		return records, nil
	})

	rep := p.Run(context.Background())
	require.False(t, rep.Failed())
	assert.Equal(t, 2, rep.DataRecords)

	// Upload happened once, with a two-line payload under the fixed key.
	require.Equal(t, 1, s3c.putCalls)
	assert.Equal(t, []string{"raw-data/nba_player_data.jsonl"}, s3c.putKeys)
	lines := strings.Split(s3c.putBodies[0], "\n")
	assert.Len(t, lines, 2)

	// Table created exactly once with the six-column schema.
	require.Equal(t, 1, gluec.tableCalls)
	assert.Len(t, gluec.tableInputs[0].TableInput.StorageDescriptor.Columns, 6)

	// Query service configured exactly once.
	assert.Equal(t, 1, athenac.startCalls)

	for step, want := range map[string]Outcome{
		"storage-bucket":   OutcomeCreated,
		"storage-ready":    OutcomeReady,
		"catalog-database": OutcomeCreated,
		"fetch-dataset":    OutcomeFetched,
		"upload-dataset":   OutcomeUploaded,
		"catalog-table":    OutcomeCreated,
		"query-output":     OutcomeConfigured,
	} {
		got, ok := rep.Step(step)
		require.True(t, ok, step)
		assert.Equal(t, want, got.Outcome, step)
	}
	assert.False(t, rep.FinishedAt.IsZero())
}

func TestPipeline_EmptyFetchShortCircuits(t *testing.T) {
	cfg := testConfig()
	s3c := &fakeS3{}
	gluec := &fakeGlue{}
	athenac := &fakeAthena{}

	p := testPipeline(cfg, s3c, gluec, athenac, func(_ context.Context) ([]sportsdata.Record, error) {
		return []sportsdata.Record{}, nil
	})
	rep := p.Run(context.Background())

	assert.Equal(t, 0, s3c.putCalls)
	assert.Equal(t, 0, gluec.tableCalls)
	assert.Equal(t, 0, athenac.startCalls)
	assert.False(t, rep.Failed())

	got, ok := rep.Step("fetch-dataset")
	require.True(t, ok)
	assert.Equal(t, OutcomeEmpty, got.Outcome)

	for _, step := range []string{"upload-dataset", "catalog-table", "query-output"} {
		got, ok := rep.Step(step)
		require.True(t, ok, step)
		assert.Equal(t, OutcomeSkipped, got.Outcome, step)
	}
}

func TestPipeline_DegradedFetchProceedsAsEmpty(t *testing.T) {
	classes := []sportsdata.FailureClass{
		sportsdata.FailHTTPStatus,
		sportsdata.FailConnection,
		sportsdata.FailTimeout,
		sportsdata.FailRequest,
	}

	for _, class := range classes {
		t.Run(string(class), func(t *testing.T) {
			cfg := testConfig()
			s3c := &fakeS3{}
			gluec := &fakeGlue{}
			athenac := &fakeAthena{}

			p := testPipeline(cfg, s3c, gluec, athenac, func(_ context.Context) ([]sportsdata.Record, error) {
				return nil, &sportsdata.APIError{Class: class, Err: errors.New("boom")}
			})
			rep := p.Run(context.Background())

			assert.Equal(t, 0, s3c.putCalls)
			assert.Equal(t, 0, gluec.tableCalls)
			assert.Equal(t, 0, athenac.startCalls)

			got, ok := rep.Step("fetch-dataset")
			require.True(t, ok)
			assert.Equal(t, OutcomeDegraded, got.Outcome)
			assert.Equal(t, string(class), got.Detail)
			assert.NotEmpty(t, got.Err)

			// Degrading to empty is a recorded outcome, not a failure.
			assert.False(t, rep.Failed())
		})
	}
}

func TestPipeline_StepFailureDoesNotHaltRun(t *testing.T) {
	cfg := testConfig()
	s3c := &fakeS3{
		createBucket: func(_ *s3.CreateBucketInput) (*s3.CreateBucketOutput, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	gluec := &fakeGlue{
		createDatabase: func(_ *glue.CreateDatabaseInput) (*glue.CreateDatabaseOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	athenac := &fakeAthena{}

	p := testPipeline(cfg, s3c, gluec, athenac, func(_ context.Context) ([]sportsdata.Record, error) {
		return []sportsdata.Record{{"PlayerID": 1}}, nil
	})
	rep := p.Run(context.Background())

	// Early failures are recorded and every later step still ran.
	assert.True(t, rep.Failed())
	assert.Equal(t, 1, s3c.putCalls)
	assert.Equal(t, 1, gluec.tableCalls)
	assert.Equal(t, 1, athenac.startCalls)

	got, ok := rep.Step("storage-bucket")
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, got.Outcome)

	got, ok = rep.Step("catalog-database")
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, got.Outcome)
}

func TestPipeline_TableLocationMustMatchUpload(t *testing.T) {
	cfg := testConfig()
	s3c := &fakeS3{}
	gluec := &fakeGlue{}
	athenac := &fakeAthena{}

	p := testPipeline(cfg, s3c, gluec, athenac, func(_ context.Context) ([]sportsdata.Record, error) {
		return []sportsdata.Record{{"PlayerID": 1}}, nil
	}).WithTableDef(PlayersTableDef("s3://some-other-bucket/raw-data/"))

	rep := p.Run(context.Background())

	assert.Equal(t, 0, gluec.tableCalls)
	got, ok := rep.Step("catalog-table")
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, got.Outcome)
	assert.Contains(t, got.Err, "does not match upload location")
	assert.True(t, rep.Failed())
}

func TestPipeline_PostRunDestinations(t *testing.T) {
	cfg := testConfig()
	cfg.RunLedgerTable = "datalake-runs"
	cfg.AlertsTopicArn = "arn:aws:sns:us-east-1:123456789012:datalake-alerts"

	var sunk, notified *RunReport
	p := testPipeline(cfg, &fakeS3{}, &fakeGlue{}, &fakeAthena{}, func(_ context.Context) ([]sportsdata.Record, error) {
		return []sportsdata.Record{{"PlayerID": 1}}, nil
	}).WithReportSink(reportSinkFunc(func(_ context.Context, rep *RunReport) error {
		sunk = rep
		return nil
	})).WithNotifier(notifierFunc(func(_ context.Context, rep *RunReport) error {
		notified = rep
		return nil
	}))

	rep := p.Run(context.Background())
	require.NotNil(t, sunk)
	require.NotNil(t, notified)
	assert.Same(t, rep, sunk)

	got, ok := rep.Step("run-ledger")
	require.True(t, ok)
	assert.Equal(t, OutcomeCreated, got.Outcome)
	got, ok = rep.Step("notify")
	require.True(t, ok)
	assert.Equal(t, OutcomeCreated, got.Outcome)
}

type reportSinkFunc func(ctx context.Context, rep *RunReport) error

func (f reportSinkFunc) Write(ctx context.Context, rep *RunReport) error { return f(ctx, rep) }

type notifierFunc func(ctx context.Context, rep *RunReport) error

func (f notifierFunc) Notify(ctx context.Context, rep *RunReport) error { return f(ctx, rep) }
