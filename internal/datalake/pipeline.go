package datalake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"datalake/internal/config"
	"datalake/internal/sportsdata"
)

type PlayerFetcher interface {
	FetchPlayers(ctx context.Context) ([]sportsdata.Record, error)
}

// ReportSink persists a finished run report (e.g. the DynamoDB run ledger).
type ReportSink interface {
	Write(ctx context.Context, rep *RunReport) error
}

// Notifier delivers a finished run report (e.g. an SNS topic).
type Notifier interface {
	Notify(ctx context.Context, rep *RunReport) error
}

// Pipeline sequences the provisioning and ingestion steps. Policy lives
// here, not in the components: every step failure is recorded and the run
// continues to the end (best-effort provisioning, not transactional).
type Pipeline struct {
	cfg      *config.Config
	bucket   *BucketProvisioner
	catalog  *CatalogProvisioner
	athena   *AthenaConfigurator
	fetcher  PlayerFetcher
	tableDef TableDef

	sink     ReportSink
	notifier Notifier
}

func NewPipeline(cfg *config.Config, bucket *BucketProvisioner, catalog *CatalogProvisioner, athena *AthenaConfigurator, fetcher PlayerFetcher) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		bucket:   bucket,
		catalog:  catalog,
		athena:   athena,
		fetcher:  fetcher,
		tableDef: PlayersTableDef(cfg.RawDataLocation()),
	}
}

func (p *Pipeline) WithTableDef(def TableDef) *Pipeline {
	p.tableDef = def
	return p
}

func (p *Pipeline) WithReportSink(s ReportSink) *Pipeline {
	p.sink = s
	return p
}

func (p *Pipeline) WithNotifier(n Notifier) *Pipeline {
	p.notifier = n
	return p
}

// Run executes the pipeline and always returns a report; it never returns
// an error. A fetch that degrades to empty, or yields no records, ends the
// run early: there is nothing to upload or catalog.
func (p *Pipeline) Run(ctx context.Context) *RunReport {
	rep := &RunReport{StartedAt: time.Now().UTC()}
	fmt.Println("Starting the data lake setup process...")

	runStep(rep, "storage-bucket", func() (Outcome, string, error) {
		out, err := p.bucket.Ensure(ctx)
		return out, p.cfg.BucketName, err
	})

	runStep(rep, "storage-ready", func() (Outcome, string, error) {
		if err := p.bucket.WaitReady(ctx); err != nil {
			return OutcomeFailed, "", err
		}
		return OutcomeReady, "", nil
	})

	runStep(rep, "catalog-database", func() (Outcome, string, error) {
		out, err := p.catalog.EnsureDatabase(ctx)
		return out, p.cfg.GlueDatabase, err
	})

	var records []sportsdata.Record
	runStep(rep, "fetch-dataset", func() (Outcome, string, error) {
		recs, err := p.fetcher.FetchPlayers(ctx)
		if err != nil {
			var apiErr *sportsdata.APIError
			if errors.As(err, &apiErr) {
				return OutcomeDegraded, string(apiErr.Class), err
			}
			return OutcomeDegraded, "", err
		}
		if len(recs) == 0 {
			return OutcomeEmpty, "", nil
		}
		records = recs
		rep.DataRecords = len(recs)
		return OutcomeFetched, fmt.Sprintf("%d records", len(recs)), nil
	})

	if len(records) == 0 {
		for _, name := range []string{"upload-dataset", "catalog-table", "query-output"} {
			rep.add(StepResult{Name: name, Outcome: OutcomeSkipped, Detail: "no data fetched"})
		}
	} else {
		runStep(rep, "upload-dataset", func() (Outcome, string, error) {
			body, err := sportsdata.ToLineDelimited(records)
			if err != nil {
				return OutcomeFailed, "", err
			}
			if err := p.bucket.Upload(ctx, p.cfg.RawDataKey(), body); err != nil {
				return OutcomeFailed, "", err
			}
			return OutcomeUploaded, p.cfg.RawDataKey(), nil
		})

		runStep(rep, "catalog-table", func() (Outcome, string, error) {
			// The table must describe the bytes the upload just wrote.
			if p.tableDef.Location != p.cfg.RawDataLocation() {
				return OutcomeFailed, "", fmt.Errorf("table location %q does not match upload location %q",
					p.tableDef.Location, p.cfg.RawDataLocation())
			}
			out, err := p.catalog.EnsureTable(ctx, p.tableDef)
			return out, p.tableDef.Name, err
		})

		runStep(rep, "query-output", func() (Outcome, string, error) {
			if err := p.athena.EnsureOutputLocation(ctx); err != nil {
				return OutcomeFailed, "", err
			}
			return OutcomeConfigured, p.cfg.AthenaOutputLocation(), nil
		})
	}

	rep.FinishedAt = time.Now().UTC()

	// Post-run destinations see the report as of FinishedAt; their own
	// outcomes are only in the in-memory report.
	if p.sink != nil {
		runStep(rep, "run-ledger", func() (Outcome, string, error) {
			if err := p.sink.Write(ctx, rep); err != nil {
				return OutcomeFailed, "", err
			}
			return OutcomeCreated, p.cfg.RunLedgerTable, nil
		})
	}
	if p.notifier != nil {
		runStep(rep, "notify", func() (Outcome, string, error) {
			if err := p.notifier.Notify(ctx, rep); err != nil {
				return OutcomeFailed, "", err
			}
			return OutcomeCreated, p.cfg.AlertsTopicArn, nil
		})
	}

	fmt.Println("Data lake setup complete.")
	return rep
}

func runStep(rep *RunReport, name string, fn func() (Outcome, string, error)) {
	start := time.Now()
	out, detail, err := fn()

	sr := StepResult{Name: name, Outcome: out, Detail: detail, Duration: time.Since(start)}
	if err != nil {
		sr.Err = err.Error()
		fmt.Printf("setup: %s %s: %v\n", name, out, err)
	} else {
		fmt.Printf("setup: %s %s %s\n", name, out, detail)
	}
	rep.add(sr)
}
