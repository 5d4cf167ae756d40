package datalake

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
)

type GlueClient interface {
	CreateDatabase(ctx context.Context, params *glue.CreateDatabaseInput, optFns ...func(*glue.Options)) (*glue.CreateDatabaseOutput, error)
	CreateTable(ctx context.Context, params *glue.CreateTableInput, optFns ...func(*glue.Options)) (*glue.CreateTableOutput, error)
}

type Column struct {
	Name string
	Type string
}

// TableDef is the catalog schema bound to a storage location. The catalog
// does not own the underlying bytes (external table).
type TableDef struct {
	Name             string
	Columns          []Column
	Location         string
	InputFormat      string
	OutputFormat     string
	SerializationLib string
}

// PlayersTableDef is the fixed schema for the NBA player dataset, stored as
// line-delimited JSON at the given location.
func PlayersTableDef(location string) TableDef {
	return TableDef{
		Name: "nba_players",
		Columns: []Column{
			{Name: "PlayerID", Type: "int"},
			{Name: "FirstName", Type: "string"},
			{Name: "LastName", Type: "string"},
			{Name: "Team", Type: "string"},
			{Name: "Position", Type: "string"},
			{Name: "Points", Type: "int"},
		},
		Location:         location,
		InputFormat:      "org.apache.hadoop.mapred.TextInputFormat",
		OutputFormat:     "org.apache.hadoop.hive.ql.io.HiveIgnoreKeyTextOutputFormat",
		SerializationLib: "org.openx.data.jsonserde.JsonSerDe",
	}
}

// CatalogProvisioner ensures the Glue database and table definitions exist.
type CatalogProvisioner struct {
	glue     GlueClient
	database string
}

func NewCatalogProvisioner(client GlueClient, database string) *CatalogProvisioner {
	return &CatalogProvisioner{glue: client, database: database}
}

// EnsureDatabase creates the metadata database; already-exists is success.
func (p *CatalogProvisioner) EnsureDatabase(ctx context.Context) (Outcome, error) {
	_, err := p.glue.CreateDatabase(ctx, &glue.CreateDatabaseInput{
		DatabaseInput: &gluetypes.DatabaseInput{
			Name:        aws.String(p.database),
			Description: aws.String("Glue database for NBA sports analytics."),
		},
	})
	if err != nil {
		var exists *gluetypes.AlreadyExistsException
		if errors.As(err, &exists) {
			return OutcomeAlreadyExists, nil
		}
		return OutcomeFailed, classify("glue CreateDatabase", err)
	}
	return OutcomeCreated, nil
}

// EnsureTable creates the table definition in the database; already-exists
// is success. The database must already exist: the orchestrator runs
// EnsureDatabase first.
func (p *CatalogProvisioner) EnsureTable(ctx context.Context, def TableDef) (Outcome, error) {
	cols := make([]gluetypes.Column, 0, len(def.Columns))
	for _, c := range def.Columns {
		cols = append(cols, gluetypes.Column{
			Name: aws.String(c.Name),
			Type: aws.String(c.Type),
		})
	}

	_, err := p.glue.CreateTable(ctx, &glue.CreateTableInput{
		DatabaseName: aws.String(p.database),
		TableInput: &gluetypes.TableInput{
			Name: aws.String(def.Name),
			StorageDescriptor: &gluetypes.StorageDescriptor{
				Columns:      cols,
				Location:     aws.String(def.Location),
				InputFormat:  aws.String(def.InputFormat),
				OutputFormat: aws.String(def.OutputFormat),
				SerdeInfo: &gluetypes.SerDeInfo{
					SerializationLibrary: aws.String(def.SerializationLib),
				},
			},
			TableType: aws.String("EXTERNAL_TABLE"),
		},
	})
	if err != nil {
		var exists *gluetypes.AlreadyExistsException
		if errors.As(err, &exists) {
			return OutcomeAlreadyExists, nil
		}
		return OutcomeFailed, classify("glue CreateTable", err)
	}
	return OutcomeCreated, nil
}
