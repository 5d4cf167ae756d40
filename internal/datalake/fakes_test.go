package datalake

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"datalake/internal/sportsdata"
)

type fakeS3 struct {
	createBucket func(*s3.CreateBucketInput) (*s3.CreateBucketOutput, error)
	headBucket   func(*s3.HeadBucketInput) (*s3.HeadBucketOutput, error)
	putObject    func(*s3.PutObjectInput) (*s3.PutObjectOutput, error)

	createCalls  int
	createInputs []*s3.CreateBucketInput
	headCalls    int
	putCalls     int
	putKeys      []string
	putBodies    []string
}

func (f *fakeS3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createCalls++
	f.createInputs = append(f.createInputs, in)
	if f.createBucket != nil {
		return f.createBucket(in)
	}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.headCalls++
	if f.headBucket != nil {
		return f.headBucket(in)
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putCalls++
	if in.Key != nil {
		f.putKeys = append(f.putKeys, *in.Key)
	}
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.putBodies = append(f.putBodies, string(b))
	}
	if f.putObject != nil {
		return f.putObject(in)
	}
	return &s3.PutObjectOutput{}, nil
}

type fakeGlue struct {
	createDatabase func(*glue.CreateDatabaseInput) (*glue.CreateDatabaseOutput, error)
	createTable    func(*glue.CreateTableInput) (*glue.CreateTableOutput, error)

	databaseCalls int
	tableCalls    int
	tableInputs   []*glue.CreateTableInput
}

func (f *fakeGlue) CreateDatabase(_ context.Context, in *glue.CreateDatabaseInput, _ ...func(*glue.Options)) (*glue.CreateDatabaseOutput, error) {
	f.databaseCalls++
	if f.createDatabase != nil {
		return f.createDatabase(in)
	}
	return &glue.CreateDatabaseOutput{}, nil
}

func (f *fakeGlue) CreateTable(_ context.Context, in *glue.CreateTableInput, _ ...func(*glue.Options)) (*glue.CreateTableOutput, error) {
	f.tableCalls++
	f.tableInputs = append(f.tableInputs, in)
	if f.createTable != nil {
		return f.createTable(in)
	}
	return &glue.CreateTableOutput{}, nil
}

type fakeAthena struct {
	startQuery func(*athena.StartQueryExecutionInput) (*athena.StartQueryExecutionOutput, error)

	startCalls  int
	startInputs []*athena.StartQueryExecutionInput
}

func (f *fakeAthena) StartQueryExecution(_ context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.startCalls++
	f.startInputs = append(f.startInputs, in)
	if f.startQuery != nil {
		return f.startQuery(in)
	}
	return &athena.StartQueryExecutionOutput{}, nil
}

type fetcherFunc func(ctx context.Context) ([]sportsdata.Record, error)

func (f fetcherFunc) FetchPlayers(ctx context.Context) ([]sportsdata.Record, error) {
	return f(ctx)
}
