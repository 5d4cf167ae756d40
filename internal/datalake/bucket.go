// Package datalake provisions the storage, catalog and query layers of the
// analytics data lake and orchestrates the one-shot ingestion run.
package datalake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"datalake/internal/config"
)

type S3Client interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BucketProvisioner ensures the data lake bucket exists and uploads the
// serialized batch into it.
type BucketProvisioner struct {
	s3     S3Client
	bucket string
	region string

	pollInterval time.Duration
	maxPollTries int
}

func NewBucketProvisioner(client S3Client, bucket, region string) *BucketProvisioner {
	return &BucketProvisioner{
		s3:           client,
		bucket:       bucket,
		region:       region,
		pollInterval: time.Second,
		maxPollTries: 10,
	}
}

// WithReadyPoll overrides the readiness poll cadence.
func (p *BucketProvisioner) WithReadyPoll(interval time.Duration, attempts int) *BucketProvisioner {
	p.pollInterval = interval
	p.maxPollTries = attempts
	return p
}

// Ensure creates the bucket if it does not exist. A bucket already owned by
// the caller is success. S3 rejects a location constraint naming the default
// region, so that creation call omits it entirely.
func (p *BucketProvisioner) Ensure(ctx context.Context) (Outcome, error) {
	in := &s3.CreateBucketInput{Bucket: aws.String(p.bucket)}
	if p.region != config.DefaultRegion {
		in.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(p.region),
		}
	}

	_, err := p.s3.CreateBucket(ctx, in)
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return OutcomeAlreadyExists, nil
		}
		return OutcomeFailed, classify("s3 CreateBucket", err)
	}
	return OutcomeCreated, nil
}

// WaitReady polls HeadBucket until the bucket is visible, bounded by a fixed
// number of attempts. Bucket creation propagates eventually-consistently;
// polling replaces a blind sleep.
func (p *BucketProvisioner) WaitReady(ctx context.Context) error {
	var lastErr error
	for i := 0; i < p.maxPollTries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.pollInterval):
			}
		}
		_, lastErr = p.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.bucket)})
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("bucket %s not visible after %d attempts: %w", p.bucket, p.maxPollTries, lastErr)
}

// Upload writes the serialized batch under the given key.
func (p *BucketProvisioner) Upload(ctx context.Context, key, body string) error {
	_, err := p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(body),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return classify("s3 PutObject", err)
	}
	return nil
}
