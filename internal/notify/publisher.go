// Package notify publishes run summaries to an SNS topic.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"datalake/internal/datalake"
)

type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Publisher struct {
	sns      SNSClient
	topicArn string
}

func NewPublisher(client SNSClient, topicArn string) *Publisher {
	return &Publisher{sns: client, topicArn: topicArn}
}

// Notify sends the report summary. The subject says up front whether any
// step failed.
func (p *Publisher) Notify(ctx context.Context, rep *datalake.RunReport) error {
	subject := "Data lake setup: ok"
	if rep.Failed() {
		subject = "Data lake setup: completed with failures"
	}

	if _, err := p.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(rep.Summary()),
	}); err != nil {
		return fmt.Errorf("sns publish run report: %w", err)
	}
	return nil
}
