package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"loantrack/internal/domain/decision"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher fans decision events out to an SNS topic.
type SNSPublisher struct {
	client   snsAPI
	topicARN string
}

func NewSNSPublisher(ctx context.Context, region, topicARN string) (*SNSPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

func (p *SNSPublisher) Publish(ctx context.Context, evt decision.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String(fmt.Sprintf("loan application %s", evt.ToStatus)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String("loan.decision." + string(evt.Action)),
			},
			"to_status": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(evt.ToStatus)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", evt.DecisionID, err)
	}
	return nil
}

// LogPublisher records events in the service log when no topic is configured.
type LogPublisher struct{ log *zap.Logger }

func NewLogPublisher(log *zap.Logger) *LogPublisher { return &LogPublisher{log: log} }

func (p *LogPublisher) Publish(_ context.Context, evt decision.Event) error {
	p.log.Info("decision event",
		zap.String("decision_id", evt.DecisionID),
		zap.String("application_id", evt.ApplicationID),
		zap.String("action", string(evt.Action)),
		zap.String("from", string(evt.FromStatus)),
		zap.String("to", string(evt.ToStatus)),
		zap.String("actor_id", evt.ActorID),
	)
	return nil
}
