package communication

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/rs/zerolog"
)

// SMSSender delivers one text message to one phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

type SNSSender struct {
	client   *sns.Client
	senderID string
}

func NewSNSSender(cfg aws.Config, senderID string) *SNSSender {
	return &SNSSender{client: sns.NewFromConfig(cfg), senderID: senderID}
}

func (s *SNSSender) SendSMS(ctx context.Context, phoneNumber, message string) error {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phoneNumber),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// LogSMSSender only logs; used in development.
type LogSMSSender struct {
	Log zerolog.Logger
}

func (l LogSMSSender) SendSMS(_ context.Context, phoneNumber, message string) error {
	l.Log.Info().Str("phone", phoneNumber).Int("length", len(message)).Msg("sms (not sent)")
	return nil
}
