package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESConfig holds configuration for the SES mailer.
type SESConfig struct {
	Region      string
	AccessKey   string
	SecretKey   string
	FromAddress string
	FromName    string
}

// SESConfigFromEnv creates an SESConfig from environment variables.
func SESConfigFromEnv() SESConfig {
	region := os.Getenv("SES_REGION")
	if region == "" {
		region = "eu-west-1"
	}
	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "tariff.ai Privacy Team"
	}
	return SESConfig{
		Region:      region,
		AccessKey:   os.Getenv("SES_ACCESS_KEY"),
		SecretKey:   os.Getenv("SES_SECRET_KEY"),
		FromAddress: os.Getenv("EMAIL_FROM"),
		FromName:    fromName,
	}
}

// SESMailer sends email through AWS SES v2.
type SESMailer struct {
	client *sesv2.Client
	from   string
}

// NewSESMailer creates a new SES mailer.
func NewSESMailer(ctx context.Context, cfg SESConfig) (*SESMailer, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	// Static credentials are optional; without them the SDK falls back to
	// the ambient credential chain (instance role, env, shared config).
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}

	return &SESMailer{
		client: sesv2.NewFromConfig(awsCfg),
		from:   from,
	}, nil
}

// Send delivers a single email through SES.
func (m *SESMailer) Send(ctx context.Context, email Email) error {
	body := &types.Body{}
	if email.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(email.HTMLBody)}
	}
	if email.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(email.TextBody)}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(email.Subject)},
				Body:    body,
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("%w: %s", ErrSendFailed, err.Error())
	}
	return nil
}
