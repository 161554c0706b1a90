// Package archive stores claim receipts in S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
)

// Archive persists claim receipts and hands out temporary links to them.
type Archive interface {
	Store(ctx context.Context, claim *models.Claim) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

// Options configures the S3 client.
type Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
	URLExpiry    time.Duration
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	presignGetObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignGetObject(ctx, in, optFns...)
	}
)

// S3Archive writes one JSON document per claim.
type S3Archive struct {
	client *s3.Client
	opts   Options
}

func NewS3Archive(ctx context.Context, opts Options) (*S3Archive, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	if opts.URLExpiry <= 0 {
		opts.URLExpiry = 15 * time.Minute
	}

	return &S3Archive{client: client, opts: opts}, nil
}

// ReceiptKey is the object key of a claim's receipt document.
func ReceiptKey(c *models.Claim) string {
	return fmt.Sprintf("receipts/%s/%s.json", c.VaultID, c.ID)
}

type receiptDocument struct {
	ClaimID     string           `json:"claim_id"`
	VaultID     string           `json:"vault_id"`
	Beneficiary string           `json:"beneficiary"`
	Payouts     []models.Payout  `json:"payouts"`
	Receipts    []models.Receipt `json:"receipts"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func (a *S3Archive) Store(ctx context.Context, c *models.Claim) (string, error) {
	body, err := json.Marshal(receiptDocument{
		ClaimID:     c.ID,
		VaultID:     c.VaultID,
		Beneficiary: c.Beneficiary,
		Payouts:     c.Payouts,
		Receipts:    c.Receipts,
		CompletedAt: c.CompletedAt,
	})
	if err != nil {
		return "", err
	}

	key := ReceiptKey(c)
	err = putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put receipt: %w", err)
	}
	return key, nil
}

func (a *S3Archive) URL(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(a.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.opts.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.opts.URLExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Nop is used when archiving is disabled.
type Nop struct{}

func (Nop) Store(context.Context, *models.Claim) (string, error) { return "", nil }

func (Nop) URL(context.Context, string) (string, error) {
	return "", common.NotFound("receipt archive")
}
