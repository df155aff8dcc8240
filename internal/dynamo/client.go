// Package dynamo provides a typed table store over the AWS DynamoDB SDK.
//
// Records are plain structs with dynamodbav tags. Each Table knows its key
// schema (partition attribute and optional sort attribute) and maps SDK
// conditional-check failures onto ErrNotFound / ErrAlreadyExists.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// API is the subset of the DynamoDB client used by this package.
type API interface {
	GetItem(ctx context.Context, in *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, in *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	Query(ctx context.Context, in *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	Scan(ctx context.Context, in *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
	ListTables(ctx context.Context, in *sdk.ListTablesInput, optFns ...func(*sdk.Options)) (*sdk.ListTablesOutput, error)
}

// NewClient creates a DynamoDB client. A non-empty endpoint overrides the
// regional endpoint (DynamoDB Local, LocalStack).
func NewClient(cfg aws.Config, endpoint string) *sdk.Client {
	return sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// Pinger checks that DynamoDB answers requests.
type Pinger struct {
	api API
}

// NewPinger creates a Pinger over the given client.
func NewPinger(api API) *Pinger {
	return &Pinger{api: api}
}

// Ping issues a one-table ListTables call.
func (p *Pinger) Ping(ctx context.Context) error {
	if _, err := p.api.ListTables(ctx, &sdk.ListTablesInput{Limit: aws.Int32(1)}); err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}
	return nil
}

// TableName joins an optional environment prefix and a base table name.
func TableName(prefix, base string) string {
	if prefix == "" {
		return base
	}
	return prefix + "-" + base
}
