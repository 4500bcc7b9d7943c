// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// Store maps document paths onto a single DynamoDB table keyed by device:
// "/devices/{id}/readings/{ts}" becomes PK "DEVICE#{id}", SK "readings#{ts}".
type Store struct {
	api      dynamodbiface.DynamoDBAPI
	table    string
	endpoint string
	log      log.Logger
}

// StoreOption represents a single store option.
type StoreOption interface{ store(*Store) }

type withLogger struct{ *slog.Logger }

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return withLogger{logger}
}

func (o withLogger) store(s *Store) {
	s.log = log.Wrap(o.Logger)
}

// Name is the sink name used in logs and telemetry.
const Name = "dynamodb"

// Key attribute names.
const (
	PartitionKey = "PK"
	SortKey      = "SK"
)

// New creates a store over an existing DynamoDB client.
func New(
	api dynamodbiface.DynamoDBAPI,
	table, endpoint string,
	opt ...StoreOption,
) *Store {
	s := &Store{api: api, table: table, endpoint: endpoint}
	for o := range options.Apply[StoreOption](opt) {
		o.store(s)
	}
	return s
}

// NewFromRegion creates a store using the default AWS credential chain.
func NewFromRegion(
	region, table string,
	opt ...StoreOption,
) (*Store, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("dynamodb: create session: %w", err)
	}
	svc := dynamodb.New(sess)
	return New(svc, table, svc.Endpoint, opt...), nil
}

// Name implements docdb.Store.
func (*Store) Name() string {
	return Name
}

// Ready implements docdb.Store. Credentials are resolved lazily by the SDK,
// so a configured table is all that is required.
func (s *Store) Ready() bool {
	return s.api != nil && s.table != ""
}

// Endpoint implements docdb.Store.
func (s *Store) Endpoint() string {
	return s.endpoint
}

// Put stores the document as an item.
func (s *Store) Put(ctx context.Context, path string, doc any) (int, error) {
	pk, sk, err := Keys(path)
	if err != nil {
		return 0, err
	}

	item, err := dynamodbattribute.MarshalMap(doc)
	if err != nil {
		return 0, fmt.Errorf("dynamodb: encode %s: %w", path, err)
	}
	item[PartitionKey] = &dynamodb.AttributeValue{S: aws.String(pk)}
	item[SortKey] = &dynamodb.AttributeValue{S: aws.String(sk)}

	_, err = s.api.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		var rf awserr.RequestFailure
		if errors.As(err, &rf) {
			return rf.StatusCode(), &sink.RejectionError{
				StatusCode: rf.StatusCode(),
				Body:       rf.Code() + ": " + rf.Message(),
			}
		}
		return 0, sink.NewTransportError("put item", err)
	}

	s.log.Log(ctx, slog.LevelDebug, "item written",
		slog.String("pk", pk),
		slog.String("sk", sk),
	)
	return http.StatusOK, nil
}

// Keys derives the item keys from a document path.
func Keys(path string) (pk, sk string, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 || parts[0] != "devices" || parts[1] == "" {
		return "", "", fmt.Errorf("dynamodb: unsupported path %q", path)
	}
	return "DEVICE#" + parts[1], strings.Join(parts[2:], "#"), nil
}
