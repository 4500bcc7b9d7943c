// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package dynamo_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/docdb"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/dynamo"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	inputs []*dynamodb.PutItemInput
	err    error
}

func (f *fakeDynamo) PutItemWithContext(
	_ aws.Context,
	in *dynamodb.PutItemInput,
	_ ...request.Option,
) (*dynamodb.PutItemOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

type resolver struct{}

func (resolver) LookupHost(context.Context, string) ([]string, error) {
	return []string{"192.0.2.20"}, nil
}

func TestKeys(t *testing.T) {
	pk, sk, err := dynamo.Keys("/devices/ABC/readings/1700000123")
	require.NoError(t, err)
	require.Equal(t, "DEVICE#ABC", pk)
	require.Equal(t, "readings#1700000123", sk)

	_, sk, err = dynamo.Keys("/devices/ABC/info")
	require.NoError(t, err)
	require.Equal(t, "info", sk)

	for _, bad := range []string{"", "/devices/ABC", "/sites/ABC/info", "/devices//info"} {
		_, _, err := dynamo.Keys(bad)
		require.Error(t, err, bad)
	}
}

func TestPutReading(t *testing.T) {
	api := &fakeDynamo{}
	store := dynamo.New(api, "weather", "https://dynamodb.eu-west-1.amazonaws.com")
	s := docdb.New(store, docdb.WithResolver{Resolver: resolver{}})

	require.Equal(t, dynamo.Name, s.Name())
	require.NoError(t, s.Probe(context.Background()))

	status, err := s.Write(context.Background(), &sink.Reading{
		Device:     "ABC",
		Sample:     sensor.Sample{Temperature: 21.5, GasPPM: 350},
		Prediction: model.Prediction{Class: model.Rainy},
		Timestamp:  time.Unix(1_700_000_123, 0),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, api.inputs, 1)
	in := api.inputs[0]
	require.Equal(t, "weather", aws.StringValue(in.TableName))
	require.Equal(t, "DEVICE#ABC", aws.StringValue(in.Item[dynamo.PartitionKey].S))
	require.Equal(t, "readings#1700000123", aws.StringValue(in.Item[dynamo.SortKey].S))
	require.Equal(t, "21.5", aws.StringValue(in.Item["temperature"].N))
	require.Equal(t, "Rainy", aws.StringValue(in.Item["prediction"].S))
	require.Equal(t, "Good", aws.StringValue(in.Item["gas_quality"].S))
	require.NotContains(t, in.Item, "signal")
}

func TestPutErrors(t *testing.T) {
	api := &fakeDynamo{err: awserr.NewRequestFailure(
		awserr.New(dynamodb.ErrCodeProvisionedThroughputExceededException, "slow down", nil),
		http.StatusBadRequest,
		"req-1",
	)}
	store := dynamo.New(api, "weather", "https://dynamodb.eu-west-1.amazonaws.com")

	status, err := store.Put(context.Background(), "/devices/ABC/status", docdb.Status{Online: true})
	var rej *sink.RejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, rej.Body, "slow down")

	api.err = errors.New("dial tcp: no route to host")
	_, err = store.Put(context.Background(), "/devices/ABC/status", docdb.Status{})
	var te *sink.TransportError
	require.ErrorAs(t, err, &te)

	_, err = store.Put(context.Background(), "/elsewhere", docdb.Status{})
	require.Error(t, err)
}

func TestReady(t *testing.T) {
	require.True(t, dynamo.New(&fakeDynamo{}, "weather", "").Ready())
	require.False(t, dynamo.New(&fakeDynamo{}, "", "").Ready())
}
