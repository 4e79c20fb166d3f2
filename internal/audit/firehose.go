package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/aws/aws-sdk-go-v2/service/firehose/types"
)

// firehoseAPI is the slice of the Firehose client the emitter needs.
type firehoseAPI interface {
	PutRecord(ctx context.Context, params *firehose.PutRecordInput, optFns ...func(*firehose.Options)) (*firehose.PutRecordOutput, error)
}

// FirehoseEmitter puts one JSON record per event on a Kinesis Data Firehose
// delivery stream.
type FirehoseEmitter struct {
	client firehoseAPI
	stream string
}

func NewFirehoseEmitter(client firehoseAPI, stream string) *FirehoseEmitter {
	return &FirehoseEmitter{
		client: client,
		stream: stream,
	}
}

func (e *FirehoseEmitter) Emit(ctx context.Context, event Event) error {
	const op = "audit.FirehoseEmitter.Emit"

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal event: %w", op, err)
	}

	_, err = e.client.PutRecord(ctx, &firehose.PutRecordInput{
		DeliveryStreamName: aws.String(e.stream),
		Record: &types.Record{
			Data: data,
		},
	})
	if err != nil {
		return fmt.Errorf("%s: failed to put record: %w", op, err)
	}

	return nil
}
