package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewEvent(t *testing.T) {
	reqCtx := &RequestContext{Method: "GET", Path: "/views/github/gopher/views.svg"}

	ev := NewEvent("github", "gopher/views", map[string]string{"user": "gopher", "repo": "views"}, 7, reqCtx)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "github", ev.Namespace)
	assert.Equal(t, "gopher/views", ev.Identifier)
	assert.EqualValues(t, 7, ev.Total)
	assert.False(t, ev.ViewedAt.IsZero())
	assert.Equal(t, reqCtx, ev.Request)

	other := NewEvent("github", "gopher/views", nil, 8, nil)
	assert.NotEqual(t, ev.ID, other.ID)
}

func TestLogEmitter_Emit(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	emitter := NewLogEmitter(logger)

	err := emitter.Emit(context.TODO(), NewEvent("github", "gopher/views", nil, 3, nil))

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "view counted")
	assert.Contains(t, buf.String(), `"total_views":3`)
}

type mockFirehoseAPI struct {
	mock.Mock
}

func (m *mockFirehoseAPI) PutRecord(ctx context.Context, params *firehose.PutRecordInput, optFns ...func(*firehose.Options)) (*firehose.PutRecordOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*firehose.PutRecordOutput)
	return out, args.Error(1)
}

func TestFirehoseEmitter_Emit(t *testing.T) {
	t.Run("puts one json record on the stream", func(t *testing.T) {
		api := new(mockFirehoseAPI)
		emitter := NewFirehoseEmitter(api, "views_log_stream_dev")

		api.On("PutRecord", mock.Anything, mock.MatchedBy(func(in *firehose.PutRecordInput) bool {
			if *in.DeliveryStreamName != "views_log_stream_dev" {
				return false
			}

			var ev Event
			if err := json.Unmarshal(in.Record.Data, &ev); err != nil {
				return false
			}

			return ev.Namespace == "github" && ev.Total == 5
		})).Return(&firehose.PutRecordOutput{}, nil)

		err := emitter.Emit(context.TODO(), NewEvent("github", "gopher/views", nil, 5, nil))

		assert.NoError(t, err)
		api.AssertExpectations(t)
	})

	t.Run("sink failure surfaces as error", func(t *testing.T) {
		api := new(mockFirehoseAPI)
		emitter := NewFirehoseEmitter(api, "views_log_stream_dev")

		errSink := errors.New("stream unavailable")
		api.On("PutRecord", mock.Anything, mock.Anything).Return(nil, errSink)

		err := emitter.Emit(context.TODO(), NewEvent("github", "gopher/views", nil, 5, nil))

		assert.Error(t, err)
		assert.ErrorIs(t, err, errSink)
		api.AssertExpectations(t)
	})
}
