package listener

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/loyalty"
	"github.com/fekuna/omnipos-commerce/internal/order"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/broker"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUseCase struct {
	loyalty.UseCase
	mock.Mock
}

func (m *mockUseCase) HandleOrderEvent(ctx context.Context, e *order.Event) error {
	return m.Called(ctx, e).Error(0)
}

// scriptedReader replays results, records commits and cancels the listener
// once it runs dry.
type scriptedReader struct {
	results   []result
	committed []int64
	cancel    context.CancelFunc
}

type result struct {
	msg kafka.Message
	err error
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.results) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	next := r.results[0]
	r.results = r.results[1:]
	return next.msg, next.err
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func envelope(t *testing.T, offset int64, eventType string, payload interface{}) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	value, err := json.Marshal(broker.Event{EventID: "e1", EventType: eventType, Payload: raw, Timestamp: time.Now()})
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: value}
}

func newReader(results ...result) (*scriptedReader, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	return &scriptedReader{results: results, cancel: cancel}, ctx
}

func run(t *testing.T, ctx context.Context, reader *scriptedReader, uc loyalty.UseCase) {
	t.Helper()
	defer reader.cancel()

	l := NewOrderListener(reader, uc, logger.NewNop())
	l.backoff = time.Millisecond

	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestListenerRetriesUntilAppliedThenCommits(t *testing.T) {
	uc := new(mockUseCase)
	user := "u1"
	uc.On("HandleOrderEvent", mock.Anything, mock.MatchedBy(func(e *order.Event) bool {
		return e.OrderID == "o1" && e.Status == "PAID" && *e.UserID == "u1"
	})).Return(nil).Once()
	uc.On("HandleOrderEvent", mock.Anything, mock.MatchedBy(func(e *order.Event) bool {
		return e.OrderID == "o2" && e.PreviousStatus == "PAID"
	})).Return(errors.New("db down")).Once()
	uc.On("HandleOrderEvent", mock.Anything, mock.MatchedBy(func(e *order.Event) bool {
		return e.OrderID == "o2"
	})).Return(nil).Once()

	reader, ctx := newReader(
		result{msg: envelope(t, 7, order.EventCreated, order.Event{OrderID: "o1", UserID: &user, Status: "PAID", GrandTotal: "10"})},
		result{msg: envelope(t, 8, order.EventStatusChanged, order.Event{OrderID: "o2", UserID: &user, Status: "CANCELLED", PreviousStatus: "PAID"})},
	)
	run(t, ctx, reader, uc)

	uc.AssertExpectations(t)
	assert.Equal(t, []int64{7, 8}, reader.committed)
}

func TestListenerLeavesFailedEventUncommitted(t *testing.T) {
	uc := new(mockUseCase)
	user := "u1"
	reader, ctx := newReader(
		result{msg: envelope(t, 3, order.EventCreated, order.Event{OrderID: "o1", UserID: &user, Status: "PAID", GrandTotal: "10"})},
		result{msg: envelope(t, 4, order.EventCreated, order.Event{OrderID: "o2", UserID: &user, Status: "PAID", GrandTotal: "10"})},
	)

	calls := 0
	uc.On("HandleOrderEvent", mock.Anything, mock.Anything).Return(errors.New("account lookup failed")).Run(func(mock.Arguments) {
		calls++
		if calls == 3 {
			reader.cancel()
		}
	})
	run(t, ctx, reader, uc)

	assert.Empty(t, reader.committed)
	for _, c := range uc.Calls {
		assert.Equal(t, "o1", c.Arguments.Get(1).(*order.Event).OrderID)
	}
}

func TestListenerCommitsEventsItCannotApply(t *testing.T) {
	uc := new(mockUseCase)
	user := "u1"
	uc.On("HandleOrderEvent", mock.Anything, mock.Anything).
		Return(apperror.Invalid("InvalidRequest", "invalid request")).Once()

	reader, ctx := newReader(
		result{msg: envelope(t, 1, order.EventCreated, order.Event{OrderID: "o1", UserID: &user, Status: "PAID", GrandTotal: "abc"})},
	)
	run(t, ctx, reader, uc)

	uc.AssertExpectations(t)
	assert.Equal(t, []int64{1}, reader.committed)
}

func TestListenerSkipsForeignAndBrokenMessages(t *testing.T) {
	uc := new(mockUseCase)

	reader, ctx := newReader(
		result{msg: kafka.Message{Offset: 1, Value: []byte("not json")}},
		result{msg: envelope(t, 2, "CartAbandoned", map[string]string{"cart_id": "c1"})},
		result{err: errors.New("broker unavailable")},
	)
	run(t, ctx, reader, uc)

	uc.AssertNotCalled(t, "HandleOrderEvent", mock.Anything, mock.Anything)
	assert.Equal(t, []int64{1, 2}, reader.committed)
}
