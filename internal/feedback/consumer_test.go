package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	traceSpan "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/memeulacra/memegen/internal/store"
)

type stubReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	closed    bool
}

func (r *stubReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		// Queue drained; behave like a cancelled fetch.
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *stubReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *stubReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type vote struct {
	memeID string
	signal store.FeedbackSignal
}

type stubFeedbackStore struct {
	mu     sync.Mutex
	votes  []vote
	errFor map[string]error
}

func (s *stubFeedbackStore) ApplyFeedback(ctx context.Context, memeID string, signal store.FeedbackSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errFor[memeID]; ok {
		return err
	}
	s.votes = append(s.votes, vote{memeID: memeID, signal: signal})
	return nil
}

type recordingTracer struct {
	mu       sync.Mutex
	carriers []map[string]string
}

func (t *recordingTracer) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.carriers = append(t.carriers, carrier)
	return ctx
}

func (t *recordingTracer) StartSpan(ctx context.Context, name string) (context.Context, traceSpan.Span) {
	return noop.NewTracerProvider().Tracer("").Start(ctx, name)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, err error, fields ...map[string]interface{})  {}
func (nopLogger) Warn(msg string, err error, fields ...map[string]interface{})  {}
func (nopLogger) Error(msg string, err error, fields ...map[string]interface{}) {}

func msgAt(offset int64, payload string) kafka.Message {
	return kafka.Message{Offset: offset, Value: []byte(payload)}
}

func TestRunAppliesVotes(t *testing.T) {
	r := &stubReader{messages: []kafka.Message{
		msgAt(1, `{"meme_id":"m1","signal":"up"}`),
		msgAt(2, `{"meme_id":"m2","signal":"down"}`),
	}}
	st := &stubFeedbackStore{}

	c := newConsumerWithReader(r, st, &recordingTracer{}, nopLogger{})
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, st.votes, 2)
	assert.Equal(t, vote{memeID: "m1", signal: store.FeedbackUp}, st.votes[0])
	assert.Equal(t, vote{memeID: "m2", signal: store.FeedbackDown}, st.votes[1])
	assert.Equal(t, []int64{1, 2}, r.committed)
}

func TestRunExtractsTraceContextFromHeaders(t *testing.T) {
	msg := msgAt(1, `{"meme_id":"m1","signal":"up"}`)
	msg.Headers = []kafka.Header{
		{Key: "traceparent", Value: []byte("00-abc")},
		{Key: "baggage", Value: []byte("k=v")},
	}
	r := &stubReader{messages: []kafka.Message{msg, msgAt(2, `{"meme_id":"m2","signal":"up"}`)}}
	tr := &recordingTracer{}

	c := newConsumerWithReader(r, &stubFeedbackStore{}, tr, nopLogger{})
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, tr.carriers, 2)
	assert.Equal(t, map[string]string{"traceparent": "00-abc", "baggage": "k=v"}, tr.carriers[0])
	assert.Nil(t, tr.carriers[1], "no headers means no carrier")
}

func TestRunSkipsAndCommitsMalformedMessages(t *testing.T) {
	r := &stubReader{messages: []kafka.Message{
		msgAt(1, `not json at all`),
		msgAt(2, `{"meme_id":"m1","signal":"sideways"}`),
		msgAt(3, `{"meme_id":"m2","signal":"up"}`),
	}}
	st := &stubFeedbackStore{}

	c := newConsumerWithReader(r, st, &recordingTracer{}, nopLogger{})
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, st.votes, 1)
	assert.Equal(t, "m2", st.votes[0].memeID)
	assert.Equal(t, []int64{1, 2, 3}, r.committed, "bad messages are committed so they are not redelivered")
}

func TestRunCommitsUnknownMemeButNotTransientFailures(t *testing.T) {
	r := &stubReader{messages: []kafka.Message{
		msgAt(1, `{"meme_id":"gone","signal":"up"}`),
		msgAt(2, `{"meme_id":"flaky","signal":"up"}`),
	}}
	st := &stubFeedbackStore{errFor: map[string]error{
		"gone":  store.ErrUnknownMemeIDs,
		"flaky": errors.New("connection reset"),
	}}

	c := newConsumerWithReader(r, st, &recordingTracer{}, nopLogger{})
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, []int64{1}, r.committed, "transient failures keep their offset uncommitted")
}

func TestCloseStopsReader(t *testing.T) {
	r := &stubReader{}
	c := newConsumerWithReader(r, &stubFeedbackStore{}, &recordingTracer{}, nopLogger{})
	require.NoError(t, c.Close())
	assert.True(t, r.closed)
}
