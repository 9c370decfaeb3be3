package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/todoreminder/pkg/logger"
)

func setupTracer() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp
}

func nopLogger() logger.Logger {
	return logger.Nop()
}

func TestRetryWithBackoff_SuccessOnFirstAttempt(t *testing.T) {
	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return nil
	}
	msg := message.NewMessage("id", nil)
	err := retryWithBackoff(context.Background(), msg, handler, maxRetries, time.Millisecond, nopLogger())
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		if calls < 3 {
			return errors.New("transient error")
		}
		return nil
	}
	msg := message.NewMessage("id", nil)
	err := retryWithBackoff(context.Background(), msg, handler, maxRetries, time.Millisecond, nopLogger())
	if err != nil {
		t.Fatalf("expected nil after eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

// TestRetryWithBackoff_ExhaustsRetries verifies an error is returned after all retries fail.
func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return errors.New("permanent error")
	}
	msg := message.NewMessage("id", nil)
	err := retryWithBackoff(context.Background(), msg, handler, maxRetries, time.Millisecond, nopLogger())
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls != maxRetries {
		t.Errorf("expected %d calls, got %d", maxRetries, calls)
	}
}

// TestRetryWithBackoff_ContextCancelled verifies retry stops when context is canceled.
func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return errors.New("error")
	}
	msg := message.NewMessage("id", nil)
	err := retryWithBackoff(ctx, msg, handler, maxRetries, time.Second, nopLogger())
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
	// Should have called handler once then exited on ctx.Done
	if calls != 1 {
		t.Errorf("expected 1 call before context cancel, got %d", calls)
	}
}

type recordingPublisher struct {
	topic string
	msgs  []*message.Message
	err   error
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.err != nil {
		return p.err
	}
	p.topic = topic
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestProcess(t *testing.T) {
	boom := errors.New("item store unavailable")
	tests := []struct {
		name       string
		handlerErr error
		publishErr error
		wantAck    bool
		wantFailed bool
	}{
		{name: "success acks", wantAck: true},
		{name: "exhausted retries move to failed topic", handlerErr: boom, wantAck: true, wantFailed: true},
		{name: "failed topic unavailable nacks", handlerErr: boom, publishErr: errors.New("db down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{err: tt.publishErr}
			bus := &EventBus{publisher: pub, log: nopLogger(), retryDelay: time.Millisecond}
			msg := message.NewMessage("m1", []byte(`{"todo_id":"a"}`))
			handler := func(context.Context, *message.Message) error { return tt.handlerErr }

			err := bus.process(context.Background(), "todo.changed", msg, handler)

			if (err != nil) != (tt.handlerErr != nil) {
				t.Fatalf("unexpected error %v", err)
			}
			select {
			case <-msg.Acked():
				if !tt.wantAck {
					t.Fatal("expected nack, got ack")
				}
			case <-msg.Nacked():
				if tt.wantAck {
					t.Fatal("expected ack, got nack")
				}
			default:
				t.Fatal("message neither acked nor nacked")
			}
			if tt.wantFailed {
				if pub.topic != "todo.changed.failed" || len(pub.msgs) != 1 {
					t.Fatalf("expected one message on failed topic, got %q %d", pub.topic, len(pub.msgs))
				}
				if pub.msgs[0].Metadata.Get(metaHandlerError) == "" {
					t.Fatal("expected handler_error metadata")
				}
			}
		})
	}
}

func TestProcess_ShutdownNacks(t *testing.T) {
	pub := &recordingPublisher{}
	bus := &EventBus{publisher: pub, log: nopLogger(), retryDelay: time.Millisecond}
	msg := message.NewMessage("m1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := bus.process(ctx, "todo.changed", msg, func(context.Context, *message.Message) error {
		return errors.New("interrupted")
	}); err == nil {
		t.Fatal("expected error")
	}
	select {
	case <-msg.Nacked():
	default:
		t.Fatal("expected nack on shutdown")
	}
	if len(pub.msgs) != 0 {
		t.Fatal("shutdown must not move messages to the failed topic")
	}
}

func TestStartForwarder_NonForwarderMode(t *testing.T) {
	bus := &EventBus{useForwarder: false}
	err := bus.StartForwarder(context.Background())
	if err == nil {
		t.Fatal("expected error for non-forwarder EventBus")
	}
}

func TestStartForwarder_AlreadyStarted(t *testing.T) {
	bus := &EventBus{useForwarder: true, fwd: &forwarder.Forwarder{}}
	if err := bus.StartForwarder(context.Background()); err == nil {
		t.Fatal("expected error when forwarder already running")
	}
}

func TestNewMessage_SetsMetadata(t *testing.T) {
	msg, err := NewMessage("evt-1", 2, map[string]string{"todo_id": "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := msg.Metadata.Get("event_id"); got != "evt-1" {
		t.Errorf("expected event_id evt-1, got %q", got)
	}
	if got := msg.Metadata.Get("event_version"); got != "2" {
		t.Errorf("expected event_version 2, got %q", got)
	}
	if string(msg.Payload) != `{"todo_id":"a"}` {
		t.Errorf("unexpected payload %s", msg.Payload)
	}
}

func TestNewMessage_UnencodablePayload(t *testing.T) {
	if _, err := NewMessage("evt-1", 1, make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestInjectTrace_SetsTraceparent(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msgs := []*message.Message{message.NewMessage("a", nil), message.NewMessage("b", nil)}
	injectTrace(ctx, msgs)
	for _, m := range msgs {
		if m.Metadata.Get("traceparent") == "" {
			t.Errorf("message %s missing traceparent", m.UUID)
		}
	}
}

// TestOTelPropagation_InjectExtract verifies that trace context injected via
// the same propagation path used by Publish/Subscribe round-trips correctly.
func TestOTelPropagation_InjectExtract(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "publish-span")
	defer span.End()
	wantTraceID := span.SpanContext().TraceID()

	// Simulate Publish: inject trace context into message metadata.
	msg := message.NewMessage("id", nil)
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}

	// Simulate Subscribe: extract trace context from message metadata.
	extractCarrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		extractCarrier[k] = v
	}
	msgCtx := otel.GetTextMapPropagator().Extract(context.Background(), extractCarrier)

	gotSpan := trace.SpanFromContext(msgCtx)
	if !gotSpan.SpanContext().IsValid() {
		t.Fatal("extracted span context is not valid")
	}
	if gotSpan.SpanContext().TraceID() != wantTraceID {
		t.Errorf("trace ID mismatch: want %s, got %s", wantTraceID, gotSpan.SpanContext().TraceID())
	}
}
