package workerproc

import (
	"context"
	"errors"
	"testing"

	"annostat-backend/internal/bootstrap"
	"annostat-backend/internal/queue"
)

func TestParseMessage(t *testing.T) {
	body, err := queue.EncodeMessage(queue.Message{RunID: "run-1", RequestID: "req-1"})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}

	msg, meta, err := ParseMessage(string(body))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.RunID != "run-1" || msg.RequestID != "req-1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if meta.BodyLen != len(body) || meta.BodySHA == "" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestParseMessageEmptyBody(t *testing.T) {
	_, _, err := ParseMessage("   ")
	var empty ErrEmptyBody
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestParseMessageBadJSON(t *testing.T) {
	_, meta, err := ParseMessage("{nope")
	var decode ErrDecode
	if !errors.As(err, &decode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if meta.BodyLen != 5 {
		t.Fatalf("meta.BodyLen = %d", meta.BodyLen)
	}
}

func TestParseMessageMissingRunID(t *testing.T) {
	body, _ := queue.EncodeMessage(queue.Message{RequestID: "req-2"})
	_, _, err := ParseMessage(string(body))
	var missing ErrMissingRunID
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingRunID, got %v", err)
	}
	if missing.RequestID != "req-2" {
		t.Fatalf("RequestID = %q", missing.RequestID)
	}
}

type recordingProcessor struct {
	err  error
	runs []string
}

func (p *recordingProcessor) ProcessRun(ctx context.Context, runID string) error {
	p.runs = append(p.runs, runID)
	return p.err
}

func TestHandleMessageDispatchesToProcessor(t *testing.T) {
	proc := &recordingProcessor{}
	app := &bootstrap.App{SummaryProcessor: proc}
	body, _ := queue.EncodeMessage(queue.Message{RunID: "run-3", RequestID: "req-3"})

	if err := HandleMessage(context.Background(), app, string(body)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(proc.runs) != 1 || proc.runs[0] != "run-3" {
		t.Fatalf("processed runs = %v", proc.runs)
	}
}

func TestHandleMessageWrapsProcessorError(t *testing.T) {
	proc := &recordingProcessor{err: errors.New("boom")}
	app := &bootstrap.App{SummaryProcessor: proc}
	body, _ := queue.EncodeMessage(queue.Message{RunID: "run-4"})

	err := HandleMessage(context.Background(), app, string(body))
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.RunID != "run-4" {
		t.Fatalf("RunID = %q", procErr.RunID)
	}
}

func TestHandleMessageUsesParsedContext(t *testing.T) {
	proc := &recordingProcessor{}
	app := &bootstrap.App{SummaryProcessor: proc}
	ctx := WithParsedMessage(context.Background(), queue.Message{RunID: "run-5"})

	if err := HandleMessage(ctx, app, "ignored"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(proc.runs) != 1 || proc.runs[0] != "run-5" {
		t.Fatalf("processed runs = %v", proc.runs)
	}
}

func TestHandleMessageRequiresProcessor(t *testing.T) {
	body, _ := queue.EncodeMessage(queue.Message{RunID: "run-6"})
	if err := HandleMessage(context.Background(), &bootstrap.App{}, string(body)); err == nil {
		t.Fatal("expected error when no processor is configured")
	}
}
