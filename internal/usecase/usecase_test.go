package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/config"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/engine"
	publishermock "github.com/aws-samples/sample-genai-sign-language-translator/internal/publisher/mock"
	registrymock "github.com/aws-samples/sample-genai-sign-language-translator/internal/registry/mock"
	resultsmock "github.com/aws-samples/sample-genai-sign-language-translator/internal/results/mock"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/stage"
	stagemock "github.com/aws-samples/sample-genai-sign-language-translator/internal/stage/mock"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/usecase"
)

// Test: valid submissions for each flow produce a handle, a pending
// registry record, and a published job of the right kind.
func TestSubmit_ValidFlows(t *testing.T) {
	tests := []struct {
		name     string
		req      *usecase.SubmitRequest
		wantKind domain.InputKind
	}{
		{"text", &usecase.SubmitRequest{Text: "hello"}, domain.KindText},
		{"gloss", &usecase.SubmitRequest{Gloss: "HELLO"}, domain.KindGloss},
		{"media", &usecase.SubmitRequest{Bucket: "uploads", Key: "a.mp4"}, domain.KindMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registrymock.NewMockRegistry()
			pub := publishermock.NewMockPublisher()
			uc := usecase.NewSubmitTranslationUsecase(reg, pub, zap.NewNop())

			handle, err := uc.Execute(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if handle == "" {
				t.Fatal("expected a handle")
			}

			job := pub.Last()
			if job == nil {
				t.Fatal("expected a published job")
			}
			if job.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, job.Kind)
			}
			if job.Handle != handle {
				t.Errorf("published handle %q differs from returned %q", job.Handle, handle)
			}

			state, ok := reg.States(handle)
			if !ok || state != domain.StateStart {
				t.Errorf("registry holds %s/%v, want pending Start record", state, ok)
			}
		})
	}
}

// Test: malformed submissions are rejected before anything is published.
func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     *usecase.SubmitRequest
		wantErr error
	}{
		{"empty request", &usecase.SubmitRequest{}, domain.ErrInvalidSubmission},
		{"whitespace text", &usecase.SubmitRequest{Text: "   "}, domain.ErrEmptyText},
		{"whitespace gloss", &usecase.SubmitRequest{Gloss: "  "}, domain.ErrEmptyGloss},
		{"bucket without key", &usecase.SubmitRequest{Bucket: "uploads"}, domain.ErrInvalidMediaReference},
		{"key without bucket", &usecase.SubmitRequest{Key: "a.mp4"}, domain.ErrInvalidMediaReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registrymock.NewMockRegistry()
			pub := publishermock.NewMockPublisher()
			uc := usecase.NewSubmitTranslationUsecase(reg, pub, zap.NewNop())

			_, err := uc.Execute(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(pub.Published) != 0 {
				t.Errorf("invalid submission still published %d jobs", len(pub.Published))
			}
		})
	}
}

// Test: a publish failure leaves a Failed record so a poller is not
// stuck on a run that will never start.
func TestSubmit_PublishFailure(t *testing.T) {
	reg := registrymock.NewMockRegistry()
	pub := publishermock.NewMockPublisher()
	pub.PublishFn = func(ctx context.Context, job *domain.Job) error {
		return errors.New("broker unavailable")
	}
	uc := usecase.NewSubmitTranslationUsecase(reg, pub, zap.NewNop())

	var recorded []*domain.Execution
	reg.UpdateFunc = func(ctx context.Context, exec *domain.Execution) error {
		cp := *exec
		recorded = append(recorded, &cp)
		return nil
	}

	_, err := uc.Execute(context.Background(), &usecase.SubmitRequest{Text: "hello"})
	if !errors.Is(err, domain.ErrPublishFailed) {
		t.Fatalf("expected ErrPublishFailed, got %v", err)
	}
	if len(recorded) == 0 {
		t.Fatal("expected a failed record to be written")
	}
	last := recorded[len(recorded)-1]
	if last.State != domain.StateFailed {
		t.Errorf("expected Failed record, got %s", last.State)
	}
}

// Test: polling an unknown handle reports ErrUnknownHandle.
func TestPoll_UnknownHandle(t *testing.T) {
	uc := usecase.NewPollTranslationUsecase(registrymock.NewMockRegistry(), zap.NewNop())

	_, err := uc.Execute(context.Background(), "no-such-handle")
	if !errors.Is(err, domain.ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle, got %v", err)
	}
}

// Test: polling a pending execution returns it and keeps the record.
func TestPoll_PendingKeepsRecord(t *testing.T) {
	reg := registrymock.NewMockRegistry()
	_ = reg.Create(context.Background(), &domain.Execution{
		Handle: "h-pending",
		State:  domain.StateGeneratingGloss,
	})
	uc := usecase.NewPollTranslationUsecase(reg, zap.NewNop())

	for i := 0; i < 2; i++ {
		exec, err := uc.Execute(context.Background(), "h-pending")
		if err != nil {
			t.Fatalf("poll %d: unexpected error: %v", i, err)
		}
		if exec.State != domain.StateGeneratingGloss {
			t.Errorf("poll %d: expected GeneratingGloss, got %s", i, exec.State)
		}
	}
}

// Test: a terminal execution is delivered once; its record is evicted and
// the next poll sees an unknown handle.
func TestPoll_TerminalEvicts(t *testing.T) {
	reg := registrymock.NewMockRegistry()
	_ = reg.Create(context.Background(), &domain.Execution{
		Handle: "h-done",
		State:  domain.StateSucceeded,
		Result: &domain.TranslationResult{Gloss: "HELLO"},
	})
	uc := usecase.NewPollTranslationUsecase(reg, zap.NewNop())

	exec, err := uc.Execute(context.Background(), "h-done")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.State != domain.StateSucceeded || exec.Result == nil {
		t.Fatalf("unexpected execution %+v", exec)
	}

	if _, err := uc.Execute(context.Background(), "h-done"); !errors.Is(err, domain.ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle after eviction, got %v", err)
	}
}

// Test: speech synthesis rejects blank text and passes the voice through.
func TestSynthesizeSpeech(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	var gotVoice string
	stages.SynthesizeSpeechFunc = func(ctx context.Context, text, voiceID string) (string, error) {
		gotVoice = voiceID
		return "YXVkaW8=", nil
	}
	uc := usecase.NewSynthesizeSpeechUsecase(stages, zap.NewNop())

	if _, err := uc.Execute(context.Background(), "  ", "Joanna"); !errors.Is(err, domain.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}

	audio, err := uc.Execute(context.Background(), "hello", "Matthew")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if audio != "YXVkaW8=" {
		t.Errorf("unexpected audio %q", audio)
	}
	if gotVoice != "Matthew" {
		t.Errorf("expected voice Matthew, got %q", gotVoice)
	}
}

func newRunUsecase(stages *stagemock.MockStageClient, reg *registrymock.MockRegistry, bus *resultsmock.MockBus) *usecase.RunTranslationUsecase {
	cfg := config.EngineConfig{
		TranscriptionPollInterval: time.Millisecond,
		TranscriptionDeadline:     time.Second,
		RegistryTTL:               time.Hour,
	}
	fast := engine.Policy{MaxAttempts: 2, Interval: time.Microsecond, Multiplier: 1.0}
	runner := engine.NewRunner(stages, reg, cfg, zap.NewNop()).WithPolicies(fast, fast, fast)
	return usecase.NewRunTranslationUsecase(runner, bus, zap.NewNop())
}

// Test: a job without a connection does not touch the result bus.
func TestRun_PolledJobSkipsBus(t *testing.T) {
	bus := resultsmock.NewMockBus()
	reg := registrymock.NewMockRegistry()
	uc := newRunUsecase(stagemock.NewMockStageClient(), reg, bus)

	job := &domain.Job{Handle: "h-poll", Kind: domain.KindText, Text: "hello"}
	if err := uc.Execute(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bus.Published) != 0 {
		t.Errorf("polled job pushed %d deliveries", len(bus.Published))
	}

	state, ok := reg.States("h-poll")
	if !ok || state != domain.StateSucceeded {
		t.Errorf("registry holds %s/%v, want Succeeded", state, ok)
	}
}

// Test: a session-originated job pushes its result to the bus, addressed
// to the submitting connection.
func TestRun_SessionJobPushesResult(t *testing.T) {
	bus := resultsmock.NewMockBus()
	uc := newRunUsecase(stagemock.NewMockStageClient(), registrymock.NewMockRegistry(), bus)

	job := &domain.Job{Handle: "h-sess", Kind: domain.KindText, Text: "hello", ConnectionID: "conn-1"}
	if err := uc.Execute(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bus.Published) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(bus.Published))
	}
	d := bus.Published[0]
	if d.ConnectionID != "conn-1" {
		t.Errorf("delivery addressed to %q", d.ConnectionID)
	}

	var result domain.TranslationResult
	if err := json.Unmarshal(d.Payload, &result); err != nil {
		t.Fatalf("payload is not a result document: %v", err)
	}
	if result.Gloss != "HELLO" {
		t.Errorf("unexpected gloss %q", result.Gloss)
	}
}

// Test: a failed session run pushes the error document instead of a result.
func TestRun_SessionJobPushesFailure(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	stages.GenerateGlossFunc = func(ctx context.Context, text string) (*stage.GlossResult, error) {
		return nil, stage.NewTerminal(stage.Gloss, errors.New("unsupported language"))
	}
	bus := resultsmock.NewMockBus()
	uc := newRunUsecase(stages, registrymock.NewMockRegistry(), bus)

	job := &domain.Job{Handle: "h-fail", Kind: domain.KindText, Text: "hello", ConnectionID: "conn-2"}
	if err := uc.Execute(context.Background(), job); err != nil {
		t.Fatalf("a failed run is a delivered outcome, got error: %v", err)
	}
	if len(bus.Published) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(bus.Published))
	}

	var doc map[string]string
	if err := json.Unmarshal(bus.Published[0].Payload, &doc); err != nil {
		t.Fatalf("payload is not an error document: %v", err)
	}
	if doc["Stage"] != stage.Gloss {
		t.Errorf("expected failing stage %q, got %q", stage.Gloss, doc["Stage"])
	}
	if doc["Error"] == "" {
		t.Error("expected an error message")
	}
}

// Test: a job with an unknown kind is unusable and reported as an error.
func TestRun_UnknownKindRejected(t *testing.T) {
	uc := newRunUsecase(stagemock.NewMockStageClient(), registrymock.NewMockRegistry(), resultsmock.NewMockBus())

	job := &domain.Job{Handle: "h-bad", Kind: domain.InputKind("video")}
	if err := uc.Execute(context.Background(), job); err == nil {
		t.Fatal("expected an error for an unknown input kind")
	}
}
