package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/stage"
)

// Ensure MockStageClient implements stage.Client.
var _ stage.Client = (*MockStageClient)(nil)

// MockStageClient is an in-memory stage client for testing. Without hooks it
// behaves as a happy-path pipeline: transcription completes on the first
// status fetch, gloss uppercases the text, pose returns fixed URLs.
type MockStageClient struct {
	mu    sync.Mutex
	calls map[string]int

	StartTranscriptionFunc func(ctx context.Context, jobName string, media domain.MediaReference) error
	GetTranscriptionFunc   func(ctx context.Context, jobName string) (*stage.TranscriptionJob, error)
	ProcessTranscriptFunc  func(ctx context.Context, jobName string) (string, error)
	GenerateGlossFunc      func(ctx context.Context, text string) (*stage.GlossResult, error)
	GeneratePoseFunc       func(ctx context.Context, gloss, text string) (*domain.TranslationResult, error)
	BlendPoseFunc          func(ctx context.Context, gloss string) (*domain.TranslationResult, error)
	SynthesizeSpeechFunc   func(ctx context.Context, text, voiceID string) (string, error)
}

// NewMockStageClient creates a new mock stage client.
func NewMockStageClient() *MockStageClient {
	return &MockStageClient{calls: make(map[string]int)}
}

// Calls returns how many times the named stage was invoked.
func (m *MockStageClient) Calls(stageName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[stageName]
}

func (m *MockStageClient) record(stageName string) {
	m.mu.Lock()
	m.calls[stageName]++
	m.mu.Unlock()
}

func (m *MockStageClient) StartTranscription(ctx context.Context, jobName string, media domain.MediaReference) error {
	m.record(stage.Transcription)
	if m.StartTranscriptionFunc != nil {
		return m.StartTranscriptionFunc(ctx, jobName, media)
	}
	return nil
}

func (m *MockStageClient) GetTranscription(ctx context.Context, jobName string) (*stage.TranscriptionJob, error) {
	m.record(stage.Transcription + "-status")
	if m.GetTranscriptionFunc != nil {
		return m.GetTranscriptionFunc(ctx, jobName)
	}
	return &stage.TranscriptionJob{JobName: jobName, Status: stage.TranscriptionCompleted}, nil
}

func (m *MockStageClient) ProcessTranscript(ctx context.Context, jobName string) (string, error) {
	m.record(stage.TranscriptProcess)
	if m.ProcessTranscriptFunc != nil {
		return m.ProcessTranscriptFunc(ctx, jobName)
	}
	return "hello world", nil
}

func (m *MockStageClient) GenerateGloss(ctx context.Context, text string) (*stage.GlossResult, error) {
	m.record(stage.Gloss)
	if m.GenerateGlossFunc != nil {
		return m.GenerateGlossFunc(ctx, text)
	}
	return &stage.GlossResult{Gloss: strings.ToUpper(text), Text: text}, nil
}

func (m *MockStageClient) GeneratePose(ctx context.Context, gloss, text string) (*domain.TranslationResult, error) {
	m.record(stage.Pose)
	if m.GeneratePoseFunc != nil {
		return m.GeneratePoseFunc(ctx, gloss, text)
	}
	return &domain.TranslationResult{
		Gloss:     gloss,
		Text:      text,
		SignURL:   "https://example.com/sign.mp4",
		PoseURL:   "https://example.com/pose.mp4",
		AvatarURL: "https://example.com/avatar.mp4",
	}, nil
}

func (m *MockStageClient) BlendPose(ctx context.Context, gloss string) (*domain.TranslationResult, error) {
	m.record(stage.Blend)
	if m.BlendPoseFunc != nil {
		return m.BlendPoseFunc(ctx, gloss)
	}
	return &domain.TranslationResult{Gloss: gloss, PoseURL: "https://example.com/blended.mp4"}, nil
}

func (m *MockStageClient) SynthesizeSpeech(ctx context.Context, text, voiceID string) (string, error) {
	m.record(stage.Speech)
	if m.SynthesizeSpeechFunc != nil {
		return m.SynthesizeSpeechFunc(ctx, text, voiceID)
	}
	return "bW9jay1hdWRpbw==", nil
}
