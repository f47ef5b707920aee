package stage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/config"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
)

// Ensure httpClient implements Client.
var _ Client = (*httpClient)(nil)

type httpClient struct {
	cfg  config.StageConfig
	http *http.Client
}

// NewHTTPClient creates a stage client that reaches each stage over HTTP.
func NewHTTPClient(cfg config.StageConfig) Client {
	return &httpClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// stageErrorBody is the explicit failure document a stage may return.
type stageErrorBody struct {
	Error string `json:"Error"`
}

// post sends a JSON body and decodes the response into out. Transport errors
// and 5xx responses are retryable; 4xx responses and explicit Error documents
// are terminal.
func (c *httpClient) post(ctx context.Context, stageName, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return NewTerminal(stageName, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return NewTerminal(stageName, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return NewRetryable(stageName, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewRetryable(stageName, fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode >= 500:
		return NewRetryable(stageName, fmt.Errorf("status %d: %s", resp.StatusCode, raw))
	case resp.StatusCode >= 400:
		return NewTerminal(stageName, fmt.Errorf("status %d: %s", resp.StatusCode, raw))
	}

	var failure stageErrorBody
	if err := json.Unmarshal(raw, &failure); err == nil && failure.Error != "" {
		return NewTerminal(stageName, errors.New(failure.Error))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return NewRetryable(stageName, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

func (c *httpClient) StartTranscription(ctx context.Context, jobName string, media domain.MediaReference) error {
	in := map[string]string{
		"TranscriptionJobName": jobName,
		"BucketName":           media.Bucket,
		"KeyName":              media.Key,
	}
	return c.post(ctx, Transcription, c.cfg.TranscriptionURL+"/jobs", in, nil)
}

func (c *httpClient) GetTranscription(ctx context.Context, jobName string) (*TranscriptionJob, error) {
	in := map[string]string{"TranscriptionJobName": jobName}
	var out TranscriptionJob
	if err := c.post(ctx, Transcription, c.cfg.TranscriptionURL+"/jobs/status", in, &out); err != nil {
		return nil, err
	}
	if out.JobName == "" {
		out.JobName = jobName
	}
	return &out, nil
}

func (c *httpClient) ProcessTranscript(ctx context.Context, jobName string) (string, error) {
	in := map[string]string{"TranscriptionJobName": jobName}
	var out struct {
		Text string `json:"Text"`
	}
	if err := c.post(ctx, TranscriptProcess, c.cfg.TranscriptionURL+"/jobs/transcript", in, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *httpClient) GenerateGloss(ctx context.Context, text string) (*GlossResult, error) {
	in := map[string]string{
		"Text":    text,
		"ModelId": c.cfg.GlossModelID,
	}
	var out GlossResult
	if err := c.post(ctx, Gloss, c.cfg.GlossURL+"/gloss", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GeneratePose(ctx context.Context, gloss, text string) (*domain.TranslationResult, error) {
	in := map[string]string{
		"Gloss":      gloss,
		"Text":       text,
		"BucketName": c.cfg.DataBucket,
	}
	var out domain.TranslationResult
	if err := c.post(ctx, Pose, c.cfg.PoseURL+"/pose", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) BlendPose(ctx context.Context, gloss string) (*domain.TranslationResult, error) {
	in := map[string]string{
		"Gloss":      gloss,
		"BucketName": c.cfg.DataBucket,
	}
	var out domain.TranslationResult
	if err := c.post(ctx, Blend, c.cfg.BlendURL+"/blend", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) SynthesizeSpeech(ctx context.Context, text, voiceID string) (string, error) {
	if voiceID == "" {
		voiceID = c.cfg.DefaultVoiceID
	}
	in := map[string]string{
		"text":    text,
		"voiceId": voiceID,
	}
	var out struct {
		AudioContent string `json:"audioContent"`
	}
	if err := c.post(ctx, Speech, c.cfg.SpeechURL+"/speech", in, &out); err != nil {
		return "", err
	}
	return out.AudioContent, nil
}
