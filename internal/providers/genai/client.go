package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"veostudio/internal/domain"
	"veostudio/internal/infra"
)

const (
	DefaultBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	DefaultValidationModel = "gemini-2.5-flash"

	apiKeyHeader = "x-goog-api-key"
	probePrompt  = "ping"
)

// Options controls how the Gemini client is configured.
type Options struct {
	BaseURL         string
	ValidationModel string
	HTTPClient      *http.Client
	// DownloadClient reads video bodies. When nil a client without an overall
	// timeout is used and the request context bounds the transfer.
	DownloadClient *http.Client
	Logger         *infra.Logger
}

// Client speaks the Gemini v1beta REST API for credential probes and Veo
// long-running video operations. The API key is supplied per call and never
// stored on the client.
type Client struct {
	baseURL         string
	validationModel string
	httpClient      *http.Client
	downloadClient  *http.Client
	logger          *infra.Logger
}

// APIError carries the message returned by the Gemini API for a failed call.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("gemini status %d", e.StatusCode)
}

// DownloadResult is the raw outcome of a media GET. Non-2xx responses are
// returned as results, not errors, so callers can report status and body.
type DownloadResult struct {
	StatusCode  int
	StatusText  string
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *DownloadResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int                   `json:"maxOutputTokens,omitempty"`
	ThinkingConfig  *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type veoInstance struct {
	Prompt string `json:"prompt"`
}

type veoParameters struct {
	AspectRatio      string `json:"aspectRatio,omitempty"`
	Resolution       string `json:"resolution,omitempty"`
	PersonGeneration string `json:"personGeneration,omitempty"`
	NegativePrompt   string `json:"negativePrompt,omitempty"`
	SampleCount      int    `json:"sampleCount,omitempty"`
}

type veoPredictRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoVideo struct {
	URI string `json:"uri"`
}

type veoSample struct {
	Video *veoVideo `json:"video,omitempty"`
}

type veoVideoResponse struct {
	GeneratedSamples        []veoSample `json:"generatedSamples,omitempty"`
	GeneratedVideos         []veoSample `json:"generatedVideos,omitempty"`
	RAIMediaFilteredReasons []string    `json:"raiMediaFilteredReasons,omitempty"`
}

type operationStatus struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type operationResponse struct {
	Name     string           `json:"name"`
	Done     bool             `json:"done"`
	Error    *operationStatus `json:"error,omitempty"`
	Response *struct {
		GenerateVideoResponse *veoVideoResponse `json:"generateVideoResponse,omitempty"`
		veoVideoResponse
	} `json:"response,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; one with a 60s timeout is created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	download := opts.DownloadClient
	if download == nil {
		download = &http.Client{Transport: client.Transport}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse gemini base url: %w", err)
	}

	model := strings.TrimSpace(opts.ValidationModel)
	if model == "" {
		model = DefaultValidationModel
	}

	logger := opts.Logger
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	return &Client{
		baseURL:         baseURL,
		validationModel: model,
		httpClient:      client,
		downloadClient:  download,
		logger:          logger,
	}, nil
}

// ValidationModel returns the model used for credential probes.
func (c *Client) ValidationModel() string {
	return c.validationModel
}

// Probe issues a one-token generateContent call; any error means the key is
// not usable.
func (c *Client) Probe(ctx context.Context, apiKey string) error {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: probePrompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: 1,
			ThinkingConfig:  &geminiThinkingConfig{ThinkingBudget: 0},
		},
	}
	var out json.RawMessage
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.validationModel))
	if err := c.invoke(ctx, http.MethodPost, path, apiKey, payload, &out); err != nil {
		return err
	}
	c.logger.Debug().Str("model", c.validationModel).Msg("genai: credential probe succeeded")
	return nil
}

// PredictLongRunning submits a Veo generation and returns the initial operation.
func (c *Client) PredictLongRunning(ctx context.Context, apiKey string, req domain.VideoRequest) (domain.Operation, error) {
	count := req.NumberOfVideos
	if count <= 0 {
		count = 1
	}
	payload := veoPredictRequest{
		Instances: []veoInstance{{Prompt: req.Prompt}},
		Parameters: veoParameters{
			AspectRatio:      string(req.AspectRatio),
			Resolution:       string(req.Resolution),
			PersonGeneration: req.SafetyPolicy.PersonGeneration(),
			NegativePrompt:   strings.TrimSpace(req.NegativePrompt),
			SampleCount:      count,
		},
	}
	var out operationResponse
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(req.Model))
	if err := c.invoke(ctx, http.MethodPost, path, apiKey, payload, &out); err != nil {
		return domain.Operation{}, err
	}
	if out.Name == "" && !out.Done {
		return domain.Operation{}, fmt.Errorf("gemini returned an operation without a name")
	}
	c.logger.Debug().Str("model", req.Model).Str("operation", out.Name).Msg("genai: video operation submitted")
	return out.toDomain(), nil
}

// GetOperation refreshes a long-running operation by name.
func (c *Client) GetOperation(ctx context.Context, apiKey, name string) (domain.Operation, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return domain.Operation{}, fmt.Errorf("operation name is required")
	}
	var out operationResponse
	if err := c.invoke(ctx, http.MethodGet, "/"+name, apiKey, nil, &out); err != nil {
		return domain.Operation{}, err
	}
	if out.Name == "" {
		out.Name = name
	}
	c.logger.Debug().Str("operation", out.Name).Bool("done", out.Done).Msg("genai: operation refreshed")
	return out.toDomain(), nil
}

// Download GETs rawURL as-is. The caller attaches any credential.
func (c *Client) Download(ctx context.Context, rawURL string) (*DownloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}
	return &DownloadResult{
		StatusCode:  resp.StatusCode,
		StatusText:  statusText(resp),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        blob,
	}, nil
}

func (c *Client) invoke(ctx context.Context, method, path, apiKey string, payload any, out any) error {
	endpoint := c.baseURL + path
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed geminiErrorResponse
		if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
			apiErr.Code = parsed.Error.Status
			apiErr.Message = parsed.Error.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func (o operationResponse) toDomain() domain.Operation {
	op := domain.Operation{Name: o.Name, Done: o.Done}
	if o.Error != nil {
		op.ErrorMessage = o.Error.Message
		if op.ErrorMessage == "" && o.Error.Code != 0 {
			op.ErrorMessage = fmt.Sprintf("operation failed with code %d", o.Error.Code)
		}
	}
	if o.Response == nil {
		return op
	}
	collect := func(r *veoVideoResponse) {
		if r == nil {
			return
		}
		for _, samples := range [][]veoSample{r.GeneratedSamples, r.GeneratedVideos} {
			for _, s := range samples {
				if s.Video != nil && s.Video.URI != "" {
					op.VideoURIs = append(op.VideoURIs, s.Video.URI)
				}
			}
		}
		op.FilteredReasons = append(op.FilteredReasons, r.RAIMediaFilteredReasons...)
	}
	collect(o.Response.GenerateVideoResponse)
	collect(&o.Response.veoVideoResponse)
	return op
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
