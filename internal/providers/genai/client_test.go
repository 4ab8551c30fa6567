package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veostudio/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Options{BaseURL: srv.URL + "/v1beta/", HTTPClient: srv.Client()})
	require.NoError(t, err)
	return client
}

func TestProbeSendsMinimalRequest(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "VALID_KEY", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})

	require.NoError(t, client.Probe(context.Background(), "VALID_KEY"))

	cfg := captured["generationConfig"].(map[string]any)
	assert.EqualValues(t, 1, cfg["maxOutputTokens"])
	assert.EqualValues(t, 0, cfg["thinkingConfig"].(map[string]any)["thinkingBudget"])
}

func TestProbeReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`)
	})

	err := client.Probe(context.Background(), "BAD")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT", apiErr.Code)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", err.Error())
}

func TestPredictLongRunningPayload(t *testing.T) {
	var captured veoPredictRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/veo-3-generate-preview:predictLongRunning", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = io.WriteString(w, `{"name":"models/veo-3-generate-preview/operations/op-1"}`)
	})

	opts := domain.GenerationOptions{
		Model:          "veo-3-generate-preview",
		AspectRatio:    domain.AspectRatio9x16,
		Resolution:     domain.Resolution720p,
		SafetyPolicy:   domain.SafetyAllowAdult,
		NegativePrompt: "blurry",
	}
	op, err := client.PredictLongRunning(context.Background(), "VALID_KEY", opts.Request("a fox in snow"))
	require.NoError(t, err)

	assert.Equal(t, "models/veo-3-generate-preview/operations/op-1", op.Name)
	assert.False(t, op.Done)
	require.Len(t, captured.Instances, 1)
	assert.Equal(t, "a fox in snow", captured.Instances[0].Prompt)
	assert.Equal(t, veoParameters{
		AspectRatio:      "9:16",
		Resolution:       "720p",
		PersonGeneration: "allow_adult",
		NegativePrompt:   "blurry",
		SampleCount:      1,
	}, captured.Parameters)
}

func TestPredictLongRunningOmitsEmptyNegativePrompt(t *testing.T) {
	var raw map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = io.WriteString(w, `{"name":"op-1"}`)
	})

	_, err := client.PredictLongRunning(context.Background(), "k", domain.DefaultOptions().Request("p"))
	require.NoError(t, err)
	require.Contains(t, raw, "parameters")
	var params map[string]any
	require.NoError(t, json.Unmarshal(raw["parameters"], &params))
	assert.Equal(t, "allow_all", params["personGeneration"])
	_, present := params["negativePrompt"]
	assert.False(t, present)
}

func TestGetOperationParsesVideoURIs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1beta/models/veo/operations/op-1", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"name": "models/veo/operations/op-1",
			"done": true,
			"response": {
				"@type": "type.googleapis.com/google.ai.generativelanguage.v1beta.PredictLongRunningResponse",
				"generateVideoResponse": {
					"generatedSamples": [{"video": {"uri": "https://example/video?token=abc"}}]
				}
			}
		}`)
	})

	op, err := client.GetOperation(context.Background(), "k", "models/veo/operations/op-1")
	require.NoError(t, err)
	assert.True(t, op.Done)
	assert.Equal(t, "https://example/video?token=abc", op.FirstVideoURI())
}

func TestGetOperationSurfacesErrorAndFilters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"name": "op-2",
			"done": true,
			"error": {"code": 3, "message": "prompt rejected"},
			"response": {"generatedVideos": [], "raiMediaFilteredReasons": ["celebrity likeness"]}
		}`)
	})

	op, err := client.GetOperation(context.Background(), "k", "op-2")
	require.NoError(t, err)
	assert.True(t, op.Failed())
	assert.Equal(t, "prompt rejected", op.ErrorMessage)
	assert.Equal(t, []string{"celebrity likeness"}, op.FilteredReasons)
	assert.Empty(t, op.FirstVideoURI())
}

func TestDownloadReportsStatus(t *testing.T) {
	client, err := NewClient(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "abc", r.URL.Query().Get("token"))
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Status:     "403 Forbidden",
			Header:     http.Header{"Content-Type": []string{"text/plain"}},
			Body:       io.NopCloser(strings.NewReader("denied")),
			Request:    r,
		}, nil
	})}})
	require.NoError(t, err)

	res, err := client.Download(context.Background(), "https://example/video?token=abc")
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, "Forbidden", res.StatusText)
	assert.Equal(t, "denied", string(res.Body))
}

func TestDownloadTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	client, err := NewClient(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	})}})
	require.NoError(t, err)

	_, err = client.Download(context.Background(), "https://example/video")
	require.ErrorIs(t, err, boom)
}

func TestDownloadIgnoresRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(150 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = io.WriteString(w, "mp4")
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{BaseURL: srv.URL, HTTPClient: &http.Client{Timeout: 20 * time.Millisecond}})
	require.NoError(t, err)

	res, err := client.Download(context.Background(), srv.URL+"/video")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "mp4", string(res.Body))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Download(ctx, srv.URL+"/video")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
