package delegate

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

func testConfig(endpoint string) config.DelegateConfig {
	return config.DelegateConfig{
		Provider: config.ProviderHTTP,
		Endpoint: endpoint,
		APIKey:   "secret",
		Timeout:  2 * time.Second,
	}
}

func testRequest() Request {
	return Request{
		SourceFields: Summarize("src", []types.Field{{Name: "fname", Label: "Given Name", Type: types.FieldText}}),
		TargetFields: Summarize("tgt", []types.Field{{Name: "first", Label: "First Name", Type: types.FieldText}}),
	}
}

func TestHTTPClientMapFields(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "trace-1", r.Header.Get(tracing.HeaderTraceID))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, sonic.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mappings":[{"sourceFieldId":"src_0","targetFieldId":"tgt_0","transformation":"none","confidence":0.92}]}`))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(testConfig(srv.URL))
	require.NoError(t, err)

	in := http.Header{}
	in.Set(tracing.HeaderTraceID, "trace-1")
	resp, err := c.MapFields(tracing.Extract(context.Background(), in), testRequest())
	require.NoError(t, err)
	require.Len(t, resp.Mappings, 1)
	assert.Equal(t, Proposal{SourceFieldID: "src_0", TargetFieldID: "tgt_0", Transformation: types.TransformNone, Confidence: 0.92}, resp.Mappings[0])

	require.Len(t, got.SourceFields, 1)
	assert.Equal(t, "Given Name", got.SourceFields[0].Label)
	assert.Equal(t, "tgt_0", got.TargetFields[0].ID)
}

func TestHTTPClientErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transient bool
		malformed bool
	}{
		{name: "service unavailable", status: http.StatusServiceUnavailable, transient: true},
		{name: "rate limited", status: http.StatusTooManyRequests, transient: true},
		{name: "bad request", status: http.StatusBadRequest},
		{name: "not implemented", status: http.StatusNotImplemented},
		{name: "garbage body", status: http.StatusOK, body: "not json", malformed: true},
		{name: "empty body", status: http.StatusOK, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewHTTPClient(testConfig(srv.URL))
			require.NoError(t, err)

			_, err = c.MapFields(context.Background(), testRequest())
			require.Error(t, err)
			assert.Equal(t, tt.transient, isErr(err, ErrTransient))
			assert.Equal(t, tt.malformed, isErr(err, ErrMalformedResponse))
		})
	}
}

func TestHTTPClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(testConfig(url))
	require.NoError(t, err)

	_, err = c.MapFields(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrTransient)
}

func TestNotConfigured(t *testing.T) {
	_, err := NewHTTPClient(config.DelegateConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewGeminiClient(context.Background(), config.DelegateConfig{Provider: config.ProviderGemini})
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err := New(context.Background(), config.DelegateConfig{Provider: config.ProviderGemini})
	require.NoError(t, err)
	_, err = c.MapFields(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(context.Background(), config.DelegateConfig{Provider: "carrier-pigeon", Endpoint: "x"})
	assert.Error(t, err)
}

func TestParseResponse(t *testing.T) {
	resp, err := ParseResponse("```json\n{\"mappings\":[{\"sourceFieldId\":\"src_1\",\"targetFieldId\":\"tgt_2\",\"confidence\":0.7}]}\n```")
	require.NoError(t, err)
	require.Len(t, resp.Mappings, 1)
	assert.Equal(t, "tgt_2", resp.Mappings[0].TargetFieldID)

	resp, err = ParseResponse(`{}`)
	require.NoError(t, err)
	assert.Empty(t, resp.Mappings)

	_, err = ParseResponse("  ")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(testRequest())
	require.NoError(t, err)
	assert.Contains(t, prompt, `"label": "Given Name"`)
	assert.Contains(t, prompt, `"id": "tgt_0"`)
	assert.Contains(t, prompt, "confidence above 0.6")
}

func TestSummarize(t *testing.T) {
	got := Summarize("src", []types.Field{{ID: "dup", Name: "a"}, {ID: "dup", Name: "b"}})
	require.Len(t, got, 2)
	assert.Equal(t, "src_0", got[0].ID)
	assert.Equal(t, "src_1", got[1].ID)
	assert.Equal(t, "b", got[1].Name)
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
