package restgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newTestClient(t *testing.T, server *httptest.Server, overrides func(*Config)) *Client {
	t.Helper()

	cfg := Config{
		Kind:    "flux",
		BaseURL: server.URL,
		APIKey:  "test-key",
	}
	if overrides != nil {
		overrides(&cfg)
	}

	client, err := New(cfg, testLogger())
	require.NoError(t, err)
	return client
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Kind: "flux", BaseURL: "https://api.example.com"}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing kind", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{BaseURL: "https://api.example.com"}, testLogger())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing base URL", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Kind: "flux"}, testLogger())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestClient_Submit(t *testing.T) {
	t.Parallel()

	t.Run("flat response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/tasks", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "neon skyline", payload["prompt"])

			fmt.Fprint(w, `{"task_id":"abc-123"}`)
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		taskID, err := client.Submit(context.Background(), map[string]any{"prompt": "neon skyline"})

		require.NoError(t, err)
		assert.Equal(t, "abc-123", taskID)
	})

	t.Run("nested data envelope", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"task_id":"xyz-9"}}`)
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		taskID, err := client.Submit(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "xyz-9", taskID)
	})

	t.Run("non-2xx is a submission error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid model"}`, http.StatusBadRequest)
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		_, err := client.Submit(context.Background(), map[string]string{"model": "nope"})

		assert.ErrorIs(t, err, generation.ErrSubmissionFailed)
		assert.Contains(t, err.Error(), "invalid model")
	})

	t.Run("response without task ID", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ok":true}`)
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		_, err := client.Submit(context.Background(), nil)

		assert.ErrorIs(t, err, generation.ErrSubmissionFailed)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		client := newTestClient(t, server, nil)
		server.Close()

		_, err := client.Submit(context.Background(), nil)
		assert.ErrorIs(t, err, generation.ErrSubmissionFailed)
	})
}

func TestClient_Poll_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus generation.Status
		wantResult string
		wantDetail string
	}{
		{
			name:       "succeeded with result URL",
			body:       `{"status":"succeeded","result_url":"https://cdn.example.com/a.png"}`,
			wantStatus: generation.StatusCompleted,
			wantResult: "https://cdn.example.com/a.png",
		},
		{
			name:       "Success is case-insensitive and nested output works",
			body:       `{"status":"Success","output":{"video_url":"https://cdn.example.com/v.mp4"}}`,
			wantStatus: generation.StatusCompleted,
			wantResult: "https://cdn.example.com/v.mp4",
		},
		{
			name:       "running maps to processing",
			body:       `{"status":"running","progress":37}`,
			wantStatus: generation.StatusProcessing,
		},
		{
			name:       "queued maps to pending",
			body:       `{"status":"queued"}`,
			wantStatus: generation.StatusPending,
		},
		{
			name:       "failed with reason",
			body:       `{"status":"failed","failure_reason":"nsfw content detected"}`,
			wantStatus: generation.StatusFailed,
			wantDetail: "nsfw content detected",
		},
		{
			name:       "error status with message",
			body:       `{"state":"error","message":"GPU pool exhausted"}`,
			wantStatus: generation.StatusFailed,
			wantDetail: "GPU pool exhausted",
		},
		{
			name: "unknown status fails open to processing",
			// A vocabulary string this adapter has never seen must be
			// treated as an unknown-but-live task, never terminal.
			body:       `{"status":"dreaming"}`,
			wantStatus: generation.StatusProcessing,
		},
		{
			name:       "omitted status is never inferred from result fields",
			body:       `{"result_url":"https://cdn.example.com/early.png"}`,
			wantStatus: generation.StatusProcessing,
		},
		{
			name:       "nested data envelope",
			body:       `{"data":{"status":"succeeded","output":{"url":"https://cdn.example.com/o.png"}}}`,
			wantStatus: generation.StatusCompleted,
			wantResult: "https://cdn.example.com/o.png",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/v1/tasks/task-7", r.URL.Path)
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			client := newTestClient(t, server, nil)
			res, err := client.Poll(context.Background(), "task-7")

			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, res.Status)
			assert.Equal(t, tc.wantResult, res.Result)
			if tc.wantDetail != "" {
				assert.Equal(t, tc.wantDetail, res.FailureDetail)
			}
		})
	}
}

func TestClient_Poll_Progress(t *testing.T) {
	t.Parallel()

	t.Run("reported progress is passed through", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"running","progress":62}`)
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		res, err := client.Poll(context.Background(), "t")

		require.NoError(t, err)
		assert.Equal(t, 62, res.ProgressPercent)
	})

	t.Run("omitted progress reports unknown", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"running"}`)
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		res, err := client.Poll(context.Background(), "t")

		require.NoError(t, err)
		assert.Equal(t, generation.ProgressUnknown, res.ProgressPercent)
	})

	t.Run("out-of-range progress is clamped", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"running","progress":140}`)
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		res, err := client.Poll(context.Background(), "t")

		require.NoError(t, err)
		assert.Equal(t, 100, res.ProgressPercent)
	})
}

func TestClient_Poll_TransportFailures(t *testing.T) {
	t.Parallel()

	t.Run("5xx is a transport error, not a task failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		_, err := client.Poll(context.Background(), "t")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("connection failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		client := newTestClient(t, server, nil)
		server.Close()

		_, err := client.Poll(context.Background(), "t")
		require.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":`)
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		_, err := client.Poll(context.Background(), "t")
		require.Error(t, err)
	})
}

func TestClient_CustomVocabularyAndAuth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, `{"status":"rendering"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server, func(cfg *Config) {
		cfg.Kind = "kling"
		cfg.APIKey = "secret"
		cfg.AuthHeader = "X-API-Key"
		cfg.StatusVocabulary = map[string]generation.Status{
			"Rendering": generation.StatusProcessing,
		}
	})

	res, err := client.Poll(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, generation.StatusProcessing, res.Status)
	assert.Equal(t, generation.ProviderKind("kling"), client.Kind())
}
