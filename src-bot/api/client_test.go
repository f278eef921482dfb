package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"racbot/src-bot/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSwitch bool

func (s staticSwitch) Disabled() bool { return bool(s) }

// backend counts hits and delegates to handler.
func backend(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func newClient(t *testing.T, baseURL string, opts ...api.ClientOption) *api.Client {
	t.Helper()
	registry, err := api.NewRegistry(baseURL, "secret-token", "racbot-test")
	require.NoError(t, err)
	return api.NewClient(registry, opts...)
}

func TestCall_StatusOutsideOKSetIsFailure(t *testing.T) {
	for _, status := range []int{202, 203, 301, 400, 403, 404, 500, 503} {
		srv, _ := backend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		})
		client := newClient(t, srv.URL)

		res, err := client.Call(context.Background(), api.Request{Endpoint: api.UtilityPing})
		require.Nil(t, res, "status %d", status)
		var failure *api.Failure
		require.ErrorAs(t, err, &failure, "status %d", status)
		assert.Equal(t, api.FailureNonOKStatus, failure.Kind)
		assert.Equal(t, status, failure.Status)
		assert.Equal(t, api.BodyJSON, failure.Body.Kind)
		assert.Equal(t, "nope", failure.Body.JSON().Get("error").String())
	}
}

func TestCall_StatusInsideOKSetIsSuccess(t *testing.T) {
	for _, status := range []int{200, 201, 204} {
		srv, _ := backend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		client := newClient(t, srv.URL)

		res, err := client.Call(context.Background(), api.Request{Endpoint: api.UtilityPing})
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, status, res.Status)
		assert.Equal(t, api.BodyEmpty, res.Body.Kind)
	}
}

func TestCall_CustomOKStatusSet(t *testing.T) {
	srv, _ := backend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	client := newClient(t, srv.URL, api.WithOKStatusSet(api.NewOKStatusSet(202)))

	res, err := client.Call(context.Background(), api.Request{Endpoint: api.UtilityPing})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.Status)
}

func TestCall_Timeout(t *testing.T) {
	srv, _ := backend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(12 * time.Second):
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"partial":true}`))
		case <-r.Context().Done():
		}
	})
	client := newClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	res, err := client.Call(ctx, api.Request{Endpoint: api.UtilityPing})
	require.Nil(t, res)
	assert.Less(t, time.Since(start), 5*time.Second)

	var failure *api.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, api.FailureTimeout, failure.Kind)
	assert.Equal(t, http.StatusGatewayTimeout, failure.Status)
	assert.Empty(t, failure.Body.Raw)
}

func TestCall_DefaultTimeoutAppliesWithoutDeadline(t *testing.T) {
	srv, _ := backend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(12 * time.Second):
		case <-r.Context().Done():
		}
	})
	client := newClient(t, srv.URL, api.WithTimeout(50*time.Millisecond))

	_, err := client.Call(context.Background(), api.Request{Endpoint: api.UtilityPing})
	var failure *api.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, api.FailureTimeout, failure.Kind)
}

func TestCall_DisabledNeverTouchesNetwork(t *testing.T) {
	srv, hits := backend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	observed := 0
	client := newClient(t, srv.URL,
		api.WithSwitch(staticSwitch(true)),
		api.WithObserver(func(api.EndpointName, time.Duration, error) { observed++ }),
	)

	for _, name := range []api.EndpointName{api.UtilityPing, api.IISRTempBanCreate, api.FunWordcloud} {
		_, err := client.Call(context.Background(), api.Request{Endpoint: name})
		var failure *api.Failure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, api.FailureNonOKStatus, failure.Kind)
		assert.Equal(t, http.StatusInternalServerError, failure.Status)
		assert.Equal(t, "system in recovery", failure.Detail)
	}
	assert.EqualValues(t, 0, hits.Load())
	assert.Zero(t, observed)
}

func TestCall_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	dead := srv.URL
	srv.Close()
	client := newClient(t, dead)

	_, err := client.Call(context.Background(), api.Request{Endpoint: api.UtilityPing})
	var failure *api.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, api.FailureTransport, failure.Kind)
	assert.NotEmpty(t, failure.Detail)
}

func TestCall_UnknownEndpoint(t *testing.T) {
	client := newClient(t, "https://api.example.test/")

	_, err := client.Call(context.Background(), api.Request{Endpoint: "nope.nothing"})
	require.ErrorIs(t, err, api.ErrUnknownEndpoint)
	var failure *api.Failure
	assert.False(t, errors.As(err, &failure))
}

func TestCall_UnsupportedMethod(t *testing.T) {
	srv, hits := backend(t, func(w http.ResponseWriter, r *http.Request) {})
	client := newClient(t, srv.URL)

	_, err := client.Call(context.Background(), api.Request{Endpoint: api.UtilityPing, Method: http.MethodPut})
	require.Error(t, err)
	assert.EqualValues(t, 0, hits.Load())
}

func TestCall_RequestShape(t *testing.T) {
	var (
		gotMethod string
		gotURL    *url.URL
		gotHeader http.Header
		gotBody   []byte
	)
	srv, _ := backend(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotURL, gotHeader = r.Method, r.URL, r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})
	client := newClient(t, srv.URL+"/v1")

	res, err := client.Call(context.Background(), api.Request{
		Endpoint: api.IISRTempBanCreate,
		Headers:  map[string]string{"user-agent": "override"},
		JSON:     map[string]string{"username": "rulebreaker"},
		Query:    map[string]string{"mod": "alice", "duration": "14 days"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.True(t, res.Body.JSON().IsObject())

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/v1/iisr/bans/temp", gotURL.Path)
	assert.Equal(t, "alice", gotURL.Query().Get("mod"))
	assert.Equal(t, "14 days", gotURL.Query().Get("duration"))
	assert.Equal(t, "secret-token", gotHeader.Get("Authorization"))
	assert.Equal(t, "override", gotHeader.Get("User-Agent"))
	assert.JSONEq(t, `{"username":"rulebreaker"}`, string(gotBody))
}

func TestCall_BodyShapes(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	srv, _ := backend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/utilities/ping":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("pong"))
		case "/fun1/wordcloud":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"not":"an image"}`))
		default:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		}
	})
	client := newClient(t, srv.URL)

	t.Run("text falls back", func(t *testing.T) {
		res, err := client.Call(context.Background(), api.Request{Endpoint: api.UtilityPing})
		require.NoError(t, err)
		assert.Equal(t, api.BodyText, res.Body.Kind)
		assert.Equal(t, "pong", res.Body.String())
	})

	t.Run("text where json expected", func(t *testing.T) {
		_, err := client.Call(context.Background(), api.Request{Endpoint: api.UtilityPing, Expect: api.ShapeJSON})
		var failure *api.Failure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, api.FailureBadMimeType, failure.Kind)
	})

	t.Run("bytes are read unconditionally", func(t *testing.T) {
		res, err := client.Call(context.Background(), api.Request{Endpoint: api.FunWordcloud, Expect: api.ShapeBytes})
		require.NoError(t, err)
		assert.Equal(t, api.BodyBytes, res.Body.Kind)
		assert.Equal(t, "application/json", res.Body.ContentType)
	})

	t.Run("image", func(t *testing.T) {
		res, err := client.Call(context.Background(), api.Request{Endpoint: api.AIImagineCreate, Expect: api.ShapeBytes})
		require.NoError(t, err)
		assert.Equal(t, png, res.Body.Raw)
	})
}

func TestCall_ObserverSeesFailures(t *testing.T) {
	srv, _ := backend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	var seen []error
	client := newClient(t, srv.URL, api.WithObserver(func(_ api.EndpointName, _ time.Duration, err error) {
		seen = append(seen, err)
	}))

	_, _ = client.Call(context.Background(), api.Request{Endpoint: api.UtilityUsage})
	require.Len(t, seen, 1)
	var failure *api.Failure
	require.ErrorAs(t, seen[0], &failure)
	assert.Equal(t, http.StatusTeapot, failure.Status)
	assert.Equal(t, "I'm a teapot", failure.Reason)
}

func TestMergeHeaders(t *testing.T) {
	merged := api.MergeHeaders(
		map[string]string{"Authorization": "default", "User-Agent": "racbot"},
		map[string]string{"authorization": "call", "X-Extra": "1"},
	)
	assert.Equal(t, map[string]string{
		"Authorization": "call",
		"User-Agent":    "racbot",
		"X-Extra":       "1",
	}, merged)
}
