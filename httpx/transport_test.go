package httpx_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/composure"
	"github.com/byte4ever/composure/httpx"
)

func newRequest(t *testing.T, method composure.Method, url string, body any) *composure.Request {
	t.Helper()

	req, err := composure.BuildRequest(method, url, body, map[string]string{"X-Test": "yes"}, 0)
	require.NoError(t, err)

	return req
}

func TestSendGet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		assert.Equal(t, "/items/1", r.URL.Path)

		_, _ = io.WriteString(w, `{"id":1}`)
	}))
	t.Cleanup(srv.Close)

	raw, err := httpx.NewTransport().Send(context.Background(),
		newRequest(t, composure.MethodGet, srv.URL+"/items/1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, raw.StatusCode)
	require.JSONEq(t, `{"id":1}`, string(raw.Body))
}

func TestSendPostBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"name":"x"}`, string(data))

		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	raw, err := httpx.NewTransport().Send(context.Background(),
		newRequest(t, composure.MethodPost, srv.URL, map[string]string{"name": "x"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, raw.StatusCode)
	require.NotNil(t, raw.Body)
	require.Empty(t, raw.Body)
}

func TestSendWithoutBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Zero(t, r.ContentLength)

		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	raw, err := httpx.NewTransport().Send(context.Background(),
		newRequest(t, composure.MethodDelete, srv.URL, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, raw.StatusCode)
	require.Nil(t, raw.Body)
}

func TestSendSkipsCertificateChecksWhenAsked(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "secure")
	}))
	t.Cleanup(srv.Close)

	tr := httpx.NewTransport()
	req := newRequest(t, composure.MethodGet, srv.URL, nil)

	raw, err := tr.Send(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "secure", string(raw.Body))

	req.InsecureSkipVerify = false

	_, err = tr.Send(context.Background(), req)
	require.True(t, composure.IsTransportError(err), "err = %v", err)
}

func TestSendConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := httpx.NewTransport().Send(context.Background(),
		newRequest(t, composure.MethodGet, url, nil))

	var te *composure.TransportError

	require.ErrorAs(t, err, &te)
	require.Equal(t, url, te.URL)
	require.Equal(t, composure.MethodGet, te.Method)
}

func TestSendHonorsRequestTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	req := newRequest(t, composure.MethodGet, srv.URL, nil)
	req.Timeout = 20 * time.Millisecond

	_, err := httpx.NewTransport().Send(context.Background(), req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, composure.IsTransportError(err))
}

func TestSendWaitsForInFlightSlot(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{}, 1)
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	tr := httpx.NewTransport(httpx.WithMaxInFlight(1))

	first := newRequest(t, composure.MethodGet, srv.URL, nil)
	done := make(chan error, 1)

	go func() {
		_, err := tr.Send(context.Background(), first)
		done <- err
	}()

	<-entered
	require.Equal(t, 1, tr.InFlight())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tr.Send(ctx, newRequest(t, composure.MethodGet, srv.URL, nil))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)
	require.Zero(t, tr.InFlight())
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	var used bool

	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		used = true

		return &http.Response{
			StatusCode: http.StatusAccepted,
			Body:       io.NopCloser(errReader{}),
			Request:    r,
		}, nil
	})

	tr := httpx.NewTransport(httpx.WithHTTPClient(&http.Client{Transport: rt}))

	_, err := tr.Send(context.Background(), newRequest(t, composure.MethodGet, "http://svc/a", nil))
	require.True(t, used)
	require.True(t, composure.IsTransportError(err))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("truncated") }
