package taptap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/ratewatch/fetch"
)

type doDelegate func(context.Context, *fetch.Request) (*fetch.Response, error)

type mockCaller struct {
	doFn doDelegate
}

func (m *mockCaller) Do(ctx context.Context, r *fetch.Request) (*fetch.Response, error) {
	if m.doFn != nil {
		return m.doFn(ctx, r)
	}

	return nil, nil
}

func TestScraper_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var captured *fetch.Request

		caller := &mockCaller{
			doFn: func(_ context.Context, r *fetch.Request) (*fetch.Response, error) {
				captured = r

				return &fetch.Response{
					StatusCode: http.StatusOK,
					Body:       []byte(testResponse),
				}, nil
			},
		}

		s := NewScraper(caller, WithClock(func() time.Time { return testTime }))

		snapshot, err := s.Scrape(context.Background())
		require.NoError(t, err)

		assert.Len(t, snapshot.Rates, 4)
		assert.Equal(t, "2026-01-07 09:30:00", snapshot.Timestamp.String())

		require.NotNil(t, captured)
		assert.Equal(t, DefaultURL, captured.URL)
		assert.Equal(t, http.MethodGet, captured.Method)
		assert.Equal(t, "web", captured.Headers["X-Device-Id"])
	})

	t.Run("upstream error", func(t *testing.T) {
		t.Parallel()

		caller := &mockCaller{
			doFn: func(_ context.Context, _ *fetch.Request) (*fetch.Response, error) {
				return nil, &fetch.Error{Kind: fetch.KindHTTP, Status: http.StatusServiceUnavailable}
			},
		}

		snapshot, err := NewScraper(caller).Scrape(context.Background())

		assert.Nil(t, snapshot)

		fErr := fetch.AsError(err)
		require.NotNil(t, fErr)
		assert.Equal(t, fetch.KindHTTP, fErr.Kind)
		assert.Equal(t, http.StatusServiceUnavailable, fErr.Status)
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()

		caller := &mockCaller{
			doFn: func(_ context.Context, _ *fetch.Request) (*fetch.Response, error) {
				return &fetch.Response{StatusCode: http.StatusOK, Body: []byte("<html>")}, nil
			},
		}

		snapshot, err := NewScraper(caller).Scrape(context.Background())

		assert.Nil(t, snapshot)

		fErr := fetch.AsError(err)
		require.NotNil(t, fErr)
		assert.Equal(t, fetch.KindMalformed, fErr.Kind)
		assert.False(t, fErr.Blocked())
	})

	t.Run("live http server", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "web/2022-05-03.0", r.Header.Get("Appian-Version"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"availableCountries": []}`))
		}))
		defer srv.Close()

		s := NewScraper(
			fetch.NewClient(time.Second),
			WithURL(srv.URL),
		)

		snapshot, err := s.Scrape(context.Background())
		require.NoError(t, err)

		assert.Empty(t, snapshot.Rates)
		assert.Equal(t, srv.URL, s.URL())
		assert.Equal(t, Name, s.Name())
	})
}
