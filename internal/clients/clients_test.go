package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/cache"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/contextutils"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestProfileClient_CumulativeDistance(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes decimal distance", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/usuarios/7", r.URL.Path)
			assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
			w.Write([]byte(`{"id":7,"kmRecorridos":60.25}`))
		})
		client := NewProfileClient(srv.URL+"/api/v1/usuarios", time.Second, nil, zap.NewNop())

		km, err := client.CumulativeDistance(contextutils.WithRequestID(ctx, "req-1"), 7)
		require.NoError(t, err)
		assert.True(t, km.Equal(decimal.RequireFromString("60.25")))
	})

	t.Run("null distance is zero", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":7,"kmRecorridos":null}`))
		})
		client := NewProfileClient(srv.URL, time.Second, nil, zap.NewNop())

		km, err := client.CumulativeDistance(ctx, 7)
		require.NoError(t, err)
		assert.True(t, km.IsZero())
	})

	t.Run("404 is not found", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		client := NewProfileClient(srv.URL, time.Second, nil, zap.NewNop())

		_, err := client.CumulativeDistance(ctx, 7)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("5xx is unavailable", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		client := NewProfileClient(srv.URL, time.Second, nil, zap.NewNop())

		_, err := client.CumulativeDistance(ctx, 7)
		var unavailable *UnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, http.StatusBadGateway, unavailable.StatusCode)
		assert.Equal(t, "users", unavailable.Service)
	})

	t.Run("slow collaborator times out", func(t *testing.T) {
		release := make(chan struct{})
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)
		client := NewProfileClient(srv.URL, 20*time.Millisecond, nil, zap.NewNop())

		_, err := client.CumulativeDistance(ctx, 7)
		var unavailable *UnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestSessionLogClient_ListSessionsForUser(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usuario/7", r.URL.Path)
		w.Write([]byte(`[
			{"idRuta": 1, "ffinal": "2026-05-01T10:00:00"},
			{"idRuta": 2, "ffinal": null},
			{"idRuta": 3, "ffinal": "2026-05-03T09:30:00Z"}
		]`))
	})
	client := NewSessionLogClient(srv.URL, time.Second, nil, zap.NewNop())

	sessions, err := client.ListSessionsForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	assert.Equal(t, int64(1), sessions[0].RouteID)
	assert.True(t, sessions[0].Completed())
	assert.False(t, sessions[1].Completed())
	assert.True(t, sessions[2].Completed())
	assert.Equal(t, 9, sessions[2].CompletedAt.Hour())
}

func TestSessionLogClient_BadTimestamp(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"idRuta": 1, "ffinal": "yesterday"}]`))
	})
	client := NewSessionLogClient(srv.URL, time.Second, nil, zap.NewNop())

	_, err := client.ListSessionsForUser(context.Background(), 7)
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestRouteCatalogClient_RegionOfRoute(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/10":
			w.Write([]byte(`{"id":10,"id_region":4}`))
		case "/11":
			w.Write([]byte(`{"id":11}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	client := NewRouteCatalogClient(srv.URL, time.Second, nil, zap.NewNop())
	ctx := context.Background()

	region, err := client.RegionOfRoute(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), region)

	_, err = client.RegionOfRoute(ctx, 11)
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)

	_, err = client.RegionOfRoute(ctx, 12)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusClient_GetStatus(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1" {
			w.Write([]byte(`{"id":1,"nombre":"Activo"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	client := NewStatusClient(srv.URL, time.Second, nil, zap.NewNop())

	status, err := client.GetStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Activo", status.Name)

	_, err = client.GetStatus(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

type countingResolver struct {
	calls  int32
	region int64
	err    error
}

func (r *countingResolver) RegionOfRoute(ctx context.Context, routeID int64) (int64, error) {
	atomic.AddInt32(&r.calls, 1)
	return r.region, r.err
}

func TestCachedRouteCatalog(t *testing.T) {
	ctx := context.Background()
	memory := cache.NewMemoryCache(&cache.Config{TTL: time.Minute, MaxKeys: 10, CleanupInterval: time.Hour}, zap.NewNop())
	t.Cleanup(func() { memory.Close() })

	t.Run("caches successful lookups", func(t *testing.T) {
		next := &countingResolver{region: 3}
		cached := NewCachedRouteCatalog(next, memory, time.Minute, zap.NewNop())

		for i := 0; i < 3; i++ {
			region, err := cached.RegionOfRoute(ctx, 100)
			require.NoError(t, err)
			assert.Equal(t, int64(3), region)
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&next.calls))
	})

	t.Run("does not cache failures", func(t *testing.T) {
		next := &countingResolver{err: errors.New("route service down")}
		cached := NewCachedRouteCatalog(next, memory, time.Minute, zap.NewNop())

		_, err := cached.RegionOfRoute(ctx, 200)
		require.Error(t, err)
		_, err = cached.RegionOfRoute(ctx, 200)
		require.Error(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&next.calls))
	})
}
