package cluster_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maxkimambo/cbci/internal/cluster"
	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	form   map[string]string
	user   string
	pass   string
}

type requestLog struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.requests...)
}

func newAdminServer(t *testing.T, status int) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		user, pass, _ := r.BasicAuth()
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		log.mu.Lock()
		log.requests = append(log.requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			form:   form,
			user:   user,
			pass:   pass,
		})
		log.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, log
}

func hostOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestAdminClient_SetPoolQuota(t *testing.T) {
	logger.Setup(false, false, true)
	srv, log := newAdminServer(t, http.StatusOK)

	client := cluster.NewAdminClient(cluster.DefaultAdminUser, cluster.DefaultAdminPassword, 0)
	require.NoError(t, client.SetPoolQuota(context.Background(), hostOf(srv), 2048))

	requests := log.all()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/pools/default", req.path)
	assert.Equal(t, map[string]string{"memoryQuota": "2048"}, req.form)
	assert.Equal(t, "Administrator", req.user)
	assert.Equal(t, "password", req.pass)
}

func TestAdminClient_UpdateBucket(t *testing.T) {
	logger.Setup(false, false, true)
	srv, log := newAdminServer(t, http.StatusAccepted)

	client := cluster.NewAdminClient("Administrator", "password", 8091)
	require.NoError(t, client.UpdateBucket(context.Background(), hostOf(srv), "default", 100))

	requests := log.all()
	require.Len(t, requests, 1)
	assert.Equal(t, "/pools/default/buckets/default", requests[0].path)
	assert.Equal(t, map[string]string{"flushEnabled": "1", "ramQuotaMB": "100"}, requests[0].form)
}

func TestAdminClient_ErrorStatusIsReported(t *testing.T) {
	logger.Setup(false, false, true)
	srv, _ := newAdminServer(t, http.StatusBadRequest)

	client := cluster.NewAdminClient("Administrator", "password", 8091)
	err := client.SetPoolQuota(context.Background(), hostOf(srv), 2048)
	require.Error(t, err)

	hErr, ok := harnesserrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "CLUSTER-002", harnesserrors.GetErrorCode(err))
	assert.Equal(t, http.StatusBadRequest, hErr.Context["status"])
}

func TestAdminClient_UnreachableHost(t *testing.T) {
	logger.Setup(false, false, true)
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := hostOf(srv)
	srv.Close()

	client := cluster.NewAdminClient("Administrator", "password", 8091)
	err := client.UpdateBucket(context.Background(), addr, "default", 100)
	require.Error(t, err)
	assert.Equal(t, "CLUSTER-002", harnesserrors.GetErrorCode(err))
}

func TestAdminClient_WaitReady(t *testing.T) {
	logger.Setup(false, false, true)

	t.Run("disabled", func(t *testing.T) {
		client := cluster.NewAdminClient("Administrator", "password", 8091)
		// no server needed: a zero timeout never probes
		require.NoError(t, client.WaitReady(context.Background(), "192.0.2.1"))
	})

	t.Run("becomes ready", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/pools", r.URL.Path)
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := cluster.NewAdminClient("Administrator", "password", 8091)
		client.ReadyTimeout = 5 * time.Second
		client.ReadyInterval = 10 * time.Millisecond

		require.NoError(t, client.WaitReady(context.Background(), hostOf(srv)))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("bad credentials stop polling", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := cluster.NewAdminClient("Administrator", "wrong", 8091)
		client.ReadyTimeout = 5 * time.Second
		client.ReadyInterval = 10 * time.Millisecond

		err := client.WaitReady(context.Background(), hostOf(srv))
		require.Error(t, err)
		assert.Equal(t, "CLUSTER-003", harnesserrors.GetErrorCode(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("times out", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := cluster.NewAdminClient("Administrator", "password", 8091)
		client.ReadyTimeout = 100 * time.Millisecond
		client.ReadyInterval = 10 * time.Millisecond

		err := client.WaitReady(context.Background(), hostOf(srv))
		require.Error(t, err)
		assert.Equal(t, "CLUSTER-003", harnesserrors.GetErrorCode(err))
	})
}
