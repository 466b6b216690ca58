package cluster

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/logger"
	"github.com/siderolabs/go-retry/retry"
)

const (
	DefaultAdminUser     = "Administrator"
	DefaultAdminPassword = "password"
	DefaultAdminPort     = 8091

	defaultReadyInterval = 2 * time.Second
	requestTimeout       = 30 * time.Second
	maxErrorBody         = 4096
)

// AdminClient talks to the cluster management REST API with basic auth.
type AdminClient struct {
	HTTP     *http.Client
	User     string
	Password string
	Port     int
	// ReadyTimeout bounds WaitReady; zero skips the readiness probe.
	ReadyTimeout  time.Duration
	ReadyInterval time.Duration
}

func NewAdminClient(user, password string, port int) *AdminClient {
	if port == 0 {
		port = DefaultAdminPort
	}
	return &AdminClient{
		HTTP:          &http.Client{Timeout: requestTimeout},
		User:          user,
		Password:      password,
		Port:          port,
		ReadyInterval: defaultReadyInterval,
	}
}

// WaitReady polls GET /pools until the endpoint answers with 2xx.
func (a *AdminClient) WaitReady(ctx context.Context, address string) error {
	if a.ReadyTimeout <= 0 {
		return nil
	}
	target := a.endpoint(address, "/pools")

	interval := a.ReadyInterval
	if interval <= 0 {
		interval = defaultReadyInterval
	}

	err := retry.Constant(a.ReadyTimeout, retry.WithUnits(interval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			status, err := a.do(ctx, http.MethodGet, target, nil)
			if err != nil {
				return retry.ExpectedError(err)
			}
			switch {
			case status >= 200 && status < 300:
				return nil
			case status == http.StatusUnauthorized || status == http.StatusForbidden:
				return fmt.Errorf("admin endpoint rejected credentials for %s (HTTP %d)", a.User, status)
			default:
				return retry.ExpectedError(fmt.Errorf("admin endpoint returned HTTP %d", status))
			}
		})
	if err != nil {
		return harnesserrors.NewHarnessError(harnesserrors.ErrorCategoryCluster, harnesserrors.CodeAdminTimeout,
			fmt.Sprintf("Admin endpoint %s did not become ready", target),
			"Cluster readiness").
			WithContext("timeout", a.ReadyTimeout.String()).
			WithOriginalError(err)
	}
	return nil
}

// SetPoolQuota sets the memory quota of the default pool.
func (a *AdminClient) SetPoolQuota(ctx context.Context, address string, memoryMB int) error {
	form := url.Values{}
	form.Set("memoryQuota", strconv.Itoa(memoryMB))
	return a.post(ctx, a.endpoint(address, "/pools/default"), form)
}

// UpdateBucket sets the bucket RAM quota and enables flush.
func (a *AdminClient) UpdateBucket(ctx context.Context, address, bucket string, ramQuotaMB int) error {
	form := url.Values{}
	form.Set("flushEnabled", "1")
	form.Set("ramQuotaMB", strconv.Itoa(ramQuotaMB))
	return a.post(ctx, a.endpoint(address, "/pools/default/buckets/"+bucket), form)
}

func (a *AdminClient) post(ctx context.Context, target string, form url.Values) error {
	status, err := a.do(ctx, http.MethodPost, target, form)
	if err != nil {
		return harnesserrors.NewAdminRequestError(target, 0, err)
	}
	if status < 200 || status >= 300 {
		return harnesserrors.NewAdminRequestError(target, status, fmt.Errorf("unexpected HTTP status %d", status))
	}
	return nil
}

func (a *AdminClient) do(ctx context.Context, method, target string, form url.Values) (int, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(a.User, a.Password)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	logger.User.Info(strings.TrimSpace(fmt.Sprintf("%s %s %s", method, target, form.Encode())))

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	entry := logger.Op.WithFields(map[string]interface{}{
		"url":    target,
		"status": resp.StatusCode,
	})
	if resp.StatusCode >= 300 {
		entry.Warnf("admin request failed: %s", strings.TrimSpace(string(payload)))
	} else {
		entry.Debug("admin request succeeded")
	}

	return resp.StatusCode, nil
}

// endpoint builds the admin URL; an address that already names a port keeps it.
func (a *AdminClient) endpoint(address, path string) string {
	return (&url.URL{Scheme: "http", Host: hostPort(address, a.Port), Path: path}).String()
}

func hostPort(address string, port int) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(address, strconv.Itoa(port))
}

var _ AdminAPI = (*AdminClient)(nil)
