package infrastructure

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
)

// BuildHTTPClient returns a client for provider calls. There is no retry layer:
// every provider call is attempted exactly once and bounded by timeout.
func BuildHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return "unexpected status " + http.StatusText(e.StatusCode) + ": " + e.Body
}

// ClassifyError maps a provider failure to a short kind used in logs.
// status is the HTTP status when one was received, 0 otherwise.
func ClassifyError(err error, status int) string {
	if err == nil && status == 0 {
		return ""
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "timeout"
		}
		if errors.Is(err, context.Canceled) {
			return "canceled"
		}

		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			if dnsErr.IsTimeout {
				return "timeout"
			}
			return "dns"
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "timeout"
		}

		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return "dial"
		}

		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return "timeout"
		}

		var alertErr tls.AlertError
		if errors.As(err, &alertErr) {
			return "tls"
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && status == 0 {
			status = statusErr.StatusCode
		}
	}

	switch {
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}
