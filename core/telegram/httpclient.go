package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/codesbot/core/telegram/netutil"
)

// minClientTimeout is the floor for the whole-request timeout. Long polls get pollSlack on top.
const (
	minClientTimeout = 30 * time.Second
	pollSlack        = 10 * time.Second
)

// BuildHTTPClient returns the client used for Bot API calls.
// Its timeout always outlasts one long-poll request.
func BuildHTTPClient(longPoll time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   max(minClientTimeout, longPoll+pollSlack),
		Transport: &retryTransport{next: base, retries: 3, backoff: 2 * time.Second},
	}
}

// retryTransport resends requests that failed without a response.
type retryTransport struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	resp, err := next.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.retries && netutil.ShouldRetry(err); attempt++ {
		if werr := wait(req, t.backoff*time.Duration(attempt)); werr != nil {
			return nil, werr
		}
		again, ok, rerr := rewind(req)
		if rerr != nil {
			return nil, rerr
		}
		if !ok {
			break
		}
		resp, err = next.RoundTrip(again)
	}
	return resp, err
}

// rewind clones req with a fresh body. ok is false when the body cannot be replayed.
func rewind(req *http.Request) (*http.Request, bool, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req.Clone(req.Context()), true, nil
	}
	if req.GetBody == nil {
		return nil, false, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false, err
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, true, nil
}

func wait(req *http.Request, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
