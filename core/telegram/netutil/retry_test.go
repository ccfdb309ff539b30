package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kind  string
		retry bool
	}{
		{name: "nil", err: nil, kind: ""},
		{name: "deadline", err: fmt.Errorf("send: %w", context.DeadlineExceeded), kind: "timeout", retry: true},
		{name: "cancelled", err: context.Canceled, kind: "cancelled"},
		{name: "dial", err: &net.OpError{Op: "dial", Err: errors.New("no route")}, kind: "dial", retry: true},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "api.telegram.org"}, kind: "dns"},
		{name: "api 400", err: &tele.Error{Code: 400, Description: "Bad Request"}, kind: "http_4xx"},
		{name: "api 502", err: &tele.Error{Code: 502, Description: "Bad Gateway"}, kind: "http_5xx", retry: true},
		{name: "plain", err: errors.New("boom"), kind: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Classify(tt.err))
			assert.Equal(t, tt.retry, ShouldRetry(tt.err))
		})
	}
}

func TestRedact(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AA-bb_CC/sendMessage": timeout`)
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout`, Redact(err))
	assert.Empty(t, Redact(nil))
}
