package llm

import (
	"context"
	"errors"
	"net"
	"strings"
)

// FailureKind buckets provider errors into the categories the chat surface
// apologizes for.
type FailureKind string

const (
	FailureQuota      FailureKind = "quota"
	FailureAuth       FailureKind = "auth"
	FailureConnection FailureKind = "connection"
	FailureTimeout    FailureKind = "timeout"
	FailureOther      FailureKind = "other"
)

// ClassifyFailure maps a provider error onto a FailureKind. Providers wrap
// heterogeneous SDK and HTTP errors, so beyond the well-known sentinel types
// this falls back to inspecting the error text.
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "exceeded") ||
		strings.Contains(msg, "429"):
		return FailureQuota
	case strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "401"):
		return FailureAuth
	case strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline"):
		return FailureTimeout
	case strings.Contains(msg, "connection") ||
		strings.Contains(msg, "connect") ||
		strings.Contains(msg, "dial") ||
		strings.Contains(msg, "no such host"):
		return FailureConnection
	}
	return FailureOther
}
