package core

import (
	"errors"
	"fmt"
)

// Reply parsing failures. MalformedReply covers a recognized review_type
// with missing or empty required fields; UnexpectedReplyShape covers an
// absent or unknown review_type. Both abort the review without consuming
// a recursion step and without any gateway review-creation call.
var (
	ErrMalformedReply       = errors.New("malformed llm reply")
	ErrUnexpectedReplyShape = errors.New("unexpected llm reply shape")
)

// ErrRecursionExhausted is returned when the LLM keeps requesting
// additional files after the recursion budget has reached zero.
var ErrRecursionExhausted = errors.New("additional-files recursion budget exhausted")

// GatewayErrorKind classifies source-control gateway failures.
type GatewayErrorKind string

const (
	GatewayNotFound     GatewayErrorKind = "not_found"
	GatewayUnauthorized GatewayErrorKind = "unauthorized"
	GatewayRateLimited  GatewayErrorKind = "rate_limited"
	GatewayTransport    GatewayErrorKind = "transport"
)

// GatewayError wraps a failure at the source-control boundary.
type GatewayError struct {
	Kind GatewayErrorKind
	Op   string
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// LLMErrorKind classifies failures at the LLM boundary.
type LLMErrorKind string

const (
	LLMTimeout     LLMErrorKind = "timeout"
	LLMProtocol    LLMErrorKind = "protocol"
	LLMInvalidJSON LLMErrorKind = "invalid_json"
)

// LLMError wraps a failure of the LLM gateway call. The orchestrator never
// retries these; any retry policy belongs inside the gateway implementation.
type LLMError struct {
	Kind LLMErrorKind
	Err  error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("llm call failed (%s): %v", e.Kind, e.Err)
}

func (e *LLMError) Unwrap() error { return e.Err }

// ConfigurationError reports invalid or conflicting startup configuration,
// such as missing credentials or two LLM credentials supplied at once.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}
