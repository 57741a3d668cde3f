package github

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GitHubError
		expected string
	}{
		{
			name: "error with resource",
			err: &GitHubError{
				Type:     ErrorTypeAuth,
				Message:  "invalid token",
				Resource: "repository test/repo",
			},
			expected: "authentication error for repository test/repo: invalid token",
		},
		{
			name: "error without resource",
			err: &GitHubError{
				Type:    ErrorTypeValidation,
				Message: "validation failed",
			},
			expected: "validation error: validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestGitHubError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &GitHubError{
		Type:    ErrorTypeNetwork,
		Message: "network error",
		Cause:   cause,
	}

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
}

func TestWrapGitHubError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		resource     string
		expectedType ErrorType
		contains     string
	}{
		{
			name: "unauthorized",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusUnauthorized},
				Message:  "Bad credentials",
			},
			resource:     "repository octo/site",
			expectedType: ErrorTypeAuth,
			contains:     "Unable to authenticate",
		},
		{
			name: "forbidden",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusForbidden},
				Message:  "Resource not accessible by integration",
			},
			resource:     "file README.md",
			expectedType: ErrorTypePermission,
			contains:     "contents: write",
		},
		{
			name: "forbidden by rate limit message",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusForbidden},
				Message:  "API rate limit exceeded for installation",
			},
			expectedType: ErrorTypeRateLimit,
			contains:     "rate limit",
		},
		{
			name: "repository not found",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusNotFound},
				Message:  "Not Found",
			},
			resource:     "repository octo/site",
			expectedType: ErrorTypeNotFound,
			contains:     "GITHUB_REPOSITORY",
		},
		{
			name: "conflict",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusConflict},
				Message:  "README.md does not match abc",
			},
			expectedType: ErrorTypeConflict,
			contains:     "does not match abc",
		},
		{
			name: "validation with field errors",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusUnprocessableEntity},
				Message:  "Validation Failed",
				Errors:   []github.Error{{Field: "sha", Message: "wasn't supplied"}},
			},
			expectedType: ErrorTypeValidation,
			contains:     "sha: wasn't supplied",
		},
		{
			name: "validation with message only",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusUnprocessableEntity},
				Message:  "Invalid request.",
			},
			expectedType: ErrorTypeValidation,
			contains:     "Invalid request.",
		},
		{
			name: "service unavailable",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusServiceUnavailable},
			},
			expectedType: ErrorTypeNetwork,
			contains:     "temporarily unavailable",
		},
		{
			name: "unknown status",
			err: &github.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusTeapot},
			},
			expectedType: ErrorTypeUnknown,
			contains:     "teapot",
		},
		{
			name: "primary rate limit",
			err: &github.RateLimitError{
				Rate:     github.Rate{Reset: github.Timestamp{Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}},
				Response: &http.Response{StatusCode: http.StatusForbidden},
			},
			expectedType: ErrorTypeRateLimit,
			contains:     "Reset at 2026-01-01",
		},
		{
			name: "secondary rate limit",
			err: &github.AbuseRateLimitError{
				Response:   &http.Response{StatusCode: http.StatusForbidden},
				RetryAfter: durationPtr(30 * time.Second),
			},
			expectedType: ErrorTypeRateLimit,
			contains:     "Retry after 30s",
		},
		{
			name:         "network error",
			err:          errors.New("dial tcp 127.0.0.1:443: connect: connection refused"),
			expectedType: ErrorTypeNetwork,
		},
		{
			name:         "unknown error",
			err:          errors.New("something odd"),
			expectedType: ErrorTypeUnknown,
			contains:     "something odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapGitHubError(tt.err, tt.resource)

			require.NotNil(t, wrapped)
			assert.Equal(t, tt.expectedType, wrapped.Type)
			assert.Equal(t, tt.resource, wrapped.Resource)
			if tt.contains != "" {
				assert.Contains(t, wrapped.Error(), tt.contains)
			}
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}
}

func TestWrapGitHubError_Nil(t *testing.T) {
	assert.Nil(t, WrapGitHubError(nil, "anything"))
}

func TestWrapGitHubError_AlreadyWrapped(t *testing.T) {
	original := NewGitHubError(ErrorTypeConflict, "conflict", nil)
	wrapped := WrapGitHubError(fmt.Errorf("context: %w", original), "file README.md")

	assert.Same(t, original, wrapped)
	assert.Equal(t, "file README.md", wrapped.Resource)
}

func TestIsAuthError(t *testing.T) {
	authErr := NewGitHubError(ErrorTypeAuth, "bad token", nil)

	assert.True(t, IsAuthError(authErr))
	assert.True(t, IsAuthError(fmt.Errorf("wrapped: %w", authErr)))
	assert.False(t, IsAuthError(NewGitHubError(ErrorTypePermission, "nope", nil)))
	assert.False(t, IsAuthError(errors.New("plain")))
}

func TestIsNotFound(t *testing.T) {
	raw := &github.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}}

	assert.True(t, IsNotFound(raw))
	assert.True(t, IsNotFound(WrapGitHubError(raw, "file x")))
	assert.False(t, IsNotFound(&github.ErrorResponse{Response: &http.Response{StatusCode: http.StatusGone}}))
	assert.False(t, IsNotFound(errors.New("not found")))
}

func TestRemovalNotAllowedError(t *testing.T) {
	err := &RemovalNotAllowedError{Path: "docs/index.md"}
	assert.Equal(t, "Removing remote docs/index.md is not allowed", err.Error())
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
