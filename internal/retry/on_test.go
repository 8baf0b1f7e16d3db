package retry_test

import (
	"errors"
	"fmt"
	"image-diff/internal/retry"
	"io"
	"net/http"
	"runtime"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/xerrors"
)

type temporaryError struct {
	s string
}

func (te *temporaryError) Error() string {
	return te.s
}

func (te *temporaryError) Temporary() bool {
	return true
}

func mustRetryOn(t *testing.T, s string) *retry.On {
	t.Helper()

	o, err := retry.NewRetryOnFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestCheckResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		retryOn    string
		statusCode int
		want       bool
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"5xx", 500, true,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"gateway-error", 500, false,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"gateway-error", 503, true,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"retriable-4xx", 409, true,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"retriable-4xx", 404, false,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"connect-failure, 429", 429, true,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"", 502, false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mustRetryOn(t, tt.retryOn).CheckResponse(&http.Response{StatusCode: tt.statusCode})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		retryOn string
		err     error
		want    bool
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"connect-failure", &temporaryError{"fake"}, true,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"5xx", io.EOF, true,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"connect-failure", xerrors.Errorf("dial: %w", syscall.ECONNREFUSED), true,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"connect-failure", errors.New("fake"), false,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"gateway-error", io.EOF, false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mustRetryOn(t, tt.retryOn).CheckError(tt.err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewRetryOnFromString_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := retry.NewRetryOnFromString("5xx,sometimes"); err == nil {
		t.Error("Expected an error for an unknown condition")
	}
}
