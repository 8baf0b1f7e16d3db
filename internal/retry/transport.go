package retry

import (
	"io"
	"net/http"
	"time"

	"golang.org/x/xerrors"
)

// Transport retries requests according to RetryOn and RetryStrategy. Requests
// with a body are replayed through GetBody and are not retried without it.
type Transport struct {
	Base          http.RoundTripper
	RetryStrategy Strategy
	RetryOn       *On
}

// NewClient returns a client whose timeout covers every attempt.
func NewClient(timeout time.Duration, strategy Strategy, on *On) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &Transport{
			Base:          http.DefaultTransport,
			RetryStrategy: strategy,
			RetryOn:       on,
		},
	}
}

func (t *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	ctx := request.Context()

	for retryCount := uint(0); ; retryCount++ {
		attempt := request
		if retryCount > 0 && request.Body != nil && request.Body != http.NoBody {
			body, err := request.GetBody()
			if err != nil {
				return nil, xerrors.Errorf("failed to rewind request body: %w", err)
			}
			attempt = request.Clone(ctx)
			attempt.Body = body
		}

		response, err := t.base().RoundTrip(attempt)

		retriable := false
		if err != nil {
			retriable = t.RetryOn != nil && t.RetryOn.CheckError(err)
		} else {
			retriable = t.RetryOn != nil && t.RetryOn.CheckResponse(response)
		}
		if !retriable || !t.replayable(request) {
			return response, err
		}

		sleep, exceeded := t.retryStrategy().Sleep(retryCount)
		if exceeded {
			return response, err
		}
		if response != nil {
			_, _ = io.Copy(io.Discard, response.Body)
			_ = response.Body.Close()
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (t *Transport) replayable(request *http.Request) bool {
	return request.Body == nil || request.Body == http.NoBody || request.GetBody != nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) retryStrategy() Strategy {
	if t.RetryStrategy != nil {
		return t.RetryStrategy
	}
	return NewNever()
}
