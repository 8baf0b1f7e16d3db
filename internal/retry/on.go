package retry

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/xerrors"
)

// On decides which responses and transport errors are worth another attempt.
// The condition names follow Envoy's x-envoy-retry-on header.
type On struct {
	_5xx           bool
	gatewayError   bool
	connectFailure bool
	retriable4xx   bool
	statusCodes    []int
}

// NewDefaultRetryOn retries gateway errors, conflicts and connection failures.
func NewDefaultRetryOn() *On {
	return &On{
		gatewayError:   true,
		connectFailure: true,
		retriable4xx:   true,
	}
}

// NewRetryOnFromString parses a comma separated list of conditions and status
// codes, e.g. "5xx,connect-failure,429".
func NewRetryOnFromString(s string) (*On, error) {
	o := &On{}
	for _, condition := range strings.Split(s, ",") {
		condition = strings.TrimSpace(condition)
		switch condition {
		case "":
		case "5xx":
			o._5xx = true
		case "gateway-error":
			o.gatewayError = true
		case "connect-failure":
			o.connectFailure = true
		case "retriable-4xx":
			o.retriable4xx = true
		default:
			statusCode, err := strconv.Atoi(condition)
			if err != nil {
				return nil, xerrors.Errorf("invalid retry condition %q: %w", condition, err)
			}
			o.statusCodes = append(o.statusCodes, statusCode)
		}
	}
	return o, nil
}

func (o *On) CheckResponse(response *http.Response) bool {
	switch {
	case o._5xx && response.StatusCode >= 500 && response.StatusCode < 600:
		return true
	case o.gatewayError && response.StatusCode >= 502 && response.StatusCode < 505:
		return true
	case o.retriable4xx && response.StatusCode == http.StatusConflict:
		return true
	}

	for _, statusCode := range o.statusCodes {
		if statusCode == response.StatusCode {
			return true
		}
	}
	return false
}

func (o *On) CheckError(err error) bool {
	if !o.connectFailure && !o._5xx {
		return false
	}

	type temporary interface{ Temporary() bool }
	var terr temporary
	if errors.As(err, &terr) && terr.Temporary() {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET)
}
