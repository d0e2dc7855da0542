package repository

import (
	"context"
	"errors"

	"github.com/user/job-insights/internal/entity"
)

var (
	// ErrBodyUnavailable is returned by ports when a matched response body could not be read.
	ErrBodyUnavailable = errors.New("response body unavailable")
	// ErrPortClosed is returned when subscribing to a port whose page has gone away.
	ErrPortClosed = errors.New("interception port closed")
)

// ResponseMatcher decides from the request URL whether a response should be captured.
type ResponseMatcher func(url string) bool

// ResponseHandler receives captured bodies. It must not block for long; ports call it
// from their own event goroutine.
type ResponseHandler func(msg entity.InterceptedMessage)

// InterceptionPort captures response bodies without altering what the page receives.
type InterceptionPort interface {
	// Subscribe delivers every successful response whose URL satisfies match, once per
	// logical request. The returned cancel func detaches the subscription.
	Subscribe(ctx context.Context, match ResponseMatcher, handle ResponseHandler) (cancel func(), err error)
}
