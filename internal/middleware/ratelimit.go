package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit returns a per-IP limiter for the polled agent endpoints.
// rate uses the "<limit>-<period>" notation ("120-M", "10-S").
// onLimited, when set, is called for every rejected request.
func RateLimit(rate string, trustForwardHeader bool, onLimited func()) (echo.MiddlewareFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	instance := limiter.New(memory.NewStore(), r, limiter.WithTrustForwardHeader(trustForwardHeader))

	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			if onLimited != nil {
				onLimited()
			}
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"Too many requests"}`))
		}),
	)

	return echo.WrapMiddleware(mw.Handler), nil
}
