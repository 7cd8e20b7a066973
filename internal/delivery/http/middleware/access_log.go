package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"learnmap/internal/metrics"
	"learnmap/internal/pkg/logger"
)

type AccessLogMiddleware struct {
	log     *logrus.Entry
	metrics *metrics.Metrics
}

func NewAccessLogMiddleware(log *logrus.Entry, m *metrics.Metrics) *AccessLogMiddleware {
	if log == nil {
		log = logger.L
	}
	return &AccessLogMiddleware{log: log, metrics: m}
}

// Middleware tags the request with an id, carries a request-scoped logger
// in the context, then logs and counts the request once it finishes.
func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)

		reqLog := m.log.WithField("request_id", rid)
		c.SetContext(logger.WithLogger(c.Context(), reqLog))

		err := c.Next()

		dur := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		m.metrics.ObserveRequest(route, c.Method(), status, dur)
		reqLog.WithFields(logrus.Fields{
			"component":  "http",
			"ip":         c.IP(),
			"method":     c.Method(),
			"path":       c.OriginalURL(),
			"route":      route,
			"status":     status,
			"latency":    dur.String(),
			"req_bytes":  c.Request().Header.ContentLength(),
			"resp_bytes": len(c.Response().Body()),
			"ua":         c.Get("User-Agent"),
		}).Info("http access")

		return err
	}
}
