package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/terraincognita07/calm/internal/policy"
	"github.com/terraincognita07/calm/internal/ratelimit"
)

// AccessLog writes one line per request and records its metrics. Errors
// returned by later handlers are rendered first so the logged status is
// the one the client sees.
func (handler *Handler) AccessLog(c *fiber.Ctx) error {
	start := handler.now()
	// fiber reuses the request buffers once the handler returns.
	method := utils.CopyString(c.Method())
	path := utils.CopyString(c.Path())

	if err := c.Next(); err != nil {
		if renderErr := c.App().ErrorHandler(c, err); renderErr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	elapsed := handler.now().Sub(start)
	status := c.Response().StatusCode()
	route := c.Route().Path
	if route == "" || route == "/" {
		route = "unmatched"
	}

	handler.metrics.RecordHTTPRequest(method, route, status, elapsed)
	handler.log.HTTPRequest(requestID(c), method, path, c.IP(), status, elapsed.Milliseconds())
	return nil
}

// RateLimit throttles requests per client address. A failing shared
// limiter lets traffic through.
func (handler *Handler) RateLimit(limiter ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := limiter.Allow(c.UserContext(), requestLimiterKey(c))
		if err != nil {
			handler.log.WithRequestID(requestID(c)).WithError(err).Warn("rate limiter unavailable")
			return c.Next()
		}
		if !allowed {
			handler.metrics.RecordRateLimited()
			return apiError(c, fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

// authorize evaluates request against access and reports refusals to the
// security log and metrics.
func (handler *Handler) authorize(c *fiber.Ctx, resource policy.Resource, access policy.AccessPolicy, request policy.Request) error {
	decision := access.Authorize(request)
	if decision.Allowed() {
		return nil
	}

	handler.log.AccessDenied(requestID(c), string(resource), string(request.Action), request.Requester.UserID, decision.Reason)
	handler.metrics.RecordAccessDenial(string(resource), string(request.Action), outcomeLabel(decision.Outcome))
	return &accessDenied{decision: decision}
}

func outcomeLabel(outcome policy.Outcome) string {
	switch outcome {
	case policy.DenyUnauthenticated:
		return "unauthenticated"
	case policy.DenyReadOnly:
		return "read_only"
	default:
		return "forbidden"
	}
}
