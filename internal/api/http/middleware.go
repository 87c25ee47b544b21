package http

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/spec-kit/market-desk/internal/observability"
	"github.com/spec-kit/market-desk/internal/ratelimit"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

// MiddlewareConfig bundles the global middleware dependencies.
type MiddlewareConfig struct {
	Logger           *zap.Logger
	Metrics          *observability.Metrics
	Timeout          time.Duration
	CORSAllowOrigins string
	GeneralLimiter   fiber.Handler
}

// RegisterMiddlewares attaches global middlewares. Order matters: the request
// logger wraps the error handler so it sees the final status, and the general
// limiter runs inside the error handler so its 429 is shaped like any other error.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Metrics))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	if cfg.GeneralLimiter != nil {
		app.Use(cfg.GeneralLimiter)
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Path()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				writeError(c, err, logger, metrics)
				err = nil
			}
		}()
		return c.Next()
	}
}

// ErrorHandler shapes errors that escape the middleware chain, such as body
// limit violations raised before any handler runs.
func ErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		writeError(c, err, logger, metrics)
		return nil
	}
}

func writeError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics) {
	var domainErr *apperrors.DomainError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &domainErr):
	case errors.As(err, &fiberErr):
		domainErr = apperrors.FromStatus(fiberErr.Code, fiberErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		domainErr = apperrors.NewDomainError("TIMEOUT", "Request timed out", fiber.StatusServiceUnavailable, nil)
	default:
		domainErr = apperrors.ToDomainError(err)
	}

	metrics.RecordError(domainErr.Code)

	message := domainErr.Message
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		if domainErr.Code == "INTERNAL_ERROR" {
			message = "Something went wrong on our end"
		}
	}

	response := fiber.Map{
		"error": message,
		"code":  domainErr.Code,
	}
	if len(domainErr.Details) > 0 && domainErr.HTTPStatus < fiber.StatusInternalServerError {
		response["details"] = domainErr.Details
	}
	_ = c.Status(domainErr.HTTPStatus).JSON(response)
}

// RateLimit enforces limiter per client address. name labels the rejection metric.
func RateLimit(name string, limiter ratelimit.Limiter, message string, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := limiter.Allow(c.UserContext(), c.IP())
		now := time.Now()

		c.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter(now).Seconds()))
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			metrics.RecordRateLimited(name)
			return apperrors.NewTooManyRequests(message)
		}
		return c.Next()
	}
}
