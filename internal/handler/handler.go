package handler

import (
	"errors"
	"time"

	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func getActor(c *fiber.Ctx) service.Actor {
	a := service.Actor{Name: "Unknown"}
	if id, ok := c.Locals(middleware.LocalUserID).(uuid.UUID); ok {
		a.UserID = id
	}
	if name, ok := c.Locals(middleware.LocalUserName).(string); ok {
		a.Name = name
	}
	if role, ok := c.Locals(middleware.LocalUserRole).(model.Role); ok {
		a.Role = role
	}
	return a
}

func getViewer(c *fiber.Ctx) service.Viewer {
	a := getActor(c)
	return service.Viewer{UserID: a.UserID, Role: a.Role}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func badID(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + what + " ID"})
}

func badJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}

// dateRange reads ?start= and ?end= as RFC 3339 timestamps or plain
// dates. A plain end date includes that whole day.
func dateRange(c *fiber.Ctx, loc *time.Location) (start, end *time.Time, err error) {
	if s := c.Query("start"); s != "" {
		t, err := parseDate(s, loc, false)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if s := c.Query("end"); s != "" {
		t, err := parseDate(s, loc, true)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}
	return start, end, nil
}

func parseDate(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, errors.New("dates must be YYYY-MM-DD or RFC 3339")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// writeError maps service errors to HTTP responses. Anything unexpected
// is logged and hidden behind a 500.
func writeError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": verr.Message,
			"rule":  verr.Rule,
			"line":  verr.Line,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrWrongPassword):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserInactive):
		status = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, service.ErrStockAdjustment):
		log.Error("stock adjustment failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, service.ErrFinanceNotFound),
		errors.Is(err, service.ErrReconcileNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrDuplicateBarcode),
		errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrDuplicateProduct),
		errors.Is(err, service.ErrDuplicateUsername):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrBarcodeExhausted):
		status = fiber.StatusServiceUnavailable
	}

	if status == fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
