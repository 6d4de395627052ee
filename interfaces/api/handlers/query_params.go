package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"taskhub/domain/query"
	"taskhub/pkg/apperrors"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

func listParams(c *fiber.Ctx) query.Params {
	return query.Params{
		Where:  c.Query("where"),
		Sort:   c.Query("sort"),
		Select: c.Query("select"),
		Skip:   c.Query("skip"),
		Limit:  c.Query("limit"),
		Count:  c.Query("count"),
	}
}

// parseID reads the :id route parameter
func parseID(c *fiber.Ctx, message string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest(message)
	}
	return id, nil
}

// project renders v, dropping the fields p excludes
func project(p *query.Projection, v any) (any, error) {
	if p == nil {
		return v, nil
	}
	return p.ApplyTo(v)
}

func projectAll[T any](p *query.Projection, items []T) (any, error) {
	if p == nil {
		return items, nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		doc, err := p.ApplyTo(item)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// respondError writes the envelope for a service error; client errors are
// logged as warnings, everything else as errors
func respondError(ctx context.Context, c *fiber.Ctx, msg string, err error) error {
	if utils.StatusOf(err) >= fiber.StatusInternalServerError {
		logger.ErrorContext(ctx, msg, "error", err)
	} else {
		logger.WarnContext(ctx, msg, "error", apperrors.MessageOf(err))
	}
	return utils.ErrorFromAppError(c, err)
}
