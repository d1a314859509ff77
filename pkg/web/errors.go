package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/resources"
	"github.com/dukex/decmed/pkg/router"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// handleError maps domain errors onto problem responses.
func handleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, router.ErrNotFound):
		return notFound(c, "not_found", "page not found")

	case errors.Is(err, ErrUnknownFlow):
		return notFound(c, "flow_not_found", err.Error())

	case errors.Is(err, ErrFlowScope):
		return badRequest(c, err.Error())

	case errors.Is(err, resources.ErrNotLoaded):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case bridge.IsCommandError(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("command_rejected").
			WithDetail(bridge.Message(err))

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
