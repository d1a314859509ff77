package bridge

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
)

// Mount serves inv on router under InvokePath so an HTTPInvoker can reach it.
// Rejections are answered with 422 and unknown commands with 404.
func Mount(router fiber.Router, inv Invoker) {
	router.Post(InvokePath, func(c fiber.Ctx) error {
		command := c.Params("command")

		var args any
		if body := c.Body(); len(body) > 0 {
			args = json.RawMessage(append([]byte(nil), body...))
		}

		raw, err := inv.Invoke(c.Context(), command, args)
		if err != nil {
			status := fiber.StatusUnprocessableEntity
			if errors.Is(err, ErrUnknownCommand) {
				status = fiber.StatusNotFound
			}

			return c.Status(status).JSON(wireError{Error: err.Error()})
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		return c.Status(fiber.StatusOK).Send(raw)
	})
}
