package main

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/blockchaincommons/go-depo/internal/pipeline"
	"github.com/blockchaincommons/go-depo/pkg/depocrypto"
	"github.com/blockchaincommons/go-depo/pkg/mlog"
)

// newRouter wires the three-route HTTP surface: depository identity,
// envelope exchange, and administrative reset. None of this is exercised by
// the core test suite; it is the thin transport collaborator the envelope
// pipeline is built to sit behind.
func newRouter(p *pipeline.Pipeline, depoPub depocrypto.PublicKey, resetter func(context.Context) error, logger mlog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(depocrypto.EncodeText("pubkey", depoPub.Bytes()))
	})

	app.Post("/", func(c *fiber.Ctx) error {
		respText := p.Handle(c.Context(), string(c.Body()))
		return c.SendString(respText)
	})

	app.Post("/reset-db", func(c *fiber.Ctx) error {
		if resetter == nil {
			return c.Status(fiber.StatusNotImplemented).SendString("reset not supported by this store backend")
		}

		if err := resetter(c.Context()); err != nil {
			logger.Errorf("depod: reset-db failed: %s", err)
			return c.Status(fiber.StatusInternalServerError).SendString("reset failed")
		}

		return c.SendStatus(fiber.StatusNoContent)
	})

	return app
}
