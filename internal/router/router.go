package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ikanisa/MomoTerminal-sub001/internal/api"
)

type Router struct {
	API       *api.Server
	InboundMW fiber.Handler // rate limiter for the SMS webhook
	APIKeyMW  fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	sms := app.Group("/api/sms")
	if r.APIKeyMW != nil {
		sms.Use(r.APIKeyMW)
	}
	if r.InboundMW != nil {
		sms.Post("/inbound", r.InboundMW, r.API.InboundSMS)
	} else {
		sms.Post("/inbound", r.API.InboundSMS)
	}
	sms.Get("/records", r.API.ListRecords)
	sms.Get("/records/:id", r.API.GetRecord)

	w := app.Group("/api/wallet")
	if r.APIKeyMW != nil {
		w.Use(r.APIKeyMW)
	}
	w.Get("/", r.API.WalletSummary)
	w.Get("/entries", r.API.WalletEntries)
	w.Post("/reprocess", r.API.Reprocess)
}
