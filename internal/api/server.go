package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ikanisa/MomoTerminal-sub001/internal/ingest"
	"github.com/ikanisa/MomoTerminal-sub001/internal/ledger"
	"github.com/ikanisa/MomoTerminal-sub001/internal/momo"
	"github.com/ikanisa/MomoTerminal-sub001/internal/storage"
)

type Server struct {
	Pipeline *ingest.Service
	Ledger   *ledger.Ledger
	Store    storage.Store
	// DefaultCurrency backs wallet lookups for users who have never been
	// credited yet.
	DefaultCurrency string

	validate *validator.Validate
}

func NewServer(pipeline *ingest.Service, led *ledger.Ledger, store storage.Store, defaultCurrency string) *Server {
	return &Server{
		Pipeline:        pipeline,
		Ledger:          led,
		Store:           store,
		DefaultCurrency: defaultCurrency,
		validate:        validator.New(),
	}
}

type inboundSMSRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	Sender     string `json:"sender" validate:"required"`
	Body       string `json:"body" validate:"required"`
	ReceivedAt string `json:"received_at" validate:"omitempty"`
}

// InboundSMS is the webhook the device sync agent posts raw messages to,
// one call per message, at-least-once.
func (s *Server) InboundSMS(c *fiber.Ctx) error {
	var body inboundSMSRequest
	if err := c.BodyParser(&body); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := s.validate.Struct(body); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, err.Error())
	}

	receivedAt := time.Now().UTC()
	if v := strings.TrimSpace(body.ReceivedAt); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return jsonErr(c, fiber.StatusBadRequest, "received_at must be RFC3339")
		}
		receivedAt = parsed
	}

	result, err := s.Pipeline.Process(c.UserContext(), body.UserID, momo.RawMessage{
		Sender:     body.Sender,
		Body:       body.Body,
		ReceivedAt: receivedAt,
	})
	if err != nil {
		// Storage unavailable: surface so the agent redelivers.
		return jsonErr(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(result)
}

func (s *Server) ListRecords(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		return jsonErr(c, fiber.StatusBadRequest, "user_id is required")
	}

	var credited *bool
	if v := strings.TrimSpace(c.Query("credited")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return jsonErr(c, fiber.StatusBadRequest, "credited must be a boolean")
		}
		credited = &b
	}

	limit := c.QueryInt("limit", 50)
	records, err := s.Store.ListRecords(c.UserContext(), userID, credited, limit)
	if err != nil {
		return jsonErr(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"items": records})
}

func (s *Server) GetRecord(c *fiber.Ctx) error {
	id := c.Params("id")

	rec, err := s.Store.GetRecord(c.UserContext(), id)
	if errors.Is(err, storage.ErrNotFound) {
		// A transaction reference works here too; records are queryable
		// by either key.
		rec, err = s.Store.FindRecordByReference(c.UserContext(), id)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return jsonErr(c, fiber.StatusNotFound, "record not found")
	}
	if err != nil {
		return jsonErr(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(rec)
}

func (s *Server) WalletSummary(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		return jsonErr(c, fiber.StatusBadRequest, "user_id is required")
	}

	w, err := s.Ledger.GetOrCreateWallet(c.UserContext(), userID, s.DefaultCurrency)
	if err != nil {
		return jsonErr(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(w)
}

func (s *Server) WalletEntries(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		return jsonErr(c, fiber.StatusBadRequest, "user_id is required")
	}

	w, err := s.Ledger.GetOrCreateWallet(c.UserContext(), userID, s.DefaultCurrency)
	if err != nil {
		return jsonErr(c, fiber.StatusInternalServerError, err.Error())
	}

	limit := c.QueryInt("limit", 50)
	entries, err := s.Ledger.ListEntries(c.UserContext(), w.ID, limit)
	if err != nil {
		return jsonErr(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"wallet_id": w.ID, "items": entries})
}

type reprocessRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Reprocess triggers the recovery sweep for one user: saved-but-uncredited
// Received records get their credit replayed.
func (s *Server) Reprocess(c *fiber.Ctx) error {
	var body reprocessRequest
	if err := c.BodyParser(&body); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := s.validate.Struct(body); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, err.Error())
	}

	credited, err := s.Pipeline.ReprocessUncredited(c.UserContext(), body.UserID)
	if err != nil {
		return jsonErr(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(fiber.Map{"credited": credited})
}

func jsonErr(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
