package http

import (
	"errors"
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/application"
	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/atelier-works/atelier-engine/internal/ratelimit"
	"github.com/atelier-works/atelier-engine/internal/shared/logger"
	userdomain "github.com/atelier-works/atelier-engine/internal/user/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionHandler exposes the bidding protocol and the listing lifecycle
// over HTTP. The limiter arrives injected; there is no package-global
// counter state.
type AuctionHandler struct {
	svc        application.AuctionService
	limiter    *ratelimit.Limiter
	rateMax    int
	rateWindow time.Duration
}

// NewAuctionHandler creates a new instance of AuctionHandler.
func NewAuctionHandler(svc application.AuctionService, limiter *ratelimit.Limiter,
	rateMax int, rateWindow time.Duration) *AuctionHandler {
	return &AuctionHandler{
		svc:        svc,
		limiter:    limiter,
		rateMax:    rateMax,
		rateWindow: rateWindow,
	}
}

type placeBidRequest struct {
	AuctionID string `json:"auctionId"`
	Amount    int64  `json:"amount"`
}

// PlaceBid handles POST /api/bids/place.
func (h *AuctionHandler) PlaceBid(c *fiber.Ctx) error {
	profile := actorProfile(c)
	if profile == nil {
		return unauthorized(c)
	}

	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	auctionID, err := uuid.Parse(req.AuctionID)
	if err != nil {
		return badRequest(c, "invalid auctionId")
	}

	rl := h.limiter.Attempt("bid:"+profile.ID.String(), h.rateMax, h.rateWindow)
	if !rl.Allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":     "Too many requests. Please wait before placing another bid.",
			"resetTime": rl.ResetTime,
		})
	}

	bid, err := h.svc.PlaceBid(c.Context(), application.PlaceBidDTO{
		AuctionID:   auctionID,
		BidderID:    profile.ID,
		BidderEmail: profile.Email,
		Amount:      req.Amount,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"bid":       bid,
		"remaining": rl.Remaining,
	})
}

// Sweep handles GET /api/cron/auction-end, behind CronAuth.
func (h *AuctionHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.svc.Sweep(c.Context())
	if err != nil {
		log.Error("Sweep endpoint failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"processed": result,
	})
}

type createAuctionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartPrice  int64  `json:"startPrice"`
	EndTime     string `json:"endTime"`
}

// CreateAuction handles POST /api/auctions. Designers only.
func (h *AuctionHandler) CreateAuction(c *fiber.Ctx) error {
	profile := actorProfile(c)
	if profile == nil {
		return unauthorized(c)
	}
	if profile.Role != userdomain.RoleDesigner && profile.Role != userdomain.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only designers can list items"})
	}

	var req createAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	var endTime time.Time
	if req.EndTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			return badRequest(c, "invalid endTime, expected RFC3339")
		}
		endTime = parsed
	}

	auction, err := h.svc.CreateAuction(c.Context(), application.CreateAuctionDTO{
		DesignerID:  profile.ID,
		Title:       req.Title,
		Description: req.Description,
		StartPrice:  req.StartPrice,
		EndTime:     endTime,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"auction": auction,
	})
}

// DeleteAuction handles DELETE /api/auctions/:id.
func (h *AuctionHandler) DeleteAuction(c *fiber.Ctx) error {
	profile := actorProfile(c)
	if profile == nil {
		return unauthorized(c)
	}
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}

	if err := h.svc.DeleteAuction(c.Context(), auctionID, profile.ID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type reactivateRequest struct {
	AuctionID string `json:"auctionId"`
	EndTime   string `json:"endTime"`
}

// ReactivateAuction handles POST /api/auctions/reactivate.
func (h *AuctionHandler) ReactivateAuction(c *fiber.Ctx) error {
	profile := actorProfile(c)
	if profile == nil {
		return unauthorized(c)
	}

	var req reactivateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.AuctionID == "" {
		return badRequest(c, "Missing auctionId")
	}
	auctionID, err := uuid.Parse(req.AuctionID)
	if err != nil {
		return badRequest(c, "invalid auctionId")
	}

	var endTime time.Time
	if req.EndTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			return badRequest(c, "invalid endTime, expected RFC3339")
		}
		endTime = parsed
	}

	auction, err := h.svc.ReactivateAuction(c.Context(), application.ReactivateDTO{
		AuctionID: auctionID,
		ActorID:   profile.ID,
		EndTime:   endTime,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"auction": auction,
	})
}

// GetAuction handles GET /api/auctions/:id, public.
func (h *AuctionHandler) GetAuction(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	detail, err := h.svc.GetAuction(c.Context(), auctionID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(detail)
}

// ListAuctions handles GET /api/auctions, public, with optional
// ?designer=<uuid> and ?status=<status> filters.
func (h *AuctionHandler) ListAuctions(c *fiber.Ctx) error {
	filter := domain.AuctionFilter{}
	if d := c.Query("designer"); d != "" {
		designerID, err := uuid.Parse(d)
		if err != nil {
			return badRequest(c, "invalid designer filter")
		}
		filter.DesignerID = &designerID
	}
	if s := c.Query("status"); s != "" {
		filter.Status = domain.AuctionStatus(s)
	}

	auctions, err := h.svc.ListAuctions(c.Context(), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"auctions": auctions})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// errorResponse maps protocol errors to status codes, passing the message
// through verbatim: the UI surfaces it directly.
func errorResponse(c *fiber.Ctx, err error) error {
	var tooLow *domain.BidTooLowError

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotDesigner):
		status = fiber.StatusForbidden
	case errors.As(err, &tooLow),
		errors.Is(err, domain.ErrAuctionEnded),
		errors.Is(err, domain.ErrSelfBid),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNotDeletable),
		errors.Is(err, domain.ErrNotReactivatable),
		errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrInvalidStartPrice),
		errors.Is(err, domain.ErrEndTimeInPast),
		errors.Is(err, domain.ErrEndTimeTooFar):
		status = fiber.StatusBadRequest
	default:
		log.Error("Request failed", zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
