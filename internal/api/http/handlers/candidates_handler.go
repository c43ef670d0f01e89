package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-service/internal/api/dto"
	"github.com/spec-kit/talent-service/internal/service"
	apperrors "github.com/spec-kit/talent-service/pkg/util"
)

// CandidatesHandler manages organization-scoped candidate endpoints. The
// organization comes from the request's tenant context, never the payload.
type CandidatesHandler struct {
	service *service.CandidateService
}

// NewCandidatesHandler constructs handler.
func NewCandidatesHandler(candidateService *service.CandidateService) *CandidatesHandler {
	return &CandidatesHandler{service: candidateService}
}

// Create POST /candidates.
func (h *CandidatesHandler) Create(c *fiber.Ctx) error {
	var req dto.CandidateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	candidate, err := h.service.Create(c.UserContext(), service.CandidateInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// List GET /candidates?limit=&offset=.
func (h *CandidatesHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)

	candidates, err := h.service.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateList(candidates)})
}

// Get GET /candidates/:id.
func (h *CandidatesHandler) Get(c *fiber.Ctx) error {
	id, err := candidateID(c)
	if err != nil {
		return err
	}

	candidate, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCandidateResponse(candidate)})
}

// Delete DELETE /candidates/:id.
func (h *CandidatesHandler) Delete(c *fiber.Ctx) error {
	id, err := candidateID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func candidateID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid candidate id", []apperrors.FieldError{{Field: "id", Rule: "numeric"}})
	}
	return id, nil
}
