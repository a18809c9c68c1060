package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coaching-service/internal/api/dto"
	"github.com/spec-kit/coaching-service/internal/auth"
	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/service"
	apperrors "github.com/spec-kit/coaching-service/pkg/util/errorutil"
)

// ProblemsHandler serves the practice catalog.
type ProblemsHandler struct {
	service *service.ProblemService
}

// NewProblemsHandler constructs handler.
func NewProblemsHandler(problemService *service.ProblemService) *ProblemsHandler {
	return &ProblemsHandler{service: problemService}
}

// List GET /problems.
func (h *ProblemsHandler) List(c *fiber.Ctx) error {
	problems, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProblemList(problems)})
}

// ToggleSolved PUT /problems/:problemId/solve.
func (h *ProblemsHandler) ToggleSolved(c *fiber.Ctx) error {
	return h.toggle(c, h.service.ToggleSolved)
}

// ToggleStarred PUT /problems/:problemId/star.
func (h *ProblemsHandler) ToggleStarred(c *fiber.Ctx) error {
	return h.toggle(c, h.service.ToggleStarred)
}

type toggleFunc func(ctx context.Context, actorID string, problemID int64) (*domain.Problem, error)

func (h *ProblemsHandler) toggle(c *fiber.Ctx, fn toggleFunc) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	problemID, err := problemIDParam(c)
	if err != nil {
		return err
	}
	problem, err := fn(c.UserContext(), id.UserID, problemID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProblemResponse(*problem)})
}

func problemIDParam(c *fiber.Ctx) (int64, error) {
	raw := c.Params("problemId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid problem id", map[string]any{"problem_id": raw})
	}
	return id, nil
}
