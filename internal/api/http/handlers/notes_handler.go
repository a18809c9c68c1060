package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/coaching-service/internal/api/dto"
	"github.com/spec-kit/coaching-service/internal/auth"
	"github.com/spec-kit/coaching-service/internal/service"
	apperrors "github.com/spec-kit/coaching-service/pkg/util/errorutil"
)

// NotesHandler serves a user's problem notes.
type NotesHandler struct {
	service *service.NoteService
}

// NewNotesHandler constructs handler.
func NewNotesHandler(noteService *service.NoteService) *NotesHandler {
	return &NotesHandler{service: noteService}
}

// List GET /users/:userId/notes.
func (h *NotesHandler) List(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	notes, err := h.service.ListForUser(c.UserContext(), id.Email, c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NotesByProblem(notes)})
}

// Save PUT /users/:userId/notes/:problemId.
func (h *NotesHandler) Save(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	problemID, err := problemIDParam(c)
	if err != nil {
		return err
	}
	var req dto.SaveNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	_, err = h.service.Save(c.UserContext(), service.SaveNoteInput{
		CallerEmail: id.Email,
		UserID:      c.Params("userId"),
		ProblemID:   problemID,
		Body:        req.Note,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.SaveNoteResponse{Status: "saved"}})
}
