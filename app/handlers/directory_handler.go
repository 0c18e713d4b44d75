package handlers

import (
	"strconv"

	"github.com/amirphl/personnel-directory/app/dto"
	businessflow "github.com/amirphl/personnel-directory/business_flow"
	"github.com/gofiber/fiber/v3"
)

// DirectoryHandlerInterface defines the public directory endpoints
type DirectoryHandlerInterface interface {
	Search(c fiber.Ctx) error
	Lookups(c fiber.Ctx) error
}

type DirectoryHandler struct {
	responder
	flow businessflow.DirectoryFlow
}

func NewDirectoryHandler(flow businessflow.DirectoryFlow) DirectoryHandlerInterface {
	return &DirectoryHandler{
		responder: newResponder(),
		flow:      flow,
	}
}

// Search filters the directory
func (h *DirectoryHandler) Search(c fiber.Ctx) error {
	page, err := optionalInt(c.Query("page"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgInvalidPage, "INVALID_PAGE", nil)
	}
	pageSize, err := optionalInt(c.Query("page_size"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgInvalidPageSize, "INVALID_PAGE_SIZE", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.Search(ctx, businessflow.DirectoryQuery{
		Query:      c.Query("q"),
		Project:    c.Query("project"),
		Department: c.Query("department"),
		Position:   c.Query("position"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return h.businessErrorResponse(c, "Directory search", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Directory retrieved", dto.PersonnelListResponse{
		Items:      toPersonnelDTOs(result.Items),
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// Lookups lists the distinct projects, departments and positions
func (h *DirectoryHandler) Lookups(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	lookups, err := h.flow.Lookups(ctx)
	if err != nil {
		return h.businessErrorResponse(c, "Directory lookups", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Lookups retrieved", dto.LookupsResponse{
		Projects:    lookups.Projects,
		Departments: lookups.Departments,
		Positions:   lookups.Positions,
	})
}

// optionalInt parses v, treating empty as zero
func optionalInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
