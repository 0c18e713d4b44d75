package handlers

import (
	"fmt"
	"strconv"

	"github.com/amirphl/personnel-directory/app/dto"
	businessflow "github.com/amirphl/personnel-directory/business_flow"
	"github.com/amirphl/personnel-directory/models"
	"github.com/gofiber/fiber/v3"
)

// PersonnelHandlerInterface defines the admin personnel CRUD endpoints
type PersonnelHandlerInterface interface {
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	BulkDelete(c fiber.Ctx) error
}

type PersonnelHandler struct {
	responder
	flow businessflow.PersonnelFlow
}

func NewPersonnelHandler(flow businessflow.PersonnelFlow) PersonnelHandlerInterface {
	return &PersonnelHandler{
		responder: newResponder(),
		flow:      flow,
	}
}

// List pages through personnel, ten per page
func (h *PersonnelHandler) List(c fiber.Ctx) error {
	page := 1
	if v := c.Query("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgInvalidPage, "INVALID_PAGE", nil)
		}
		page = parsed
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.List(ctx, c.Query("q"), page)
	if err != nil {
		return h.businessErrorResponse(c, "List personnel", err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Personnel retrieved", dto.PersonnelListResponse{
		Items:      toPersonnelDTOs(result.Items),
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// Get returns one record by personnel code
func (h *PersonnelHandler) Get(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	rec, err := h.flow.Get(ctx, c.Params("code"))
	if err != nil {
		return h.businessErrorResponse(c, "Get personnel", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Personnel retrieved", toPersonnelDTO(rec))
}

// Create adds one record
func (h *PersonnelHandler) Create(c fiber.Ctx) error {
	var req dto.CreatePersonnelRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rec, err := h.flow.Add(ctx, models.PersonnelRecord{
		PersonnelCode: req.PersonnelCode,
		PersianName:   req.PersianName,
		EnglishName:   req.EnglishName,
		VoipNumber:    req.VoipNumber,
		Project:       req.Project,
		Department:    req.Department,
		Position:      req.Position,
	})
	if err != nil {
		return h.businessErrorResponse(c, "Create personnel", err)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, businessflow.MsgPersonnelAdded, toPersonnelDTO(rec))
}

// Update changes the mutable fields of one record; the personnel code cannot change
func (h *PersonnelHandler) Update(c fiber.Ctx) error {
	code := c.Params("code")

	var req dto.UpdatePersonnelRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}
	if req.PersonnelCode != nil && *req.PersonnelCode != code {
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgPersonnelCodeImmutable, "PERSONNEL_CODE_IMMUTABLE", businessflow.ErrPersonnelCodeImmutable.Error())
	}
	if req.Empty() {
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgUpdateRequired, "UPDATE_REQUIRED", businessflow.ErrPersonnelUpdateRequired.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rec, err := h.flow.Update(ctx, code, models.PersonnelPatch{
		PersianName: req.PersianName,
		EnglishName: req.EnglishName,
		VoipNumber:  req.VoipNumber,
		Project:     req.Project,
		Department:  req.Department,
		Position:    req.Position,
	})
	if err != nil {
		return h.businessErrorResponse(c, "Update personnel", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, businessflow.MsgPersonnelUpdated, toPersonnelDTO(rec))
}

// Delete removes one record
func (h *PersonnelHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.flow.Delete(ctx, c.Params("code")); err != nil {
		return h.businessErrorResponse(c, "Delete personnel", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, businessflow.MsgPersonnelDeleted, nil)
}

// BulkDelete removes every listed record that exists
func (h *PersonnelHandler) BulkDelete(c fiber.Ctx) error {
	var req dto.BulkDeleteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	deleted, err := h.flow.BulkDelete(ctx, req.Codes)
	if err != nil {
		return h.businessErrorResponse(c, "Bulk delete personnel", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, fmt.Sprintf(businessflow.MsgPersonnelBulkDeletedFt, deleted), dto.BulkDeleteResponse{Deleted: deleted})
}
