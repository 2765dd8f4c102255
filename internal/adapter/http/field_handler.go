package http

import (
	"net/http"

	"lr-validation-backend/internal/usecase/field"

	"github.com/labstack/echo/v4"
)

type FieldHandler struct{ uc *field.Usecase }

func NewFieldHandler(uc *field.Usecase) *FieldHandler { return &FieldHandler{uc: uc} }

type newFieldReq struct {
	FieldName      string `json:"field_name"      validate:"required"`
	FieldKey       string `json:"field_key"`
	PodRequirement string `json:"pod_requirement" validate:"podreq"`
}

type createFieldsReq struct {
	BranchID *uint64       `json:"branch_id" validate:"omitempty,gte=1"`
	Fields   []newFieldReq `json:"fields"    validate:"required,min=1,max=200,dive"`
}

func (h *FieldHandler) CreateBatch(c echo.Context) error {
	clientID, ok := pathID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client_id path param")
	}
	var req createFieldsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}

	in := make([]field.NewField, len(req.Fields))
	for i, f := range req.Fields {
		in[i] = field.NewField(f)
	}
	out, err := h.uc.CreateBatch(c.Request().Context(), clientID, req.BranchID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *FieldHandler) List(c echo.Context) error {
	clientID, ok := pathID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client_id path param")
	}
	branchID, ok := optionalID(c.QueryParam("branch_id"))
	if !ok {
		return badRequest(c, "invalid branch_id query param")
	}
	out, err := h.uc.List(c.Request().Context(), clientID, branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FieldHandler) Resolve(c echo.Context) error {
	clientID, ok := pathID(c, "client_id")
	if !ok {
		return badRequest(c, "invalid client_id path param")
	}
	branchID, ok := optionalID(c.QueryParam("branch_id"))
	if !ok {
		return badRequest(c, "invalid branch_id query param")
	}
	out, err := h.uc.Resolve(c.Request().Context(), clientID, branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FieldHandler) Delete(c echo.Context) error {
	fieldID, ok := pathID(c, "field_id")
	if !ok {
		return badRequest(c, "invalid field_id path param")
	}
	if err := h.uc.Delete(c.Request().Context(), fieldID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
