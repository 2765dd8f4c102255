package http

import (
	"net/http"

	"lr-validation-backend/internal/usecase/validation"

	"github.com/labstack/echo/v4"
)

type ValidationHandler struct{ uc *validation.Usecase }

func NewValidationHandler(uc *validation.Usecase) *ValidationHandler {
	return &ValidationHandler{uc: uc}
}

type customDataReq struct {
	CustomData map[string]string `json:"custom_data" validate:"required,min=1"`
}

func (h *ValidationHandler) SaveCustomData(c echo.Context) error {
	invoiceID, ok := pathID(c, "invoice_id")
	if !ok {
		return badRequest(c, "invalid invoice_id path param")
	}
	var req customDataReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.uc.SaveCustomData(c.Request().Context(), invoiceID, req.CustomData)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ValidationHandler) Invoices(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	out, err := h.uc.Invoices(c.Request().Context(), docID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ValidationHandler) Completeness(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	r, err := h.uc.Completeness(c.Request().Context(), docID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ValidationHandler) Validate(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	res, err := h.uc.Validate(c.Request().Context(), docID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ValidationHandler) Form(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	form, err := h.uc.Form(c.Request().Context(), docID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, form)
}
