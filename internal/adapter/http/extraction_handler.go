package http

import (
	"net/http"

	"lr-validation-backend/internal/usecase/extraction"

	"github.com/labstack/echo/v4"
)

type ExtractionHandler struct{ uc *extraction.Usecase }

func NewExtractionHandler(uc *extraction.Usecase) *ExtractionHandler {
	return &ExtractionHandler{uc: uc}
}

func (h *ExtractionHandler) StartJob(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	job, err := h.uc.Start(c.Request().Context(), docID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, job)
}

func (h *ExtractionHandler) GetJob(c echo.Context) error {
	job, err := h.uc.Job(c.Request().Context(), c.Param("job_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

func (h *ExtractionHandler) ImportInvoices(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	res, err := h.uc.ImportInvoices(c.Request().Context(), docID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
