package http

import (
	"net/http"

	domain "lr-validation-backend/internal/domain/workflow"
	"lr-validation-backend/internal/usecase/workflow"

	"github.com/labstack/echo/v4"
)

type WorkflowHandler struct{ uc *workflow.Usecase }

func NewWorkflowHandler(uc *workflow.Usecase) *WorkflowHandler { return &WorkflowHandler{uc: uc} }

func (h *WorkflowHandler) Progress(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	snap, err := h.uc.Progress(c.Request().Context(), docID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *WorkflowHandler) MarkComplete(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	snap, err := h.uc.MarkComplete(c.Request().Context(), docID, domain.Stage(c.Param("stage")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *WorkflowHandler) BillGenerated(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	snap, err := h.uc.CompleteBillGeneration(c.Request().Context(), docID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}
