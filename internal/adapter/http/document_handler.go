package http

import (
	"net/http"
	"strconv"

	"lr-validation-backend/internal/usecase/ingest"

	"github.com/labstack/echo/v4"
)

type DocumentHandler struct{ uc *ingest.Usecase }

func NewDocumentHandler(uc *ingest.Usecase) *DocumentHandler { return &DocumentHandler{uc: uc} }

// Upload takes multipart form fields file, client_id and an optional branch_id.
func (h *DocumentHandler) Upload(c echo.Context) error {
	clientID, ok := optionalID(c.FormValue("client_id"))
	if !ok || clientID == nil {
		return badRequest(c, "client_id form field is required")
	}
	branchID, ok := optionalID(c.FormValue("branch_id"))
	if !ok {
		return badRequest(c, "invalid branch_id form field")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file form field is required")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	defer f.Close()

	up := ingest.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}
	dto, err := h.uc.Ingest(c.Request().Context(), up, *clientID, branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *DocumentHandler) Get(c echo.Context) error {
	docID, ok := pathID(c, "document_id")
	if !ok {
		return badRequest(c, "invalid document_id path param")
	}
	dto, err := h.uc.Get(c.Request().Context(), docID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// List filters by client_id, branch_id, state and limit query params.
func (h *DocumentHandler) List(c echo.Context) error {
	clientID, ok := optionalID(c.QueryParam("client_id"))
	if !ok {
		return badRequest(c, "invalid client_id query param")
	}
	branchID, ok := optionalID(c.QueryParam("branch_id"))
	if !ok {
		return badRequest(c, "invalid branch_id query param")
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "invalid limit query param")
		}
		limit = n
	}
	out, err := h.uc.List(c.Request().Context(), ingest.ListInput{
		ClientID: clientID,
		BranchID: branchID,
		State:    c.QueryParam("state"),
		Limit:    limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
