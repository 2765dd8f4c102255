package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health     *Handler
	Fields     *FieldHandler
	Documents  *DocumentHandler
	Extraction *ExtractionHandler
	Validation *ValidationHandler
	Workflow   *WorkflowHandler
}

// Register mounts every route on e. mw wraps all routes except /health;
// the idempotency middleware only acts on mutating methods.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	g := e.Group("", mw...)

	g.POST("/clients/:client_id/fields", h.Fields.CreateBatch)
	g.GET("/clients/:client_id/fields", h.Fields.List)
	g.GET("/clients/:client_id/resolved-fields", h.Fields.Resolve)
	g.DELETE("/fields/:field_id", h.Fields.Delete)

	g.POST("/documents", h.Documents.Upload)
	g.GET("/documents", h.Documents.List)
	g.GET("/documents/:document_id", h.Documents.Get)

	g.POST("/documents/:document_id/jobs", h.Extraction.StartJob)
	g.GET("/jobs/:job_id", h.Extraction.GetJob)
	g.POST("/documents/:document_id/invoices/import", h.Extraction.ImportInvoices)

	g.GET("/documents/:document_id/form", h.Validation.Form)
	g.GET("/documents/:document_id/invoices", h.Validation.Invoices)
	g.POST("/invoices/:invoice_id/custom-data", h.Validation.SaveCustomData)
	g.GET("/documents/:document_id/completeness", h.Validation.Completeness)
	g.POST("/documents/:document_id/validate", h.Validation.Validate)

	g.GET("/documents/:document_id/workflow", h.Workflow.Progress)
	g.POST("/documents/:document_id/workflow/bill-generated", h.Workflow.BillGenerated)
	g.POST("/documents/:document_id/workflow/:stage/complete", h.Workflow.MarkComplete)
}
