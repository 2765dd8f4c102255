package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"lr-validation-backend/internal/adapter/gateway"
	"lr-validation-backend/internal/adapter/repository/gormrepo"
	"lr-validation-backend/internal/domain/client"
	"lr-validation-backend/internal/domain/invoice"
	"lr-validation-backend/internal/infrastructure/storage"
	"lr-validation-backend/internal/testutil/gatewaymock"
	"lr-validation-backend/internal/testutil/testdb"
	"lr-validation-backend/internal/usecase/extraction"
	"lr-validation-backend/internal/usecase/field"
	"lr-validation-backend/internal/usecase/ingest"
	"lr-validation-backend/internal/usecase/validation"
	"lr-validation-backend/internal/usecase/workflow"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// testApp is the whole service over in-memory SQLite, an in-memory object
// store and a scripted gateway.
type testApp struct {
	t        *testing.T
	e        *echo.Echo
	db       *gorm.DB
	gw       *gatewaymock.Client
	clientID uint64
	branchID uint64
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testdb.Open(t)
	repos := gormrepo.Repos(db)
	tx := gormrepo.NewGormUoW(db)
	store := storage.NewWithFs(afero.NewMemMapFs(), "lr")
	gw := &gatewaymock.Client{}

	c := &client.Client{Name: "Acme Freight"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	b := &client.Branch{ClientID: c.ID, Name: "Pune"}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}

	e := echo.New()
	e.Validator = NewValidator()
	Register(e, Handlers{
		Health:     NewHandler(),
		Fields:     NewFieldHandler(field.NewUsecase(repos.Clients, repos.Fields, tx)),
		Documents:  NewDocumentHandler(ingest.NewUsecase(repos.Clients, repos.Documents, store, ingest.Config{})),
		Extraction: NewExtractionHandler(extraction.NewUsecase(repos.Documents, tx, gw)),
		Validation: NewValidationHandler(validation.NewUsecase(repos, tx, nil, validation.Config{Mode: invoice.ModeCoarse})),
		Workflow:   NewWorkflowHandler(workflow.NewUsecase(repos.Workflow, tx)),
	})
	return &testApp{t: t, e: e, db: db, gw: gw, clientID: c.ID, branchID: b.ID}
}

func (a *testApp) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) upload(name, contentType string, data []byte, form map[string]string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range form {
		_ = mw.WriteField(k, v)
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(h)
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(stdhttp.MethodPost, "/documents", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, want, rec.Body.String())
	}
}

func TestFields_CreateListResolve(t *testing.T) {
	a := newTestApp(t)
	base := fmt.Sprintf("/clients/%d", a.clientID)

	rec := a.do(stdhttp.MethodPost, base+"/fields", map[string]any{
		"fields": []map[string]any{
			{"field_name": "PO Number"},
			{"field_name": "POD Date", "pod_requirement": "NOT_APPLICABLE"},
		},
	})
	expectStatus(t, rec, stdhttp.StatusCreated)
	created := decode[[]field.FieldDTO](t, rec)
	if len(created) != 2 || created[0].FieldKey != "po_number" || created[1].DisplayOrder != 1 {
		t.Fatalf("unexpected fields: %+v", created)
	}

	rec = a.do(stdhttp.MethodPost, base+"/fields", map[string]any{
		"branch_id": a.branchID,
		"fields":    []map[string]any{{"field_name": "POD Date", "pod_requirement": "MANDATORY"}},
	})
	expectStatus(t, rec, stdhttp.StatusCreated)

	rec = a.do(stdhttp.MethodGet, base+"/fields", nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if got := decode[[]field.FieldDTO](t, rec); len(got) != 2 {
		t.Fatalf("base scope should list 2 fields, got %d", len(got))
	}

	rec = a.do(stdhttp.MethodGet, fmt.Sprintf("%s/resolved-fields?branch_id=%d", base, a.branchID), nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	resolved := decode[[]field.FieldDTO](t, rec)
	if len(resolved) != 2 || !resolved[1].BranchSpecific || resolved[1].PodRequirement != "MANDATORY" {
		t.Fatalf("branch override not resolved: %+v", resolved)
	}
}

func TestFields_Errors(t *testing.T) {
	a := newTestApp(t)
	base := fmt.Sprintf("/clients/%d/fields", a.clientID)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad client id", stdhttp.MethodGet, "/clients/abc/fields", nil, stdhttp.StatusBadRequest},
		{"bad branch query", stdhttp.MethodGet, base + "?branch_id=x", nil, stdhttp.StatusBadRequest},
		{"unknown client", stdhttp.MethodGet, "/clients/999/fields", nil, stdhttp.StatusNotFound},
		{"foreign branch", stdhttp.MethodGet, base + "?branch_id=999", nil, stdhttp.StatusNotFound},
		{"empty batch", stdhttp.MethodPost, base, map[string]any{"fields": []any{}}, stdhttp.StatusUnprocessableEntity},
		{"missing name", stdhttp.MethodPost, base, map[string]any{"fields": []map[string]any{{"field_key": "x"}}}, stdhttp.StatusUnprocessableEntity},
		{"bad pod", stdhttp.MethodPost, base, map[string]any{"fields": []map[string]any{{"field_name": "x", "pod_requirement": "SOMETIMES"}}}, stdhttp.StatusUnprocessableEntity},
		{"duplicate in batch", stdhttp.MethodPost, base, map[string]any{"fields": []map[string]any{{"field_name": "PO"}, {"field_name": "po"}}}, stdhttp.StatusUnprocessableEntity},
		{"unknown field", stdhttp.MethodDelete, "/fields/999", nil, stdhttp.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, a.do(tt.method, tt.path, tt.body), tt.want)
		})
	}
}

func TestFields_Delete(t *testing.T) {
	a := newTestApp(t)
	rec := a.do(stdhttp.MethodPost, fmt.Sprintf("/clients/%d/fields", a.clientID), map[string]any{
		"fields": []map[string]any{{"field_name": "PO Number"}},
	})
	expectStatus(t, rec, stdhttp.StatusCreated)
	id := decode[[]field.FieldDTO](t, rec)[0].ID

	expectStatus(t, a.do(stdhttp.MethodDelete, fmt.Sprintf("/fields/%d", id), nil), stdhttp.StatusNoContent)
	expectStatus(t, a.do(stdhttp.MethodDelete, fmt.Sprintf("/fields/%d", id), nil), stdhttp.StatusNotFound)
}

func TestDocuments_UploadGetList(t *testing.T) {
	a := newTestApp(t)
	form := map[string]string{"client_id": fmt.Sprint(a.clientID), "branch_id": fmt.Sprint(a.branchID)}

	rec := a.upload("LR 2024 #7.pdf", "application/pdf", []byte("%PDF-1.7"), form)
	expectStatus(t, rec, stdhttp.StatusCreated)
	doc := decode[ingest.DocumentDTO](t, rec)
	if doc.DocumentNumber != "LR_2024_7" || doc.State != "Pending_Validation" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	rec = a.do(stdhttp.MethodGet, fmt.Sprintf("/documents/%d", doc.ID), nil)
	expectStatus(t, rec, stdhttp.StatusOK)

	rec = a.do(stdhttp.MethodGet, fmt.Sprintf("/documents?client_id=%d&state=Pending_Validation", a.clientID), nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if got := decode[[]ingest.DocumentDTO](t, rec); len(got) != 1 || got[0].ID != doc.ID {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestDocuments_UploadRejections(t *testing.T) {
	a := newTestApp(t)
	form := map[string]string{"client_id": fmt.Sprint(a.clientID)}

	expectStatus(t, a.upload("scan.png", "image/png", []byte("png"), form), stdhttp.StatusUnprocessableEntity)
	expectStatus(t, a.upload("empty.pdf", "application/pdf", nil, form), stdhttp.StatusUnprocessableEntity)
	expectStatus(t, a.upload("a.pdf", "application/pdf", []byte("%PDF"), map[string]string{}), stdhttp.StatusBadRequest)
	expectStatus(t, a.upload("a.pdf", "application/pdf", []byte("%PDF"), map[string]string{"client_id": "999"}), stdhttp.StatusNotFound)

	rec := a.do(stdhttp.MethodGet, "/documents", nil)
	if got := decode[[]ingest.DocumentDTO](t, rec); len(got) != 0 {
		t.Fatalf("rejected uploads must not create documents, got %d", len(got))
	}
	expectStatus(t, a.do(stdhttp.MethodGet, "/documents?state=Bogus", nil), stdhttp.StatusUnprocessableEntity)
	expectStatus(t, a.do(stdhttp.MethodGet, "/documents/0", nil), stdhttp.StatusBadRequest)
	expectStatus(t, a.do(stdhttp.MethodGet, "/documents/42", nil), stdhttp.StatusNotFound)
}

func TestJobs(t *testing.T) {
	a := newTestApp(t)
	jobID := uuid.New()
	a.gw.StartJobFn = func(_ context.Context, id uint64) (*gateway.Job, error) {
		return &gateway.Job{ID: jobID, DocumentID: id, Status: gateway.JobQueued}, nil
	}
	a.gw.GetJobFn = func(_ context.Context, id uuid.UUID) (*gateway.Job, error) {
		if id != jobID {
			return nil, &gateway.APIError{StatusCode: 404}
		}
		return &gateway.Job{ID: id, Status: gateway.JobProcessing, Progress: 50}, nil
	}

	rec := a.upload("lr.pdf", "application/pdf", []byte("%PDF"), map[string]string{"client_id": fmt.Sprint(a.clientID)})
	doc := decode[ingest.DocumentDTO](t, rec)

	rec = a.do(stdhttp.MethodPost, fmt.Sprintf("/documents/%d/jobs", doc.ID), nil)
	expectStatus(t, rec, stdhttp.StatusAccepted)
	if got := decode[extraction.JobDTO](t, rec); got.JobID != jobID {
		t.Fatalf("job id = %s", got.JobID)
	}

	expectStatus(t, a.do(stdhttp.MethodGet, "/jobs/"+jobID.String(), nil), stdhttp.StatusOK)
	expectStatus(t, a.do(stdhttp.MethodGet, "/jobs/"+uuid.NewString(), nil), stdhttp.StatusNotFound)
	expectStatus(t, a.do(stdhttp.MethodGet, "/jobs/not-a-uuid", nil), stdhttp.StatusUnprocessableEntity)

	a.gw.StartJobFn = func(context.Context, uint64) (*gateway.Job, error) {
		return nil, &gateway.APIError{StatusCode: 503}
	}
	expectStatus(t, a.do(stdhttp.MethodPost, fmt.Sprintf("/documents/%d/jobs", doc.ID), nil), stdhttp.StatusBadGateway)
}

func TestValidationFlow(t *testing.T) {
	a := newTestApp(t)
	expectStatus(t, a.do(stdhttp.MethodPost, fmt.Sprintf("/clients/%d/fields", a.clientID), map[string]any{
		"fields": []map[string]any{{"field_name": "PO Number"}},
	}), stdhttp.StatusCreated)

	rec := a.upload("lr.pdf", "application/pdf", []byte("%PDF"), map[string]string{"client_id": fmt.Sprint(a.clientID)})
	doc := decode[ingest.DocumentDTO](t, rec)
	docPath := fmt.Sprintf("/documents/%d", doc.ID)

	a.gw.ListInvoicesFn = func(context.Context, uint64) ([]gateway.Invoice, error) {
		return []gateway.Invoice{{InvoiceNumber: "INV-1"}, {InvoiceNumber: "INV-2"}}, nil
	}
	rec = a.do(stdhttp.MethodPost, docPath+"/invoices/import", nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if res := decode[extraction.ImportResult](t, rec); res.Created != 2 {
		t.Fatalf("import = %+v", res)
	}

	rec = a.do(stdhttp.MethodGet, docPath+"/invoices", nil)
	invs := decode[[]validation.InvoiceDTO](t, rec)
	if len(invs) != 2 {
		t.Fatalf("invoices = %+v", invs)
	}

	expectStatus(t, a.do(stdhttp.MethodPost, docPath+"/validate", nil), stdhttp.StatusPreconditionFailed)
	expectStatus(t, a.do(stdhttp.MethodGet, docPath+"/workflow", nil), stdhttp.StatusPreconditionFailed)

	expectStatus(t, a.do(stdhttp.MethodPost, fmt.Sprintf("/invoices/%d/custom-data", invs[0].ID), map[string]any{
		"custom_data": map[string]string{"colour": "red"},
	}), stdhttp.StatusUnprocessableEntity)
	expectStatus(t, a.do(stdhttp.MethodPost, fmt.Sprintf("/invoices/%d/custom-data", invs[0].ID), map[string]any{
		"custom_data": map[string]string{},
	}), stdhttp.StatusUnprocessableEntity)
	for _, inv := range invs {
		expectStatus(t, a.do(stdhttp.MethodPost, fmt.Sprintf("/invoices/%d/custom-data", inv.ID), map[string]any{
			"custom_data": map[string]string{"po_number": "42"},
		}), stdhttp.StatusOK)
	}

	rec = a.do(stdhttp.MethodGet, docPath+"/completeness", nil)
	if r := decode[invoice.Report](t, rec); !r.Complete {
		t.Fatalf("completeness = %+v", r)
	}
	rec = a.do(stdhttp.MethodGet, docPath+"/form", nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if f := decode[validation.Form](t, rec); len(f.Fields) != 1 || len(f.Invoices) != 2 {
		t.Fatalf("form = %+v", f)
	}

	expectStatus(t, a.do(stdhttp.MethodPost, docPath+"/validate", nil), stdhttp.StatusOK)
	expectStatus(t, a.do(stdhttp.MethodPost, docPath+"/validate", nil), stdhttp.StatusConflict)
	expectStatus(t, a.do(stdhttp.MethodPost, fmt.Sprintf("/invoices/%d/custom-data", invs[0].ID), map[string]any{
		"custom_data": map[string]string{"po_number": "43"},
	}), stdhttp.StatusPreconditionFailed)

	// workflow
	expectStatus(t, a.do(stdhttp.MethodPost, docPath+"/workflow/pod-validation/complete", nil), stdhttp.StatusPreconditionFailed)
	expectStatus(t, a.do(stdhttp.MethodPost, docPath+"/workflow/generate-bill/complete", nil), stdhttp.StatusUnprocessableEntity)
	expectStatus(t, a.do(stdhttp.MethodPost, docPath+"/workflow/excel-9/complete", nil), stdhttp.StatusUnprocessableEntity)
	expectStatus(t, a.do(stdhttp.MethodPost, docPath+"/workflow/bill-generated", nil), stdhttp.StatusOK)
	expectStatus(t, a.do(stdhttp.MethodPost, docPath+"/workflow/pod-validation/complete", nil), stdhttp.StatusOK)

	rec = a.do(stdhttp.MethodGet, docPath+"/workflow", nil)
	expectStatus(t, rec, stdhttp.StatusOK)
	if snap := decode[workflow.Snapshot](t, rec); snap.Completed != 2 || snap.Total != 9 {
		t.Fatalf("snapshot = %+v", snap)
	}
}
