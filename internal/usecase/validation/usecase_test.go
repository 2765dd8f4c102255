package validation

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"lr-validation-backend/internal/adapter/gateway"
	"lr-validation-backend/internal/adapter/repository/gormrepo"
	"lr-validation-backend/internal/domain/apperr"
	"lr-validation-backend/internal/domain/client"
	"lr-validation-backend/internal/domain/document"
	"lr-validation-backend/internal/domain/field"
	"lr-validation-backend/internal/domain/invoice"
	"lr-validation-backend/internal/domain/uow"
	"lr-validation-backend/internal/testutil/documentmock"
	"lr-validation-backend/internal/testutil/fieldmock"
	"lr-validation-backend/internal/testutil/gatewaymock"
	"lr-validation-backend/internal/testutil/invoicemock"
	"lr-validation-backend/internal/testutil/testdb"
	"lr-validation-backend/internal/testutil/uowmock"
	"lr-validation-backend/internal/testutil/workflowmock"

	"gorm.io/gorm"
)

// fixture is one client with a branch, a mixed field set, and a document
// awaiting validation with two invoices.
type fixture struct {
	db       *gorm.DB
	repos    uow.Repos
	doc      *document.Document
	invoices []*invoice.Invoice
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)

	c := &client.Client{Name: "Acme Freight"}
	mustCreate(t, db, c)
	b := &client.Branch{ClientID: c.ID, Name: "Pune"}
	mustCreate(t, db, b)

	mustCreate(t, db, &field.TemplateField{ClientID: c.ID, FieldName: "PO Number", FieldKey: "po_number", DisplayOrder: 0, PodRequirement: field.PodNotApplicable})
	mustCreate(t, db, &field.TemplateField{ClientID: c.ID, FieldName: "POD Date", FieldKey: "pod_date", DisplayOrder: 1, PodRequirement: field.PodNotApplicable})
	// the branch makes pod_date mandatory
	mustCreate(t, db, &field.TemplateField{ClientID: c.ID, BranchID: &b.ID, BranchScope: b.ID, FieldName: "POD Date", FieldKey: "pod_date", DisplayOrder: 1, PodRequirement: field.PodMandatory})

	d := &document.Document{
		ClientID:       c.ID,
		BranchID:       &b.ID,
		DocumentNumber: "LR_7",
		TripDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		StoragePath:    "lr/1/1_LR 7.pdf",
		State:          document.StatePendingValidation,
	}
	mustCreate(t, db, d)

	f := &fixture{db: db, repos: gormrepo.Repos(db), doc: d}
	for _, num := range []string{"INV-1", "INV-2"} {
		inv := &invoice.Invoice{DocumentID: d.ID, InvoiceNumber: num}
		if err := f.repos.Invoices.Create(context.Background(), inv); err != nil {
			t.Fatalf("seed invoice: %v", err)
		}
		f.invoices = append(f.invoices, inv)
	}
	return f
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}

func (f *fixture) usecase(mode invoice.Mode, gw gateway.Client) *Usecase {
	return NewUsecase(f.repos, gormrepo.NewGormUoW(f.db), gw, Config{Mode: mode, Mirror: gw != nil})
}

func (f *fixture) state(t *testing.T) document.State {
	t.Helper()
	var d document.Document
	if err := f.db.First(&d, f.doc.ID).Error; err != nil {
		t.Fatalf("reload document: %v", err)
	}
	return d.State
}

func TestSaveCustomData_MergesKeys(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(invoice.ModeCoarse, nil)
	ctx := context.Background()
	id := f.invoices[0].ID

	if _, err := uc.SaveCustomData(ctx, id, map[string]string{"po_number": "42", "pod_date": "2024-03-02"}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	got, err := uc.SaveCustomData(ctx, id, map[string]string{"po_number": "43"})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	want := map[string]string{"po_number": "43", "pod_date": "2024-03-02"}
	if !reflect.DeepEqual(got.CustomData, want) {
		t.Fatalf("custom data = %v, want %v", got.CustomData, want)
	}

	stored, _ := f.repos.Invoices.GetByID(ctx, id)
	if !reflect.DeepEqual(map[string]string(stored.Data()), want) {
		t.Fatalf("stored = %v, want %v", stored.Data(), want)
	}
}

func TestSaveCustomData_Rejections(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(invoice.ModeCoarse, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		invoiceID uint64
		data      map[string]string
		kind      apperr.Kind
	}{
		{"empty data", f.invoices[0].ID, map[string]string{}, apperr.KindValidation},
		{"unknown key", f.invoices[0].ID, map[string]string{"po_number": "1", "colour": "red"}, apperr.KindValidation},
		{"unknown invoice", 999, map[string]string{"po_number": "1"}, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.SaveCustomData(ctx, tt.invoiceID, tt.data)
			if got := apperr.KindOf(err); got != tt.kind {
				t.Fatalf("kind = %q, want %q (err=%v)", got, tt.kind, err)
			}
		})
	}

	_, err := uc.SaveCustomData(ctx, f.invoices[0].ID, map[string]string{"zeta": "1", "alpha": "2"})
	e, ok := apperr.As(err)
	if !ok || !reflect.DeepEqual(e.Fields, []string{"alpha", "zeta"}) {
		t.Fatalf("unknown keys not listed: %v", err)
	}

	stored, _ := f.repos.Invoices.GetByID(ctx, f.invoices[0].ID)
	if len(stored.Data()) != 0 {
		t.Fatalf("rejected saves must not write, got %v", stored.Data())
	}
}

func TestSaveCustomData_ValidatedDocument(t *testing.T) {
	f := newFixture(t)
	if err := f.db.Model(&document.Document{}).Where("id = ?", f.doc.ID).Update("state", document.StateValidated).Error; err != nil {
		t.Fatalf("force state: %v", err)
	}
	uc := f.usecase(invoice.ModeCoarse, nil)

	_, err := uc.SaveCustomData(context.Background(), f.invoices[0].ID, map[string]string{"po_number": "1"})
	if !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("want precondition failure, got %v", err)
	}
}

func TestSaveCustomData_MirrorFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	var pushed map[string]string
	gw := &gatewaymock.Client{
		PushCustomDataFn: func(_ context.Context, _ uint64, data map[string]string) error {
			pushed = data
			return errors.New("gateway down")
		},
	}
	uc := f.usecase(invoice.ModeCoarse, gw)

	if _, err := uc.SaveCustomData(context.Background(), f.invoices[1].ID, map[string]string{"po_number": "7"}); err != nil {
		t.Fatalf("save must succeed despite mirror failure: %v", err)
	}
	if pushed["po_number"] != "7" {
		t.Fatalf("mirror got %v", pushed)
	}
}

func TestCompleteness_Modes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coarse := f.usecase(invoice.ModeCoarse, nil)
	strict := f.usecase(invoice.ModeStrict, nil)

	r, err := coarse.Completeness(ctx, f.doc.ID)
	if err != nil {
		t.Fatalf("Completeness: %v", err)
	}
	if r.Complete || len(r.Gaps) != 2 || r.InvoiceCount != 2 {
		t.Fatalf("fresh invoices must be incomplete: %+v", r)
	}

	for _, inv := range f.invoices {
		if _, err := coarse.SaveCustomData(ctx, inv.ID, map[string]string{"po_number": "1"}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if r, _ := coarse.Completeness(ctx, f.doc.ID); !r.Complete {
		t.Fatalf("coarse mode should pass: %+v", r)
	}
	r, _ = strict.Completeness(ctx, f.doc.ID)
	if r.Complete || len(r.Gaps) != 2 || !reflect.DeepEqual(r.Gaps[0].Missing, []string{"pod_date"}) {
		t.Fatalf("strict mode must flag the mandatory branch field: %+v", r)
	}
}

func TestCompleteness_UnknownDocument(t *testing.T) {
	f := newFixture(t)
	if _, err := f.usecase(invoice.ModeCoarse, nil).Completeness(context.Background(), 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func fillAll(t *testing.T, f *fixture, uc *Usecase) {
	t.Helper()
	for _, inv := range f.invoices {
		if _, err := uc.SaveCustomData(context.Background(), inv.ID, map[string]string{"po_number": "1", "pod_date": "2024-03-02"}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
}

func TestValidate_Lifecycle(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(invoice.ModeStrict, nil)
	ctx := context.Background()

	if _, err := uc.Validate(ctx, f.doc.ID); !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("incomplete: want precondition failure, got %v", err)
	}
	if s := f.state(t); s != document.StatePendingValidation {
		t.Fatalf("failed validate must not mutate, state = %s", s)
	}

	fillAll(t, f, uc)
	res, err := uc.Validate(ctx, f.doc.ID)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.State != document.StateValidated || !res.Report.Complete {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s := f.state(t); s != document.StateValidated {
		t.Fatalf("state = %s", s)
	}
	if p, err := f.repos.Workflow.Get(ctx, f.doc.ID); err != nil || p.Completed != 0 {
		t.Fatalf("workflow row not initialised: %+v, %v", p, err)
	}

	if _, err := uc.Validate(ctx, f.doc.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second validate: want conflict, got %v", err)
	}
	if _, err := uc.SaveCustomData(ctx, f.invoices[0].ID, map[string]string{"po_number": "2"}); !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("save after validate: want precondition failure, got %v", err)
	}
}

func TestValidate_NoInvoices(t *testing.T) {
	f := newFixture(t)
	if err := f.db.Where("document_id = ?", f.doc.ID).Delete(&invoice.Invoice{}).Error; err != nil {
		t.Fatalf("clear invoices: %v", err)
	}
	_, err := f.usecase(invoice.ModeCoarse, nil).Validate(context.Background(), f.doc.ID)
	if !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("want precondition failure, got %v", err)
	}
}

func TestValidate_ConcurrentCallsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(invoice.ModeCoarse, nil)
	fillAll(t, f, uc)

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Validate(context.Background(), f.doc.ID)
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != n-1 {
		t.Fatalf("wins=%d conflicts=%d", wins, conflicts)
	}
}

func TestValidate_LostCASIsConflict(t *testing.T) {
	docs := &documentmock.Repo{
		GetByIDForUpdateFn: func(_ context.Context, id uint64) (*document.Document, error) {
			return &document.Document{ID: id, ClientID: 1, State: document.StatePendingValidation}, nil
		},
		AdvanceStateFn: func(context.Context, uint64, document.State, document.State) (bool, error) {
			return false, nil
		},
	}
	invs := &invoicemock.Repo{
		ListByDocumentFn: func(_ context.Context, docID uint64) ([]invoice.Invoice, error) {
			inv := invoice.Invoice{ID: 1, DocumentID: docID}
			inv.SetData(invoice.CustomData{"po_number": "1"})
			return []invoice.Invoice{inv}, nil
		},
	}
	fields := &fieldmock.Repo{
		ListForResolutionFn: func(context.Context, uint64, *uint64) ([]field.TemplateField, error) { return nil, nil },
	}
	initCalled := false
	wf := &workflowmock.Repo{InitFn: func(context.Context, uint64) error { initCalled = true; return nil }}

	repos := uow.Repos{Documents: docs, Invoices: invs, Fields: fields, Workflow: wf}
	uc := NewUsecase(repos, uowmock.Passthrough(repos), nil, Config{})

	if _, err := uc.Validate(context.Background(), 5); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
	if initCalled {
		t.Fatalf("workflow must not start when the CAS is lost")
	}
}

func TestValidate_MirrorsAfterCommit(t *testing.T) {
	f := newFixture(t)
	mirrored := uint64(0)
	gw := &gatewaymock.Client{
		PushCustomDataFn:   func(context.Context, uint64, map[string]string) error { return nil },
		ValidateDocumentFn: func(_ context.Context, id uint64) error { mirrored = id; return nil },
	}
	uc := f.usecase(invoice.ModeCoarse, gw)
	fillAll(t, f, uc)

	if _, err := uc.Validate(context.Background(), f.doc.ID); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if mirrored != f.doc.ID {
		t.Fatalf("mirror not called, got %d", mirrored)
	}
}

func TestForm(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(invoice.ModeStrict, nil)

	form, err := uc.Form(context.Background(), f.doc.ID)
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if form.Document.ID != f.doc.ID || len(form.Invoices) != 2 {
		t.Fatalf("unexpected form: %+v", form)
	}
	keys := []string{}
	for _, fld := range form.Fields {
		keys = append(keys, fld.Key)
	}
	if !reflect.DeepEqual(keys, []string{"po_number", "pod_date"}) {
		t.Fatalf("field keys = %v", keys)
	}
	if !form.Fields[1].BranchSpecific || form.Fields[1].PodRequirement != field.PodMandatory {
		t.Fatalf("branch override not applied: %+v", form.Fields[1])
	}
	if form.Report.Complete {
		t.Fatalf("fresh form must be incomplete")
	}
}

func TestInvoices(t *testing.T) {
	f := newFixture(t)
	uc := f.usecase(invoice.ModeCoarse, nil)

	got, err := uc.Invoices(context.Background(), f.doc.ID)
	if err != nil || len(got) != 2 || got[0].InvoiceNumber != "INV-1" {
		t.Fatalf("Invoices = %+v, %v", got, err)
	}
	if got[0].CustomData == nil || got[0].RawExtractedFields == nil {
		t.Fatalf("JSON maps must never be nil: %+v", got[0])
	}
	if _, err := uc.Invoices(context.Background(), 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}
