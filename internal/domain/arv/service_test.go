package arv

import (
	"context"
	"testing"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

type mockAPI struct {
	regimens     []clinicmodels.ARVRegimen
	created      *clinicmodels.ARVWithHistory
	updated      *clinicmodels.ARVWithHistory
	plainCreated *clinicmodels.ARVRegimen
	plainUpdated *clinicmodels.ARVRegimen
	deleted      []int64
	lookups      int
}

func newMockAPI() *mockAPI {
	return &mockAPI{regimens: []clinicmodels.ARVRegimen{
		{ARVRegimenID: 1, DoctorID: 7, CustomerID: 1, CustomerName: "Lê Thị Hoa", RegimenCode: "TLD", RegimenName: "TDF + 3TC + DTG"},
		{ARVRegimenID: 2, DoctorID: 8, CustomerID: 2, CustomerName: "Phạm Văn Nam", RegimenCode: "TLE", RegimenName: "TDF + 3TC + EFV"},
		{ARVRegimenID: 3, DoctorID: 7, CustomerID: 3, CustomerName: "Đỗ Minh Tú", RegimenCode: "ZLN", RegimenName: "AZT + 3TC + NVP"},
		{ARVRegimenID: 4, DoctorID: 9, CustomerID: 1, CustomerName: "Lê Thị Hoa", RegimenCode: "ALD", RegimenName: "ABC + 3TC + DTG"},
	}}
}

func (m *mockAPI) ListARVRegimens(context.Context) ([]clinicmodels.ARVRegimen, error) {
	return m.regimens, nil
}

func (m *mockAPI) ListMyARVRegimens(context.Context) ([]clinicmodels.ARVRegimen, error) {
	return m.regimens[:1], nil
}

func (m *mockAPI) ListARVRegimensByCustomer(_ context.Context, id int64) ([]clinicmodels.ARVRegimen, error) {
	var out []clinicmodels.ARVRegimen
	for _, r := range m.regimens {
		if r.CustomerID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAPI) GetARVRegimen(_ context.Context, id int64) (*clinicmodels.ARVRegimen, error) {
	for _, r := range m.regimens {
		if r.ARVRegimenID == id {
			return &r, nil
		}
	}
	return nil, &apiclient.APIError{StatusCode: 404, Message: "Not Found"}
}

func (m *mockAPI) CreateARVWithHistory(_ context.Context, r *clinicmodels.ARVWithHistory) (*clinicmodels.ARVRegimen, error) {
	m.created = r
	out := r.ARVRegimen
	out.ARVRegimenID = 50
	return &out, nil
}

func (m *mockAPI) UpdateARVWithHistory(_ context.Context, id int64, r *clinicmodels.ARVWithHistory) (*clinicmodels.ARVRegimen, error) {
	m.updated = r
	out := r.ARVRegimen
	return &out, nil
}

func (m *mockAPI) CreateARVRegimen(_ context.Context, r *clinicmodels.ARVRegimen) (*clinicmodels.ARVRegimen, error) {
	m.plainCreated = r
	out := *r
	out.ARVRegimenID = 51
	return &out, nil
}

func (m *mockAPI) UpdateARVRegimen(_ context.Context, id int64, r *clinicmodels.ARVRegimen) (*clinicmodels.ARVRegimen, error) {
	m.plainUpdated = r
	out := *r
	return &out, nil
}

func (m *mockAPI) DeleteARVRegimen(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockAPI) GetCustomerByEmail(_ context.Context, email string) (*clinicmodels.Customer, error) {
	m.lookups++
	if email == "hoa@gmail.com" {
		return &clinicmodels.Customer{CustomerID: 1, FullName: "Lê Thị Hoa", Email: email}, nil
	}
	return nil, &apiclient.APIError{StatusCode: 404, Message: "Không tìm thấy bệnh nhân"}
}

func newTestService() (*Service, *mockAPI) {
	api := newMockAPI()
	return NewService(api), api
}

func doctorCtx(id int64) context.Context {
	return auth.WithBundle(context.Background(), &session.Bundle{Role: clinicmodels.RoleDoctor, DoctorID: id})
}

func TestService_ListScopesDoctor(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.List(doctorCtx(7), pagination.Params{Page: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalItems != 2 {
		t.Fatalf("expected 2 regimens for doctor 7, got %d", p.TotalItems)
	}
	for _, r := range p.Items {
		if r.DoctorID != 7 {
			t.Errorf("regimen %d of doctor %d leaked", r.ARVRegimenID, r.DoctorID)
		}
	}

	admin := auth.WithBundle(context.Background(), &session.Bundle{Role: clinicmodels.RoleAdmin})
	p, _ = svc.List(admin, pagination.Params{Page: 1})
	if p.TotalItems != 4 {
		t.Errorf("expected admin to see all 4, got %d", p.TotalItems)
	}
}

func TestService_ListSearch(t *testing.T) {
	svc, _ := newTestService()
	admin := auth.WithBundle(context.Background(), &session.Bundle{Role: clinicmodels.RoleAdmin})

	tests := []struct {
		query string
		want  int
	}{
		{"hoa", 2},
		{"dtg", 2},
		{"zln", 1},
		{"azt", 1},
		{"không có", 0},
	}
	for _, tt := range tests {
		p, _ := svc.List(admin, pagination.Params{Query: tt.query, Page: 1})
		if p.TotalItems != tt.want {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.want, p.TotalItems)
		}
	}
}

func TestService_ByCustomerKeepsDoctorScope(t *testing.T) {
	svc, _ := newTestService()
	p, _ := svc.ByCustomer(doctorCtx(7), 1, pagination.Params{Page: 1})
	if p.TotalItems != 1 || p.Items[0].ARVRegimenID != 1 {
		t.Errorf("unexpected page: %+v", p.Items)
	}
}

func TestService_CreateFillsFromCatalogueAndEmail(t *testing.T) {
	svc, api := newTestService()
	f := &Form{Doses: []string{clinicmodels.DoseMorning, " ", clinicmodels.DoseEvening}}
	f.RegimenCode = " tld "
	f.CreateDate = "2024-06-01"
	f.Email = "hoa@gmail.com"
	f.DoctorID = 99
	f.DiseaseName = "HIV"

	out, err := svc.Save(doctorCtx(7), 0, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ARVRegimenID != 50 {
		t.Errorf("expected created id, got %d", out.ARVRegimenID)
	}

	c := api.created
	if c.RegimenCode != "TLD" || c.RegimenName != "TDF + 3TC + DTG" {
		t.Errorf("expected regimen filled from catalogue, got %s %s", c.RegimenCode, c.RegimenName)
	}
	if c.MedicationSchedule != "Sáng, Tối" {
		t.Errorf("unexpected schedule %q", c.MedicationSchedule)
	}
	if c.CustomerID != 1 || c.CustomerName != "Lê Thị Hoa" {
		t.Errorf("expected customer resolved by email, got %d %q", c.CustomerID, c.CustomerName)
	}
	if c.DoctorID != 7 {
		t.Errorf("expected the signed-in doctor stamped, got %d", c.DoctorID)
	}
	if c.DiseaseName != "HIV" {
		t.Error("expected history fields carried")
	}
}

func TestService_SaveRejects(t *testing.T) {
	tests := []struct {
		name string
		form func(*Form)
	}{
		{"unknown code", func(f *Form) { f.RegimenCode = "XYZ" }},
		{"empty schedule", func(f *Form) {
			f.Doses = nil
			f.MedicationSchedule = " , "
		}},
		{"end before start", func(f *Form) { f.EndDate = "2024-05-01" }},
		{"no customer", func(f *Form) { f.Email = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api := newTestService()
			f := &Form{Doses: []string{clinicmodels.DoseMorning}}
			f.RegimenCode = "TLE"
			f.CreateDate = "2024-06-01"
			f.Email = "hoa@gmail.com"
			tt.form(f)

			if _, err := svc.Save(doctorCtx(7), 0, f); !httputil.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if api.created != nil || api.plainCreated != nil {
				t.Error("invalid form must not reach the backend")
			}
		})
	}
}

func TestService_SaveUnknownEmail(t *testing.T) {
	svc, api := newTestService()
	f := &Form{Doses: []string{clinicmodels.DoseNoon}}
	f.RegimenCode = "TLE"
	f.CreateDate = "2024-06-01"
	f.Email = "ai@gmail.com"

	_, err := svc.Save(doctorCtx(7), 0, f)
	if apiclient.StatusCode(err) != 404 {
		t.Errorf("expected backend 404, got %v", err)
	}
	if api.created != nil || api.plainCreated != nil {
		t.Error("expected no create without a customer")
	}
}

func TestService_UpdateKeepsCustomer(t *testing.T) {
	svc, api := newTestService()
	f := &Form{}
	f.RegimenCode = "TLE"
	f.CreateDate = "2024-06-01"
	f.CustomerID = 2
	f.MedicationSchedule = "Sáng"

	if _, err := svc.Save(doctorCtx(8), 2, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.lookups != 0 {
		t.Error("expected no email lookup when the customer id is known")
	}
	if api.updated != nil {
		t.Error("expected no history entry for a regimen-only form")
	}
	if api.plainUpdated.ARVRegimenID != 2 || api.plainUpdated.DoctorID != 8 {
		t.Errorf("unexpected update: %+v", api.plainUpdated)
	}
}

func TestService_SaveRoutesByHistory(t *testing.T) {
	form := func(notes string) *Form {
		f := &Form{Doses: []string{clinicmodels.DoseMorning}}
		f.RegimenCode = "TLE"
		f.CreateDate = "2024-06-01"
		f.CustomerID = 2
		f.Notes = notes
		return f
	}

	tests := []struct {
		name  string
		id    int64
		notes string
		check func(*mockAPI) bool
	}{
		{"create plain", 0, "", func(m *mockAPI) bool { return m.plainCreated != nil && m.created == nil }},
		{"create with history", 0, "tái khám", func(m *mockAPI) bool { return m.created != nil && m.plainCreated == nil }},
		{"update plain", 2, " ", func(m *mockAPI) bool { return m.plainUpdated != nil && m.updated == nil }},
		{"update with history", 2, "đổi phác đồ", func(m *mockAPI) bool { return m.updated != nil && m.plainUpdated == nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api := newTestService()
			if _, err := svc.Save(doctorCtx(8), tt.id, form(tt.notes)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(api) {
				t.Errorf("wrong endpoint: created=%v updated=%v plainCreated=%v plainUpdated=%v",
					api.created != nil, api.updated != nil, api.plainCreated != nil, api.plainUpdated != nil)
			}
		})
	}
}
