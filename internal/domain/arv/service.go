package arv

import (
	"context"
	"strings"

	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/view"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

// API is the part of the backend client this package uses.
type API interface {
	ListARVRegimens(ctx context.Context) ([]clinicmodels.ARVRegimen, error)
	ListMyARVRegimens(ctx context.Context) ([]clinicmodels.ARVRegimen, error)
	ListARVRegimensByCustomer(ctx context.Context, customerID int64) ([]clinicmodels.ARVRegimen, error)
	GetARVRegimen(ctx context.Context, id int64) (*clinicmodels.ARVRegimen, error)
	CreateARVWithHistory(ctx context.Context, r *clinicmodels.ARVWithHistory) (*clinicmodels.ARVRegimen, error)
	UpdateARVWithHistory(ctx context.Context, id int64, r *clinicmodels.ARVWithHistory) (*clinicmodels.ARVRegimen, error)
	CreateARVRegimen(ctx context.Context, r *clinicmodels.ARVRegimen) (*clinicmodels.ARVRegimen, error)
	UpdateARVRegimen(ctx context.Context, id int64, r *clinicmodels.ARVRegimen) (*clinicmodels.ARVRegimen, error)
	DeleteARVRegimen(ctx context.Context, id int64) error
	GetCustomerByEmail(ctx context.Context, email string) (*clinicmodels.Customer, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// Form is a regimen with its history entry as the treatment form submits
// it. Doses, when given, replace MedicationSchedule.
type Form struct {
	clinicmodels.ARVWithHistory
	Doses []string `json:"doses,omitempty"`
}

func key(r clinicmodels.ARVRegimen) int64 { return r.ARVRegimenID }

func fields(r clinicmodels.ARVRegimen) []string {
	return []string{r.CustomerName, r.RegimenName, r.RegimenCode}
}

// config narrows a doctor's list to their own patients. Admins see all.
func config(ctx context.Context) view.Config[clinicmodels.ARVRegimen] {
	cfg := view.Config[clinicmodels.ARVRegimen]{Fields: fields}
	if b := auth.BundleFromContext(ctx); b != nil && b.Role == clinicmodels.RoleDoctor {
		own := b.DoctorID
		cfg.Scope = func(r clinicmodels.ARVRegimen) bool { return r.DoctorID == own }
	}
	return cfg
}

func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.ARVRegimen], error) {
	return view.Load(ctx, key, config(ctx), p, s.api.ListARVRegimens)
}

// Mine is the signed-in customer's regimens.
func (s *Service) Mine(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.ARVRegimen], error) {
	return view.Load(ctx, key, view.Config[clinicmodels.ARVRegimen]{Fields: fields}, p, s.api.ListMyARVRegimens)
}

func (s *Service) ByCustomer(ctx context.Context, customerID int64, p pagination.Params) (pagination.Page[clinicmodels.ARVRegimen], error) {
	fetch := func(ctx context.Context) ([]clinicmodels.ARVRegimen, error) {
		return s.api.ListARVRegimensByCustomer(ctx, customerID)
	}
	return view.Load(ctx, key, config(ctx), p, fetch)
}

func (s *Service) Get(ctx context.Context, id int64) (*clinicmodels.ARVRegimen, error) {
	return s.api.GetARVRegimen(ctx, id)
}

// Catalogue lists the regimen codes a form may pick.
func (s *Service) Catalogue() []clinicmodels.Regimen {
	return clinicmodels.Regimens()
}

// Save creates the regimen when id is 0 and updates it otherwise. A form
// without any history field goes to the plain regimen endpoints so no empty
// history entry is written.
func (s *Service) Save(ctx context.Context, id int64, f *Form) (*clinicmodels.ARVRegimen, error) {
	r, err := s.prepare(ctx, f)
	if err != nil {
		return nil, err
	}
	r.ARVRegimenID = id
	switch {
	case id == 0 && hasHistory(r):
		return s.api.CreateARVWithHistory(ctx, r)
	case id == 0:
		return s.api.CreateARVRegimen(ctx, &r.ARVRegimen)
	case hasHistory(r):
		return s.api.UpdateARVWithHistory(ctx, id, r)
	default:
		return s.api.UpdateARVRegimen(ctx, id, &r.ARVRegimen)
	}
}

func hasHistory(r *clinicmodels.ARVWithHistory) bool {
	for _, v := range []string{r.DiseaseName, r.Diagnosis, r.Prescription, r.Reason, r.Treatment, r.Notes} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func (s *Service) prepare(ctx context.Context, f *Form) (*clinicmodels.ARVWithHistory, error) {
	r := f.ARVWithHistory
	r.RegimenCode = strings.ToUpper(strings.TrimSpace(r.RegimenCode))
	r.Email = strings.TrimSpace(r.Email)

	if err := httputil.Required("regimenCode", r.RegimenCode, "createDate", r.CreateDate); err != nil {
		return nil, err
	}
	name, ok := clinicmodels.RegimenName(r.RegimenCode)
	if !ok {
		return nil, httputil.Invalid("regimenCode", "mã phác đồ không có trong danh mục")
	}
	r.RegimenName = name

	if len(f.Doses) > 0 {
		r.MedicationSchedule = clinicmodels.JoinSchedule(f.Doses)
	} else {
		r.MedicationSchedule = clinicmodels.JoinSchedule(clinicmodels.SplitSchedule(r.MedicationSchedule))
	}
	if r.MedicationSchedule == "" {
		return nil, httputil.Invalid("medicationSchedule", "chọn ít nhất một thời điểm uống thuốc")
	}
	if r.EndDate != "" && r.EndDate < r.CreateDate {
		return nil, httputil.Invalid("endDate", "ngày kết thúc phải sau ngày bắt đầu")
	}

	if r.CustomerID == 0 {
		if r.Email == "" {
			return nil, httputil.Invalid("email", "không được để trống")
		}
		cust, err := s.api.GetCustomerByEmail(ctx, r.Email)
		if err != nil {
			return nil, err
		}
		r.CustomerID = cust.CustomerID
		r.CustomerName = cust.FullName
	}

	if b := auth.BundleFromContext(ctx); b != nil && b.Role == clinicmodels.RoleDoctor && b.DoctorID != 0 {
		r.DoctorID = b.DoctorID
	}
	return &r, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.DeleteARVRegimen(ctx, id)
}

func (s *Service) BulkDelete(ctx context.Context, ids []int64) (view.BulkResult[int64], error) {
	return view.DeleteEach(ctx, ids, s.api.DeleteARVRegimen)
}
