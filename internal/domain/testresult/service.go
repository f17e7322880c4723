package testresult

import (
	"context"
	"strings"

	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/view"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

// MinePageSize is the page size of a customer's own results.
const MinePageSize = 5

// API is the part of the backend client this package uses.
type API interface {
	ListTestResults(ctx context.Context) ([]clinicmodels.TestResult, error)
	ListMyTestResults(ctx context.Context) ([]clinicmodels.TestResult, error)
	GetTestResult(ctx context.Context, id int64) (*clinicmodels.TestResult, error)
	CreateTestResult(ctx context.Context, r *clinicmodels.TestResult) (*clinicmodels.TestResult, error)
	UpdateTestResult(ctx context.Context, id int64, r *clinicmodels.TestResult) (*clinicmodels.TestResult, error)
	DeleteTestResult(ctx context.Context, id int64) error
	GetCustomerByEmail(ctx context.Context, email string) (*clinicmodels.Customer, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func key(r clinicmodels.TestResult) int64 { return r.TestResultID }

func fields(r clinicmodels.TestResult) []string {
	return []string{r.CustomerName, r.TypeOfTest}
}

func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.TestResult], error) {
	return view.Load(ctx, key, view.Config[clinicmodels.TestResult]{Fields: fields}, p, s.api.ListTestResults)
}

// Mine is the signed-in customer's results, five to a page unless the
// request asks otherwise.
func (s *Service) Mine(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.TestResult], error) {
	cfg := view.Config[clinicmodels.TestResult]{PageSize: MinePageSize, Fields: fields}
	return view.Load(ctx, key, cfg, p, s.api.ListMyTestResults)
}

func (s *Service) Get(ctx context.Context, id int64) (*clinicmodels.TestResult, error) {
	return s.api.GetTestResult(ctx, id)
}

// Save creates the result when id is 0 and updates it otherwise. The
// patient is resolved from CustomerEmail when no id is given.
func (s *Service) Save(ctx context.Context, id int64, r *clinicmodels.TestResult) (*clinicmodels.TestResult, error) {
	r.TypeOfTest = strings.TrimSpace(r.TypeOfTest)
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	if err := httputil.Required("date", r.Date, "typeOfTest", r.TypeOfTest, "resultDescription", r.ResultDescription); err != nil {
		return nil, err
	}

	if r.CustomerID == 0 {
		if r.CustomerEmail == "" {
			return nil, httputil.Invalid("customerEmail", "không được để trống")
		}
		cust, err := s.api.GetCustomerByEmail(ctx, r.CustomerEmail)
		if err != nil {
			return nil, err
		}
		r.CustomerID = cust.CustomerID
		r.CustomerName = cust.FullName
	}
	if b := auth.BundleFromContext(ctx); b != nil && b.Role == clinicmodels.RoleDoctor && b.DoctorID != 0 {
		r.DoctorID = b.DoctorID
	}

	if id == 0 {
		r.TestResultID = 0
		return s.api.CreateTestResult(ctx, r)
	}
	r.TestResultID = id
	return s.api.UpdateTestResult(ctx, id, r)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.DeleteTestResult(ctx, id)
}
