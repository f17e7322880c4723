package customer

import (
	"context"
	"strconv"
	"strings"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/view"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

// API is the part of the backend client this package uses.
type API interface {
	ListCustomers(ctx context.Context) ([]clinicmodels.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*clinicmodels.Customer, error)
	GetCustomerMe(ctx context.Context) (*clinicmodels.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*clinicmodels.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, cust *clinicmodels.Customer) (*clinicmodels.Customer, error)
	UpdateCustomerWithAvatar(ctx context.Context, id int64, cust *clinicmodels.Customer, avatar *apiclient.File) (*clinicmodels.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

var listConfig = view.Config[clinicmodels.Customer]{
	Fields: func(c clinicmodels.Customer) []string {
		return []string{c.FullName, c.Email, c.Phone}
	},
}

func key(c clinicmodels.Customer) int64 { return c.CustomerID }

func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Customer], error) {
	return view.Load(ctx, key, listConfig, p, s.api.ListCustomers)
}

func (s *Service) Get(ctx context.Context, id int64) (*clinicmodels.Customer, error) {
	return s.api.GetCustomer(ctx, id)
}

// ByEmail looks a patient up by email, as the treatment forms do before a
// record is saved.
func (s *Service) ByEmail(ctx context.Context, email string) (*clinicmodels.Customer, error) {
	email = strings.TrimSpace(email)
	if err := httputil.Required("email", email); err != nil {
		return nil, err
	}
	return s.api.GetCustomerByEmail(ctx, email)
}

func (s *Service) Me(ctx context.Context) (*clinicmodels.Customer, error) {
	return s.api.GetCustomerMe(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, c *clinicmodels.Customer) (*clinicmodels.Customer, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	c.CustomerID = id
	return s.api.UpdateCustomer(ctx, id, c)
}

// UpdateMe saves the signed-in customer's own profile.
func (s *Service) UpdateMe(ctx context.Context, c *clinicmodels.Customer, avatar *apiclient.File) (*clinicmodels.Customer, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	id, err := s.OwnID(ctx)
	if err != nil {
		return nil, err
	}
	c.CustomerID = id
	if avatar == nil {
		return s.api.UpdateCustomer(ctx, id, c)
	}
	return s.api.UpdateCustomerWithAvatar(ctx, id, c, avatar)
}

// OwnID is the signed-in customer's id, from the session or /customers/me.
func (s *Service) OwnID(ctx context.Context) (int64, error) {
	if b := auth.BundleFromContext(ctx); b != nil && b.CustomerID != 0 {
		return b.CustomerID, nil
	}
	me, err := s.api.GetCustomerMe(ctx)
	if err != nil {
		return 0, err
	}
	return me.CustomerID, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.DeleteCustomer(ctx, id)
}

func (s *Service) BulkDelete(ctx context.Context, ids []int64) (view.BulkResult[int64], error) {
	return view.DeleteEach(ctx, ids, s.api.DeleteCustomer)
}

func validate(c *clinicmodels.Customer) error {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if err := httputil.Required("fullName", c.FullName, "email", c.Email); err != nil {
		return err
	}
	if !strings.Contains(c.Email, "@") {
		return httputil.Invalid("email", "email không hợp lệ")
	}
	if c.Phone != "" {
		if _, err := strconv.ParseUint(c.Phone, 10, 64); err != nil {
			return httputil.Invalid("phone", "số điện thoại chỉ gồm chữ số")
		}
	}
	if c.Gender != "" && c.Gender != clinicmodels.GenderMale && c.Gender != clinicmodels.GenderFemale {
		return httputil.Invalid("gender", "giới tính không hợp lệ")
	}
	return nil
}
