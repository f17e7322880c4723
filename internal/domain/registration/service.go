package registration

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/view"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

// Status filters for the admin list.
const (
	StatusAll       = ""
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// API is the part of the backend client this package uses.
type API interface {
	ListRegistrations(ctx context.Context) ([]clinicmodels.Registration, error)
	GetRegistration(ctx context.Context, id int64) (*clinicmodels.Registration, error)
	CreateRegistration(ctx context.Context, r *clinicmodels.Registration) (*clinicmodels.Registration, error)
	CompleteRegistration(ctx context.Context, id int64) error
	GetDoctorMe(ctx context.Context) (*clinicmodels.Doctor, error)
}

type Service struct {
	api API
	now func() time.Time
}

func NewService(api API) *Service {
	return &Service{api: api, now: time.Now}
}

func key(r clinicmodels.Registration) int64 { return r.Key() }

func fields(r clinicmodels.Registration) []string {
	return []string{r.FullName, r.Phone, r.Email, r.Specialization, r.DoctorName}
}

// List is the admin registration table, optionally narrowed by status.
func (s *Service) List(ctx context.Context, status string, p pagination.Params) (pagination.Page[clinicmodels.Registration], error) {
	cfg := view.Config[clinicmodels.Registration]{Fields: fields}
	switch status {
	case StatusAll:
	case StatusPending:
		cfg.Scope = func(r clinicmodels.Registration) bool { return !r.Status }
	case StatusCompleted:
		cfg.Scope = func(r clinicmodels.Registration) bool { return r.Status }
	default:
		return pagination.Paginate([]clinicmodels.Registration{}, 1, 0), httputil.Invalid("status", "trạng thái không hợp lệ")
	}
	return view.Load(ctx, key, cfg, p, s.api.ListRegistrations)
}

// SameDay reports whether an appointment date (a date, or a date-time
// starting with one) falls on day.
func SameDay(appointment string, day time.Time) bool {
	appointment = strings.TrimSpace(appointment)
	if len(appointment) < 10 {
		return false
	}
	return appointment[:10] == day.Format("2006-01-02")
}

func (s *Service) todayConfig(doctorID int64) view.Config[clinicmodels.Registration] {
	today := s.now()
	return view.Config[clinicmodels.Registration]{
		Fields: fields,
		Scope: func(r clinicmodels.Registration) bool {
			return r.DoctorID == doctorID && !r.Status && SameDay(r.AppointmentDate, today)
		},
	}
}

func (s *Service) ownDoctorID(ctx context.Context) (int64, error) {
	if b := auth.BundleFromContext(ctx); b != nil && b.DoctorID != 0 {
		return b.DoctorID, nil
	}
	me, err := s.api.GetDoctorMe(ctx)
	if err != nil {
		return 0, err
	}
	return me.DoctorID, nil
}

// Today is the signed-in doctor's pending registrations for today.
func (s *Service) Today(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Registration], error) {
	id, err := s.ownDoctorID(ctx)
	if err != nil {
		return pagination.Paginate([]clinicmodels.Registration{}, 1, 0), err
	}
	return view.Load(ctx, key, s.todayConfig(id), p, s.api.ListRegistrations)
}

// Complete marks a registration done and returns today's list without it.
// The row is pruned locally once the backend confirms; nothing is
// refetched.
func (s *Service) Complete(ctx context.Context, id int64, p pagination.Params) (pagination.Page[clinicmodels.Registration], error) {
	doctorID, err := s.ownDoctorID(ctx)
	if err != nil {
		return pagination.Paginate([]clinicmodels.Registration{}, 1, 0), err
	}

	c := view.New(key, s.todayConfig(doctorID))
	defer c.Close()
	if err := c.Hydrate(ctx, s.api.ListRegistrations); err != nil {
		return c.Visible(), err
	}
	if err := s.api.CompleteRegistration(ctx, id); err != nil {
		return c.Apply(p), err
	}
	c.Remove(id)
	return c.Apply(p), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*clinicmodels.Registration, error) {
	return s.api.GetRegistration(ctx, id)
}

// Create books an appointment. Guests may book; a signed-in customer's id is
// attached.
func (s *Service) Create(ctx context.Context, r *clinicmodels.Registration) (*clinicmodels.Registration, error) {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Specialization = strings.TrimSpace(r.Specialization)
	r.AppointmentDate = strings.TrimSpace(r.AppointmentDate)
	if err := httputil.Required(
		"fullName", r.FullName,
		"phone", r.Phone,
		"appointmentDate", r.AppointmentDate,
		"specialization", r.Specialization,
	); err != nil {
		return nil, err
	}
	if _, err := strconv.ParseUint(r.Phone, 10, 64); err != nil {
		return nil, httputil.Invalid("phone", "số điện thoại chỉ gồm chữ số")
	}
	if len(r.AppointmentDate) < 10 {
		return nil, httputil.Invalid("appointmentDate", "ngày hẹn không hợp lệ")
	}
	if _, err := time.Parse("2006-01-02", r.AppointmentDate[:10]); err != nil {
		return nil, httputil.Invalid("appointmentDate", "ngày hẹn không hợp lệ")
	}
	r.Mode = strings.ToUpper(strings.TrimSpace(r.Mode))
	if r.Mode != "" && r.Mode != clinicmodels.ModeOnline && r.Mode != clinicmodels.ModeOffline {
		return nil, httputil.Invalid("mode", "hình thức khám không hợp lệ")
	}

	if b := auth.BundleFromContext(ctx); b != nil && b.Role == clinicmodels.RoleCustomer && b.CustomerID != 0 {
		r.CustomerID = b.CustomerID
	}
	r.RegistrationID, r.ID, r.Status = 0, 0, false
	return s.api.CreateRegistration(ctx, r)
}
