package doctor

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
	ListDoctors(ctx context.Context) ([]clinicmodels.Doctor, error)
	ListDoctorsWithAvatar(ctx context.Context) ([]clinicmodels.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*clinicmodels.Doctor, error)
	GetDoctorMe(ctx context.Context) (*clinicmodels.Doctor, error)
	CreateDoctor(ctx context.Context, d *clinicmodels.Doctor) (*clinicmodels.Doctor, error)
	UpdateDoctor(ctx context.Context, id int64, d *clinicmodels.Doctor) (*clinicmodels.Doctor, error)
	UpdateDoctorWithAvatar(ctx context.Context, id int64, d *clinicmodels.Doctor, avatar *apiclient.File) (*clinicmodels.Doctor, error)
	DeleteDoctor(ctx context.Context, id int64) error
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func key(d clinicmodels.Doctor) int64 { return d.DoctorID }

var adminList = view.Config[clinicmodels.Doctor]{
	Fields: func(d clinicmodels.Doctor) []string {
		return []string{d.FullName, d.Email, d.Phone, d.Specialization}
	},
}

var publicList = view.Config[clinicmodels.Doctor]{
	Fields: func(d clinicmodels.Doctor) []string {
		return []string{d.FullName, d.Specialization}
	},
}

// List is the admin doctor table.
func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Doctor], error) {
	return view.Load(ctx, key, adminList, p, s.api.ListDoctors)
}

// PublicList is the doctor directory shown to visitors, with avatars.
func (s *Service) PublicList(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Doctor], error) {
	return view.Load(ctx, key, publicList, p, s.api.ListDoctorsWithAvatar)
}

func (s *Service) Get(ctx context.Context, id int64) (*clinicmodels.Doctor, error) {
	return s.api.GetDoctor(ctx, id)
}

func (s *Service) Me(ctx context.Context) (*clinicmodels.Doctor, error) {
	return s.api.GetDoctorMe(ctx)
}

func (s *Service) Create(ctx context.Context, d *clinicmodels.Doctor) (*clinicmodels.Doctor, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	d.DoctorID = 0
	return s.api.CreateDoctor(ctx, d)
}

func (s *Service) Update(ctx context.Context, id int64, d *clinicmodels.Doctor) (*clinicmodels.Doctor, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	d.DoctorID = id
	return s.api.UpdateDoctor(ctx, id, d)
}

// UpdateMe saves the signed-in doctor's own profile. The avatar is optional;
// without one the profile is sent as JSON.
func (s *Service) UpdateMe(ctx context.Context, d *clinicmodels.Doctor, avatar *apiclient.File) (*clinicmodels.Doctor, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	id, err := s.ownID(ctx)
	if err != nil {
		return nil, err
	}
	d.DoctorID = id
	if avatar == nil {
		return s.api.UpdateDoctor(ctx, id, d)
	}
	return s.api.UpdateDoctorWithAvatar(ctx, id, d, avatar)
}

func (s *Service) ownID(ctx context.Context) (int64, error) {
	if b := auth.BundleFromContext(ctx); b != nil && b.DoctorID != 0 {
		return b.DoctorID, nil
	}
	me, err := s.api.GetDoctorMe(ctx)
	if err != nil {
		return 0, err
	}
	return me.DoctorID, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.DeleteDoctor(ctx, id)
}

func (s *Service) BulkDelete(ctx context.Context, ids []int64) (view.BulkResult[int64], error) {
	return view.DeleteEach(ctx, ids, s.api.DeleteDoctor)
}

func validate(d *clinicmodels.Doctor) error {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	if err := httputil.Required("fullName", d.FullName, "email", d.Email); err != nil {
		return err
	}
	if !strings.Contains(d.Email, "@") {
		return httputil.Invalid("email", "email không hợp lệ")
	}
	if d.Phone != "" {
		if _, err := strconv.ParseUint(d.Phone, 10, 64); err != nil {
			return httputil.Invalid("phone", "số điện thoại chỉ gồm chữ số")
		}
	}
	if d.WorkExperienceYears < 0 {
		return httputil.Invalid("workExperienceYears", "số năm kinh nghiệm không hợp lệ")
	}
	return nil
}
