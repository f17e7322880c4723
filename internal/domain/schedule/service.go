package schedule

import (
	"context"
	"strings"
	"time"

	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/view"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

type API interface {
	ListSchedules(ctx context.Context) ([]clinicmodels.Schedule, error)
	ListSchedulesByDoctor(ctx context.Context, doctorID int64) ([]clinicmodels.Schedule, error)
	GetSchedule(ctx context.Context, id int64) (*clinicmodels.Schedule, error)
	CreateSchedule(ctx context.Context, s *clinicmodels.Schedule) (*clinicmodels.Schedule, error)
	UpdateSchedule(ctx context.Context, id int64, s *clinicmodels.Schedule) (*clinicmodels.Schedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
	AvailableSlots(ctx context.Context, doctorID int64, date string) ([]clinicmodels.Slot, error)
	AvailableDates(ctx context.Context, doctorID int64, date string) ([]string, error)
	GetDoctorMe(ctx context.Context) (*clinicmodels.Doctor, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func key(s clinicmodels.Schedule) int64 { return s.ScheduleID }

var list = view.Config[clinicmodels.Schedule]{
	Fields: func(s clinicmodels.Schedule) []string {
		return []string{s.DoctorName, s.WorkDate, s.Room, s.Status}
	},
}

func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Schedule], error) {
	return view.Load(ctx, key, list, p, s.api.ListSchedules)
}

// Mine lists the signed-in doctor's schedule.
func (s *Service) Mine(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Schedule], error) {
	return view.Load(ctx, key, list, p, func(ctx context.Context) ([]clinicmodels.Schedule, error) {
		id, err := s.ownDoctorID(ctx)
		if err != nil {
			return nil, err
		}
		return s.api.ListSchedulesByDoctor(ctx, id)
	})
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

func (s *Service) Get(ctx context.Context, id int64) (*clinicmodels.Schedule, error) {
	return s.api.GetSchedule(ctx, id)
}

// Save creates (id 0) or updates a shift.
func (s *Service) Save(ctx context.Context, id int64, sc *clinicmodels.Schedule) (*clinicmodels.Schedule, error) {
	if err := validate(sc); err != nil {
		return nil, err
	}
	if id == 0 {
		sc.ScheduleID = 0
		return s.api.CreateSchedule(ctx, sc)
	}
	sc.ScheduleID = id
	return s.api.UpdateSchedule(ctx, id, sc)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.DeleteSchedule(ctx, id)
}

func (s *Service) Slots(ctx context.Context, doctorID int64, date string) ([]clinicmodels.Slot, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	return s.api.AvailableSlots(ctx, doctorID, date)
}

func (s *Service) Dates(ctx context.Context, doctorID int64, from string) ([]string, error) {
	if err := checkDate(from); err != nil {
		return nil, err
	}
	return s.api.AvailableDates(ctx, doctorID, from)
}

func checkDate(d string) error {
	if _, err := time.Parse("2006-01-02", d); err != nil {
		return httputil.Invalid("date", "ngày không hợp lệ")
	}
	return nil
}

// ParseClock accepts HH:MM and HH:MM:SS.
func ParseClock(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func validate(sc *clinicmodels.Schedule) error {
	sc.WorkDate = strings.TrimSpace(sc.WorkDate)
	if sc.DoctorID == 0 {
		return httputil.Invalid("doctorId", "không được để trống")
	}
	if err := httputil.Required("workDate", sc.WorkDate); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", sc.WorkDate); err != nil {
		return httputil.Invalid("workDate", "ngày không hợp lệ")
	}
	start, ok := ParseClock(sc.StartTime)
	if !ok {
		return httputil.Invalid("startTime", "giờ không hợp lệ")
	}
	end, ok := ParseClock(sc.EndTime)
	if !ok {
		return httputil.Invalid("endTime", "giờ không hợp lệ")
	}
	if !start.Before(end) {
		return httputil.Invalid("endTime", "giờ kết thúc phải sau giờ bắt đầu")
	}
	return nil
}
