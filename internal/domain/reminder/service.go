package reminder

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

const (
	StatusPending = "PENDING"
	StatusDone    = "DONE"
)

type API interface {
	ListTodayReminders(ctx context.Context) ([]clinicmodels.Reminder, error)
	ListMyReminders(ctx context.Context) ([]clinicmodels.Reminder, error)
	ListRemindersByCustomer(ctx context.Context, customerID int64) ([]clinicmodels.Reminder, error)
	CreateReminder(ctx context.Context, r *clinicmodels.Reminder) (*clinicmodels.Reminder, error)
	UpdateReminderStatus(ctx context.Context, id int64, status string) error
	MarkReminderDone(ctx context.Context, id int64) error
	GetCustomerMe(ctx context.Context) (*clinicmodels.Customer, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func key(r clinicmodels.Reminder) int64 { return r.ReminderID }

var list = view.Config[clinicmodels.Reminder]{
	Fields: func(r clinicmodels.Reminder) []string { return []string{r.Title, r.Message} },
}

// IsDone treats either backend flag as completion.
func IsDone(r clinicmodels.Reminder) bool {
	return r.Done || strings.EqualFold(r.Status, StatusDone)
}

func (s *Service) Today(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Reminder], error) {
	return view.Load(ctx, key, list, p, s.api.ListTodayReminders)
}

func (s *Service) All(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Reminder], error) {
	return view.Load(ctx, key, list, p, s.api.ListMyReminders)
}

func (s *Service) ByCustomer(ctx context.Context, customerID int64, p pagination.Params) (pagination.Page[clinicmodels.Reminder], error) {
	return view.Load(ctx, key, list, p, func(ctx context.Context) ([]clinicmodels.Reminder, error) {
		return s.api.ListRemindersByCustomer(ctx, customerID)
	})
}

// Done marks a reminder done and returns the refetched list.
func (s *Service) Done(ctx context.Context, id int64, p pagination.Params) (pagination.Page[clinicmodels.Reminder], error) {
	if err := s.api.MarkReminderDone(ctx, id); err != nil {
		return pagination.Paginate([]clinicmodels.Reminder{}, 1, 0), err
	}
	return s.All(ctx, p)
}

func (s *Service) SetStatus(ctx context.Context, id int64, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != StatusPending && status != StatusDone {
		return httputil.Invalid("status", "trạng thái không hợp lệ")
	}
	return s.api.UpdateReminderStatus(ctx, id, status)
}

// Create adds a reminder. A customer creates for themself; a doctor names
// the customer.
func (s *Service) Create(ctx context.Context, r *clinicmodels.Reminder) (*clinicmodels.Reminder, error) {
	r.Title = strings.TrimSpace(r.Title)
	r.RemindAt = strings.TrimSpace(r.RemindAt)
	if err := httputil.Required("title", r.Title, "remindAt", r.RemindAt); err != nil {
		return nil, err
	}
	if !validWhen(r.RemindAt) {
		return nil, httputil.Invalid("remindAt", "thời gian nhắc không hợp lệ")
	}

	if b := auth.BundleFromContext(ctx); b != nil && b.Role == clinicmodels.RoleCustomer {
		id := b.CustomerID
		if id == 0 {
			me, err := s.api.GetCustomerMe(ctx)
			if err != nil {
				return nil, err
			}
			id = me.CustomerID
		}
		r.CustomerID = id
	}
	if r.CustomerID == 0 {
		return nil, httputil.Invalid("customerId", "không được để trống")
	}
	r.ReminderID, r.Done, r.Status = 0, false, StatusPending
	return s.api.CreateReminder(ctx, r)
}

func validWhen(v string) bool {
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339} {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
