package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

// Registrations

func (c *Client) ListRegistrations(ctx context.Context) ([]clinicmodels.Registration, error) {
	return getList[clinicmodels.Registration](ctx, c, "/api/registrations", nil)
}

func (c *Client) GetRegistration(ctx context.Context, registrationID int64) (*clinicmodels.Registration, error) {
	return getOne[clinicmodels.Registration](ctx, c, "/api/registrations/"+itoa(registrationID), nil)
}

func (c *Client) CreateRegistration(ctx context.Context, r *clinicmodels.Registration) (*clinicmodels.Registration, error) {
	var out clinicmodels.Registration
	if err := c.sendJSON(ctx, http.MethodPost, "/api/registrations", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteRegistration marks a consultation as done.
func (c *Client) CompleteRegistration(ctx context.Context, registrationID int64) error {
	return c.sendJSON(ctx, http.MethodPatch, "/api/registrations/"+itoa(registrationID)+"/complete", nil, nil)
}

// Schedules and slots

func (c *Client) ListSchedules(ctx context.Context) ([]clinicmodels.Schedule, error) {
	return getList[clinicmodels.Schedule](ctx, c, "/api/schedules", nil)
}

func (c *Client) ListSchedulesByDoctor(ctx context.Context, doctorID int64) ([]clinicmodels.Schedule, error) {
	return getList[clinicmodels.Schedule](ctx, c, "/api/schedules/doctor/"+itoa(doctorID), nil)
}

func (c *Client) GetSchedule(ctx context.Context, scheduleID int64) (*clinicmodels.Schedule, error) {
	return getOne[clinicmodels.Schedule](ctx, c, "/api/schedules/"+itoa(scheduleID), nil)
}

func (c *Client) CreateSchedule(ctx context.Context, s *clinicmodels.Schedule) (*clinicmodels.Schedule, error) {
	var out clinicmodels.Schedule
	if err := c.sendJSON(ctx, http.MethodPost, "/api/schedules", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSchedule(ctx context.Context, scheduleID int64, s *clinicmodels.Schedule) (*clinicmodels.Schedule, error) {
	var out clinicmodels.Schedule
	if err := c.sendJSON(ctx, http.MethodPut, "/api/schedules/"+itoa(scheduleID), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSchedule(ctx context.Context, scheduleID int64) error {
	return c.delete(ctx, "/api/schedules/"+itoa(scheduleID))
}

func (c *Client) AvailableSlots(ctx context.Context, doctorID int64, date string) ([]clinicmodels.Slot, error) {
	q := url.Values{"doctorId": {itoa(doctorID)}, "date": {date}}
	return getList[clinicmodels.Slot](ctx, c, "/api/slots/available-slots", q)
}

// AvailableDates lists the dates on which the doctor still has free slots,
// starting from date.
func (c *Client) AvailableDates(ctx context.Context, doctorID int64, date string) ([]string, error) {
	q := url.Values{"doctorId": {itoa(doctorID)}, "date": {date}}
	return getList[string](ctx, c, "/api/slots/available-dates", q)
}

// Reminders

func (c *Client) CreateReminder(ctx context.Context, r *clinicmodels.Reminder) (*clinicmodels.Reminder, error) {
	var out clinicmodels.Reminder
	if err := c.sendJSON(ctx, http.MethodPost, "/api/reminders", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReminderStatus(ctx context.Context, reminderID int64, status string) error {
	return c.sendJSON(ctx, http.MethodPut, "/api/reminders/"+itoa(reminderID)+"/status", map[string]string{"status": status}, nil)
}

func (c *Client) MarkReminderDone(ctx context.Context, reminderID int64) error {
	return c.sendJSON(ctx, http.MethodPatch, "/api/reminders/"+itoa(reminderID)+"/done", nil, nil)
}

func (c *Client) ListTodayReminders(ctx context.Context) ([]clinicmodels.Reminder, error) {
	return getList[clinicmodels.Reminder](ctx, c, "/api/reminders/today/me", nil)
}

func (c *Client) ListMyReminders(ctx context.Context) ([]clinicmodels.Reminder, error) {
	return getList[clinicmodels.Reminder](ctx, c, "/api/reminders/all/me", nil)
}

func (c *Client) ListRemindersByCustomer(ctx context.Context, customerID int64) ([]clinicmodels.Reminder, error) {
	return getList[clinicmodels.Reminder](ctx, c, "/api/reminders/customer/"+itoa(customerID), nil)
}

// Appointments

func (c *Client) ListAppointments(ctx context.Context) ([]clinicmodels.Appointment, error) {
	return getList[clinicmodels.Appointment](ctx, c, "/api/appointments", nil)
}
