package dashboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/myhealth/myhealth/internal/domain/rating"
	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

const (
	topDoctors  = 5
	recentItems = 5
)

// Widget names, used as KPI keys and in Overview.Errors.
const (
	WidgetDoctors       = "doctors"
	WidgetCustomers     = "customers"
	WidgetARVRegimens   = "arvRegimens"
	WidgetBlogPosts     = "blogPosts"
	WidgetRegistrations = "registrations"
	WidgetTestResults   = "testResults"
	WidgetAppointments  = "appointments"
	WidgetRatings       = "ratings"
)

type API interface {
	ListDoctors(ctx context.Context) ([]clinicmodels.Doctor, error)
	ListCustomers(ctx context.Context) ([]clinicmodels.Customer, error)
	ListARVRegimens(ctx context.Context) ([]clinicmodels.ARVRegimen, error)
	ListBlogPosts(ctx context.Context) ([]clinicmodels.BlogPost, error)
	ListRegistrations(ctx context.Context) ([]clinicmodels.Registration, error)
	ListTestResults(ctx context.Context) ([]clinicmodels.TestResult, error)
	ListAppointments(ctx context.Context) ([]clinicmodels.Appointment, error)
	ListRatings(ctx context.Context) ([]clinicmodels.Rating, error)
}

type Service struct {
	api    API
	logger zerolog.Logger
}

func NewService(api API, logger zerolog.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// Overview is the admin dashboard. A widget whose source failed is listed in
// Errors and left at its zero value; the rest still render.
type Overview struct {
	KPIs       map[string]int         `json:"kpis"`
	Status     StatusPie              `json:"status"`
	TopDoctors []DoctorCount          `json:"topDoctors"`
	Recent     []Activity             `json:"recent"`
	Ratings    []rating.DoctorSummary `json:"ratings"`
	Errors     map[string]string      `json:"errors,omitempty"`
}

type collector struct {
	g       errgroup.Group
	mu      sync.Mutex
	errs    map[string]string
	authErr error
	logger  zerolog.Logger
}

func (c *collector) fail(name string, err error) {
	c.logger.Warn().Err(err).Str("widget", name).Msg("dashboard source failed")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[name] = "failed to load"
	if c.authErr == nil && apiclient.IsAuth(err) {
		c.authErr = err
	}
}

func (c *collector) failed(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.errs[name]
	return ok
}

func collect[T any](ctx context.Context, c *collector, name string, fetch func(context.Context) ([]T, error), out *[]T) {
	c.g.Go(func() error {
		items, err := fetch(ctx)
		if err != nil {
			c.fail(name, err)
			return nil
		}
		*out = items
		return nil
	})
}

// Overview fans out to every source at once. It fails only when the backend
// rejected the session.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	c := &collector{errs: map[string]string{}, logger: s.logger}
	var (
		doctors       []clinicmodels.Doctor
		customers     []clinicmodels.Customer
		regimens      []clinicmodels.ARVRegimen
		posts         []clinicmodels.BlogPost
		registrations []clinicmodels.Registration
		results       []clinicmodels.TestResult
		appointments  []clinicmodels.Appointment
		ratings       []clinicmodels.Rating
	)
	collect(ctx, c, WidgetDoctors, s.api.ListDoctors, &doctors)
	collect(ctx, c, WidgetCustomers, s.api.ListCustomers, &customers)
	collect(ctx, c, WidgetARVRegimens, s.api.ListARVRegimens, &regimens)
	collect(ctx, c, WidgetBlogPosts, s.api.ListBlogPosts, &posts)
	collect(ctx, c, WidgetRegistrations, s.api.ListRegistrations, &registrations)
	collect(ctx, c, WidgetTestResults, s.api.ListTestResults, &results)
	collect(ctx, c, WidgetAppointments, s.api.ListAppointments, &appointments)
	collect(ctx, c, WidgetRatings, s.api.ListRatings, &ratings)
	_ = c.g.Wait()
	if c.authErr != nil {
		return nil, c.authErr
	}

	o := &Overview{
		KPIs:       map[string]int{},
		TopDoctors: TopDoctors(registrations, topDoctors),
		Recent:     Recent(registrations, recentItems),
		Status:     Status(registrations),
		Ratings:    []rating.DoctorSummary{},
	}
	counts := map[string]int{
		WidgetDoctors:       len(doctors),
		WidgetCustomers:     len(customers),
		WidgetARVRegimens:   len(regimens),
		WidgetBlogPosts:     len(posts),
		WidgetRegistrations: len(registrations),
		WidgetTestResults:   len(results),
		WidgetAppointments:  len(appointments),
	}
	for name, n := range counts {
		if !c.failed(name) {
			o.KPIs[name] = n
		}
	}
	if !c.failed(WidgetRatings) {
		o.Ratings = rating.Summarize(ratings, doctors)
	}
	if len(c.errs) > 0 {
		o.Errors = c.errs
	}
	return o, nil
}

// Registrations is the registration series for one granularity.
func (s *Service) Registrations(ctx context.Context, granularity string) ([]Point, error) {
	if granularity == "" {
		granularity = ByMonth
	}
	regs, err := s.api.ListRegistrations(ctx)
	if err != nil {
		return nil, err
	}
	points, ok := Series(regs, granularity)
	if !ok {
		return nil, httputil.Invalid("mode", "chế độ thống kê không hợp lệ")
	}
	return points, nil
}
