package medicalhistory

import (
	"context"
	"strings"
	"sync"

	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/view"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

const (
	// PageSize of the history tables.
	PageSize = 10
	// UnknownName is shown when a doctor or patient cannot be resolved.
	UnknownName = "Không rõ"
	// lookupLimit bounds the name lookups in flight for one list.
	lookupLimit = 8
)

// API is the part of the backend client this package uses.
type API interface {
	ListMedicalHistories(ctx context.Context) ([]clinicmodels.MedicalHistory, error)
	ListMedicalHistoriesByCustomer(ctx context.Context, customerID int64) ([]clinicmodels.MedicalHistory, error)
	GetMedicalHistory(ctx context.Context, id int64) (*clinicmodels.MedicalHistory, error)
	CreateMedicalHistory(ctx context.Context, h *clinicmodels.MedicalHistory) (*clinicmodels.MedicalHistory, error)
	UpdateMedicalHistory(ctx context.Context, id int64, h *clinicmodels.MedicalHistory) (*clinicmodels.MedicalHistory, error)
	DeleteMedicalHistory(ctx context.Context, id int64) error
	GetDoctor(ctx context.Context, id int64) (*clinicmodels.Doctor, error)
	GetCustomer(ctx context.Context, id int64) (*clinicmodels.Customer, error)
	GetCustomerMe(ctx context.Context) (*clinicmodels.Customer, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

var listConfig = view.Config[clinicmodels.MedicalHistory]{
	PageSize: PageSize,
	Fields: func(h clinicmodels.MedicalHistory) []string {
		return []string{h.CustomerName}
	},
}

func key(h clinicmodels.MedicalHistory) int64 { return h.MedicalHistoryID }

// List is the admin history table, with names filled in.
func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.MedicalHistory], error) {
	return view.Load(ctx, key, listConfig, p, s.withNames(s.api.ListMedicalHistories))
}

// ByCustomer is one patient's history, as a doctor sees it.
func (s *Service) ByCustomer(ctx context.Context, customerID int64, p pagination.Params) (pagination.Page[clinicmodels.MedicalHistory], error) {
	fetch := func(ctx context.Context) ([]clinicmodels.MedicalHistory, error) {
		return s.api.ListMedicalHistoriesByCustomer(ctx, customerID)
	}
	return view.Load(ctx, key, listConfig, p, s.withNames(fetch))
}

// Mine is the signed-in customer's own history. The id comes from the
// session, or from /customers/me when the session lacks it.
func (s *Service) Mine(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.MedicalHistory], error) {
	id := int64(0)
	if b := auth.BundleFromContext(ctx); b != nil {
		id = b.CustomerID
	}
	if id == 0 {
		me, err := s.api.GetCustomerMe(ctx)
		if err != nil {
			return pagination.Paginate([]clinicmodels.MedicalHistory{}, 1, PageSize), err
		}
		id = me.CustomerID
	}
	return s.ByCustomer(ctx, id, p)
}

func (s *Service) Get(ctx context.Context, id int64) (*clinicmodels.MedicalHistory, error) {
	return s.api.GetMedicalHistory(ctx, id)
}

// Create records a visit. A doctor's own id is stamped on it.
func (s *Service) Create(ctx context.Context, h *clinicmodels.MedicalHistory) (*clinicmodels.MedicalHistory, error) {
	if err := validate(h); err != nil {
		return nil, err
	}
	if h.CustomerID == 0 {
		return nil, httputil.Invalid("customerId", "không được để trống")
	}
	if b := auth.BundleFromContext(ctx); b != nil && b.Role == clinicmodels.RoleDoctor && b.DoctorID != 0 {
		h.DoctorID = b.DoctorID
	}
	h.MedicalHistoryID = 0
	return s.api.CreateMedicalHistory(ctx, h)
}

func (s *Service) Update(ctx context.Context, id int64, h *clinicmodels.MedicalHistory) (*clinicmodels.MedicalHistory, error) {
	if err := validate(h); err != nil {
		return nil, err
	}
	h.MedicalHistoryID = id
	return s.api.UpdateMedicalHistory(ctx, id, h)
}

// Delete removes one record and returns the table refetched from the
// backend, at the same query and page.
func (s *Service) Delete(ctx context.Context, id int64, p pagination.Params) (pagination.Page[clinicmodels.MedicalHistory], error) {
	if err := s.api.DeleteMedicalHistory(ctx, id); err != nil {
		return pagination.Paginate([]clinicmodels.MedicalHistory{}, 1, PageSize), err
	}
	return s.List(ctx, p)
}

func (s *Service) BulkDelete(ctx context.Context, ids []int64) (view.BulkResult[int64], error) {
	return view.DeleteEach(ctx, ids, s.api.DeleteMedicalHistory)
}

// withNames wraps fetch so that rows missing a doctor or patient name get
// one from a per-row lookup. Failed lookups fall back to UnknownName and do
// not fail the list.
func (s *Service) withNames(fetch view.FetchFunc[clinicmodels.MedicalHistory]) view.FetchFunc[clinicmodels.MedicalHistory] {
	return func(ctx context.Context) ([]clinicmodels.MedicalHistory, error) {
		items, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		doctors := newNameCache(func(ctx context.Context, id int64) (string, error) {
			d, err := s.api.GetDoctor(ctx, id)
			if err != nil {
				return "", err
			}
			return d.FullName, nil
		})
		customers := newNameCache(func(ctx context.Context, id int64) (string, error) {
			c, err := s.api.GetCustomer(ctx, id)
			if err != nil {
				return "", err
			}
			return c.FullName, nil
		})

		out, _ := view.ResolveEach(ctx, items, lookupLimit, func(ctx context.Context, h clinicmodels.MedicalHistory) (clinicmodels.MedicalHistory, error) {
			if strings.TrimSpace(h.DoctorName) == "" {
				h.DoctorName = doctors.name(ctx, h.DoctorID)
			}
			if strings.TrimSpace(h.CustomerName) == "" {
				h.CustomerName = customers.name(ctx, h.CustomerID)
			}
			return h, nil
		})
		return out, ctx.Err()
	}
}

type nameEntry struct {
	once sync.Once
	name string
}

// nameCache resolves each id at most once per list load.
type nameCache struct {
	mu      sync.Mutex
	entries map[int64]*nameEntry
	lookup  func(ctx context.Context, id int64) (string, error)
}

func newNameCache(lookup func(ctx context.Context, id int64) (string, error)) *nameCache {
	return &nameCache{entries: map[int64]*nameEntry{}, lookup: lookup}
}

func (n *nameCache) name(ctx context.Context, id int64) string {
	if id == 0 {
		return UnknownName
	}
	n.mu.Lock()
	e, ok := n.entries[id]
	if !ok {
		e = &nameEntry{}
		n.entries[id] = e
	}
	n.mu.Unlock()

	e.once.Do(func() {
		name, err := n.lookup(ctx, id)
		if err != nil || strings.TrimSpace(name) == "" {
			name = UnknownName
		}
		e.name = name
	})
	return e.name
}

func validate(h *clinicmodels.MedicalHistory) error {
	h.DiseaseName = strings.TrimSpace(h.DiseaseName)
	return httputil.Required("diseaseName", h.DiseaseName, "visitDate", h.VisitDate)
}
