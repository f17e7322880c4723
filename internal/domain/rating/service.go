package rating

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/view"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

const (
	MinStar      = 1
	MaxStar      = 5
	UnknownName  = "Không rõ"
	lastComments = 3
)

// ErrAlreadyRated is returned when the customer has rated this doctor before.
var ErrAlreadyRated = errors.New("rating: already rated")

type API interface {
	ListRatings(ctx context.Context) ([]clinicmodels.Rating, error)
	SubmitRating(ctx context.Context, r *clinicmodels.Rating) (*clinicmodels.Rating, error)
	ListDoctors(ctx context.Context) ([]clinicmodels.Doctor, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// DoctorSummary aggregates one doctor's ratings.
type DoctorSummary struct {
	DoctorID   int64    `json:"doctorId"`
	DoctorName string   `json:"doctorName"`
	Average    float64  `json:"average"`
	Count      int      `json:"count"`
	Comments   []string `json:"comments"`
}

// Summarize computes per-doctor averages rounded to one decimal, rating
// counts, and the last three non-empty comments in backend order. Every
// doctor in doctors appears, rated or not; ratings for doctors missing from
// doctors are kept under the rating's own name. Results are ordered by
// average, then count, then name.
func Summarize(ratings []clinicmodels.Rating, doctors []clinicmodels.Doctor) []DoctorSummary {
	type acc struct {
		sum      int
		comments []string
		summary  DoctorSummary
	}
	byID := make(map[int64]*acc, len(doctors))
	var order []int64
	get := func(id int64, name string) *acc {
		a, ok := byID[id]
		if !ok {
			a = &acc{summary: DoctorSummary{DoctorID: id, DoctorName: name}}
			byID[id] = a
			order = append(order, id)
		}
		if a.summary.DoctorName == "" {
			a.summary.DoctorName = name
		}
		return a
	}

	for _, d := range doctors {
		get(d.DoctorID, strings.TrimSpace(d.FullName))
	}
	for _, r := range ratings {
		a := get(r.DoctorID, strings.TrimSpace(r.DoctorName))
		a.sum += r.Star
		a.summary.Count++
		if c := strings.TrimSpace(r.Comment); c != "" {
			a.comments = append(a.comments, c)
		}
	}

	out := make([]DoctorSummary, 0, len(order))
	for _, id := range order {
		a := byID[id]
		s := a.summary
		if s.DoctorName == "" {
			s.DoctorName = UnknownName
		}
		if s.Count > 0 {
			s.Average = math.Round(float64(a.sum)/float64(s.Count)*10) / 10
		}
		if n := len(a.comments); n > lastComments {
			a.comments = a.comments[n-lastComments:]
		}
		s.Comments = append([]string{}, a.comments...)
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].DoctorName < out[j].DoctorName
	})
	return out
}

func key(r clinicmodels.Rating) int64 { return r.RatingID }

var list = view.Config[clinicmodels.Rating]{
	Fields: func(r clinicmodels.Rating) []string { return []string{r.DoctorName, r.Comment} },
}

func (s *Service) List(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Rating], error) {
	return view.Load(ctx, key, list, p, s.api.ListRatings)
}

// Summary fetches ratings and doctors together and summarizes them.
func (s *Service) Summary(ctx context.Context) ([]DoctorSummary, error) {
	var (
		ratings []clinicmodels.Rating
		doctors []clinicmodels.Doctor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ratings, err = s.api.ListRatings(gctx)
		return err
	})
	g.Go(func() (err error) {
		doctors, err = s.api.ListDoctors(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Summarize(ratings, doctors), nil
}

// Submit rates a doctor as the signed-in customer.
func (s *Service) Submit(ctx context.Context, r *clinicmodels.Rating) (*clinicmodels.Rating, error) {
	if r.DoctorID == 0 {
		return nil, httputil.Invalid("doctorId", "không được để trống")
	}
	if r.Star < MinStar || r.Star > MaxStar {
		return nil, httputil.Invalid("star", "số sao phải từ 1 đến 5")
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if err := httputil.Required("comment", r.Comment); err != nil {
		return nil, err
	}
	if b := auth.BundleFromContext(ctx); b != nil && b.CustomerID != 0 {
		r.CustomerID = b.CustomerID
	}
	r.RatingID = 0

	out, err := s.api.SubmitRating(ctx, r)
	if err != nil && apiclient.IsValidation(err) && strings.EqualFold(apiclient.Message(err), "Rating already exists") {
		return nil, ErrAlreadyRated
	}
	return out, err
}
