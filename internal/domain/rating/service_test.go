package rating

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

type mockAPI struct {
	ratings    []clinicmodels.Rating
	doctors    []clinicmodels.Doctor
	doctorsErr error
	submitErr  error
	submitted  *clinicmodels.Rating
}

func (m *mockAPI) ListRatings(context.Context) ([]clinicmodels.Rating, error) {
	return m.ratings, nil
}

func (m *mockAPI) ListDoctors(context.Context) ([]clinicmodels.Doctor, error) {
	return m.doctors, m.doctorsErr
}

func (m *mockAPI) SubmitRating(_ context.Context, r *clinicmodels.Rating) (*clinicmodels.Rating, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.submitted = r
	out := *r
	out.RatingID = 10
	return &out, nil
}

func newTestService() (*Service, *mockAPI) {
	api := &mockAPI{
		ratings: []clinicmodels.Rating{
			{RatingID: 1, DoctorID: 1, Star: 5, Comment: "Rất tận tâm"},
			{RatingID: 2, DoctorID: 1, Star: 4, Comment: " "},
			{RatingID: 3, DoctorID: 2, Star: 3, Comment: "Ổn"},
		},
		doctors: []clinicmodels.Doctor{{DoctorID: 1, FullName: "BS An"}, {DoctorID: 2, FullName: "BS Bình"}},
	}
	return NewService(api), api
}

func TestSummarize(t *testing.T) {
	ratings := []clinicmodels.Rating{
		{DoctorID: 1, Star: 5, Comment: "một"},
		{DoctorID: 1, Star: 4, Comment: ""},
		{DoctorID: 1, Star: 4, Comment: "hai"},
		{DoctorID: 1, Star: 5, Comment: "ba"},
		{DoctorID: 1, Star: 4, Comment: "bốn"},
		{DoctorID: 2, Star: 3},
		{DoctorID: 9, Star: 2, Comment: "xa"},
		{DoctorID: 8, DoctorName: "BS Cũ", Star: 1},
	}
	doctors := []clinicmodels.Doctor{
		{DoctorID: 1, FullName: "BS An"},
		{DoctorID: 2, FullName: "BS Bình"},
		{DoctorID: 3, FullName: "BS Chưa có"},
	}

	got := Summarize(ratings, doctors)
	if len(got) != 5 {
		t.Fatalf("expected 5 summaries, got %d: %+v", len(got), got)
	}

	first := got[0]
	// (5+4+4+5+4)/5 = 4.4
	if first.DoctorID != 1 || first.Average != 4.4 || first.Count != 5 {
		t.Errorf("unexpected top summary: %+v", first)
	}
	if want := []string{"hai", "ba", "bốn"}; !reflect.DeepEqual(first.Comments, want) {
		t.Errorf("expected last three comments %v, got %v", want, first.Comments)
	}

	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.DoctorName
	}
	want := []string{"BS An", "BS Bình", "Không rõ", "BS Cũ", "BS Chưa có"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("unexpected order %v, want %v", names, want)
	}

	last := got[4]
	if last.Count != 0 || last.Average != 0 || last.Comments == nil {
		t.Errorf("unrated doctor should have zero values and empty comments, got %+v", last)
	}
}

func TestSummarize_RoundsToOneDecimal(t *testing.T) {
	got := Summarize([]clinicmodels.Rating{
		{DoctorID: 1, Star: 5},
		{DoctorID: 1, Star: 4},
		{DoctorID: 1, Star: 4},
	}, nil)
	// 13/3 = 4.333...
	if got[0].Average != 4.3 {
		t.Errorf("expected 4.3, got %v", got[0].Average)
	}
}

func TestService_Summary(t *testing.T) {
	svc, api := newTestService()
	got, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Average != 4.5 || len(got[0].Comments) != 1 {
		t.Errorf("unexpected summary: %+v", got)
	}

	api.doctorsErr = &apiclient.APIError{StatusCode: 500, Message: "boom"}
	if _, err := svc.Summary(context.Background()); !apiclient.IsServer(err) {
		t.Errorf("expected server error, got %v", err)
	}
}

func TestService_ListSearch(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.List(context.Background(), pagination.Params{Query: "tận tâm", Page: 1})
	if err != nil || p.TotalItems != 1 {
		t.Errorf("expected one match, got %d (%v)", p.TotalItems, err)
	}
}

func TestService_SubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		r     clinicmodels.Rating
		field string
	}{
		{"no doctor", clinicmodels.Rating{Star: 5, Comment: "ok"}, "doctorId"},
		{"zero stars", clinicmodels.Rating{DoctorID: 1, Comment: "ok"}, "star"},
		{"six stars", clinicmodels.Rating{DoctorID: 1, Star: 6, Comment: "ok"}, "star"},
		{"no comment", clinicmodels.Rating{DoctorID: 1, Star: 3, Comment: "  "}, "comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			r := tt.r
			_, err := svc.Submit(context.Background(), &r)
			var ve *httputil.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestService_SubmitStampsCustomer(t *testing.T) {
	svc, api := newTestService()
	ctx := auth.WithBundle(context.Background(), &session.Bundle{Role: clinicmodels.RoleCustomer, CustomerID: 6})
	if _, err := svc.Submit(ctx, &clinicmodels.Rating{DoctorID: 1, Star: 4, Comment: "tốt"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.submitted.CustomerID != 6 {
		t.Errorf("expected customer 6, got %d", api.submitted.CustomerID)
	}
}

func TestService_SubmitDuplicate(t *testing.T) {
	svc, api := newTestService()
	api.submitErr = &apiclient.APIError{StatusCode: 400, Message: "Rating already exists"}
	if _, err := svc.Submit(context.Background(), &clinicmodels.Rating{DoctorID: 1, Star: 4, Comment: "tốt"}); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}
}
