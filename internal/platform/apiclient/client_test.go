package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

func newTestServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerTokenAtCallTime(t *testing.T) {
	var seen []string
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []clinicmodels.Doctor{})
	})

	token := "first"
	c := New(srv.URL, WithTokenSource(TokenFunc(func(context.Context) (string, error) {
		return token, nil
	})))

	c.ListDoctors(context.Background())
	token = "second"
	c.ListDoctors(context.Background())
	token = ""
	c.ListDoctors(context.Background())

	want := []string{"Bearer first", "Bearer second", ""}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("call %d: expected Authorization %q, got %q", i, want[i], seen[i])
		}
	}
}

func TestClient_TokenSourceError(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []clinicmodels.Doctor{})
	})
	c := New(srv.URL, WithTokenSource(TokenFunc(func(context.Context) (string, error) {
		return "", errors.New("store unavailable")
	})))

	if _, err := c.ListDoctors(context.Background()); err == nil {
		t.Fatal("expected error when the token cannot be read")
	}
	if *calls != 0 {
		t.Errorf("expected no request, got %d", *calls)
	}
}

func TestClient_DecodesList(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/arv-regimens" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, []clinicmodels.ARVRegimen{
			{ARVRegimenID: 1, DoctorID: 7, RegimenCode: "TLE"},
			{ARVRegimenID: 2, DoctorID: 8, RegimenCode: "TLD"},
		})
	})

	items, err := New(srv.URL).ListARVRegimens(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[1].RegimenCode != "TLD" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestClient_NonArrayListIsUnexpectedPayload(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	_, err := New(srv.URL).ListCustomers(context.Background())
	if !errors.Is(err, ErrUnexpectedPayload) {
		t.Fatalf("expected ErrUnexpectedPayload, got %v", err)
	}
	if Classify(err) != KindServer {
		t.Errorf("expected server kind, got %s", Classify(err))
	}
}

func TestClient_NullListIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	})

	items, err := New(srv.URL).ListBlogPosts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", items)
	}
}

func TestClient_ErrorStatusesAreClassified(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   Kind
		msg    string
	}{
		{http.StatusUnauthorized, `{"message":"token expired"}`, KindAuth, "token expired"},
		{http.StatusForbidden, `{"error":"forbidden"}`, KindAuth, "forbidden"},
		{http.StatusBadRequest, `"Email already exists"`, KindValidation, "Email already exists"},
		{http.StatusNotFound, ``, KindValidation, "Not Found"},
		{http.StatusInternalServerError, `boom`, KindServer, "boom"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := New(srv.URL).GetDoctor(context.Background(), 3)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Message != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, apiErr.Message)
			}
			if got := Classify(err); got != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, got)
			}
			if *calls != 1 {
				t.Errorf("expected exactly one request, got %d", *calls)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := New(base).ListDoctors(context.Background())
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v (%s)", err, Classify(err))
	}
}

func TestClient_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL).ListDoctors(ctx)
	if Classify(err) != KindCanceled {
		t.Fatalf("expected canceled kind, got %s (%v)", Classify(err), err)
	}
}

func TestClient_SendsJSONBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/rating" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["star"].(float64) != 5 || body["doctorId"].(float64) != 7 {
			t.Errorf("unexpected body: %v", body)
		}
		writeJSON(w, http.StatusCreated, clinicmodels.Rating{RatingID: 1, Star: 5, DoctorID: 7})
	})

	got, err := New(srv.URL).SubmitRating(context.Background(), &clinicmodels.Rating{Star: 5, DoctorID: 7, Comment: "tốt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RatingID != 1 {
		t.Errorf("unexpected rating: %+v", got)
	}
}

func TestClient_ARVRegimenWithoutHistory(t *testing.T) {
	var methods []string
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		var body clinicmodels.ARVRegimen
		json.NewDecoder(r.Body).Decode(&body)
		if body.RegimenCode != "TDF-3TC-DTG" || body.CustomerID != 3 {
			t.Errorf("unexpected body: %+v", body)
		}
		body.ARVRegimenID = 9
		writeJSON(w, http.StatusOK, body)
	})
	c := New(srv.URL)
	r := &clinicmodels.ARVRegimen{CustomerID: 3, RegimenCode: "TDF-3TC-DTG"}

	created, err := c.CreateARVRegimen(context.Background(), r)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ARVRegimenID != 9 {
		t.Errorf("unexpected regimen: %+v", created)
	}
	if _, err := c.UpdateARVRegimen(context.Background(), 9, r); err != nil {
		t.Fatalf("update: %v", err)
	}

	want := []string{"POST /api/arv-regimens", "PUT /api/arv-regimens/9"}
	if len(methods) != len(want) {
		t.Fatalf("expected %v, got %v", want, methods)
	}
	for i := range want {
		if methods[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], methods[i])
		}
	}
}

func TestClient_GetSchedule(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/schedules/4" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusOK, clinicmodels.Schedule{ScheduleID: 4, DoctorID: 7, WorkDate: "2024-05-01"})
	})

	got, err := New(srv.URL).GetSchedule(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ScheduleID != 4 || got.DoctorID != 7 || got.WorkDate != "2024-05-01" {
		t.Errorf("unexpected schedule: %+v", got)
	}
}

func TestClient_MutationWithEmptyBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/registrations/12/complete" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := New(srv.URL).CompleteRegistration(context.Background(), 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_QueryParameters(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/slots/available-slots" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("doctorId") != "4" || r.URL.Query().Get("date") != "2024-06-01" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, []clinicmodels.Slot{{SlotID: 1, Available: true}})
	})

	slots, err := New(srv.URL).AvailableSlots(context.Background(), 4, "2024-06-01")
	if err != nil || len(slots) != 1 {
		t.Fatalf("unexpected result: %v, %v", slots, err)
	}
}

func TestClient_LoginReturnsRawBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not need a token")
		}
		io.WriteString(w, `{"token":"abc","role":"ADMIN"}`)
	})

	raw, err := New(srv.URL).Login(context.Background(), Credentials{Email: "a@b.vn", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(raw), `"token":"abc"`) {
		t.Errorf("unexpected body %s", raw)
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New("")
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("expected %s, got %s", DefaultBaseURL, c.BaseURL())
	}
	if New("http://api.local/").BaseURL() != "http://api.local" {
		t.Error("expected trailing slash to be trimmed")
	}
}

func TestClient_WithTokensDoesNotMutateOriginal(t *testing.T) {
	base := New("http://x")
	bound := base.WithTokens(StaticToken("t"))
	if base.tokens != nil {
		t.Error("original client must stay unauthenticated")
	}
	if bound.tokens == nil {
		t.Error("bound client must have a token source")
	}
}
