package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

// Granularity of the registration series.
const (
	ByDay   = "day"
	ByMonth = "month"
	ByYear  = "year"
)

const UnknownName = "Không rõ"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads the backend's appointment date forms.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type StatusPie struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func Status(regs []clinicmodels.Registration) StatusPie {
	var s StatusPie
	for _, r := range regs {
		if r.Status {
			s.Completed++
		} else {
			s.Pending++
		}
	}
	return s
}

type DoctorCount struct {
	DoctorName string `json:"doctorName"`
	Count      int    `json:"count"`
}

// TopDoctors counts registrations per doctor name and keeps the n busiest.
// Ties go to the alphabetically first name.
func TopDoctors(regs []clinicmodels.Registration, n int) []DoctorCount {
	counts := map[string]int{}
	for _, r := range regs {
		name := strings.TrimSpace(r.DoctorName)
		if name == "" {
			name = UnknownName
		}
		counts[name]++
	}

	out := make([]DoctorCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, DoctorCount{DoctorName: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].DoctorName < out[j].DoctorName
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type Point struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Series buckets registrations by appointment date in chronological order.
// Labels are DD/MM/YYYY, MM/YYYY or YYYY. Unparseable dates are skipped.
func Series(regs []clinicmodels.Registration, granularity string) ([]Point, bool) {
	var layout string
	var bucket func(time.Time) time.Time
	switch granularity {
	case ByDay:
		layout = "02/01/2006"
		bucket = func(t time.Time) time.Time { return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC) }
	case ByMonth:
		layout = "01/2006"
		bucket = func(t time.Time) time.Time { return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC) }
	case ByYear:
		layout = "2006"
		bucket = func(t time.Time) time.Time { return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC) }
	default:
		return nil, false
	}

	counts := map[time.Time]int{}
	for _, r := range regs {
		t, ok := ParseDate(r.AppointmentDate)
		if !ok {
			continue
		}
		counts[bucket(t)]++
	}
	keys := make([]time.Time, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]Point, len(keys))
	for i, k := range keys {
		out[i] = Point{Label: k.Format(layout), Count: counts[k]}
	}
	return out, true
}

type Activity struct {
	RegistrationID  int64  `json:"registrationId"`
	Description     string `json:"description"`
	AppointmentDate string `json:"appointmentDate"`
}

// Recent returns the n registrations with the latest appointment dates.
func Recent(regs []clinicmodels.Registration, n int) []Activity {
	type dated struct {
		r clinicmodels.Registration
		t time.Time
	}
	all := make([]dated, 0, len(regs))
	for _, r := range regs {
		t, ok := ParseDate(r.AppointmentDate)
		if !ok {
			continue
		}
		all = append(all, dated{r: r, t: t})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].t.After(all[j].t) })
	if len(all) > n {
		all = all[:n]
	}

	out := make([]Activity, len(all))
	for i, d := range all {
		doctor := strings.TrimSpace(d.r.DoctorName)
		if doctor == "" {
			doctor = UnknownName
		}
		out[i] = Activity{
			RegistrationID:  d.r.Key(),
			Description:     d.r.FullName + " đặt lịch với BS. " + doctor,
			AppointmentDate: d.r.AppointmentDate,
		}
	}
	return out
}
