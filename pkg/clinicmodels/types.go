package clinicmodels

import (
	"sort"
	"strings"
)

// Common value sets shared by the clinic backend and its clients.

// Role identifies which portal a signed-in account belongs to.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleDoctor   Role = "DOCTOR"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole normalizes a role string as emitted by the backend. "USER" is the
// backend's older name for a customer account. Unknown values return "".
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN", "ROLE_ADMIN":
		return RoleAdmin
	case "DOCTOR", "ROLE_DOCTOR":
		return RoleDoctor
	case "CUSTOMER", "USER", "ROLE_CUSTOMER", "ROLE_USER":
		return RoleCustomer
	}
	return ""
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDoctor || r == RoleCustomer
}

// LandingPath is the portal route a role is sent to after login.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleDoctor:
		return "/doctorPanel"
	case RoleCustomer:
		return "/userPanel"
	}
	return "/login"
}

// Gender values.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// Consultation modes for a registration.
const (
	ModeOnline  = "ONLINE"
	ModeOffline = "OFFLINE"
)

// Regimen is an entry in the ARV regimen catalogue.
type Regimen struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var regimenCatalogue = map[string]string{
	"TLE": "TDF + 3TC + EFV",
	"TLD": "TDF + 3TC + DTG",
	"ZLE": "AZT + 3TC + EFV",
	"ZLN": "AZT + 3TC + NVP",
	"ALE": "ABC + 3TC + EFV",
	"TFD": "TDF + FTC + DTG",
	"ALD": "ABC + 3TC + DTG",
}

// RegimenName returns the combination name for a regimen code.
func RegimenName(code string) (string, bool) {
	name, ok := regimenCatalogue[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// Regimens returns the catalogue ordered by code.
func Regimens() []Regimen {
	out := make([]Regimen, 0, len(regimenCatalogue))
	for code, name := range regimenCatalogue {
		out = append(out, Regimen{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Dose times used in a medication schedule.
const (
	DoseMorning   = "Sáng"
	DoseNoon      = "Trưa"
	DoseAfternoon = "Chiều"
	DoseEvening   = "Tối"
)

// DoseTimes lists the dose times in the order they are taken during a day.
var DoseTimes = []string{DoseMorning, DoseNoon, DoseAfternoon, DoseEvening}

// JoinSchedule renders dose times as the comma-separated form the backend
// stores in medicationSchedule. Blank entries are dropped.
func JoinSchedule(doses []string) string {
	kept := make([]string, 0, len(doses))
	for _, d := range doses {
		if d = strings.TrimSpace(d); d != "" {
			kept = append(kept, d)
		}
	}
	return strings.Join(kept, ", ")
}

// SplitSchedule is the inverse of JoinSchedule.
func SplitSchedule(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
