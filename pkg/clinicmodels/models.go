// Package clinicmodels holds the flat records exchanged with the clinic
// backend. Field names follow the backend's JSON exactly, including its
// mixed customerID/customerId spelling.
package clinicmodels

// Doctor is a doctor profile.
type Doctor struct {
	DoctorID            int64  `json:"doctorId"`
	FullName            string `json:"fullName"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Specialization      string `json:"specialization"`
	Description         string `json:"description,omitempty"`
	WorkExperienceYears int    `json:"workExperienceYears"`
	AvatarURL           string `json:"avatarUrl,omitempty"`
}

// Customer is a patient account profile.
type Customer struct {
	CustomerID  int64  `json:"customerID"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Admin is an administrator profile.
type Admin struct {
	AdminID  int64  `json:"adminId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type ARVRegimen struct {
	ARVRegimenID       int64  `json:"arvRegimenId"`
	DoctorID           int64  `json:"doctorId"`
	DoctorName         string `json:"doctorName,omitempty"`
	CustomerID         int64  `json:"customerId"`
	CustomerName       string `json:"customerName,omitempty"`
	Email              string `json:"email,omitempty"`
	CreateDate         string `json:"createDate,omitempty"`
	EndDate            string `json:"endDate,omitempty"`
	RegimenName        string `json:"regimenName"`
	RegimenCode        string `json:"regimenCode"`
	Description        string `json:"description,omitempty"`
	MedicationSchedule string `json:"medicationSchedule"`
	Duration           int    `json:"duration,omitempty"`
}

// ARVWithHistory is the combined payload that creates or updates a regimen
// together with the medical-history entry describing the visit.
type ARVWithHistory struct {
	ARVRegimen
	DiseaseName  string `json:"diseaseName,omitempty"`
	Diagnosis    string `json:"diagnosis,omitempty"`
	Prescription string `json:"prescription,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Treatment    string `json:"treatment,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type MedicalHistory struct {
	MedicalHistoryID int64  `json:"medicalHistoryId"`
	CustomerID       int64  `json:"customerID"`
	CustomerName     string `json:"customerName,omitempty"`
	DoctorID         int64  `json:"doctorId"`
	DoctorName       string `json:"doctorName,omitempty"`
	DiseaseName      string `json:"diseaseName"`
	VisitDate        string `json:"visitDate"`
	Reason           string `json:"reason,omitempty"`
	Diagnosis        string `json:"diagnosis,omitempty"`
	Treatment        string `json:"treatment,omitempty"`
	Prescription     string `json:"prescription,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

type TestResult struct {
	TestResultID      int64  `json:"testResultId"`
	DoctorID          int64  `json:"doctorId"`
	CustomerID        int64  `json:"customerId"`
	CustomerName      string `json:"customerName,omitempty"`
	CustomerEmail     string `json:"customerEmail,omitempty"`
	Date              string `json:"date"`
	TypeOfTest        string `json:"typeOfTest"`
	ResultDescription string `json:"resultDescription"`
}

type BlogPost struct {
	BlogPostID int64  `json:"blogPostId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Author     string `json:"author,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

type BlogComment struct {
	CommentID  int64  `json:"commentId"`
	BlogPostID int64  `json:"blogPostId"`
	Author     string `json:"author,omitempty"`
	Content    string `json:"content"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// Registration is a consultation booking. Status true means completed.
type Registration struct {
	RegistrationID  int64  `json:"registrationID,omitempty"`
	ID              int64  `json:"id,omitempty"`
	FullName        string `json:"fullName"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone"`
	Gender          string `json:"gender,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	Address         string `json:"address,omitempty"`
	CustomerID      int64  `json:"customerId,omitempty"`
	DoctorID        int64  `json:"doctorId,omitempty"`
	DoctorName      string `json:"doctorName,omitempty"`
	Specialization  string `json:"specialization"`
	Mode            string `json:"mode,omitempty"`
	AppointmentDate string `json:"appointmentDate"`
	Session         string `json:"session,omitempty"`
	Symptom         string `json:"symptom,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Status          bool   `json:"status"`
}

// Key returns the registration id regardless of which field the backend
// populated.
func (r Registration) Key() int64 {
	if r.RegistrationID != 0 {
		return r.RegistrationID
	}
	return r.ID
}

type Schedule struct {
	ScheduleID int64  `json:"scheduleId"`
	DoctorID   int64  `json:"doctorId"`
	DoctorName string `json:"doctorName,omitempty"`
	WorkDate   string `json:"workDate"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Room       string `json:"room,omitempty"`
	Status     string `json:"status,omitempty"`
}

type Slot struct {
	SlotID    int64  `json:"slotId"`
	DoctorID  int64  `json:"doctorId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

type Reminder struct {
	ReminderID int64  `json:"reminderId"`
	CustomerID int64  `json:"customerId"`
	Title      string `json:"title"`
	Message    string `json:"message,omitempty"`
	RemindAt   string `json:"remindAt"`
	Done       bool   `json:"done"`
	Status     string `json:"status,omitempty"`
}

type Rating struct {
	RatingID   int64  `json:"ratingId,omitempty"`
	DoctorID   int64  `json:"doctorId"`
	DoctorName string `json:"doctorName,omitempty"`
	CustomerID int64  `json:"customerId,omitempty"`
	Star       int    `json:"star"`
	Comment    string `json:"comment,omitempty"`
}

type Appointment struct {
	AppointmentID   int64  `json:"appointmentId"`
	CustomerID      int64  `json:"customerId"`
	DoctorID        int64  `json:"doctorId"`
	AppointmentDate string `json:"appointmentDate"`
	Status          string `json:"status,omitempty"`
}
