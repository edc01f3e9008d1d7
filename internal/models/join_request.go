package models

import "time"

// JoinRequestStatus captures the review state of a join request.
type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "Pending"
	JoinRequestStatusApproved JoinRequestStatus = "Approved"
	JoinRequestStatusRejected JoinRequestStatus = "Rejected"
	// JoinRequestStatusUnknown marks a status the server sent that the client does not recognise.
	JoinRequestStatusUnknown JoinRequestStatus = ""
)

// Unspecified is substituted for blank grades and subject names.
const Unspecified = "unspecified"

// JoinRequest is a volunteer across its lifecycle: pending submission, then approved member or rejected request.
type JoinRequest struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	Email                  string            `json:"email"`
	Phone                  string            `json:"phone"`
	AcademicSpecialization string            `json:"academicSpecialization"`
	Address                string            `json:"address"`
	Status                 JoinRequestStatus `json:"status"`
	VolunteerHours         int               `json:"volunteerHours"`
	NumberOfStudents       int               `json:"numberOfStudents"`
	Subjects               []string          `json:"subjects"`
	Students               []Student         `json:"students"`
	Lectures               []Lecture         `json:"lectures"`
	Messages               []Message         `json:"messages"`
	Meetings               []Meeting         `json:"meetings"`
	AccountEmail           string            `json:"accountEmail,omitempty"`
	ApprovedAt             *time.Time        `json:"approvedAt,omitempty"`
	CreatedAt              time.Time         `json:"createdAt"`
}

// SubjectsCount is always derived from Subjects.
func (j JoinRequest) SubjectsCount() int {
	return len(j.Subjects)
}

// IsPending reports whether the request can still be approved or rejected.
func (j JoinRequest) IsPending() bool {
	return j.Status == JoinRequestStatusPending
}

// Clone returns a deep copy so callers never share slices with controller state.
func (j JoinRequest) Clone() JoinRequest {
	out := j
	out.Subjects = append([]string(nil), j.Subjects...)
	out.Lectures = append([]Lecture(nil), j.Lectures...)
	out.Messages = append([]Message(nil), j.Messages...)
	out.Meetings = append([]Meeting(nil), j.Meetings...)
	if j.Students != nil {
		out.Students = make([]Student, len(j.Students))
		for i, s := range j.Students {
			s.Subjects = append([]StudentSubject(nil), s.Subjects...)
			out.Students[i] = s
		}
	}
	if j.ApprovedAt != nil {
		at := *j.ApprovedAt
		out.ApprovedAt = &at
	}
	return out
}

// Student is a learner a volunteer tutors.
type Student struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone"`
	Grade    string           `json:"grade"`
	Subjects []StudentSubject `json:"subjects"`
}

// StudentSubject sets the weekly lecture target for one subject.
type StudentSubject struct {
	Name        string `json:"name"`
	MinLectures int    `json:"minLectures"`
}

// Lecture is a delivered-lecture record kept for display.
type Lecture struct {
	ID           string `json:"id"`
	StudentEmail string `json:"studentEmail"`
	Subject      string `json:"subject"`
	Date         string `json:"date"`
	Duration     int    `json:"duration"`
	Link         string `json:"link"`
	Name         string `json:"name"`
}

// Message is a transient admin notice shown until DisplayUntil.
type Message struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	DisplayUntil time.Time `json:"displayUntil"`
}

// Meeting is a scheduled volunteer meeting.
type Meeting struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
