package dto

// JoinRequestSubmission is the public join form.
type JoinRequestSubmission struct {
	Name                   string              `json:"name" validate:"required,max=120"`
	Email                  string              `json:"email" validate:"required,basicemail"`
	Phone                  string              `json:"phone" validate:"required,max=32"`
	AcademicSpecialization string              `json:"academicSpecialization" validate:"required"`
	Address                string              `json:"address" validate:"required"`
	Subjects               []string            `json:"subjects" validate:"dive,required"`
	Students               []StudentSubmission `json:"students" validate:"dive"`
}

// StudentSubmission is one student listed on the join form.
type StudentSubmission struct {
	Name     string              `json:"name" validate:"required"`
	Email    string              `json:"email" validate:"required,basicemail"`
	Phone    string              `json:"phone"`
	Grade    string              `json:"grade"`
	Subjects []SubjectSubmission `json:"subjects" validate:"dive"`
}

// SubjectSubmission is a subject with its weekly lecture target.
type SubjectSubmission struct {
	Name        string `json:"name" validate:"required"`
	MinLectures int    `json:"minLectures" validate:"gte=0"`
}

// NumberOfStudents mirrors the count the server stores alongside the list.
func (s JoinRequestSubmission) NumberOfStudents() int {
	return len(s.Students)
}

// SessionRequest sets the bearer token for the console session.
type SessionRequest struct {
	Token string `json:"token" binding:"required"`
}
