package models

// LowLectureMember is one row of the weekly low-lecture report.
type LowLectureMember struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Email               string               `json:"email"`
	LowLectureWeekCount int                  `json:"lowLectureWeekCount"`
	UnderTargetStudents []UnderTargetStudent `json:"underTargetStudents"`
	Lectures            []Lecture            `json:"lectures"`
}

// UnderTargetStudent lists the subjects a student is behind on.
type UnderTargetStudent struct {
	Name                string               `json:"name"`
	Email               string               `json:"email"`
	UnderTargetSubjects []UnderTargetSubject `json:"underTargetSubjects"`
}

// UnderTargetSubject compares the weekly target with what was delivered.
type UnderTargetSubject struct {
	Name              string `json:"name"`
	MinLectures       int    `json:"minLectures"`
	DeliveredLectures int    `json:"deliveredLectures"`
}

// Shortfall is the number of lectures still missing this week.
func (s UnderTargetSubject) Shortfall() int {
	if s.DeliveredLectures >= s.MinLectures {
		return 0
	}
	return s.MinLectures - s.DeliveredLectures
}
