package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
)

// Field names the server uses interchangeably.
const (
	fieldID         = "_id"
	fieldLegacyID   = "id"
	fieldPhone      = "phone"
	fieldLegacyTel  = "phoneNumber"
	fieldGrade      = "grade"
	fieldLegacyRank = "academicLevel"
)

// Normalizer turns raw server records into the strict internal model. It holds no state beyond its clock.
type Normalizer struct {
	now func() time.Time
}

// NormalizerOption configures the normalizer.
type NormalizerOption func(*Normalizer)

// WithClock overrides the clock used for message expiry.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// NewNormalizer constructs a normalizer backed by the wall clock.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// NormalizeJoinRequests normalizes a batch against a single instant and sorts it newest first.
func (n *Normalizer) NormalizeJoinRequests(raws []dto.RawRecord) []models.JoinRequest {
	now := n.now()
	out := make([]models.JoinRequest, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		out = append(out, n.normalizeJoinRequestAt(raw, now))
	}
	SortNewestFirst(out)
	return out
}

// NormalizeJoinRequest normalizes one member or join-request record.
func (n *Normalizer) NormalizeJoinRequest(raw dto.RawRecord) models.JoinRequest {
	return n.normalizeJoinRequestAt(raw, n.now())
}

func (n *Normalizer) normalizeJoinRequestAt(raw dto.RawRecord, now time.Time) models.JoinRequest {
	req := models.JoinRequest{
		ID:                     coalesceID(raw),
		Name:                   raw.String("name"),
		Email:                  raw.String("email"),
		Phone:                  raw.FirstString(fieldPhone, fieldLegacyTel),
		AcademicSpecialization: raw.String("academicSpecialization"),
		Address:                raw.String("address"),
		Status:                 normalizeStatus(raw.String("status")),
		VolunteerHours:         nonNegativeInt(raw.Value("volunteerHours")),
		NumberOfStudents:       nonNegativeInt(raw.Value("numberOfStudents")),
		Subjects:               subjectNames(raw.List("subjects")),
		AccountEmail:           raw.FirstString("accountEmail", "generatedEmail"),
		CreatedAt:              parseInstant(raw.Value("createdAt")),
	}
	if at := parseInstant(raw.Value("approvedAt")); !at.IsZero() {
		req.ApprovedAt = &at
	}

	req.Students = make([]models.Student, 0)
	for _, s := range raw.Records("students") {
		if student, ok := n.NormalizeStudent(s); ok {
			req.Students = append(req.Students, student)
		}
	}

	req.Lectures = make([]models.Lecture, 0)
	for _, l := range raw.Records("lectures") {
		req.Lectures = append(req.Lectures, n.NormalizeLecture(l))
	}

	req.Messages = make([]models.Message, 0)
	for _, m := range raw.Records("messages") {
		if msg, ok := normalizeMessageAt(m, now); ok {
			req.Messages = append(req.Messages, msg)
		}
	}

	req.Meetings = make([]models.Meeting, 0)
	for _, m := range raw.Records("meetings") {
		req.Meetings = append(req.Meetings, models.Meeting{
			ID:        coalesceID(m),
			Title:     m.String("title"),
			Date:      m.String("date"),
			StartTime: m.String("startTime"),
			EndTime:   m.String("endTime"),
		})
	}

	return req
}

// NormalizeStudent returns false when the student lacks a name or an email.
func (n *Normalizer) NormalizeStudent(raw dto.RawRecord) (models.Student, bool) {
	student := models.Student{
		Name:  raw.String("name"),
		Email: raw.String("email"),
		Phone: raw.FirstString(fieldPhone, fieldLegacyTel),
		Grade: raw.FirstString(fieldGrade, fieldLegacyRank),
	}
	if student.Name == "" || student.Email == "" {
		return models.Student{}, false
	}
	if student.Grade == "" {
		student.Grade = models.Unspecified
	}
	student.Subjects = make([]models.StudentSubject, 0)
	for _, item := range raw.List("subjects") {
		if subject, ok := n.NormalizeStudentSubject(item); ok {
			student.Subjects = append(student.Subjects, subject)
		}
	}
	return student, true
}

// NormalizeStudentSubject drops entries with a blank name and no lecture target.
// A bare string is read as a subject name with no target.
func (n *Normalizer) NormalizeStudentSubject(raw interface{}) (models.StudentSubject, bool) {
	var subject models.StudentSubject
	if rec := dto.AsRecord(raw); rec != nil {
		subject.Name = rec.String("name")
		subject.MinLectures = nonNegativeInt(rec.Value("minLectures"))
	} else if s, ok := raw.(string); ok {
		subject.Name = strings.TrimSpace(s)
	}
	if subject.Name == "" && subject.MinLectures == 0 {
		return models.StudentSubject{}, false
	}
	if subject.Name == "" {
		subject.Name = models.Unspecified
	}
	return subject, true
}

// NormalizeLecture copies a delivered-lecture record.
func (n *Normalizer) NormalizeLecture(raw dto.RawRecord) models.Lecture {
	return models.Lecture{
		ID:           coalesceID(raw),
		StudentEmail: raw.String("studentEmail"),
		Subject:      raw.String("subject"),
		Date:         raw.String("date"),
		Duration:     nonNegativeInt(raw.Value("duration")),
		Link:         raw.String("link"),
		Name:         raw.String("name"),
	}
}

// NormalizeMessage keeps a message only while its display window is open.
func (n *Normalizer) NormalizeMessage(raw dto.RawRecord) (models.Message, bool) {
	return normalizeMessageAt(raw, n.now())
}

func normalizeMessageAt(raw dto.RawRecord, now time.Time) (models.Message, bool) {
	until := parseInstant(raw.Value("displayUntil"))
	if until.IsZero() || !until.After(now) {
		return models.Message{}, false
	}
	return models.Message{
		ID:           coalesceID(raw),
		Content:      raw.String("content"),
		CreatedAt:    parseInstant(raw.Value("createdAt")),
		DisplayUntil: until,
	}, true
}

// NormalizeLowLectureMember normalizes one report row.
func (n *Normalizer) NormalizeLowLectureMember(raw dto.RawRecord) models.LowLectureMember {
	member := models.LowLectureMember{
		ID:                  coalesceID(raw),
		Name:                raw.String("name"),
		Email:               raw.String("email"),
		LowLectureWeekCount: nonNegativeInt(raw.Value("lowLectureWeekCount")),
		UnderTargetStudents: make([]models.UnderTargetStudent, 0),
		Lectures:            make([]models.Lecture, 0),
	}
	for _, s := range raw.Records("underTargetStudents") {
		student := models.UnderTargetStudent{
			Name:                s.String("name"),
			Email:               s.String("email"),
			UnderTargetSubjects: make([]models.UnderTargetSubject, 0),
		}
		for _, subj := range s.Records("underTargetSubjects") {
			student.UnderTargetSubjects = append(student.UnderTargetSubjects, models.UnderTargetSubject{
				Name:              subj.String("name"),
				MinLectures:       nonNegativeInt(subj.Value("minLectures")),
				DeliveredLectures: nonNegativeInt(subj.Value("deliveredLectures")),
			})
		}
		member.UnderTargetStudents = append(member.UnderTargetStudents, student)
	}
	for _, l := range raw.Records("lectures") {
		member.Lectures = append(member.Lectures, n.NormalizeLecture(l))
	}
	return member
}

// SortNewestFirst orders by CreatedAt descending; equal timestamps keep server order.
func SortNewestFirst(items []models.JoinRequest) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// coalesceID prefers `_id` (plain or extended-JSON `{"$oid": ...}`) and falls back to `id`.
func coalesceID(raw dto.RawRecord) string {
	if oid := raw.Record(fieldID); oid != nil {
		if s := oid.String("$oid"); s != "" {
			return s
		}
	}
	return raw.FirstString(fieldID, fieldLegacyID)
}

func normalizeStatus(raw string) models.JoinRequestStatus {
	switch strings.ToLower(raw) {
	case "":
		return models.JoinRequestStatusPending
	case "pending":
		return models.JoinRequestStatusPending
	case "approved":
		return models.JoinRequestStatusApproved
	case "rejected":
		return models.JoinRequestStatusRejected
	default:
		return models.JoinRequestStatusUnknown
	}
}

func subjectNames(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if rec := dto.AsRecord(item); rec != nil {
			name = rec.String("name")
		} else if s, ok := item.(string); ok {
			name = strings.TrimSpace(s)
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// nonNegativeInt coerces loose numeric input; anything that is not a whole number >= 0 becomes 0.
// Values beyond the int range clamp to math.MaxInt.
func nonNegativeInt(v interface{}) int {
	switch v.(type) {
	case nil, bool, map[string]interface{}, []interface{}:
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		if s, ok := v.(string); ok {
			f, err = cast.ToFloat64E(strings.TrimSpace(s))
		}
		if err != nil {
			return 0
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) {
		return 0
	}
	// float64(math.MaxInt) rounds up past MaxInt, so the bound is inclusive.
	if f >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(f)
}

// parseInstant reads ISO-8601 strings or epoch milliseconds. Unparseable input yields the zero time.
func parseInstant(v interface{}) time.Time {
	switch typed := v.(type) {
	case nil:
		return time.Time{}
	case float64:
		if typed <= 0 || math.IsNaN(typed) || math.IsInf(typed, 0) {
			return time.Time{}
		}
		return time.UnixMilli(int64(typed)).UTC()
	case string:
		s := strings.TrimSpace(typed)
		if s == "" {
			return time.Time{}
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		t, err := cast.ToTimeE(s)
		if err != nil {
			return time.Time{}
		}
		return t
	case map[string]interface{}:
		// extended JSON {"$date": ...}
		return parseInstant(typed["$date"])
	default:
		return time.Time{}
	}
}
