package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/export"
)

type failingPDF struct{}

func (failingPDF) Render(export.Dataset) ([]byte, error) {
	return nil, errors.New("font missing")
}

func sampleReportRows() []models.LowLectureMember {
	return []models.LowLectureMember{
		{
			ID: pendingID, Name: "Lina", Email: "lina@example.org", LowLectureWeekCount: 2,
			UnderTargetStudents: []models.UnderTargetStudent{{
				Name: "Sara", Email: "sara@example.org",
				UnderTargetSubjects: []models.UnderTargetSubject{
					{Name: "Math", MinLectures: 3, DeliveredLectures: 1},
					{Name: "Physics", MinLectures: 2, DeliveredLectures: 0},
				},
			}},
		},
		{ID: otherID, Name: "Omar", Email: "omar@example.org", LowLectureWeekCount: 1},
	}
}

func newTestReportExport() *ReportExportService {
	svc := NewReportExportService(export.NewCSVExporter(false), nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestReportExportCSVFlattensSubjects(t *testing.T) {
	file, err := newTestReportExport().Render(sampleReportRows(), "csv")

	require.NoError(t, err)
	assert.Equal(t, "low-lecture-report-2026-03-14.csv", file.Filename)
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Lina,lina@example.org,2,Sara,sara@example.org,Math,3,1,2", lines[1])
	assert.Equal(t, "Lina,lina@example.org,2,Sara,sara@example.org,Physics,2,0,2", lines[2])
	assert.Equal(t, "Omar,omar@example.org,1,,,,,,", lines[3])
}

func TestReportExportPDF(t *testing.T) {
	file, err := newTestReportExport().Render(sampleReportRows(), "pdf")

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF-")))
}

func TestReportExportUnknownFormat(t *testing.T) {
	_, err := newTestReportExport().Render(sampleReportRows(), "xlsx")

	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportExportRendererFailure(t *testing.T) {
	svc := NewReportExportService(nil, failingPDF{}, nil)

	_, err := svc.Render(nil, "pdf")

	assert.ErrorIs(t, err, appErrors.ErrServer)
}
