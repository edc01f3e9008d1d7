package service

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered report ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

var lowLectureHeaders = []string{"Member", "Email", "Low weeks", "Student", "Student email", "Subject", "Target", "Delivered", "Shortfall"}

// ReportExportService renders low-lecture rows to CSV or PDF.
type ReportExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	now    func() time.Time
	logger *zap.Logger
}

// NewReportExportService constructs the service; nil renderers fall back to pkg/export defaults.
func NewReportExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportExportService {
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportExportService{csv: csv, pdf: pdf, now: time.Now, logger: logger}
}

// Render flattens rows to one line per under-target subject and renders them in the requested format.
func (s *ReportExportService) Render(rows []models.LowLectureMember, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Local(appErrors.ErrValidation, err.Error())
	}
	stamp := s.now().UTC().Format("2006-01-02")
	data := export.Dataset{
		Title:   fmt.Sprintf("Low lecture report %s", stamp),
		Headers: lowLectureHeaders,
		Rows:    lowLectureTable(rows),
	}

	var body []byte
	switch format {
	case export.FormatPDF:
		body, err = s.pdf.Render(data)
	default:
		body, err = s.csv.Render(data)
	}
	if err != nil {
		s.logger.Error("report export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrServer, "failed to render report")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("low-lecture-report-%s.%s", stamp, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func lowLectureTable(rows []models.LowLectureMember) [][]string {
	table := make([][]string, 0, len(rows))
	for _, member := range rows {
		prefix := []string{member.Name, member.Email, strconv.Itoa(member.LowLectureWeekCount)}
		emitted := false
		for _, student := range member.UnderTargetStudents {
			for _, subject := range student.UnderTargetSubjects {
				line := append(append([]string(nil), prefix...),
					student.Name,
					student.Email,
					subject.Name,
					strconv.Itoa(subject.MinLectures),
					strconv.Itoa(subject.DeliveredLectures),
					strconv.Itoa(subject.Shortfall()),
				)
				table = append(table, line)
				emitted = true
			}
		}
		if !emitted {
			table = append(table, prefix)
		}
	}
	return table
}
