package service

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dresscirc/pricing-api/internal/models"
	appErrors "github.com/dresscirc/pricing-api/pkg/errors"
	"github.com/dresscirc/pricing-api/pkg/export"
	"github.com/dresscirc/pricing-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string              `json:"-"`
	Token        string              `json:"-"`
	URL          string              `json:"url"`
	Format       models.ReportFormat `json:"format"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

// ExportService renders pricing reports to CSV/PDF, persists the file and
// issues a signed, expiring download URL.
type ExportService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Export renders the report in the requested format and stores the result.
func (s *ExportService) Export(report *models.PricingReport, format models.ReportFormat) (*ExportResult, error) {
	if report == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report required")
	}

	dataset := BuildReportDataset(report)

	var payload []byte
	var err error
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Occasion Pricing Report")
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render report export")
	}

	reportID := uuid.NewString()
	filename := fmt.Sprintf("pricing_report_%s_%s.%s",
		time.Now().UTC().Format("20060102_150405"), reportID[:8], format)

	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store report export")
	}

	token, expiresAt, err := s.signer.Generate(reportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign report download")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	if s.metrics != nil {
		s.metrics.RecordReport(string(format))
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (reportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// ReportDatasetHeaders is the exported table column order.
var ReportDatasetHeaders = []string{
	"occasion", "start_month", "end_month", "multiplier",
	"suggested_price", "low", "high", "in_season_now", "confidence_pct",
}

// BuildReportDataset flattens a pricing report into the canonical export table.
func BuildReportDataset(report *models.PricingReport) export.Dataset {
	rows := make([][]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, []string{
			row.Occasion,
			strconv.Itoa(row.StartMonth),
			strconv.Itoa(row.EndMonth),
			strconv.FormatFloat(row.Multiplier, 'f', 2, 64),
			strconv.Itoa(row.SuggestedPrice),
			strconv.Itoa(row.Low),
			strconv.Itoa(row.High),
			strconv.FormatBool(row.InSeasonNow),
			strconv.Itoa(row.ConfidencePct),
		})
	}
	return export.Dataset{Headers: ReportDatasetHeaders, Rows: rows}
}
