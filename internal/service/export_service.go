package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nicolukazzz/reservas-api/internal/dto"
	"github.com/nicolukazzz/reservas-api/internal/models"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
	"github.com/nicolukazzz/reservas-api/pkg/export"
	"github.com/nicolukazzz/reservas-api/pkg/jobs"
	"github.com/nicolukazzz/reservas-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportService renders day agendas to CSV or PDF through a background
// queue and hands out signed download tokens.
type ExportService struct {
	reservations reservationStore
	staff        staffReader
	storage      fileStorage
	csv          csvRenderer
	pdf          pdfRenderer
	signer       *storage.SignedURLSigner
	queue        *jobs.Queue
	logger       *zap.Logger

	mu      sync.RWMutex
	pending map[string]*models.ExportJob
}

// ExportQueueConfig tunes the background workers.
type ExportQueueConfig struct {
	Workers    int
	MaxRetries int
}

// NewExportService constructs an ExportService. Call Start before
// enqueueing.
func NewExportService(
	reservations reservationStore,
	staff staffReader,
	store fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportQueueConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		reservations: reservations,
		staff:        staff,
		storage:      store,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		signer:       signer,
		logger:       logger,
		pending:      make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue("agenda-exports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules an agenda export and returns the job reference.
func (s *ExportService) Enqueue(ctx context.Context, clientID string, req dto.ExportRequest) (*models.ExportJob, error) {
	format := models.ExportFormat(req.Format)
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", req.Format))
	}
	if _, err := models.ParseDateID(req.DateID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", req.DateID))
	}

	job := &models.ExportJob{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Status:   models.ExportJobQueued,
		Params: models.ExportJobParams{
			ClientID: clientID,
			DateID:   req.DateID,
			StaffID:  req.StaffID,
			Format:   format,
		},
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.pending[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "agenda-export"}); err != nil {
		s.setFailed(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return job, nil
}

// Status returns the job state and, once completed, a signed download
// token.
func (s *ExportService) Status(clientID, jobID string) (*dto.ExportReadyResponse, error) {
	s.mu.RLock()
	job, ok := s.pending[jobID]
	s.mu.RUnlock()
	if !ok || job.ClientID != clientID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}

	resp := &dto.ExportReadyResponse{JobID: job.ID, Status: string(job.Status)}
	if job.Status == models.ExportJobCompleted {
		token, expiresAt, err := s.signer.Generate(job.ID, job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
		}
		resp.Token = token
		resp.URL = fmt.Sprintf("/exports/download?token=%s", token)
		resp.ExpiresAt = expiresAt.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

// OpenDownload validates the token and opens the stored file.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "invalid or expired download token")
	}

	s.mu.RLock()
	job, ok := s.pending[jobID]
	s.mu.RUnlock()
	if !ok || job.FilePath != relPath {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file missing")
	}
	return file, relPath, nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	s.mu.Lock()
	stored, ok := s.pending[job.ID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	stored.Status = models.ExportJobRunning
	params := stored.Params
	s.mu.Unlock()

	reservations, err := s.reservations.ListByDate(ctx, params.ClientID, params.DateID)
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	dataset := s.buildDataset(ctx, params, reservations)

	var payload []byte
	switch params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Agenda del día", params.DateID)
	default:
		err = fmt.Errorf("unsupported format %s", params.Format)
	}
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	filename := fmt.Sprintf("%s/agenda-%s.%s", params.ClientID, params.DateID, params.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if stored, ok := s.pending[job.ID]; ok {
		stored.Status = models.ExportJobCompleted
		stored.FilePath = relPath
		stored.CompletedAt = &now
	}
	s.mu.Unlock()

	s.logger.Info("agenda export completed",
		zap.String("job_id", job.ID),
		zap.String("client_id", params.ClientID),
		zap.String("date_id", params.DateID),
		zap.String("format", string(params.Format)),
	)
	return nil
}

func (s *ExportService) buildDataset(ctx context.Context, params models.ExportJobParams, reservations []models.Reservation) export.Dataset {
	staffNames := make(map[string]string)
	if roster, err := s.staff.ListByClient(ctx, params.ClientID); err == nil {
		for _, m := range roster {
			staffNames[m.ID] = m.Name
		}
	}

	headers := []string{"Hora", "Fin", "Cliente", "Personal", "Servicio", "Estado"}
	rows := make([]map[string]string, 0, len(reservations))
	for _, r := range reservations {
		if params.StaffID != "" && r.StaffID != params.StaffID {
			continue
		}
		staffName := staffNames[r.StaffID]
		if staffName == "" {
			staffName = r.StaffID
		}
		rows = append(rows, map[string]string{
			"Hora":     r.Time,
			"Fin":      r.EndTime,
			"Cliente":  r.CustomerName,
			"Personal": staffName,
			"Servicio": r.ServiceID,
			"Estado":   string(r.Status),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func (s *ExportService) setFailed(jobID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.pending[jobID]; ok {
		job.Status = models.ExportJobFailed
		job.Error = err.Error()
	}
}
