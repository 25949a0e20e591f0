package service

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nicolukazzz/reservas-api/internal/dto"
	"github.com/nicolukazzz/reservas-api/internal/models"
	appErrors "github.com/nicolukazzz/reservas-api/pkg/errors"
	"github.com/nicolukazzz/reservas-api/pkg/jobs"
	"github.com/nicolukazzz/reservas-api/pkg/storage"
)

type failingStorage struct {
	saveErr error
}

func (f *failingStorage) Save(filename string, data []byte) (string, error) {
	return "", f.saveErr
}

func (f *failingStorage) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (f *failingStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	return nil, nil
}

func newTestExportService(t *testing.T, store *mockReservationStore, staff *mockStaffRepo, files fileStorage) *ExportService {
	t.Helper()
	if files == nil {
		local, err := storage.NewLocalStorage(t.TempDir())
		require.NoError(t, err)
		files = local
	}
	if staff == nil {
		staff = &mockStaffRepo{}
	}
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	return NewExportService(store, staff, files, signer, ExportQueueConfig{}, zap.NewNop())
}

func enqueueExportJob(t *testing.T, svc *ExportService, clientID string, req dto.ExportRequest) *models.ExportJob {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	job, err := svc.Enqueue(context.Background(), clientID, req)
	cancel()
	svc.Stop()
	require.NoError(t, err)
	require.NotNil(t, job)
	return job
}

func TestExportServiceEnqueueValidation(t *testing.T) {
	svc := newTestExportService(t, &mockReservationStore{}, nil, nil)

	_, err := svc.Enqueue(context.Background(), "c1", dto.ExportRequest{DateID: testDate, Format: "xlsx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Enqueue(context.Background(), "c1", dto.ExportRequest{DateID: "17-03-2025", Format: "csv"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceCSVAgenda(t *testing.T) {
	store := &mockReservationStore{existing: []models.Reservation{
		{ID: "r1", ClientID: "c1", DateID: testDate, Time: "10:00", EndTime: "10:30", StaffID: "st1", ServiceID: "corte", CustomerName: "Ana", Status: models.StatusConfirmada},
		{ID: "r2", ClientID: "c1", DateID: testDate, Time: "11:00", EndTime: "11:45", StaffID: "st2", CustomerName: "Luis", Status: models.StatusPendiente},
	}}
	staff := &mockStaffRepo{members: []models.StaffMember{
		{ID: "st1", Name: "María"},
		{ID: "st2", Name: "Pedro"},
	}}
	svc := newTestExportService(t, store, staff, nil)

	job := enqueueExportJob(t, svc, "c1", dto.ExportRequest{DateID: testDate, Format: "csv"})
	require.NoError(t, svc.process(context.Background(), jobs.Job{ID: job.ID}))

	status, err := svc.Status("c1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.ExportJobCompleted), status.Status)
	assert.NotEmpty(t, status.Token)
	assert.True(t, strings.HasPrefix(status.URL, "/exports/download?token="))
	assert.NotEmpty(t, status.ExpiresAt)

	file, name, err := svc.OpenDownload(status.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.True(t, strings.HasSuffix(name, "agenda-"+testDate+".csv"))

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Hora", "Fin", "Cliente", "Personal", "Servicio", "Estado"}, records[0])
	assert.Equal(t, []string{"10:00", "10:30", "Ana", "María", "corte", "Confirmada"}, records[1])
	assert.Equal(t, []string{"11:00", "11:45", "Luis", "Pedro", "", "Pendiente"}, records[2])
}

func TestExportServiceFiltersByStaff(t *testing.T) {
	store := &mockReservationStore{existing: []models.Reservation{
		{ID: "r1", ClientID: "c1", DateID: testDate, Time: "10:00", EndTime: "10:30", StaffID: "st1", CustomerName: "Ana", Status: models.StatusConfirmada},
		{ID: "r2", ClientID: "c1", DateID: testDate, Time: "11:00", EndTime: "11:30", StaffID: "st2", CustomerName: "Luis", Status: models.StatusConfirmada},
	}}
	svc := newTestExportService(t, store, nil, nil)

	job := enqueueExportJob(t, svc, "c1", dto.ExportRequest{DateID: testDate, StaffID: "st2", Format: "csv"})
	require.NoError(t, svc.process(context.Background(), jobs.Job{ID: job.ID}))

	status, err := svc.Status("c1", job.ID)
	require.NoError(t, err)
	file, _, err := svc.OpenDownload(status.Token)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Luis", records[1][2])
	// Roster lookup failed, so the raw staff id is kept.
	assert.Equal(t, "st2", records[1][3])
}

func TestExportServicePDFAgenda(t *testing.T) {
	store := &mockReservationStore{existing: []models.Reservation{
		{ID: "r1", ClientID: "c1", DateID: testDate, Time: "10:00", EndTime: "10:30", CustomerName: "Ana", Status: models.StatusConfirmada},
	}}
	svc := newTestExportService(t, store, nil, nil)

	job := enqueueExportJob(t, svc, "c1", dto.ExportRequest{DateID: testDate, Format: "pdf"})
	require.NoError(t, svc.process(context.Background(), jobs.Job{ID: job.ID}))

	status, err := svc.Status("c1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.ExportJobCompleted), status.Status)

	file, name, err := svc.OpenDownload(status.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.True(t, strings.HasSuffix(name, ".pdf"))

	header := make([]byte, 4)
	_, err = file.Read(header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(header))
}

func TestExportServiceStorageFailureMarksFailed(t *testing.T) {
	store := &mockReservationStore{}
	svc := newTestExportService(t, store, nil, &failingStorage{saveErr: errors.New("disk full")})

	job := enqueueExportJob(t, svc, "c1", dto.ExportRequest{DateID: testDate, Format: "csv"})
	require.Error(t, svc.process(context.Background(), jobs.Job{ID: job.ID}))

	status, err := svc.Status("c1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.ExportJobFailed), status.Status)
	assert.Empty(t, status.Token)
}

func TestExportServiceStatusScopedToClient(t *testing.T) {
	svc := newTestExportService(t, &mockReservationStore{}, nil, nil)
	job := enqueueExportJob(t, svc, "c1", dto.ExportRequest{DateID: testDate, Format: "csv"})

	_, err := svc.Status("other-client", job.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Status("c1", "missing-job")
	require.Error(t, err)
}

func TestExportServiceRejectsTamperedToken(t *testing.T) {
	store := &mockReservationStore{existing: []models.Reservation{
		{ID: "r1", ClientID: "c1", DateID: testDate, Time: "10:00", EndTime: "10:30", Status: models.StatusConfirmada},
	}}
	svc := newTestExportService(t, store, nil, nil)

	job := enqueueExportJob(t, svc, "c1", dto.ExportRequest{DateID: testDate, Format: "csv"})
	require.NoError(t, svc.process(context.Background(), jobs.Job{ID: job.ID}))

	status, err := svc.Status("c1", job.ID)
	require.NoError(t, err)

	_, _, err = svc.OpenDownload(status.Token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
