package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"estate-intake/internal/clients"
	"estate-intake/internal/domain"
	"estate-intake/internal/pdf"
	"estate-intake/internal/repository"

	"github.com/google/uuid"
)

type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.Application) error
	List(ctx context.Context, f repository.ApplicationsFilter) ([]domain.Application, error)
	FindByID(ctx context.Context, id string) (*domain.Application, error)
	UpdatePDFKey(ctx context.Context, id string, pdfKey string) error
}

// GenerationStatus is the redis-cached progress record for one PDF
// generation run.
type GenerationStatus struct {
	Key           string    `json:"key"`
	ApplicationID string    `json:"application_id"`
	Progress      float64   `json:"progress"`
	Stage         string    `json:"stage"`
	Error         string    `json:"error,omitempty"`
	PDFKey        *string   `json:"pdf_key"`
	Created       time.Time `json:"created_at"`
}

const (
	generationSetKey = "generation_ids"
	generationTTL    = 20 * time.Minute
)

var (
	ErrInvalidApplicantCount = errors.New("applicant count must be between 1 and 3")
	ErrUnknownBHKType        = errors.New("unknown bhk type")
	ErrNoApplicantData       = errors.New("no applicant slot has any data")
)

// launcher exists so tests can substitute a fake browser.
type launcher func(ctx context.Context, cfg pdf.BrowserConfig) (pdf.PageRenderer, error)

type ApplicationService struct {
	repo       ApplicationRepository
	redis      *clients.RedisClient
	s3         *clients.S3Client
	ws         *clients.WebSocketClient
	assets     *pdf.Assets
	assembler  *pdf.Assembler
	browserCfg pdf.BrowserConfig
	launch     launcher
}

func NewApplicationService(
	repo ApplicationRepository,
	redis *clients.RedisClient,
	s3 *clients.S3Client,
	ws *clients.WebSocketClient,
	assets *pdf.Assets,
	browserCfg pdf.BrowserConfig,
) *ApplicationService {
	return &ApplicationService{
		repo:       repo,
		redis:      redis,
		s3:         s3,
		ws:         ws,
		assets:     assets,
		assembler:  pdf.NewAssembler(assets),
		browserCfg: browserCfg,
		launch: func(ctx context.Context, cfg pdf.BrowserConfig) (pdf.PageRenderer, error) {
			return pdf.Launch(ctx, cfg)
		},
	}
}

// Submit validates a form, reprices it server-side, persists it and kicks
// off PDF generation in the background. Client-sent price fields are never
// trusted.
func (s *ApplicationService) Submit(ctx context.Context, form domain.ApplicationForm, applicantCount int) (*domain.Application, error) {
	if applicantCount < 1 || applicantCount > domain.MaxApplicants {
		return nil, ErrInvalidApplicantCount
	}
	// slot 1 may be left blank when the form skips straight to a later
	// slot; only a form with no usable slot at all is rejected
	hasAny := false
	for slot := domain.SlotFirst; slot <= applicantCount; slot++ {
		if form.Applicant(slot).HasData(slot) {
			hasAny = true
			break
		}
	}
	if !hasAny {
		return nil, ErrNoApplicantData
	}
	if !form.Reprice() {
		return nil, ErrUnknownBHKType
	}

	normalizeDates(&form)

	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}

	app := &domain.Application{
		ID:             uuid.NewString(),
		ApplicationID:  domain.NewApplicationID(),
		FormData:       string(raw),
		ApplicantCount: applicantCount,
		BHKType:        form.BHKType,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	status := &GenerationStatus{
		Key:           fmt.Sprintf("generations:%s", app.ID),
		ApplicationID: app.ApplicationID,
		Progress:      0,
		Stage:         "queued",
		Created:       time.Now(),
	}
	_ = s.saveGenerationStatus(ctx, status)

	go s.runGeneration(context.Background(), app, form, status)

	return app, nil
}

func normalizeDates(form *domain.ApplicationForm) {
	for i := range form.Applicants {
		form.Applicants[i].DOB = domain.NormalizeDate(form.Applicants[i].DOB)
	}
	form.DeclarationDate = domain.NormalizeDate(form.DeclarationDate)
}

func (s *ApplicationService) runGeneration(ctx context.Context, app *domain.Application, form domain.ApplicationForm, status *GenerationStatus) {
	progress := func(p float64, stage string) {
		status.Progress = p
		status.Stage = stage
		_ = s.saveGenerationStatus(ctx, status)
		if s.ws != nil {
			_ = s.ws.NotifyGenerationProgress(ctx, app.ApplicationID, p, stage)
		}
	}

	fail := func(err error) {
		log.Printf("[GENERATE] application %s failed: %v", app.ApplicationID, err)
		status.Stage = "failed"
		status.Error = err.Error()
		_ = s.saveGenerationStatus(ctx, status)
		if s.ws != nil {
			_ = s.ws.NotifyGenerationFailed(ctx, app.ApplicationID, err.Error())
		}
	}

	progress(10, "rendering")

	data, err := s.generate(ctx, form, app.ApplicantCount)
	if err != nil {
		fail(err)
		return
	}

	progress(80, "uploading")

	fileName := fmt.Sprintf("%s.pdf", strings.ToLower(app.ApplicationID))
	key, err := s.s3.UploadPDF(ctx, fileName, data)
	if err != nil {
		fail(fmt.Errorf("failed to upload pdf: %w", err))
		return
	}

	if err := s.repo.UpdatePDFKey(ctx, app.ID, key); err != nil {
		fail(fmt.Errorf("failed to record pdf key: %w", err))
		return
	}

	status.PDFKey = &key
	progress(100, "ready")

	if s.ws != nil {
		_ = s.ws.NotifyGenerationComplete(ctx, app.ApplicationID, key)
	}
}

// generate runs the full pipeline once: load the source document, launch a
// browser, render and merge.
func (s *ApplicationService) generate(ctx context.Context, form domain.ApplicationForm, applicantCount int) ([]byte, error) {
	source, err := s.assets.SourceDocument()
	if err != nil {
		return nil, err
	}

	renderer, err := s.launch(ctx, s.browserCfg)
	if err != nil {
		return nil, err
	}

	return s.assembler.Generate(ctx, renderer, source, form, applicantCount)
}

// GetPDF returns the stored document for an application, generating and
// storing it first when no copy exists yet. Repeated calls for the same
// application return identical bytes.
func (s *ApplicationService) GetPDF(ctx context.Context, id string) (*domain.Application, []byte, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if app.PDFKey != "" {
		data, err := s.s3.FetchPDF(ctx, app.PDFKey)
		if err == nil {
			return app, data, nil
		}
		log.Printf("[GENERATE] stored pdf %s unreadable, regenerating: %v", app.PDFKey, err)
	}

	var form domain.ApplicationForm
	if err := json.Unmarshal([]byte(app.FormData), &form); err != nil {
		return nil, nil, fmt.Errorf("failed to decode stored form: %w", err)
	}

	data, err := s.generate(ctx, form, app.ApplicantCount)
	if err != nil {
		return nil, nil, err
	}

	fileName := fmt.Sprintf("%s.pdf", strings.ToLower(app.ApplicationID))
	key, err := s.s3.UploadPDF(ctx, fileName, data)
	if err == nil {
		if uerr := s.repo.UpdatePDFKey(ctx, app.ID, key); uerr == nil {
			app.PDFKey = key
		}
	}

	return app, data, nil
}

// GetFileURL returns a short-lived download URL for the stored document.
func (s *ApplicationService) GetFileURL(ctx context.Context, id string) (string, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if app.PDFKey == "" {
		return "", repository.ErrNotFound
	}
	return s.s3.GetTemporaryURL(ctx, app.PDFKey, 48*time.Hour)
}

func (s *ApplicationService) List(ctx context.Context, f repository.ApplicationsFilter) ([]domain.Application, error) {
	return s.repo.List(ctx, f)
}

func (s *ApplicationService) Find(ctx context.Context, id string) (*domain.Application, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ApplicationService) saveGenerationStatus(ctx context.Context, st *GenerationStatus) error {
	if s.redis == nil {
		return nil
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, st.Key, string(data), generationTTL); err != nil {
		return err
	}

	return s.redis.SAdd(ctx, generationSetKey, st.Key)
}
