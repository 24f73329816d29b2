package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"estate-intake/internal/clients"
	"estate-intake/internal/domain"
	"estate-intake/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ExportStatus is the redis-cached progress record for one XLSX export.
type ExportStatus struct {
	Key      string    `json:"key"`
	Type     string    `json:"type"`
	UserID   int64     `json:"user_id"`
	Filters  any       `json:"filters"`
	Progress float64   `json:"progress"`
	FileURL  *string   `json:"file_url"`
	Created  time.Time `json:"created_at"`
}

const (
	exportSetKey = "export_ids"
	exportTTL    = 20 * time.Minute
)

// exportRow pairs a stored application with its decoded form so column
// values can reach both.
type exportRow struct {
	app  domain.Application
	form domain.ApplicationForm
}

type ExportColumn struct {
	Header string
	Value  func(r exportRow) any
}

var exportColumns = map[string]ExportColumn{
	"application_id": {
		Header: "Application ID",
		Value:  func(r exportRow) any { return r.app.ApplicationID },
	},
	"created_at": {
		Header: "Submitted",
		Value:  func(r exportRow) any { return r.app.CreatedAt.Format("2006-01-02 15:04:05") },
	},
	"applicant_name": {
		Header: "Applicant",
		Value:  func(r exportRow) any { return r.form.DisplayName() },
	},
	"applicant_count": {
		Header: "Applicants",
		Value:  func(r exportRow) any { return r.app.ApplicantCount },
	},
	"bhk_type": {
		Header: "Unit Type",
		Value:  func(r exportRow) any { return r.form.BHKDisplay() },
	},
	"tower": {
		Header: "Tower",
		Value:  func(r exportRow) any { return r.form.Tower },
	},
	"apartment_number": {
		Header: "Apartment",
		Value:  func(r exportRow) any { return r.form.ApartmentNumber },
	},
	"floor": {
		Header: "Floor",
		Value:  func(r exportRow) any { return r.form.Floor },
	},
	"carpet_area_sqft": {
		Header: "Carpet Area (sq.ft)",
		Value:  func(r exportRow) any { return r.form.CarpetAreaSqft },
	},
	"unit_price": {
		Header: "Rate per sq.mtr",
		Value:  func(r exportRow) any { return r.form.UnitPrice },
	},
	"base_price": {
		Header: "Base Price",
		Value:  func(r exportRow) any { return r.form.BasePrice },
	},
	"gst_amount": {
		Header: "GST (5%)",
		Value:  func(r exportRow) any { return r.form.GSTAmount },
	},
	"total_price": {
		Header: "Total Price",
		Value:  func(r exportRow) any { return r.form.TotalPrice },
	},
	"phone": {
		Header: "Phone",
		Value:  func(r exportRow) any { return r.form.Applicant(domain.SlotFirst).Phone },
	},
	"email": {
		Header: "Email",
		Value:  func(r exportRow) any { return r.form.Applicant(domain.SlotFirst).Email },
	},
	"pdf_ready": {
		Header: "PDF Ready",
		Value:  func(r exportRow) any { return r.app.PDFKey != "" },
	},
}

type ExportService struct {
	repo  ApplicationRepository
	redis *clients.RedisClient
	s3    *clients.S3Client
	ws    *clients.WebSocketClient
}

func NewExportService(
	repo ApplicationRepository,
	redis *clients.RedisClient,
	s3 *clients.S3Client,
	ws *clients.WebSocketClient,
) *ExportService {
	return &ExportService{
		repo:  repo,
		redis: redis,
		s3:    s3,
		ws:    ws,
	}
}

func (s *ExportService) saveExportStatus(ctx context.Context, st *ExportStatus) error {
	if s.redis == nil {
		return nil
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, st.Key, string(data), exportTTL); err != nil {
		return err
	}

	return s.redis.SAdd(ctx, exportSetKey, st.Key)
}

func (s *ExportService) StartApplicationsExport(
	ctx context.Context,
	selected []string,
	filter repository.ApplicationsFilter,
	userID int64,
) (string, error) {
	if len(selected) == 0 {
		selected = []string{
			"application_id",
			"applicant_name",
			"bhk_type",
			"total_price",
			"created_at",
		}
	}

	exportID := fmt.Sprintf("exports:%s", uuid.NewString())
	now := time.Now()

	status := &ExportStatus{
		Key:      exportID,
		Type:     "applications",
		UserID:   userID,
		Filters:  buildFiltersMap(filter, selected),
		Progress: 0,
		FileURL:  nil,
		Created:  now,
	}

	_ = s.saveExportStatus(ctx, status)

	go s.runApplicationsExport(context.Background(), exportID, selected, filter, userID, now)

	return exportID, nil
}

func (s *ExportService) runApplicationsExport(
	ctx context.Context,
	exportID string,
	selected []string,
	filter repository.ApplicationsFilter,
	userID int64,
	createdAt time.Time,
) {
	status := &ExportStatus{
		Key:      exportID,
		Type:     "applications",
		UserID:   userID,
		Filters:  buildFiltersMap(filter, selected),
		Progress: 0,
		FileURL:  nil,
		Created:  createdAt,
	}

	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return
	}

	var cols []ExportColumn
	for _, key := range selected {
		col, ok := exportColumns[key]
		if !ok {
			continue
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return
	}

	f := excelize.NewFile()
	sheet := "Applications"
	f.SetSheetName(f.GetSheetName(0), sheet)

	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: fmt.Sprintf("user_%d", userID),
	})

	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.Header)
	}

	total := len(apps)
	if total > 0 {
		chunkSize := 500
		rowIdx := 2

		for i, app := range apps {
			row := exportRow{app: app}
			// skip rows whose stored form no longer decodes
			if err := json.Unmarshal([]byte(app.FormData), &row.form); err != nil {
				continue
			}

			for colIdx, col := range cols {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
				_ = f.SetCellValue(sheet, cell, col.Value(row))
			}
			rowIdx++

			if (i+1)%chunkSize == 0 || i == total-1 {
				raw := float64(i+1) / float64(total) * 100.0
				progress := math.Round(raw)
				// reserve 100% for when the file URL is ready
				if progress >= 100 {
					progress = 95
				}

				status.Progress = progress
				_ = s.saveExportStatus(ctx, status)

				if s.ws != nil {
					_ = s.ws.NotifyGenerationProgress(ctx, exportID, progress, "exporting")
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return
	}
	data := buf.Bytes()

	fileName := fmt.Sprintf("applications_%s.xlsx", time.Now().Format("20060102_150405"))

	if s.s3 != nil {
		status.Progress = 95
		_ = s.saveExportStatus(ctx, status)

		key, err := s.s3.UploadXLSX(ctx, fileName, data)
		if err == nil {
			url, err2 := s.s3.GetTemporaryURL(ctx, key, 48*time.Hour)
			if err2 == nil {
				status.FileURL = &url
				status.Progress = 100

				_ = s.saveExportStatus(ctx, status)

				if s.ws != nil {
					_ = s.ws.NotifyGenerationComplete(ctx, exportID, key)
				}
			}
		}
	}
}

func buildFiltersMap(f repository.ApplicationsFilter, fields []string) map[string]interface{} {
	m := map[string]interface{}{}
	if f.BHKType != nil {
		m["bhk_type"] = *f.BHKType
	} else {
		m["bhk_type"] = nil
	}
	if f.ApplicantCount != nil {
		m["applicant_count"] = *f.ApplicantCount
	} else {
		m["applicant_count"] = nil
	}
	if f.Search != nil {
		m["search"] = *f.Search
	} else {
		m["search"] = nil
	}
	m["fields"] = fields
	return m
}
