package service

import (
	"encoding/json"
	"testing"
	"time"

	"estate-intake/internal/domain"
	"estate-intake/internal/repository"
)

func TestExportColumns_Values(t *testing.T) {
	form := domain.ApplicationForm{
		Applicants: []domain.Applicant{{
			Name:  "Asha Verma",
			Phone: "9876543210",
			Email: "asha@example.com",
		}},
		BHKType:    "3bhk",
		Tower:      "B",
		TotalPrice: "6374025.00",
	}
	raw, err := json.Marshal(form)
	if err != nil {
		t.Fatal(err)
	}

	row := exportRow{
		app: domain.Application{
			ApplicationID:  "EST-7KQ2MX",
			ApplicantCount: 1,
			BHKType:        "3bhk",
			PDFKey:         "est-7kq2mx.pdf",
			FormData:       string(raw),
			CreatedAt:      time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		},
		form: form,
	}

	checks := map[string]any{
		"application_id": "EST-7KQ2MX",
		"applicant_name": "Asha Verma",
		"bhk_type":       "3 BHK",
		"tower":          "B",
		"total_price":    "6374025.00",
		"phone":          "9876543210",
		"email":          "asha@example.com",
		"pdf_ready":      true,
		"created_at":     "2026-08-31 10:00:00",
	}

	for key, want := range checks {
		col, ok := exportColumns[key]
		if !ok {
			t.Fatalf("column %q not registered", key)
		}
		if got := col.Value(row); got != want {
			t.Errorf("column %q = %v, want %v", key, got, want)
		}
	}
}

func TestBuildFiltersMap(t *testing.T) {
	bhk := "3bhk"
	f := repository.ApplicationsFilter{BHKType: &bhk}
	fields := []string{"application_id", "total_price"}

	m := buildFiltersMap(f, fields)

	if m["bhk_type"] != "3bhk" {
		t.Errorf("bhk_type = %v", m["bhk_type"])
	}
	if m["applicant_count"] != nil {
		t.Errorf("applicant_count = %v", m["applicant_count"])
	}
	if m["search"] != nil {
		t.Errorf("search = %v", m["search"])
	}
	got, ok := m["fields"].([]string)
	if !ok || len(got) != 2 {
		t.Errorf("fields = %v", m["fields"])
	}
}
