package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxApplicants is the number of applicant slots on the printed form.
const MaxApplicants = 3

// UnitPreset carries the server-authoritative carpet area and rate for
// one unit category. Client-supplied prices are never trusted; the
// preset is the single source of truth.
type UnitPreset struct {
	CarpetAreaSqm  float64
	CarpetAreaSqft float64
	UnitPrice      float64 // rupees per square meter
}

// SqmToSqft is the conversion factor used on the printed form
// (1 feet = 304.8 mm).
const SqmToSqft = 10.764

// GSTRate is applied on top of unit price x carpet area.
const GSTRate = 0.05

// UnitPresets maps BHK type to its preset area and rate.
var UnitPresets = map[string]UnitPreset{
	"3bhk": {CarpetAreaSqm: 121.41, CarpetAreaSqft: 1306.77, UnitPrice: 50000},
	"4bhk": {CarpetAreaSqm: 167.23, CarpetAreaSqft: 1800.04, UnitPrice: 60000},
}

// ApplicationForm is the full form payload for one submission.
// Slot 2 may be an empty placeholder when slot 3 is filled directly
// ("skip second applicant" mode).
type ApplicationForm struct {
	Applicants []Applicant `json:"applicants"`

	BHKType         string `json:"bhkType"`
	Tower           string `json:"tower"`
	ApartmentNumber string `json:"apartmentNumber"`
	Floor           string `json:"floor"`

	CarpetAreaSqm  string `json:"carpetAreaSqm"`
	CarpetAreaSqft string `json:"carpetAreaSqft"`
	UnitPrice      string `json:"unitPrice"`
	BasePrice      string `json:"basePrice"`
	GSTAmount      string `json:"gstAmount"`
	TotalPrice     string `json:"totalPrice"`

	DeclarationDate  string `json:"declarationDate"`
	DeclarationPlace string `json:"declarationPlace"`
}

// Applicant returns the record for a 1-indexed slot, or a zero value
// when the slot was not submitted.
func (f ApplicationForm) Applicant(slot int) Applicant {
	idx := slot - 1
	if idx < 0 || idx >= len(f.Applicants) {
		return Applicant{}
	}
	return f.Applicants[idx]
}

// HasAnySignature reports whether any submitted slot carries a signature.
func (f ApplicationForm) HasAnySignature() bool {
	for _, a := range f.Applicants {
		if a.HasSignature() {
			return true
		}
	}
	return false
}

// BHKDisplay renders the unit category the way the printed form shows it.
func (f ApplicationForm) BHKDisplay() string {
	switch f.BHKType {
	case "3bhk":
		return "3 BHK"
	case "4bhk":
		return "4 BHK"
	}
	return ""
}

// DisplayName resolves the name shown on the admin listing:
// first applicant name, then first organization name, then the third
// slot's name and organization name, then "N/A".
func (f ApplicationForm) DisplayName() string {
	first := f.Applicant(SlotFirst)
	if first.HasName() {
		return strings.TrimSpace(first.Name)
	}
	if n := strings.TrimSpace(first.Organization.Name); n != "" {
		return n
	}
	third := f.Applicant(SlotThird)
	if third.HasName() {
		return strings.TrimSpace(third.Name)
	}
	if n := strings.TrimSpace(third.Organization.Name); n != "" {
		return n
	}
	return "N/A"
}

// Reprice overwrites area and price fields from the unit preset for the
// selected BHK type. total = unitPrice*area + 5% GST on that product.
// Unknown BHK types leave the form untouched and report false.
func (f *ApplicationForm) Reprice() bool {
	preset, ok := UnitPresets[f.BHKType]
	if !ok {
		return false
	}

	f.CarpetAreaSqm = trimZeros(preset.CarpetAreaSqm)
	f.CarpetAreaSqft = trimZeros(preset.CarpetAreaSqft)
	f.UnitPrice = trimZeros(preset.UnitPrice)

	base := preset.UnitPrice * preset.CarpetAreaSqm
	gst := base * GSTRate
	f.BasePrice = fmt.Sprintf("%.2f", base)
	f.GSTAmount = fmt.Sprintf("%.2f", gst)
	f.TotalPrice = fmt.Sprintf("%.2f", base+gst)
	return true
}

func trimZeros(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var dateParts = regexp.MustCompile(`^(\d{1,4})[/-](\d{1,2})[/-](\d{1,4})$`)

// NormalizeDate renders a declaration date as DD-MM-YYYY. Accepted
// inputs: YYYY-MM-DD (the date picker's format), slash- or
// dash-delimited day-first dates with 2- or 4-digit years, and bare
// 6- or 8-digit strings (DDMMYY / DDMMYYYY). Anything else is
// returned unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// ISO input is the common case: the date picker submits YYYY-MM-DD.
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("02-01-2006")
	}

	if m := dateParts.FindStringSubmatch(s); m != nil {
		p1, p2, p3 := m[1], m[2], m[3]
		var day, month, year string
		if len(p1) == 4 {
			year, month, day = p1, p2, p3
		} else {
			day, month, year = p1, p2, p3
		}
		if len(year) == 2 {
			year = "20" + year
		}
		return pad2(day) + "-" + pad2(month) + "-" + year
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	switch len(digits) {
	case 6:
		return digits[0:2] + "-" + digits[2:4] + "-20" + digits[4:6]
	case 8:
		return digits[0:2] + "-" + digits[2:4] + "-" + digits[4:8]
	}

	return s
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
