package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"estate-intake/internal/domain"
	"estate-intake/internal/repository"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type SubmitRequest struct {
	Form           domain.ApplicationForm `json:"formData"`
	ApplicantCount int                    `json:"applicantCount"`
}

func ValidateSubmitRequest(r *http.Request) (*SubmitRequest, error) {
	var req SubmitRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, &ValidationError{Field: "formData", Message: "invalid JSON body"}
	}

	if req.ApplicantCount == 0 {
		// older intake clients send only the applicants array
		req.ApplicantCount = len(req.Form.Applicants)
	}
	if req.ApplicantCount < 1 || req.ApplicantCount > domain.MaxApplicants {
		return nil, &ValidationError{Field: "applicantCount", Message: "applicantCount must be between 1 and 3"}
	}

	if req.Form.BHKType == "" {
		return nil, &ValidationError{Field: "bhkType", Message: "bhkType is required"}
	}
	if _, ok := domain.UnitPresets[req.Form.BHKType]; !ok {
		return nil, &ValidationError{Field: "bhkType", Message: "bhkType must be one of: 3bhk, 4bhk"}
	}

	return &req, nil
}

type ExportRequest struct {
	Fields         []string `json:"fields"`
	BHKType        *string  `json:"bhk_type,omitempty"`
	ApplicantCount *int     `json:"applicant_count,omitempty"`
	Search         *string  `json:"search,omitempty"`
}

type rawExportRequest struct {
	Fields         []string    `json:"fields"`
	BHKType        interface{} `json:"bhk_type"`
	ApplicantCount interface{} `json:"applicant_count"`
	Search         interface{} `json:"search"`
}

func ValidateExportRequest(r *http.Request) (*ExportRequest, error) {
	var raw rawExportRequest

	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	if len(raw.Fields) == 0 {
		return nil, &ValidationError{Field: "fields", Message: "fields is required and must be an array"}
	}

	bhkType, err := toStringPtr(raw.BHKType)
	if err != nil {
		return nil, &ValidationError{Field: "bhk_type", Message: "bhk_type must be string or empty"}
	}

	applicantCount, err := toIntPtr(raw.ApplicantCount)
	if err != nil {
		return nil, &ValidationError{Field: "applicant_count", Message: "applicant_count must be integer or empty"}
	}

	search, err := toStringPtr(raw.Search)
	if err != nil {
		return nil, &ValidationError{Field: "search", Message: "search must be string or empty"}
	}

	return &ExportRequest{
		Fields:         raw.Fields,
		BHKType:        bhkType,
		ApplicantCount: applicantCount,
		Search:         search,
	}, nil
}

func (r *ExportRequest) ToRepositoryFilter() repository.ApplicationsFilter {
	return repository.ApplicationsFilter{
		BHKType:        r.BHKType,
		ApplicantCount: r.ApplicantCount,
		Search:         r.Search,
	}
}

// ListFilterFromQuery builds the listing filter from query parameters.
func ListFilterFromQuery(r *http.Request) repository.ApplicationsFilter {
	f := repository.ApplicationsFilter{}

	if v := r.URL.Query().Get("bhk_type"); v != "" {
		f.BHKType = &v
	}
	if v := r.URL.Query().Get("applicant_count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.ApplicantCount = &n
		}
	}
	if v := r.URL.Query().Get("search"); v != "" {
		f.Search = &v
	}

	return f
}

func toStringPtr(v interface{}) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return &t, nil
	case float64:
		s := strconv.FormatInt(int64(t), 10)
		return &s, nil
	default:
		return nil, &ValidationError{Message: "invalid type for string field"}
	}
}

func toIntPtr(v interface{}) (*int, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		i := int(t)
		return &i, nil
	case string:
		if t == "" {
			return nil, nil
		}
		i, err := strconv.Atoi(t)
		if err != nil {
			return nil, err
		}
		return &i, nil
	default:
		return nil, &ValidationError{Message: "invalid type for int field"}
	}
}
