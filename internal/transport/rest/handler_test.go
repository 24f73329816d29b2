package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"estate-intake/internal/domain"
	"estate-intake/internal/repository"
	"estate-intake/internal/service"
	"estate-intake/internal/transport/auth"
)

type fakeApplications struct {
	submitted  []domain.ApplicationForm
	submitErr  error
	apps       []domain.Application
	pdfData    []byte
	pdfErr     error
	fileURL    string
	fileURLErr error

	listDeadline time.Time
	pdfDeadline  time.Time
}

func (f *fakeApplications) Submit(ctx context.Context, form domain.ApplicationForm, applicantCount int) (*domain.Application, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, form)
	return &domain.Application{ID: "uuid-1", ApplicationID: "EST-7KQ2MX"}, nil
}

func (f *fakeApplications) List(ctx context.Context, filter repository.ApplicationsFilter) ([]domain.Application, error) {
	f.listDeadline, _ = ctx.Deadline()
	return f.apps, nil
}

func (f *fakeApplications) Find(ctx context.Context, id string) (*domain.Application, error) {
	for i := range f.apps {
		if f.apps[i].ID == id || f.apps[i].ApplicationID == id {
			return &f.apps[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeApplications) GetPDF(ctx context.Context, id string) (*domain.Application, []byte, error) {
	f.pdfDeadline, _ = ctx.Deadline()
	if f.pdfErr != nil {
		return nil, nil, f.pdfErr
	}
	app, err := f.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return app, f.pdfData, nil
}

func (f *fakeApplications) GetFileURL(ctx context.Context, id string) (string, error) {
	if f.fileURLErr != nil {
		return "", f.fileURLErr
	}
	return f.fileURL, nil
}

type fakeExports struct {
	started bool
	fields  []string
}

func (f *fakeExports) StartApplicationsExport(ctx context.Context, selected []string, filter repository.ApplicationsFilter, userID int64) (string, error) {
	f.started = true
	f.fields = selected
	return "exports:abc", nil
}

type fakeStatuses struct {
	generations []interface{}
	byKey       map[string]interface{}
}

func (f *fakeStatuses) GetGenerations(ctx context.Context) ([]interface{}, error) {
	return f.generations, nil
}

func (f *fakeStatuses) GetGeneration(ctx context.Context, key string) (interface{}, error) {
	if v, ok := f.byKey[key]; ok {
		return v, nil
	}
	return nil, errors.New("generation not found")
}

type fakeAuth struct {
	loginErr error
	user     domain.User
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "token-123", &f.user, nil
}

func (f *fakeAuth) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return &f.user, nil
}

func testRouter(t *testing.T, apps *fakeApplications) (http.Handler, *fakeExports, *fakeStatuses) {
	t.Helper()

	manager, err := auth.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	exports := &fakeExports{}
	statuses := &fakeStatuses{byKey: map[string]interface{}{}}
	authSvc := &fakeAuth{user: domain.User{ID: 7, Username: "admin", Role: "admin"}}

	h := NewHandler(apps, exports, statuses, authSvc, time.Hour)
	return h.InitRouterWithAuth(auth.JWTMiddleware(manager)), exports, statuses
}

func adminToken(t *testing.T) string {
	t.Helper()
	manager, err := auth.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	token, err := manager.IssueToken(&domain.User{ID: 7, Username: "admin", Role: "admin"})
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestSubmitApplication(t *testing.T) {
	apps := &fakeApplications{}
	router, _, _ := testRouter(t, apps)

	body := `{
		"formData": {
			"applicants": [{"name": "Asha Verma"}],
			"bhkType": "3bhk"
		},
		"applicantCount": 1
	}`

	req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["application_id"] != "EST-7KQ2MX" {
		t.Errorf("application_id = %v", data["application_id"])
	}
	if len(apps.submitted) != 1 {
		t.Fatalf("service received %d submissions", len(apps.submitted))
	}
}

func TestSubmitApplication_BadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"broken json", `{`},
		{"missing bhk type", `{"formData": {"applicants": [{"name": "A"}]}, "applicantCount": 1}`},
		{"unknown bhk type", `{"formData": {"applicants": [{"name": "A"}], "bhkType": "9bhk"}, "applicantCount": 1}`},
		{"count too high", `{"formData": {"applicants": [{"name": "A"}], "bhkType": "3bhk"}, "applicantCount": 4}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _, _ := testRouter(t, &fakeApplications{})
			req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSubmitApplication_ServiceValidation(t *testing.T) {
	apps := &fakeApplications{submitErr: service.ErrNoApplicantData}
	router, _, _ := testRouter(t, apps)

	body := `{"formData": {"applicants": [{"name": " "}], "bhkType": "3bhk"}, "applicantCount": 1}`
	req := httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListApplications_RequiresAuth(t *testing.T) {
	router, _, _ := testRouter(t, &fakeApplications{})

	req := httptest.NewRequest(http.MethodGet, "/applications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListApplications(t *testing.T) {
	form := domain.ApplicationForm{
		Applicants: []domain.Applicant{{Name: "Asha Verma"}},
		TotalPrice: "6374025.00",
	}
	raw, _ := json.Marshal(form)

	apps := &fakeApplications{apps: []domain.Application{{
		ID:             "uuid-1",
		ApplicationID:  "EST-7KQ2MX",
		FormData:       string(raw),
		ApplicantCount: 1,
		BHKType:        "3bhk",
		PDFKey:         "est-7kq2mx.pdf",
	}}}
	router, _, _ := testRouter(t, apps)

	req := httptest.NewRequest(http.MethodGet, "/applications", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	items := resp.Data.([]interface{})
	if len(items) != 1 {
		t.Fatalf("%d items, want 1", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["applicant_name"] != "Asha Verma" {
		t.Errorf("applicant_name = %v", item["applicant_name"])
	}
	if item["pdf_ready"] != true {
		t.Errorf("pdf_ready = %v", item["pdf_ready"])
	}
}

func TestGetApplicationPDF(t *testing.T) {
	form := domain.ApplicationForm{Applicants: []domain.Applicant{{Name: "A"}}}
	raw, _ := json.Marshal(form)

	apps := &fakeApplications{
		apps: []domain.Application{{
			ID:            "uuid-1",
			ApplicationID: "EST-7KQ2MX",
			FormData:      string(raw),
		}},
		pdfData: []byte("%PDF-1.4 fake"),
	}
	router, _, _ := testRouter(t, apps)

	req := httptest.NewRequest(http.MethodGet, "/applications/EST-7KQ2MX/pdf", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "EST-7KQ2MX.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.Equal(rec.Body.Bytes(), apps.pdfData) {
		t.Error("body is not the generated pdf")
	}
}

func TestGetApplicationPDF_NotFound(t *testing.T) {
	router, _, _ := testRouter(t, &fakeApplications{})

	req := httptest.NewRequest(http.MethodGet, "/applications/EST-MISSIN/pdf", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// The pdf download may regenerate synchronously, so its request context
// must carry more deadline headroom than the standard 60s API window.
func TestGetApplicationPDF_DeadlineHeadroom(t *testing.T) {
	form := domain.ApplicationForm{Applicants: []domain.Applicant{{Name: "A"}}}
	raw, _ := json.Marshal(form)

	apps := &fakeApplications{
		apps: []domain.Application{{
			ID:            "uuid-1",
			ApplicationID: "EST-7KQ2MX",
			FormData:      string(raw),
		}},
		pdfData: []byte("%PDF-1.4 fake"),
	}
	router, _, _ := testRouter(t, apps)
	token := adminToken(t)

	req := httptest.NewRequest(http.MethodGet, "/applications/EST-7KQ2MX/pdf", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/applications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if apps.pdfDeadline.IsZero() || apps.listDeadline.IsZero() {
		t.Fatal("handlers did not receive deadlines")
	}
	if headroom := time.Until(apps.pdfDeadline); headroom <= 61*time.Second {
		t.Errorf("pdf deadline headroom = %v, want more than the standard window", headroom)
	}
	if headroom := time.Until(apps.listDeadline); headroom > 61*time.Second {
		t.Errorf("list deadline headroom = %v, want the standard window", headroom)
	}
}

func TestExportApplications(t *testing.T) {
	router, exports, _ := testRouter(t, &fakeApplications{})

	body := `{"fields": ["application_id", "total_price"], "bhk_type": "3bhk"}`
	req := httptest.NewRequest(http.MethodPost, "/export/applications", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if !exports.started {
		t.Error("export was not started")
	}
	if len(exports.fields) != 2 {
		t.Errorf("fields = %v", exports.fields)
	}
}

func TestExportApplications_RequiresFields(t *testing.T) {
	router, _, _ := testRouter(t, &fakeApplications{})

	req := httptest.NewRequest(http.MethodPost, "/export/applications", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetGeneration(t *testing.T) {
	router, _, statuses := testRouter(t, &fakeApplications{})
	statuses.byKey["generations:uuid-1"] = map[string]interface{}{"progress": 100.0}

	req := httptest.NewRequest(http.MethodGet, "/generations/uuid-1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/generations/unknown", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	router, _, _ := testRouter(t, &fakeApplications{})

	body := `{"username": "admin", "password": "s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["token"] != "token-123" {
		t.Errorf("token = %v", data["token"])
	}

	// session cookie accompanies the token
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie && c.Value == "token-123" {
			found = true
		}
	}
	if !found {
		t.Error("session cookie not set")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	manager, err := auth.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandler(&fakeApplications{}, &fakeExports{}, &fakeStatuses{}, &fakeAuth{loginErr: service.ErrInvalidCredentials}, time.Hour)
	router := h.InitRouterWithAuth(auth.JWTMiddleware(manager))

	body := `{"username": "admin", "password": "wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMe(t *testing.T) {
	router, _, _ := testRouter(t, &fakeApplications{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["username"] != "admin" {
		t.Errorf("username = %v", data["username"])
	}
}
