package validator_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ghuser/todoreminder/pkg/httpx"
	pkgvalidator "github.com/ghuser/todoreminder/pkg/validator"
)

type sampleStruct struct {
	UserID string `validate:"required,uuid"`
	Title  string `validate:"required,notblank,max=10"`
	Email  string `validate:"omitempty,email"`
}

const validUUID = "550e8400-e29b-41d4-a716-446655440000"

func TestValidate_valid(t *testing.T) {
	s := sampleStruct{UserID: validUUID, Title: "milk"}
	if err := pkgvalidator.Validate(&s); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input sampleStruct
		field string
		want  string
	}{
		{"required", sampleStruct{Title: "milk"}, "UserID", "This field is required"},
		{"uuid", sampleStruct{UserID: "not-a-uuid", Title: "milk"}, "UserID", "Must be a valid UUID"},
		{"max", sampleStruct{UserID: validUUID, Title: "12345678901"}, "Title", "Maximum length is 10"},
		{"notblank", sampleStruct{UserID: validUUID, Title: "   "}, "Title", "Must not be blank"},
		{"email", sampleStruct{UserID: validUUID, Title: "milk", Email: "nope"}, "Email", "Must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&tt.input))
			if m[tt.field] != tt.want {
				t.Errorf("%s: got %q, want %q (all: %v)", tt.field, m[tt.field], tt.want, m)
			}
		})
	}
}

func TestFormatValidationErrors_future(t *testing.T) {
	type reminder struct {
		At time.Time `validate:"future"`
	}
	if err := pkgvalidator.Validate(&reminder{At: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("future time rejected: %v", err)
	}
	m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&reminder{At: time.Now().Add(-time.Second)}))
	if m["At"] != "Must be in the future" {
		t.Errorf("unexpected At message: %q", m["At"])
	}
}

func TestFormatValidationErrors_domainTags(t *testing.T) {
	type linkReq struct {
		Title  string `json:"title"   validate:"printable"`
		LineID string `json:"line_id" validate:"omitempty,startswith=U"`
	}
	m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&linkReq{Title: "milk\x07", LineID: "C123"}))
	if m["title"] != "Must not contain control characters" {
		t.Errorf("unexpected title message: %q", m["title"])
	}
	if m["line_id"] != `Must start with "U"` {
		t.Errorf("unexpected line_id message: %q", m["line_id"])
	}
	if err := pkgvalidator.Validate(&linkReq{Title: "milk", LineID: "U1"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	m := pkgvalidator.FormatValidationErrors(http.ErrNoCookie)
	if len(m) != 0 {
		t.Errorf("expected empty map for non-validation error, got %v", m)
	}
}

// --- ValidateRequest ---

type todoReq struct {
	Title    string   `json:"title"    validate:"required,notblank,max=255"`
	Latitude *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
}

func TestValidateRequest_valid(t *testing.T) {
	body := `{"title":"Buy milk","latitude":37.5665}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	req, ok := pkgvalidator.ValidateRequest[todoReq](w, r)
	if !ok {
		t.Fatalf("expected ok=true, got false. Response: %s", w.Body.String())
	}
	if req.Title != "Buy milk" || req.Latitude == nil || *req.Latitude != 37.5665 {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestValidateRequest_errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{"malformed json", "{bad json", http.StatusBadRequest, "Invalid JSON"},
		{"unknown field", `{"title":"x","priority":1}`, http.StatusBadRequest, "Invalid JSON"},
		{"missing title", `{}`, http.StatusUnprocessableEntity, "Validation failed"},
		{"latitude out of range", `{"title":"x","latitude":91}`, http.StatusUnprocessableEntity, "latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			if _, ok := pkgvalidator.ValidateRequest[todoReq](w, r); ok {
				t.Fatal("expected ok=false")
			}
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("expected %q in body, got: %s", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestValidateRequest_bodyTooLarge(t *testing.T) {
	h := httpx.RequestBodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := pkgvalidator.ValidateRequest[todoReq](w, r); ok {
			t.Fatal("expected ok=false")
		}
	}))
	body := `{"title":"` + strings.Repeat("a", 64) + `"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}
