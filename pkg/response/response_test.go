package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var body APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"id": "1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := decode(t, rec)
	if !body.Success || body.Error != nil {
		t.Errorf("body = %+v", body)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		write    func(http.ResponseWriter)
		wantCode int
		wantErr  string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "x") }, http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "x") }, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "x") }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "x") }, http.StatusForbidden, "FORBIDDEN"},
		{"gone", func(w http.ResponseWriter) { Gone(w, "LINK_EXPIRED", "x") }, http.StatusGone, "LINK_EXPIRED"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "x") }, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			body := decode(t, rec)
			if body.Success || body.Error == nil || body.Error.Code != tt.wantErr {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
		Kind string `validate:"oneof=a b"`
	}
	err := validator.New().Struct(input{Kind: "c"})

	rec := httptest.NewRecorder()
	ValidationError(rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body.Error.Code != "VALIDATION_ERROR" || len(body.Error.Fields) != 2 {
		t.Fatalf("error = %+v", body.Error)
	}
	if body.Error.Fields[0].Field != "Name" || body.Error.Fields[0].Message != "is required" {
		t.Errorf("first field = %+v", body.Error.Fields[0])
	}

	rec = httptest.NewRecorder()
	ValidationError(rec, errors.New("plain"))
	if body := decode(t, rec); body.Error.Code != "BAD_REQUEST" {
		t.Errorf("plain error code = %q", body.Error.Code)
	}
}
