package taxonomy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestDefaultTemplateIsValid(t *testing.T) {
	tpl, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(tpl.Severities) != 2 {
		t.Fatalf("expected 2 severities, got %d", len(tpl.Severities))
	}
	if _, ok := tpl.SeverityByKey("major"); !ok {
		t.Fatalf("expected major severity")
	}

	nt, ok := tpl.FindSubtype("non_translation")
	if !ok {
		t.Fatalf("expected non_translation subtype")
	}
	if !nt.OverrideAllErrors {
		t.Fatalf("non_translation must override all errors")
	}
	if nt.ForcedSeverity != "major" {
		t.Fatalf("non_translation must force major, got %q", nt.ForcedSeverity)
	}

	src, ok := tpl.FindSubtype("source_error")
	if !ok {
		t.Fatalf("expected source_error subtype")
	}
	if !src.SourceSideOnly || !src.NeedsNote {
		t.Fatalf("source_error must be source-side only and require a note, got %+v", src)
	}
}

func TestValidateRejectsBrokenTemplates(t *testing.T) {
	base := func() Template {
		tpl, err := Default()
		if err != nil {
			t.Fatalf("Default: %v", err)
		}
		return tpl
	}

	cases := []struct {
		name    string
		mutate  func(*Template)
		wantErr string
	}{
		{
			name:    "no severities",
			mutate:  func(tpl *Template) { tpl.Severities = nil },
			wantErr: "severity",
		},
		{
			name: "duplicate severity key",
			mutate: func(tpl *Template) {
				tpl.Severities = append(tpl.Severities, tpl.Severities[0])
			},
			wantErr: "duplicate severity",
		},
		{
			name: "duplicate subtype key",
			mutate: func(tpl *Template) {
				tpl.Categories[0].Subtypes = append(tpl.Categories[0].Subtypes, tpl.Categories[1].Subtypes[0])
			},
			wantErr: "duplicate subtype",
		},
		{
			name: "forced severity unknown",
			mutate: func(tpl *Template) {
				tpl.Categories[0].Subtypes[0].ForcedSeverity = "catastrophic"
			},
			wantErr: "unknown severity",
		},
		{
			name: "non_translation without override",
			mutate: func(tpl *Template) {
				for ci, c := range tpl.Categories {
					for si, s := range c.Subtypes {
						if s.Key == "non_translation" {
							tpl.Categories[ci].Subtypes[si].OverrideAllErrors = false
						}
					}
				}
			},
			wantErr: "override_all_errors",
		},
		{
			name: "non_translation forcing minor",
			mutate: func(tpl *Template) {
				for ci, c := range tpl.Categories {
					for si, s := range c.Subtypes {
						if s.Key == "non_translation" {
							tpl.Categories[ci].Subtypes[si].ForcedSeverity = "minor"
						}
					}
				}
			},
			wantErr: "major",
		},
		{
			name: "missing description",
			mutate: func(tpl *Template) {
				tpl.Categories[0].Subtypes[0].Description = ""
			},
			wantErr: "description",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := base()
			tc.mutate(&tpl)
			err := tpl.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/template.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestHandlerServesTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tpl, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	r := gin.New()
	NewHandler(tpl).RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/template", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got Template
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Categories) != len(tpl.Categories) {
		t.Fatalf("expected %d categories, got %d", len(tpl.Categories), len(got.Categories))
	}
}
