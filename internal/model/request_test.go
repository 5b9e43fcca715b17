package model

import (
	"errors"
	"testing"
	"time"
)

// validRequest returns a request that passes validation. Tests mutate one
// field at a time.
func validRequest() CrawlRequest {
	return CrawlRequest{
		SeedURL: "http://example.com/",
		Fields: []Field{
			{Name: "title", Expression: "title", Kind: SelectorCSS},
		},
		MaxPages: 10,
		MaxDepth: 2,
		Workers:  5,
		Timeout:  5 * time.Second,
	}
}

func TestCrawlRequestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid request passes", func(t *testing.T) {
		t.Parallel()

		req := validRequest()
		if err := req.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*CrawlRequest)
		wantErr error
	}{
		{
			name:    "empty seed URL",
			mutate:  func(r *CrawlRequest) { r.SeedURL = "" },
			wantErr: ErrInvalidSeedURL,
		},
		{
			name:    "relative seed URL",
			mutate:  func(r *CrawlRequest) { r.SeedURL = "/just/a/path" },
			wantErr: ErrInvalidSeedURL,
		},
		{
			name:    "non-http scheme",
			mutate:  func(r *CrawlRequest) { r.SeedURL = "ftp://example.com/" },
			wantErr: ErrInvalidSeedURL,
		},
		{
			name:    "no fields",
			mutate:  func(r *CrawlRequest) { r.Fields = nil },
			wantErr: ErrNoFields,
		},
		{
			name:    "zero max pages",
			mutate:  func(r *CrawlRequest) { r.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "negative max depth",
			mutate:  func(r *CrawlRequest) { r.MaxDepth = -1 },
			wantErr: ErrInvalidMaxDepth,
		},
		{
			name:    "zero workers",
			mutate:  func(r *CrawlRequest) { r.Workers = 0 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "zero timeout",
			mutate:  func(r *CrawlRequest) { r.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative retries",
			mutate:  func(r *CrawlRequest) { r.Retries = -1 },
			wantErr: ErrInvalidRetries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := validRequest()
			tt.mutate(&req)
			if err := req.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("field with bad kind", func(t *testing.T) {
		t.Parallel()

		req := validRequest()
		req.Fields[0].Kind = "regex"
		if err := req.Validate(); err == nil {
			t.Error("expected error for unknown selector kind")
		}
	})

	t.Run("field with empty name", func(t *testing.T) {
		t.Parallel()

		req := validRequest()
		req.Fields[0].Name = ""
		if err := req.Validate(); err == nil {
			t.Error("expected error for empty field name")
		}
	})
}

func TestParseSelectorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    SelectorKind
		wantErr bool
	}{
		{"css", SelectorCSS, false},
		{"xpath", SelectorXPath, false},
		{"CSS", "", true},
		{"regex", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSelectorKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSelectorKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSelectorKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFieldNames(t *testing.T) {
	t.Parallel()

	req := CrawlRequest{
		Fields: []Field{
			{Name: "title", Expression: "title", Kind: SelectorCSS},
			{Name: "heading", Expression: "//h1", Kind: SelectorXPath},
		},
	}

	names := req.FieldNames()
	if len(names) != 2 || names[0] != "title" || names[1] != "heading" {
		t.Errorf("unexpected field names: %v", names)
	}
}
