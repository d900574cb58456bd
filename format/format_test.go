package format

import (
	"errors"
	"testing"
)

func TestCleanCEP(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "formatted", input: "88304-053", want: "88304053"},
		{name: "digits only", input: "88304053", want: "88304053"},
		{name: "with dots", input: "88.304-053", want: "88304053"},
		{name: "too short", input: "8830405", wantErr: true},
		{name: "too long", input: "883040531", wantErr: true},
		{name: "letters", input: "ABCDE-FGH", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanCEP(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CleanCEP(%q) expected error, got %q", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidCEP) {
					t.Errorf("error = %v, want ErrInvalidCEP", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CleanCEP(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("CleanCEP(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCEP(t *testing.T) {
	got, err := FormatCEP("88304053")
	if err != nil {
		t.Fatalf("FormatCEP: %v", err)
	}
	if got != "88304-053" {
		t.Errorf("FormatCEP = %q, want 88304-053", got)
	}
}

func TestCleanCNPJ(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "formatted valid", input: "11.222.333/0001-81", want: "11222333000181"},
		{name: "digits valid", input: "11222333000181", want: "11222333000181"},
		{name: "bad check digit", input: "11222333000182", wantErr: true},
		{name: "all same digits", input: "11111111111111", wantErr: true},
		{name: "too short", input: "1122233300018", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanCNPJ(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CleanCNPJ(%q) expected error, got %q", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidCNPJ) {
					t.Errorf("error = %v, want ErrInvalidCNPJ", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CleanCNPJ(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("CleanCNPJ(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCNPJ(t *testing.T) {
	got, err := FormatCNPJ("11222333000181")
	if err != nil {
		t.Fatalf("FormatCNPJ: %v", err)
	}
	if got != "11.222.333/0001-81" {
		t.Errorf("FormatCNPJ = %q, want 11.222.333/0001-81", got)
	}
}
