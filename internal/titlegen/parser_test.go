package titlegen

import (
	"strings"
	"testing"
)

const validResponse = `{
  "titles": [
    {"original": "my video", "improved": "5 Secrets Behind My Video", "rationale": "numbers and curiosity"},
    {"original": "another one", "improved": "Why Another One Changes Everything", "rationale": "stakes and clarity"}
  ]
}`

func TestParseResponseValid(t *testing.T) {
	got, err := parseResponse(validResponse, 2)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d titles, want 2", len(got))
	}
	if got[0].Improved != "5 Secrets Behind My Video" {
		t.Errorf("improved[0] = %q", got[0].Improved)
	}
	if got[1].Rationale != "stakes and clarity" {
		t.Errorf("rationale[1] = %q", got[1].Rationale)
	}
}

func TestParseResponseStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	got, err := parseResponse(fenced, 2)
	if err != nil {
		t.Fatalf("parseResponse() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d titles, want 2", len(got))
	}
}

func TestParseResponseRejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		errPart string
	}{
		{
			name:    "Not JSON",
			raw:     "Here are your improved titles:\n1. ...",
			want:    2,
			errPart: "not valid JSON",
		},
		{
			name:    "Count mismatch is rejected, not truncated",
			raw:     validResponse,
			want:    5,
			errPart: "returned 2 titles, expected 5",
		},
		{
			name:    "Empty titles array",
			raw:     `{"titles": []}`,
			want:    2,
			errPart: "returned 0 titles",
		},
		{
			name:    "Empty improved title",
			raw:     `{"titles": [{"original": "a", "improved": "  ", "rationale": "r"}]}`,
			want:    1,
			errPart: "empty improved title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse(tt.raw, tt.want)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errPart)
			}
		})
	}
}

func TestStripJSONFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"No fence", `{"a": 1}`, `{"a": 1}`},
		{"Json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Fence without newline", "```json", "```json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripJSONFence(tt.in); got != tt.want {
				t.Errorf("stripJSONFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
