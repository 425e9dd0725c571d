package middleware

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidatePhotoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{"valid uuid", "550e8400-e29b-41d4-a716-446655440000", "550e8400-e29b-41d4-a716-446655440000", false},
		{"valid with underscore", "abc-def_123", "abc-def_123", false},
		{"trims whitespace", "  abc  ", "abc", false},
		{"empty", "", "", true},
		{"too long", strings.Repeat("a", 65), "", true},
		{"exactly 64", strings.Repeat("a", 64), strings.Repeat("a", 64), false},
		{"invalid chars", "abc def", "", true},
		{"sql injection", "a'; DROP--", "", true},
		{"unicode", "abcédef", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidatePhotoID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.wantID {
				t.Errorf("got %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestValidateVoterID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid sha256", "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2", "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2", false},
		{"uppercase normalized", "ABCD1234", "abcd1234", false},
		{"empty", "", "", true},
		{"too long 65", "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2a", "", true},
		{"non-hex chars", "xyz123", "", true},
		{"sql injection", "abc'; DROP--", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateVoterID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateRating(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"minimum", 0, false},
		{"scale midpoint", 2, false},
		{"maximum", 3, false},
		{"below scale", -1, true},
		{"above scale", 4, true},
		{"far above scale", 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := ValidateRating("attraction", tt.value)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error for %d, got none", tt.value)
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error for %d: %s", tt.value, errMsg)
			}
		})
	}
}

func TestValidateTags(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []string
		wantErr bool
	}{
		{"nil tags", nil, []string{}, false},
		{"valid tags", []string{"great_smile", "good_lighting"}, []string{"great_smile", "good_lighting"}, false},
		{"normalizes case and spacing", []string{" Great_Smile "}, []string{"great_smile"}, false},
		{"drops empty entries", []string{"ok", ""}, []string{"ok"}, false},
		{"rejects invalid chars", []string{"bad tag!"}, nil, true},
		{"rejects overlong tag", []string{strings.Repeat("x", 33)}, nil, true},
		{"rejects too many tags", make([]string, 11), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateTags(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if !tt.wantErr && len(got) != len(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateNote(t *testing.T) {
	if got := ValidateNote("  nice photo  "); got != "nice photo" {
		t.Errorf("trim failed: got %q", got)
	}
	long := strings.Repeat("x", 600)
	if got := ValidateNote(long); len(got) != MaxNoteLen {
		t.Errorf("truncation failed: got len %d, want %d", len(got), MaxNoteLen)
	}
}

func TestValidateNote_TruncatesAtRuneBoundary(t *testing.T) {
	// 499 ASCII bytes followed by a two-byte rune straddling the limit.
	note := strings.Repeat("x", MaxNoteLen-1) + "é"
	got := ValidateNote(note)
	if !utf8.ValidString(got) {
		t.Errorf("truncated note is not valid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) != MaxNoteLen-1 {
		t.Errorf("got len %d, want %d (whole rune dropped)", len(got), MaxNoteLen-1)
	}

	// Multi-byte content well within the limit is untouched.
	short := strings.Repeat("é", 10)
	if got := ValidateNote(short); got != short {
		t.Errorf("short multi-byte note changed: got %q", got)
	}
}
