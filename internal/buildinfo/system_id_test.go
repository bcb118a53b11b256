package buildinfo

import "testing"

func TestGenerateSystemIDIsUniqueAndValid(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := GenerateSystemID()
		if err != nil {
			t.Fatalf("GenerateSystemID() error = %v", err)
		}
		if !IsValidSystemID(id) {
			t.Errorf("generated id %q failed its own validity check", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestIsValidSystemID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid uppercase", "A1B2-C3D4-E5F6", true},
		{"valid lowercase", "a1b2-c3d4-e5f6", true},
		{"valid mixed case", "A1b2-C3d4-E5f6", true},
		{"too short", "A1B2-C3D4", false},
		{"too long", "A1B2-C3D4-E5F6-G7H8", false},
		{"missing hyphens", "A1B2C3D4E5F6", false},
		{"wrong hyphen position", "A1B-2C3D4-E5F6", false},
		{"non-hex character", "A1B2-C3G4-E5F6", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidSystemID(tt.input); got != tt.want {
				t.Errorf("IsValidSystemID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
