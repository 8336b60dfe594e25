package detector

import "testing"

func TestLanguageName(t *testing.T) {
	d := New()

	tests := []struct {
		text string
		want string
	}{
		{"该学生独立搭建了分布式缓存，并在调试竞态条件的过程中表现出极强的毅力。", "Chinese"},
		{"The student built a distributed cache and showed remarkable persistence while debugging a race condition.", "English"},
	}
	for _, tt := range tests {
		got, ok := d.LanguageName(tt.text)
		if !ok || got != tt.want {
			t.Errorf("LanguageName(%q) = %q, %v; want %q", tt.text, got, ok, tt.want)
		}
	}
}

func TestLanguageName_Blank(t *testing.T) {
	d := New()
	if name, ok := d.LanguageName("   "); ok || name != "" {
		t.Errorf("expected no language for blank text, got %q", name)
	}
}
