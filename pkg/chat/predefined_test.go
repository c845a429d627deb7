package chat

import "testing"

func TestPredefined_Match(t *testing.T) {
	p := NewPredefined(map[string]string{
		"What makes him special?": "Everything 💖",
		"Is he loyal?":            "Always",
	}, 3)

	tests := []struct {
		name     string
		question string
		want     string
		wantOK   bool
	}{
		{"exact", "What makes him special?", "Everything 💖", true},
		{"case and spaces", "  what makes  HIM special? ", "Everything 💖", true},
		{"typo", "What maks him specal?", "Everything 💖", true},
		{"closest wins", "Is he loyl?", "Always", true},
		{"too far", "Any red flags ?", "", false},
		{"empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Match(tt.question)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Match(%q): got (%q, %v), want (%q, %v)", tt.question, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPredefined_ExactOnly(t *testing.T) {
	p := NewPredefined(map[string]string{"Is he loyal?": "Always"}, 0)
	if _, ok := p.Match("Is he loyl?"); ok {
		t.Error("typo should not match when maxDistance is 0")
	}
	if got, ok := p.Match("is he loyal?"); !ok || got != "Always" {
		t.Errorf("case-insensitive exact match failed: %q %v", got, ok)
	}
}
