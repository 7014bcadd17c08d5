package normalize

import "testing"

func strPtr(s string) *string { return &s }

func TestDiscountType(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		want string
	}{
		{"percent sign", strPtr("15% off"), DiscountPercentage},
		{"percent word", strPtr("Percentual"), DiscountPercentage},
		{"percentage word", strPtr("PERCENTAGE"), DiscountPercentage},
		{"fixed english", strPtr("Fixed R$10"), DiscountFixed},
		{"fixed portuguese", strPtr("valor fixo"), DiscountFixed},
		{"fixed wins over percent", strPtr("fixed 10%"), DiscountFixed},
		{"null", nil, DiscountUnknown},
		{"blank", strPtr("   "), DiscountUnknown},
		{"unrelated", strPtr("buy one get one"), DiscountUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiscountType(tt.raw); got != tt.want {
				t.Errorf("DiscountType(%v) = %q, want %q", Display(tt.raw), got, tt.want)
			}
		})
	}
}

func TestDiscountUnknownIsSentinel(t *testing.T) {
	if DiscountUnknown != NotInformed {
		t.Errorf("DiscountUnknown = %q, want %q", DiscountUnknown, NotInformed)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		want string
	}{
		{"null", nil, NotInformed},
		{"empty", strPtr(""), NotInformed},
		{"blank", strPtr(" \t "), NotInformed},
		{"trimmed", strPtr("  Electronics "), "Electronics"},
		{"unchanged", strPtr("South"), "South"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.raw); got != tt.want {
				t.Errorf("Text(%v) = %q, want %q", Display(tt.raw), got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	if _, ok := Name(nil); ok {
		t.Error("Name(nil) should not be usable")
	}
	if _, ok := Name(strPtr("   ")); ok {
		t.Error("blank name should not be usable")
	}
	got, ok := Name(strPtr("  Widget  "))
	if !ok || got != "Widget" {
		t.Errorf("Name = (%q, %v), want (\"Widget\", true)", got, ok)
	}
}

func TestAge(t *testing.T) {
	if got := Age(nil); got != 0 {
		t.Errorf("Age(nil) = %d, want 0", got)
	}
	age := int32(42)
	if got := Age(&age); got != 42 {
		t.Errorf("Age = %d, want 42", got)
	}
}
