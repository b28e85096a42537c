package codegen

import "testing"

func TestAuto_LengthAndAlphabet(t *testing.T) {
	code, err := Auto()
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != autoLength {
		t.Fatalf("expected length %d, got %d (%q)", autoLength, len(code), code)
	}
	if !customCodePattern.MatchString(code) {
		t.Fatalf("generated code %q does not match allowed alphabet", code)
	}
}

func TestAuto_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := Auto()
		if err != nil {
			t.Fatal(err)
		}
		if seen[code] {
			t.Fatalf("collision after %d draws: %q", i, code)
		}
		seen[code] = true
	}
}

func TestValidateCustom(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
	}{
		{"promo1", true},
		{"a", false},            // too short
		{"promo-code_123", true},
		{"has space", false},
		{"has/slash", false},
		{"", false},
	}
	for _, c := range cases {
		err := ValidateCustom(c.code)
		if (err == nil) != c.ok {
			t.Errorf("ValidateCustom(%q): got err=%v, want ok=%v", c.code, err, c.ok)
		}
	}
}
