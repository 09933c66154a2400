package slugify

import "testing"

func TestMake(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Andi & Bunga", "andi-bunga"},
		{"  Rénata  Çelik ", "renata-celik"},
		{"---", ""},
		{"Ahmad_Fauzi 2027", "ahmad-fauzi-2027"},
	}
	for _, tc := range tests {
		if got := Make(tc.in); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"andi-bunga", true},
		{"ab", false},
		{"Andi", false},
		{"andi--bunga", false},
		{"-andi", false},
		{"dashboard", false},
		{"api", false},
	}
	for _, tc := range tests {
		if got := Valid(tc.in); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
