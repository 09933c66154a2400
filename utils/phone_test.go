package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"local mobile", "081234567890", "+6281234567890", false},
		{"international", "+62 812-3456-7890", "+6281234567890", false},
		{"empty", "", "", false},
		{"garbage", "not a phone", "", true},
		{"too short", "0812", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWhatsAppLink(t *testing.T) {
	if got := WhatsAppLink("+6281234567890", "Halo Kak"); got != "https://wa.me/6281234567890?text=Halo+Kak" {
		t.Errorf("got %q", got)
	}
	if WhatsAppLink("", "x") != "" {
		t.Error("empty number should give empty link")
	}
}
