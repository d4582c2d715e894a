package usecase

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "Str0ng!pass", wantErr: false},
		{name: "too short", password: "S7!a", wantErr: true},
		{name: "no upper", password: "str0ng!pass", wantErr: true},
		{name: "no lower", password: "STR0NG!PASS", wantErr: true},
		{name: "no digit", password: "Strong!pass", wantErr: true},
		{name: "no special", password: "Str0ngpass", wantErr: true},
		{name: "symbol counts as special", password: "Str0ng$pass", wantErr: false},
		{name: "exactly eight chars", password: "Aa1!aaaa", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePassword(%q) = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  CEO@Acme.COM ", want: "ceo@acme.com"},
		{in: "already@lower.io", want: "already@lower.io"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
