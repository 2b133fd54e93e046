package helpers

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"valid simple", "ops@example.com", true},
		{"valid with plus", "ops+alerts@example.com", true},
		{"valid subdomain", "admin@mail.example.co.uk", true},
		{"missing at", "ops.example.com", false},
		{"missing tld", "ops@example", false},
		{"empty", "", false},
		{"spaces", "ops @example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		wantErr bool
	}{
		{"valid domain", "example.com", false},
		{"valid subdomain", "shop.example.co.uk", false},
		{"valid with hyphen", "my-shop.example.com", false},
		{"valid with digits", "shop123.example.com", false},
		{"empty", "", true},
		{"single label", "localhost", true},
		{"leading dot", ".example.com", true},
		{"trailing dot", "example.com.", true},
		{"leading hyphen", "-example.com", true},
		{"label leading hyphen", "shop.-example.com", true},
		{"invalid character", "exa mple.com", true},
		{"underscore", "my_shop.example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := IsValidDomain(tt.domain)
			if (err != nil) != tt.wantErr {
				t.Errorf("IsValidDomain(%q) error = %v, wantErr %v", tt.domain, err, tt.wantErr)
			}
		})
	}
}
