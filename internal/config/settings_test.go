package config

import "testing"

func validSettings() Settings {
	return Settings{
		Domain:           "example.com",
		RegistryUsername: "escuser",
		InstallPath:      "/opt/esc",
		TLSMode:          TLSModeNone,
	}
}

func TestParseTLSMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TLSMode
		wantErr bool
	}{
		{"issued", "issued", TLSModeIssued, false},
		{"self signed", "self_signed", TLSModeSelfSigned, false},
		{"none", "none", TLSModeNone, false},
		{"empty defaults to none", "", TLSModeNone, false},
		{"unknown", "letsencrypt", "", true},
		{"case sensitive", "Issued", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTLSMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTLSMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTLSMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"valid none mode", func(s *Settings) {}, false},
		{"valid issued with email", func(s *Settings) {
			s.TLSMode = TLSModeIssued
			s.TLSContactEmail = "ops@example.com"
		}, false},
		{"valid self signed", func(s *Settings) {
			s.TLSMode = TLSModeSelfSigned
		}, false},
		{"valid security profile", func(s *Settings) {
			s.SecurityEnabled = true
			s.SecurityContactEmail = "security@example.com"
		}, false},
		{"invalid domain", func(s *Settings) {
			s.Domain = "not a domain"
		}, true},
		{"empty registry username", func(s *Settings) {
			s.RegistryUsername = ""
		}, true},
		{"empty install path", func(s *Settings) {
			s.InstallPath = ""
		}, true},
		{"issued without email", func(s *Settings) {
			s.TLSMode = TLSModeIssued
		}, true},
		{"issued with bad email", func(s *Settings) {
			s.TLSMode = TLSModeIssued
			s.TLSContactEmail = "not-an-email"
		}, true},
		{"contact email without issued mode", func(s *Settings) {
			s.TLSContactEmail = "ops@example.com"
		}, true},
		{"security without contact", func(s *Settings) {
			s.SecurityEnabled = true
		}, true},
		{"security contact without profile", func(s *Settings) {
			s.SecurityContactEmail = "security@example.com"
		}, true},
		{"unknown tls mode", func(s *Settings) {
			s.TLSMode = "maybe"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsImage(t *testing.T) {
	s := validSettings()
	if got, want := s.Image(), "escuser/esc:latest"; got != want {
		t.Errorf("Image() = %q, want %q", got, want)
	}
}

func TestSettingsWWWDomain(t *testing.T) {
	s := validSettings()
	if got, want := s.WWWDomain(), "www.example.com"; got != want {
		t.Errorf("WWWDomain() = %q, want %q", got, want)
	}
}
