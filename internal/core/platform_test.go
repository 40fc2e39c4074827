package core

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestParseOS(t *testing.T) {
	tests := []struct {
		input   string
		want    OS
		wantErr bool
	}{
		{"macos", MacOS, false},
		{"linux", Linux, false},
		{"windows", Windows, false},
		{"ios", IOS, false},
		{"android", Android, false},

		// Case-insensitive, whitespace tolerated
		{"MacOS", MacOS, false},
		{"LINUX", Linux, false},
		{" windows ", Windows, false},

		// Go toolchains report macOS as darwin
		{"darwin", MacOS, false},
		{"Darwin", MacOS, false},

		{"freebsd", "", true},
		{"js", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOS(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseOS(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedPlatform) {
					t.Errorf("ParseOS(%q) error = %v, want ErrUnsupportedPlatform", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseOS(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseOSErrorCarriesValue(t *testing.T) {
	_, err := ParseOS("freebsd")
	if err == nil {
		t.Fatal("ParseOS() expected error")
	}

	var platErr *UnsupportedPlatformError
	if !errors.As(err, &platErr) {
		t.Fatalf("ParseOS() error = %T, want *UnsupportedPlatformError", err)
	}
	if platErr.Value != "freebsd" {
		t.Errorf("Value = %q, want %q", platErr.Value, "freebsd")
	}
	if !strings.Contains(err.Error(), "freebsd") {
		t.Errorf("error %q does not mention the rejected value", err.Error())
	}
}

func TestSupportedOS(t *testing.T) {
	got := SupportedOS()
	want := []OS{Android, IOS, Linux, MacOS, Windows}

	if len(got) != len(want) {
		t.Fatalf("SupportedOS() returned %d entries, want %d", len(got), len(want))
	}
	for i, os := range want {
		if got[i] != os {
			t.Errorf("SupportedOS()[%d] = %q, want %q", i, got[i], os)
		}
	}
}

func TestOSSupported(t *testing.T) {
	if !Linux.Supported() {
		t.Error("Linux.Supported() = false, want true")
	}
	if OS("freebsd").Supported() {
		t.Error(`OS("freebsd").Supported() = true, want false`)
	}
}

func TestHostOS(t *testing.T) {
	os, err := HostOS()
	if err != nil {
		t.Skipf("host %s is not a supported target", runtime.GOOS)
	}
	if !os.Supported() {
		t.Errorf("HostOS() = %q, not in the supported set", os)
	}
}
