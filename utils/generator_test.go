package utils

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerateOTP(t *testing.T) {
	for _, length := range []int{4, 6} {
		code := GenerateOTP(length)
		if len(code) != length {
			t.Errorf("GenerateOTP(%d) length = %d", length, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune("0123456789", r) {
				t.Errorf("GenerateOTP(%d) produced non-digit %q", length, r)
			}
		}
	}
}

func TestGenerateOTPConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if code := GenerateOTP(6); len(code) != 6 {
					t.Errorf("concurrent GenerateOTP length = %d", len(code))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  User@Example.COM ": "user@example.com",
		"plain@example.com":   "plain@example.com",
		"\tTabbed@x.io\n":     "tabbed@x.io",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
