package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Fatal("empty version")
	}
}

func TestShort(t *testing.T) {
	if !strings.HasPrefix(Short(), Version) {
		t.Errorf("Short() = %q, want %q prefix", Short(), Version)
	}
}
