package testkit

import (
	"os"
	"testing"
)

func TestMustPanic(t *testing.T) {
	t.Parallel()
	MustPanic(t, func() { panic("boom") })
}

func TestMustNotPanic(t *testing.T) {
	t.Parallel()
	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	t.Parallel()
	MustContain(t, "alpha beta gamma", "beta")
}

func TestWriteFile(t *testing.T) {
	t.Parallel()
	p := WriteFile(t, "nested/picks.json", `[]`)
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "[]" {
		t.Fatalf("WriteFile round trip: %q %v", b, err)
	}
}
