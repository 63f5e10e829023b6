package testkit

import (
	"os"
	"testing"
)

var swapTarget = func() string { return "orig" }

func TestSwap_Restores(t *testing.T) {
	t.Run("swap", func(t *testing.T) {
		Swap(t, &swapTarget, func() string { return "fake" })
		if swapTarget() != "fake" {
			t.Fatalf("swap did not take effect")
		}
	})
	if swapTarget() != "orig" {
		t.Fatalf("swap did not restore original")
	}
}

func TestSwap_SerialIsReentrant(t *testing.T) {
	Serial(t)
	Serial(t)
	Swap(t, &swapTarget, func() string { return "fake" })
	if swapTarget() != "fake" {
		t.Fatalf("swap under Serial did not take effect")
	}
}

func TestMustPanicAndContain(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
	MustContain(t, "hello world", "world")
	MustNotContain(t, "hello world", "mars")
}

func TestWriteFile(t *testing.T) {
	p := WriteFile(t, "a.csv", []byte("name\nx\n"))
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "name\nx\n" {
		t.Fatalf("ReadFile = %q, %v", b, err)
	}
}
