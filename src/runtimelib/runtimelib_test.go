package runtimelib

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSourceEmbedded(t *testing.T) {
	if !strings.Contains(Source, "franz_rt_list_new") {
		t.Error("expected embedded runtime source to define franz_rt_list_new")
	}
	if !strings.Contains(Source, "franz_rt_dict_set") {
		t.Error("expected embedded runtime source to define franz_rt_dict_set")
	}
	if !strings.Contains(Source, "franz_rt_match_fail") {
		t.Error("expected embedded runtime source to define franz_rt_match_fail")
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.c")
	if err := Write(path); err != nil {
		t.Fatalf("Write failed: %s", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %s", err)
	}
	if string(got) != Source {
		t.Error("written file does not match embedded source")
	}
}

func TestItoA(t *testing.T) {
	cases := map[int64]string{0: "0", 42: "42", -7: "-7", 1000000: "1000000"}
	for in, want := range cases {
		if got := ItoA(in); got != want {
			t.Errorf("ItoA(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFtoA(t *testing.T) {
	if got := FtoA(3.5); got != "3.5000" {
		t.Errorf("FtoA(3.5) = %q, want 3.5000", got)
	}
	if got := FtoA(-2.25); got != "-2.2500" {
		t.Errorf("FtoA(-2.25) = %q, want -2.2500", got)
	}
}
