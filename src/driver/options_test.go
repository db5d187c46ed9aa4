package driver

import "testing"

func TestParseArgsDefaults(t *testing.T) {
	opt, err := ParseArgs(nil)
	if err != nil {
		t.Fatalf("ParseArgs(nil) failed: %s", err)
	}
	if opt.Scoping != Lexical {
		t.Errorf("got scoping %v, want lexical", opt.Scoping)
	}
	if opt.Threads != 1 {
		t.Errorf("got %d threads, want 1", opt.Threads)
	}
}

func TestParseArgsFlags(t *testing.T) {
	opt, err := ParseArgs([]string{"-d", "--no-tco", "--assert-types", "-t", "4", "-o", "out", "prog.fz"})
	if err != nil {
		t.Fatalf("ParseArgs failed: %s", err)
	}
	if !opt.Debug || !opt.NoTCO || !opt.AssertTypes {
		t.Errorf("expected debug/no-tco/assert-types all set, got %+v", opt)
	}
	if opt.Threads != 4 {
		t.Errorf("got %d threads, want 4", opt.Threads)
	}
	if opt.Out != "out" {
		t.Errorf("got out %q, want out", opt.Out)
	}
	if opt.Src != "prog.fz" {
		t.Errorf("got src %q, want prog.fz", opt.Src)
	}
}

func TestParseArgsScoping(t *testing.T) {
	opt, err := ParseArgs([]string{"--scoping=dynamic"})
	if err != nil {
		t.Fatalf("ParseArgs failed: %s", err)
	}
	if opt.Scoping != Dynamic {
		t.Errorf("got scoping %v, want dynamic", opt.Scoping)
	}
}

func TestParseArgsUnknownFlagIgnored(t *testing.T) {
	opt, err := ParseArgs([]string{"--not-a-real-flag", "prog.fz"})
	if err != nil {
		t.Fatalf("ParseArgs should ignore unknown flags, got error: %s", err)
	}
	if opt.Src != "prog.fz" {
		t.Errorf("got src %q, want prog.fz", opt.Src)
	}
}

func TestParseArgsBadThreadCount(t *testing.T) {
	if _, err := ParseArgs([]string{"-t", "0"}); err == nil {
		t.Error("expected error for thread count 0")
	}
	if _, err := ParseArgs([]string{"-t", "999"}); err == nil {
		t.Error("expected error for thread count above maximum")
	}
}
