package modcache

import (
	"os"
	"path/filepath"
	"testing"

	"franz/src/errstate"
)

func writeModule(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write test module: %s", err)
	}
	return path
}

func TestResolveCachesByPath(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir, "a.fz", "x = 1")
	errs := errstate.New()
	c := New(errs)

	root1, err := c.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve failed: %s", err)
	}
	root2, err := c.Resolve(path)
	if err != nil {
		t.Fatalf("second Resolve failed: %s", err)
	}
	if root1 != root2 {
		t.Error("expected second Resolve of the same path to return the cached tree")
	}
}

func TestResolveMissingFile(t *testing.T) {
	errs := errstate.New()
	c := New(errs)
	if _, err := c.Resolve("/nonexistent/path/module.fz"); err == nil {
		t.Error("expected an error resolving a missing module")
	}
	if errs.Current() == nil || errs.Current().Kind != errstate.IMPORT {
		t.Errorf("expected an IMPORT error to be raised, got %v", errs.Current())
	}
}

func TestResolveAllConcurrent(t *testing.T) {
	dir := t.TempDir()
	p1 := writeModule(t, dir, "m1.fz", "x = 1")
	p2 := writeModule(t, dir, "m2.fz", "y = 2")
	errs := errstate.New()
	c := New(errs)

	roots, err := c.ResolveAll([]string{p1, p2})
	if err != nil {
		t.Fatalf("ResolveAll failed: %s", err)
	}
	if len(roots) != 2 || roots[0] == nil || roots[1] == nil {
		t.Fatalf("expected two resolved roots, got %v", roots)
	}
}
