package artifact

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Put(ctx, "arch.drawio", []byte("<xml/>"), "application/xml"); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := s.Get(ctx, "arch.drawio")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "<xml/>" {
		t.Fatalf("data: %s", data)
	}
	if _, err := s.Get(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing artifact")
	}
	names, err := s.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "arch.drawio" {
		t.Fatalf("list: %v %v", names, err)
	}
	if err := s.Put(ctx, "", nil, ""); err == nil {
		t.Fatal("empty name must be rejected")
	}
}

func TestDiskStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := s.Put(ctx, "out/arch.mmd", []byte("flowchart TB"), "text/plain"); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := s.Get(ctx, "out/arch.mmd")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "flowchart TB" {
		t.Fatalf("data: %s", data)
	}
	names, err := s.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "out/arch.mmd" {
		t.Fatalf("list: %v %v", names, err)
	}
	if err := s.Put(ctx, "../escape.txt", []byte("x"), ""); err == nil {
		t.Fatal("path escape must be rejected")
	}
}
