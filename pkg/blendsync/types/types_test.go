package types

import (
	"testing"
)

func testInventory() Inventory {
	return Inventory{
		Root: "/root",
		Installations: []Installation{
			{Version: "4.3", Path: "/root/4.3"},
			{Version: "4.2", Path: "/root/4.2"},
			{Version: "4.0", Path: "/root/4.0"},
		},
	}
}

func TestInventoryLookup(t *testing.T) {
	inv := testInventory()

	tests := []struct {
		name     string
		version  string
		wantOK   bool
		wantPath string
	}{
		{name: "known version", version: "4.2", wantOK: true, wantPath: "/root/4.2"},
		{name: "unknown version", version: "3.6", wantOK: false},
		{name: "all is not a version", version: AllTargets, wantOK: false},
		{name: "empty", version: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, ok := inv.Lookup(tt.version)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.version, ok, tt.wantOK)
			}
			if ok && inst.Path != tt.wantPath {
				t.Errorf("Lookup(%q).Path = %q, want %q", tt.version, inst.Path, tt.wantPath)
			}
		})
	}
}

func TestInventoryOthers(t *testing.T) {
	inv := testInventory()

	others := inv.Others("4.2")
	if len(others) != 2 {
		t.Fatalf("Others() returned %d installations, want 2", len(others))
	}
	for _, inst := range others {
		if inst.Version == "4.2" {
			t.Errorf("Others() included the source version")
		}
	}
	if others[0].Version != "4.3" || others[1].Version != "4.0" {
		t.Errorf("Others() order = %v, want [4.3 4.0]", others)
	}

	if got := inv.Others("9.9"); len(got) != inv.Len() {
		t.Errorf("Others(unknown) returned %d, want %d", len(got), inv.Len())
	}
}

func TestInventoryVersions(t *testing.T) {
	got := testInventory().Versions()
	want := []string{"4.3", "4.2", "4.0"}
	if len(got) != len(want) {
		t.Fatalf("Versions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Versions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := (Inventory{}).Versions(); len(got) != 0 {
		t.Errorf("empty Versions() = %v, want empty", got)
	}
}

func TestReportAggregates(t *testing.T) {
	r := &Report{
		Targets: []TargetResult{
			{Status: StatusSynced, Result: CopyResult{Copied: 3, BytesCopied: 300}},
			{Status: StatusDeclined},
			{Status: StatusSynced, Result: CopyResult{Copied: 1, BytesCopied: 50}},
		},
	}

	if r.Failed() {
		t.Error("Failed() = true for synced/declined targets")
	}
	if got := r.TotalCopied(); got != 4 {
		t.Errorf("TotalCopied() = %d, want 4", got)
	}
	if got := r.TotalBytes(); got != 350 {
		t.Errorf("TotalBytes() = %d, want 350", got)
	}

	r.Targets = append(r.Targets, TargetResult{Status: StatusPartial})
	if !r.Failed() {
		t.Error("Failed() = false with a partial target")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1024, "1.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
		{-5, "0 B"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
