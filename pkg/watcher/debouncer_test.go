package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDebouncerMergesBurst(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 50*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	in <- ChangeEvent{Patients: []string{"HUP070"}, Paths: []string{"a"}}
	in <- ChangeEvent{Patients: []string{"HUP064", "HUP070"}, Paths: []string{"b"}}

	select {
	case ev := <-d.Output():
		if len(ev.Patients) != 2 || ev.Patients[0] != "HUP064" || ev.Patients[1] != "HUP070" {
			t.Errorf("patients = %v, want [HUP064 HUP070]", ev.Patients)
		}
		if len(ev.Paths) != 2 {
			t.Errorf("paths = %v, want 2 entries", ev.Paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no debounced event")
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	in := make(chan ChangeEvent, 1)
	d := NewDebouncer(in, time.Hour, time.Hour)
	d.Start(context.Background())

	in <- ChangeEvent{Patients: []string{"P1"}}
	close(in)

	ev, ok := <-d.Output()
	if !ok || len(ev.Patients) != 1 {
		t.Fatalf("expected pending event on close, got %v %v", ev, ok)
	}
	if _, ok := <-d.Output(); ok {
		t.Error("output should be closed")
	}
}

func TestFileWatcherReportsOwningPatient(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "electrodes.csv")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(table, []byte("1,1,1,1,LA1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(map[string][]string{"HUP064": {table}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(table, []byte("1,2,2,2,LA1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-fw.Events():
		if len(ev.Patients) != 1 || ev.Patients[0] != "HUP064" {
			t.Errorf("patients = %v, want [HUP064]", ev.Patients)
		}
		for _, p := range ev.Paths {
			if filepath.Base(p) != "electrodes.csv" {
				t.Errorf("unrelated path reported: %s", p)
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change event")
	}

	fw.Stop()
}
