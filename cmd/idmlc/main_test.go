package main

import (
	"os"
	"path/filepath"
	"testing"

	"idmlc/misc"
)

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"ingest", "dumpconfig"} {
		if app.Command(name) == nil {
			t.Errorf("command %q not registered", name)
		}
	}
	ingest := app.Command("ingest")
	for _, flag := range []string{"to", "nodirs", "overwrite", "force-zip-cp"} {
		found := false
		for _, f := range ingest.Flags {
			for _, n := range f.Names() {
				if n == flag {
					found = true
				}
			}
		}
		if !found {
			t.Errorf("ingest flag %q not registered", flag)
		}
	}
}

func TestRemoveEmptyPanicLog(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "idmlc.log")
	panicLog := filepath.Join(dir, misc.GetAppName()+"-panic.log")

	if err := removeEmptyPanicLog(""); err != nil {
		t.Errorf("removeEmptyPanicLog(\"\") error = %v", err)
	}

	if err := os.WriteFile(panicLog, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := removeEmptyPanicLog(dest); err != nil {
		t.Fatalf("removeEmptyPanicLog() error = %v", err)
	}
	if _, err := os.Stat(panicLog); !os.IsNotExist(err) {
		t.Error("empty panic log was not removed")
	}

	if err := os.WriteFile(panicLog, []byte("goroutine 1"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := removeEmptyPanicLog(dest); err != nil {
		t.Fatalf("removeEmptyPanicLog() error = %v", err)
	}
	if _, err := os.Stat(panicLog); err != nil {
		t.Error("non-empty panic log was removed")
	}
}
