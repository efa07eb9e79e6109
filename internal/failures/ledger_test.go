package failures

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paper-translator/internal/types"
)

func TestLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.json")

	l, err := NewLedger(path)
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("Expected empty ledger, got %d records", l.Len())
	}

	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l.now = func() time.Time { return first }

	cause := types.NewAppError(types.ErrExtraction, "structure service returned an error", nil)
	if err := l.Record("paper.pdf", StageExtract, cause); err != nil {
		t.Fatalf("Failed to record failure: %v", err)
	}

	record, ok := l.Get("paper.pdf")
	if !ok {
		t.Fatal("Failure record not found")
	}
	if record.Stage != StageExtract || record.ErrorCode != "EXTRACTION_ERROR" || record.RetryCount != 0 {
		t.Errorf("Unexpected record: %+v", record)
	}

	// A repeat failure counts as a retry.
	second := first.Add(time.Hour)
	l.now = func() time.Time { return second }
	if err := l.Record("paper.pdf", StageTranslate, errors.New("chunk 1 of 3 failed")); err != nil {
		t.Fatalf("Failed to record failure: %v", err)
	}

	record, _ = l.Get("paper.pdf")
	if record.RetryCount != 1 {
		t.Errorf("Expected retry count 1, got %d", record.RetryCount)
	}
	if !record.FirstFailure.Equal(first) || !record.LastFailure.Equal(second) {
		t.Errorf("Unexpected failure times: first=%v last=%v", record.FirstFailure, record.LastFailure)
	}
	if record.Stage != StageTranslate || record.ErrorCode != "" {
		t.Errorf("Expected latest stage and no code, got %+v", record)
	}

	// Mutating a returned copy does not change the ledger.
	record.RetryCount = 99
	if again, _ := l.Get("paper.pdf"); again.RetryCount != 1 {
		t.Error("Get must return a copy")
	}

	if err := l.Resolve("paper.pdf"); err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	if _, ok := l.Get("paper.pdf"); ok {
		t.Error("Record should be removed after Resolve")
	}
}

func TestLedger_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "failures.json")

	l, err := NewLedger(path)
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}
	l.Record("b.pdf", StageParse, errors.New("no body"))
	l.Record("a.pdf", StageExtract, errors.New("timeout"))

	reloaded, err := NewLedger(path)
	if err != nil {
		t.Fatalf("Failed to reload ledger: %v", err)
	}
	records := reloaded.List()
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Name != "a.pdf" || records[1].Name != "b.pdf" {
		t.Errorf("Records not sorted by name: %s, %s", records[0].Name, records[1].Name)
	}
}

func TestLedger_ResolveUnknownDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.json")

	l, err := NewLedger(path)
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}
	if err := l.Resolve("never-failed.pdf"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Ledger file should not be created for a clean run")
	}
}

func TestLedger_KeepsFileWhenEmptied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.json")

	l, _ := NewLedger(path)
	l.Record("a.pdf", StageExtract, errors.New("boom"))
	l.Resolve("a.pdf")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read ledger: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected empty JSON array, got %q", data)
	}
}

func TestNewLedger_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewLedger(path)
	if err == nil {
		t.Fatal("Expected an error for a corrupt ledger")
	}
	if types.CodeOf(err) != types.ErrFilesystem {
		t.Errorf("Expected FILESYSTEM_ERROR, got %s", types.CodeOf(err))
	}
}
