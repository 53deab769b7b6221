package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/ReelCut/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	inv := model.DefaultInventory()
	inv.Machines = append(inv.Machines, model.MachineSpec{Name: "PM2", Unit: model.UnitInch, LB: 60, UB: 66})

	if err := ExportAllData(path, inv); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, backup.Version)
	}
	if backup.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if len(backup.Inventory.Machines) != 3 {
		t.Errorf("expected 3 machines, got %d", len(backup.Inventory.Machines))
	}
	if backup.Inventory.FindMachine("PM2") == nil {
		t.Error("expected PM2 to survive the round trip")
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	_, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noversion.json")
	if err := os.WriteFile(path, []byte(`{"inventory":{"stocks":[]}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for missing version")
	}
}

func TestExportAndImportAllDataWithJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	job := model.NewJob()
	job.Name = "week 42"
	job.Orders = []model.RawOrder{{Width: 20.5, Qty: 3}}

	if err := ExportAllData(path, model.DefaultInventory(), job); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}
	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if len(backup.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(backup.Jobs))
	}
	if backup.Jobs[0].Name != "week 42" || len(backup.Jobs[0].Orders) != 1 {
		t.Errorf("job did not survive the round trip: %+v", backup.Jobs[0])
	}
}

func TestImportAllDataUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.json")
	if err := os.WriteFile(path, []byte(`{"version":"2.0.0","inventory":{}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for unsupported major version")
	}
}

func TestImportAllDataNormalizesEmptyInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"version":"1.2.0","inventory":{}}`), 0644); err != nil {
		t.Fatal(err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Inventory.Stocks == nil || backup.Inventory.Machines == nil {
		t.Error("expected non-nil inventory slices")
	}
}

func TestExportAllDataCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "backup.json")

	if err := ExportAllData(path, model.DefaultInventory()); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("backup file not created: %v", err)
	}
}
