package backend

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"finanzas/internal/config"
	"finanzas/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	_, err := FromAppConfig(&config.Config{DataBackend: "sheets"})
	if err == nil || !strings.Contains(err.Error(), "valid: sqlite, file, memory") {
		t.Errorf("expected error listing valid backends, got %v", err)
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "./data/finanzas.db",
		StorageKey:   "financialData",
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.StorageKey != "financialData" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db", StorageKey: "k"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend, StorageKey: "k"}, true},
		{"sqlite without key", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, true},
		{"file ok", Config{Type: FileBackend, DataFilePath: "data.json"}, false},
		{"file without path", Config{Type: FileBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	want := []string{"sqlite", "file", "memory"}
	if len(got) != len(want) {
		t.Fatalf("GetBackendTypeStrings() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetBackendTypeStrings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFactoryLogsSQLiteState(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "f.db")

	seed, err := storage.NewSQLiteRepository(dbPath, "other")
	if err != nil {
		t.Fatalf("seed repository: %v", err)
	}
	if err := seed.Save(ctx, []byte("[]")); err != nil {
		t.Fatalf("seed save: %v", err)
	}
	seed.Close()

	var buf bytes.Buffer
	f := NewFactory(slog.New(slog.NewTextHandler(&buf, nil)))
	res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: dbPath, StorageKey: "financialData"})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	defer res.Cleanup()

	out := buf.String()
	for _, want := range []string{"component=backend", "key=financialData", "schema_version=1", "stored_keys=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "updated_at=") {
		t.Errorf("nothing stored under the key yet, got: %s", out)
	}
}

func TestFactoryCreatesEachBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := NewFactory(nil)

	res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "f.db"), StorageKey: "financialData"})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	if _, ok := res.Storage.(*storage.SQLiteRepository); !ok {
		t.Errorf("sqlite backend returned %T", res.Storage)
	}
	if res.Cleanup == nil || res.Cleanup() != nil {
		t.Error("sqlite backend must close cleanly")
	}

	res, err = f.CreateBackend(ctx, Config{Type: FileBackend, DataFilePath: filepath.Join(dir, "data.json")})
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	if _, ok := res.Storage.(*storage.FileStore); !ok {
		t.Errorf("file backend returned %T", res.Storage)
	}

	res, err = f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := res.Storage.(*storage.MemoryStore); !ok {
		t.Errorf("memory backend returned %T", res.Storage)
	}

	if _, err := f.CreateBackend(ctx, Config{Type: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
