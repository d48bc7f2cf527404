package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foxie/internal/config"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "")
	if err := Render(t.TempDir(), TablesFrom(config.Default().Greptime)); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")

	dir := t.TempDir()
	if err := Render(dir, Tables{CastTable: "my_casts", DamageTable: "my_damage"}); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "foxie-dashboard.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "uid1") {
		t.Fatalf("greptime uid not rendered")
	}
	if !strings.Contains(s, "FROM my_casts") || !strings.Contains(s, "FROM my_damage") {
		t.Fatalf("table names not rendered")
	}
	var v map[string]any
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("rendered dashboard is not JSON: %v", err)
	}
}
