package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("S3_ENABLED", "")
	t.Setenv("REPORT_TOP_PROVINCES", "")

	cfg := Load()

	if cfg.Port != "8020" {
		t.Errorf("expected default port 8020, got %s", cfg.Port)
	}
	if cfg.S3.Enabled {
		t.Error("expected S3 disabled by default")
	}
	if cfg.Report.TopProvinces != 10 {
		t.Errorf("expected 10 top provinces, got %d", cfg.Report.TopProvinces)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("S3_ENABLED", "true")
	t.Setenv("REPORT_TOP_PROVINCES", "5")
	t.Setenv("EXPORT_DIR", "/tmp/reports")

	cfg := Load()

	if cfg.Port != "9000" || cfg.Postgres.Port != 6543 {
		t.Errorf("unexpected ports %s / %d", cfg.Port, cfg.Postgres.Port)
	}
	if !cfg.S3.Enabled {
		t.Error("expected S3 enabled")
	}
	if cfg.Report.TopProvinces != 5 || cfg.ExportDir != "/tmp/reports" {
		t.Errorf("unexpected report config %+v / %s", cfg.Report, cfg.ExportDir)
	}
}
