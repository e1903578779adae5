package engine

import (
	"strings"
	"testing"
)

func TestConfigScanEnvFilePresence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "PORT=3000\n")

	findings, warnings := configScanner{}.scan(dir)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %+v", findings)
	}
	f := findings[0]
	if f.Type != "env_file_present" {
		t.Errorf("unexpected type %s", f.Type)
	}
	if f.Severity != SeverityMedium {
		t.Errorf("expected medium, got %s", f.Severity)
	}
	if !strings.Contains(f.Description, ".env") {
		t.Errorf("description should name the file: %s", f.Description)
	}
}

func TestConfigScanEnvFileWithSecret(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "API_KEY=\"sk-abcdef0123456789\"\nPASSWORD='hunter2hunter2'\n")

	findings, _ := configScanner{}.scan(dir)

	var secretFindings int
	for _, f := range findings {
		if f.Type == "config_secret" {
			secretFindings++
			if f.Category != CategoryAuth {
				t.Errorf("config secrets are auth category, got %s", f.Category)
			}
		}
	}
	if secretFindings == 0 {
		t.Errorf("expected config_secret findings, got %+v", findings)
	}
}

func TestConfigScanDangerousScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{
  "engines": {"node": ">=18"},
  "files": ["dist"],
  "scripts": {
    "clean": "rm -rf /tmp/build",
    "build": "tsc"
  }
}`)

	findings, warnings := configScanner{}.scan(dir)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %+v", findings)
	}
	f := findings[0]
	if f.Type != "dangerous_script" {
		t.Errorf("unexpected type %s", f.Type)
	}
	if f.Severity != SeverityHigh {
		t.Errorf("expected high, got %s", f.Severity)
	}
	if !strings.Contains(f.Description, "clean") {
		t.Errorf("description should name the script: %s", f.Description)
	}
}

func TestConfigScanManifestHygiene(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name": "demo"}`)

	findings, _ := configScanner{}.scan(dir)

	types := map[string]Severity{}
	for _, f := range findings {
		types[f.Type] = f.Severity
	}
	if types["manifest_missing_engines"] != SeverityMedium {
		t.Errorf("expected medium manifest_missing_engines, got %+v", findings)
	}
	if types["manifest_missing_files"] != SeverityLow {
		t.Errorf("expected low manifest_missing_files, got %+v", findings)
	}
}

func TestConfigScanPrivilegedCompose(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "docker-compose.yml", "services:\n  app:\n    privileged: true\n")

	findings, _ := configScanner{}.scan(dir)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %+v", findings)
	}
	if findings[0].Type != "privileged_container" || findings[0].Line != 3 {
		t.Errorf("unexpected finding: %+v", findings[0])
	}
}

func TestConfigScanCleanRoot(t *testing.T) {
	findings, warnings := configScanner{}.scan(t.TempDir())
	if len(findings) != 0 || len(warnings) != 0 {
		t.Errorf("clean root should be empty, got %v %v", findings, warnings)
	}
}
