package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// envFileNames are environment files whose presence at the scan root is
// itself a finding.
var envFileNames = []string{".env", ".env.local", ".env.production", ".env.development"}

// configTextFiles are additionally inspected for secret-shaped content.
var configTextFiles = []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml"}

var destructiveScript = regexp.MustCompile(`rm\s+-rf\s+[/~]|curl[^\n|]*\|\s*(ba)?sh|wget[^\n|]*\|\s*(ba)?sh|chmod\s+777|:\s*\(\)\s*\{`)

// configScanner inspects well-known configuration files for insecure
// patterns: exposed secrets, dangerous script commands, missing manifest
// fields.
type configScanner struct{}

func (configScanner) scan(root string) ([]Finding, []string) {
	var findings []Finding
	var warnings []string

	for _, name := range envFileNames {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot read %s: %v", name, err))
			continue
		}
		findings = append(findings, Finding{
			Type:        "env_file_present",
			Severity:    SeverityMedium,
			Category:    CategoryAuth,
			Description: fmt.Sprintf("environment file detected at %s; it should not be versioned", name),
			File:        name,
			Remediation: "Add the file to .gitignore and distribute values through a secret store",
		})
		findings = append(findings, scanConfigText(name, data)...)
	}

	for _, name := range configTextFiles {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot read %s: %v", name, err))
			continue
		}
		findings = append(findings, scanConfigText(name, data)...)
		if strings.Contains(name, "docker-compose") {
			findings = append(findings, scanCompose(name, data)...)
		}
	}

	mf, mw := scanManifestConfig(root)
	findings = append(findings, mf...)
	warnings = append(warnings, mw...)

	return findings, warnings
}

// scanConfigText reuses the secret patterns against config file text.
func scanConfigText(name string, data []byte) []Finding {
	var findings []Finding
	for _, f := range (secretScanner{}).scanFile(name, data) {
		f.Type = "config_secret"
		f.Description = fmt.Sprintf("secret-shaped value in configuration file %s", name)
		findings = append(findings, f)
	}
	return findings
}

func scanCompose(name string, data []byte) []Finding {
	var findings []Finding
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if strings.Contains(line, "privileged: true") {
			findings = append(findings, Finding{
				Type:        "privileged_container",
				Severity:    SeverityHigh,
				Category:    CategoryMisc,
				Description: "container runs privileged",
				File:        name,
				Line:        i + 1,
				Remediation: "Drop privileged mode; grant only the specific capabilities needed",
			})
		}
	}
	return findings
}

// scanManifestConfig checks package.json hygiene: recommended fields and
// destructive script commands.
func scanManifestConfig(root string) ([]Finding, []string) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, []string{fmt.Sprintf("cannot read package.json: %v", err)}
	}

	var m packageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, []string{fmt.Sprintf("configuration scan skipped: malformed package.json: %v", err)}
	}

	var findings []Finding
	if len(m.Engines) == 0 {
		findings = append(findings, Finding{
			Type:        "manifest_missing_engines",
			Severity:    SeverityMedium,
			Category:    CategoryMisc,
			Description: "package.json declares no supported runtime versions (engines)",
			File:        "package.json",
			Remediation: "Declare an engines field pinning supported Node.js versions",
		})
	}
	if len(m.Files) == 0 {
		findings = append(findings, Finding{
			Type:        "manifest_missing_files",
			Severity:    SeverityLow,
			Category:    CategoryMisc,
			Description: "package.json declares no explicit file inclusion list (files)",
			File:        "package.json",
			Remediation: "Declare a files whitelist to avoid publishing stray artifacts",
		})
	}
	for scriptName, body := range m.Scripts {
		if destructiveScript.MatchString(body) {
			findings = append(findings, Finding{
				Type:        "dangerous_script",
				Severity:    SeverityHigh,
				Category:    CategoryMisc,
				Description: fmt.Sprintf("script %q contains a destructive shell command", scriptName),
				File:        "package.json",
				MatchedText: trimMatch(body),
				Remediation: "Remove destructive commands from lifecycle scripts",
			})
		}
	}
	return findings, nil
}
