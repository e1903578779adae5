package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// packageManifest is the subset of package.json this engine reads.
type packageManifest struct {
	Name            string            `json:"name"`
	Engines         map[string]string `json:"engines"`
	Files           []string          `json:"files"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// VulnEntry describes one known-vulnerable package: every version strictly
// below FixedIn is affected.
type VulnEntry struct {
	Name     string
	FixedIn  string
	Severity Severity
	Advisory string // CVE or GHSA id
	Title    string
}

// VulnSource supplies the known-vulnerable table. The bundled static table
// is the default; a live advisory database can be substituted without
// touching the rest of the engine.
type VulnSource interface {
	Lookup(name string) []VulnEntry
}

// staticVulnSource is the bundled table.
type staticVulnSource struct {
	byName map[string][]VulnEntry
}

var bundledVulns = []VulnEntry{
	{Name: "lodash", FixedIn: "4.17.21", Severity: SeverityHigh, Advisory: "CVE-2021-23337", Title: "Command injection via template"},
	{Name: "minimist", FixedIn: "1.2.6", Severity: SeverityCritical, Advisory: "CVE-2021-44906", Title: "Prototype pollution"},
	{Name: "node-fetch", FixedIn: "2.6.7", Severity: SeverityHigh, Advisory: "CVE-2022-0235", Title: "Credential exposure on redirect"},
	{Name: "axios", FixedIn: "0.21.2", Severity: SeverityHigh, Advisory: "CVE-2021-3749", Title: "ReDoS in trim function"},
	{Name: "express", FixedIn: "4.17.3", Severity: SeverityMedium, Advisory: "CVE-2022-24999", Title: "qs prototype poisoning"},
	{Name: "serialize-javascript", FixedIn: "3.1.0", Severity: SeverityCritical, Advisory: "CVE-2020-7660", Title: "Remote code execution"},
	{Name: "handlebars", FixedIn: "4.7.7", Severity: SeverityHigh, Advisory: "CVE-2021-23369", Title: "Template injection RCE"},
	{Name: "ws", FixedIn: "7.4.6", Severity: SeverityMedium, Advisory: "CVE-2021-32640", Title: "ReDoS in Sec-WebSocket headers"},
	{Name: "shelljs", FixedIn: "0.8.5", Severity: SeverityMedium, Advisory: "CVE-2022-0144", Title: "Privilege escalation via exec"},
	{Name: "y18n", FixedIn: "4.0.1", Severity: SeverityHigh, Advisory: "CVE-2020-7774", Title: "Prototype pollution"},
}

func newStaticVulnSource(entries []VulnEntry) *staticVulnSource {
	s := &staticVulnSource{byName: make(map[string][]VulnEntry, len(entries))}
	for _, e := range entries {
		s.byName[e.Name] = append(s.byName[e.Name], e)
	}
	return s
}

func (s *staticVulnSource) Lookup(name string) []VulnEntry { return s.byName[name] }

// dependencyScanner matches declared packages against the vulnerable table
// and optionally runs the external npm audit subprocess.
type dependencyScanner struct {
	vulns VulnSource
	audit *auditRunner // nil when disabled
}

// scan reads the manifest at root. A missing manifest is silently empty; an
// unreadable or malformed one degrades to a warning.
func (d *dependencyScanner) scan(root string) ([]Finding, []string) {
	manifestPath := filepath.Join(root, "package.json")
	data, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, []string{fmt.Sprintf("dependency scan skipped: cannot read package.json: %v", err)}
	}

	var m packageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, []string{fmt.Sprintf("dependency scan skipped: malformed package.json: %v", err)}
	}

	var findings []Finding
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies} {
		for name, declared := range deps {
			for _, v := range d.vulns.Lookup(name) {
				if !versionBelow(declared, v.FixedIn) {
					continue
				}
				findings = append(findings, Finding{
					Type:        "vulnerable_dependency",
					Severity:    v.Severity,
					Category:    CategoryMisc,
					Description: fmt.Sprintf("%s %s is vulnerable: %s", name, declared, v.Title),
					File:        "package.json",
					CVE:         v.Advisory,
					Remediation: fmt.Sprintf("Upgrade %s to %s or later", name, v.FixedIn),
				})
			}
		}
	}

	return findings, nil
}

// versionBelow reports whether the lowest version a declared range can
// resolve to is strictly below limit. Range operators (^, ~, >=) are
// stripped to their base version; anything unparseable is treated as safe.
func versionBelow(declared, limit string) bool {
	dv, ok := parseVersion(declared)
	if !ok {
		return false
	}
	lv, ok := parseVersion(limit)
	if !ok {
		return false
	}
	for i := 0; i < 3; i++ {
		if dv[i] != lv[i] {
			return dv[i] < lv[i]
		}
	}
	return false
}

func parseVersion(s string) ([3]int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "^~>=<v ")
	if i := strings.IndexAny(s, " -+"); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if len(parts) == 0 || parts[0] == "" || parts[0] == "*" || parts[0] == "x" {
		return [3]int{}, false
	}
	var v [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		p := parts[i]
		if p == "x" || p == "*" {
			break
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return [3]int{}, false
		}
		v[i] = n
	}
	return v, true
}
