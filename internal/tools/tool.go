package tools

import (
	"fmt"
	"os/exec"
	"strings"
)

// ExternalTool represents a dependency on an external system tool.
type ExternalTool struct {
	Name     string
	Required bool
	Note     string // why it's needed
	path     string
	checked  bool
}

// ToolStatus holds the result of a dependency check.
type ToolStatus struct {
	Name      string
	Available bool
	Path      string
	Required  bool
	Note      string
}

// Check resolves the tool on PATH. The lookup never executes the tool.
func (t *ExternalTool) Check() ToolStatus {
	if !t.checked {
		t.checked = true
		if path, err := exec.LookPath(t.Name); err == nil {
			t.path = path
		}
	}

	return ToolStatus{
		Name:      t.Name,
		Available: t.path != "",
		Path:      t.path,
		Required:  t.Required,
		Note:      t.Note,
	}
}

// Exists returns true if the tool is installed.
func (t *ExternalTool) Exists() bool {
	return t.Check().Available
}

// DependencyChecker manages all external tool dependencies.
type DependencyChecker struct {
	tools []*ExternalTool
}

func NewDependencyChecker() *DependencyChecker {
	allTools := []*ExternalTool{
		{Name: "aircrack-ng", Required: true, Note: "Main cracking tool"},
		{Name: "airodump-ng", Required: true, Note: "Packet capture tool"},
		{Name: "aireplay-ng", Required: true, Note: "Replay attack tool"},
		{Name: "airmon-ng", Required: true, Note: "Monitor mode control"},
		{Name: "macchanger", Required: true, Note: "MAC address changing tool"},
	}

	// Platform-specific required tools (interface listing)
	allTools = append(allTools, platformRequiredTools()...)

	allTools = append(allTools,
		&ExternalTool{Name: "iw", Required: false, Note: "Channel control fallback"},
	)

	return &DependencyChecker{tools: allTools}
}

// InstallHint returns a platform-appropriate install message.
func InstallHint() string {
	return platformInstallHint()
}

// CheckAll verifies all dependencies and returns their status.
func (dc *DependencyChecker) CheckAll() []ToolStatus {
	results := make([]ToolStatus, len(dc.tools))
	for i, tool := range dc.tools {
		results[i] = tool.Check()
	}
	return results
}

// MissingRequired returns required tools that are not installed.
func (dc *DependencyChecker) MissingRequired() []string {
	var missing []string
	for _, tool := range dc.tools {
		s := tool.Check()
		if s.Required && !s.Available {
			missing = append(missing, tool.Name)
		}
	}
	return missing
}

// IsAvailable checks if a specific tool is available.
func (dc *DependencyChecker) IsAvailable(name string) bool {
	for _, tool := range dc.tools {
		if tool.Name == name {
			return tool.Exists()
		}
	}
	return false
}

// FormatStatus returns a formatted dependency report.
func FormatStatus(statuses []ToolStatus) string {
	var sb strings.Builder
	for _, s := range statuses {
		if s.Available {
			fmt.Fprintf(&sb, " [+] %-16s %s\n", s.Name, s.Path)
		} else {
			label := "(optional)"
			if s.Required {
				label = "(REQUIRED)"
			}
			note := ""
			if s.Note != "" {
				note = " -- " + s.Note
			}
			fmt.Fprintf(&sb, " [-] %-16s %s%s\n", s.Name, label, note)
		}
	}
	return sb.String()
}
