//go:build linux

package tools

func platformRequiredTools() []*ExternalTool {
	return []*ExternalTool{
		{Name: "iwconfig", Required: true, Note: "Wireless configuration tool"},
	}
}

func platformInstallHint() string {
	return "sudo apt-get install aircrack-ng wireless-tools"
}
