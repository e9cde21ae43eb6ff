//go:build darwin

package tools

func platformRequiredTools() []*ExternalTool {
	// Still required: without iwconfig there is no monitor-mode discovery,
	// so the check reports it missing instead of failing later.
	return []*ExternalTool{
		{Name: "iwconfig", Required: true, Note: "Wireless configuration tool (Linux only)"},
	}
}

func platformInstallHint() string {
	return "monitor mode requires Linux; install aircrack-ng and wireless-tools on a Linux host"
}
