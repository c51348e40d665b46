//go:build windows

package toast

import (
	"fmt"
	"strings"

	"github.com/sanyoog/retro-cam/internal/shell"
)

// escapeXML replaces XML-special characters so user content can be
// safely embedded inside XML text elements.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

// showScript returns the PowerShell script for displaying a Windows 10+
// toast notification using the ToastNotificationManager XML API, with
// the camera icon as app logo when iconPath is set.
func showScript(title, message, iconPath string) string {
	t := shell.EscapePowerShell(escapeXML(title))
	m := shell.EscapePowerShell(escapeXML(message))

	iconElem := ""
	if iconPath != "" {
		fileURI := "file:///" + strings.ReplaceAll(iconPath, `\`, "/")
		iconElem = fmt.Sprintf(`<image placement="appLogoOverride" src="%s"/>`,
			shell.EscapePowerShell(escapeXML(fileURI)))
	}

	return fmt.Sprintf(`
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom, ContentType = WindowsRuntime] | Out-Null

$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
$xml.LoadXml('<toast><visual><binding template="ToastGeneric">%s<text>%s</text><text>%s</text><text placement="attribution">via shipit</text></binding></visual></toast>')
$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('{1AC14E77-02E7-4E5D-B744-2EB1AE5198B7}\WindowsPowerShell\v1.0\powershell.exe').Show($toast)
`, iconElem, t, m)
}

// command uses PowerShell.
func command(title, message string) (string, []string) {
	iconPath, _ := EnsureIcon() // best-effort; toast works without icon
	return "powershell", []string{"-NoProfile", "-Command", showScript(title, message, iconPath)}
}
