package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"flickrcrawler/pkg/config"
	"flickrcrawler/pkg/crawler"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %s with title %s`, strconv.Quote(message), strconv.Quote(title))
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	escape := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("flickrcrawler").Show($toast)
	`, escape.Replace(title), escape.Replace(message))

	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

// DesktopSender returns the sender for the current platform, or nil.
func DesktopSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	case "windows":
		return &WindowsNotificationSender{}
	default:
		return nil
	}
}

// Notifier prints notifications to the console and optionally forwards
// them to a desktop sender.
type Notifier struct {
	sender NotificationSender
}

// NewNotifier creates a Notifier. sender may be nil for console only.
func NewNotifier(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) forward(title, message string) {
	if n.sender != nil {
		// notifications are best effort
		_ = n.sender.Send(title, message)
	}
}

// SendNotification sends a neutral notification
func (n *Notifier) SendNotification(title, message string) {
	printOut(fmt.Sprintf("\n%s: %s\n", Cyan(title), Yellow(message)))
	n.forward(title, message)
}

// SendError sends an error notification
func (n *Notifier) SendError(title, message string) {
	PrintError(title + ": " + message)
	n.forward(title, message)
}

// SendSuccess sends a success notification
func (n *Notifier) SendSuccess(title, message string) {
	printOut(fmt.Sprintf("\n%s: %s\n", Green(title), Green(message)))
	n.forward(title, message)
}

// NotifyingReporter turns run events into notifications according to the
// notification settings.
type NotifyingReporter struct {
	crawler.NopReporter
	notifier *Notifier
	cfg      config.NotificationConfig
}

var _ crawler.Reporter = (*NotifyingReporter)(nil)

// NewNotifyingReporter returns nil when notifications are disabled.
func NewNotifyingReporter(cfg config.NotificationConfig) *NotifyingReporter {
	if !cfg.Enabled || strings.EqualFold(cfg.NotificationType, "none") {
		return nil
	}
	var sender NotificationSender
	if strings.EqualFold(cfg.NotificationType, "desktop") {
		sender = DesktopSender()
	}
	return &NotifyingReporter{notifier: NewNotifier(sender), cfg: cfg}
}

func (r *NotifyingReporter) SearchFinished(_ int, keyword string, _ int, err error) {
	if err != nil && r.cfg.OnError {
		r.notifier.SendError("SEARCH FAILED", fmt.Sprintf("%s: %v", keyword, err))
	}
}

func (r *NotifyingReporter) RunFinished(summary *crawler.Summary) {
	if summary.Failed > 0 && r.cfg.OnError {
		r.notifier.SendError("DOWNLOADS FAILED", fmt.Sprintf("%d of %d downloads failed", summary.Failed, summary.Submitted))
	}
	if r.cfg.OnComplete {
		r.notifier.SendSuccess("CRAWL COMPLETE", fmt.Sprintf("%d photos saved, manifest at %s", summary.Succeeded, summary.ManifestPath))
	}
}
