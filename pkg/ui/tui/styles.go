package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette follows the Flickr brand blue and pink on a slate background.
var (
	flickrBlue = lipgloss.Color("#0063DC")
	flickrPink = lipgloss.Color("#FF0084")
	skyBlue    = lipgloss.Color("#5FAFFF")
	okGreen    = lipgloss.Color("#3FB950")
	amber      = lipgloss.Color("#F0883E")
	failRed    = lipgloss.Color("#F85149")
	slate      = lipgloss.Color("#0D1117")
	slatePanel = lipgloss.Color("#161B22")
	muted      = lipgloss.Color("#9DA5AE")
	faint      = lipgloss.Color("#5C636B")
)

var (
	baseStyle  = lipgloss.NewStyle().Background(slate).Foreground(muted)
	mutedStyle = lipgloss.NewStyle().Foreground(muted)
	faintStyle = lipgloss.NewStyle().Foreground(faint)

	logoStyle = lipgloss.NewStyle().Foreground(flickrPink).Bold(true).
			Padding(1, 0).Align(lipgloss.Center)

	panelStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			BorderForeground(flickrBlue).Background(slatePanel).Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Background(flickrBlue).Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).Padding(0, 1).MarginBottom(1)

	statsLabelStyle = lipgloss.NewStyle().Foreground(skyBlue).Bold(true).Width(12)
	statsValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E6EDF3"))
	rateStyle       = lipgloss.NewStyle().Foreground(flickrPink)

	successStyle = lipgloss.NewStyle().Foreground(okGreen).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(amber).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(failRed).Bold(true)

	jobActiveStyle = lipgloss.NewStyle().Foreground(skyBlue).PaddingLeft(1)
	jobDoneStyle   = mutedStyle.Faint(true).PaddingLeft(1)

	helpStyle = faintStyle.Padding(1, 0, 0, 1)
)

// keywordStyle colours a keyword row by how much of its quota was found.
func keywordStyle(item *KeywordItem) lipgloss.Style {
	switch {
	case item.Err != nil:
		return errorStyle
	case !item.Searched:
		return mutedStyle
	case item.Found < item.Quota:
		return warningStyle
	default:
		return successStyle
	}
}
