package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// Adaptive palette so the view stays readable on light terminals.
var (
	inkStrong = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#f3f4f6"}
	inkMuted  = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	inkAccent = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	inkOK     = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}
	inkFail   = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	inkWarn   = lipgloss.AdaptiveColor{Light: "#a16207", Dark: "#facc15"}
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(inkStrong)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(inkAccent).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(inkMuted)
	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(inkStrong)
	footerStyle  = mutedStyle.MarginTop(1)

	barFilled = lipgloss.NewStyle().Foreground(inkOK)
	barEmpty  = mutedStyle
)

// look is how one stage state renders.
type look struct {
	mark  string
	style lipgloss.Style
}

func (l look) render(s string) string { return l.style.Render(s) }

var outcomeLooks = map[provisioning.Outcome]look{
	provisioning.OutcomeSuccess: {mark: "[OK]", style: lipgloss.NewStyle().Foreground(inkOK)},
	provisioning.OutcomePartial: {mark: "[??]", style: lipgloss.NewStyle().Foreground(inkWarn)},
	provisioning.OutcomeSkipped: {mark: "[--]", style: mutedStyle},
	provisioning.OutcomeFailed:  {mark: "[!!]", style: lipgloss.NewStyle().Foreground(inkFail)},
}

var (
	waitingLook = look{mark: "[  ]", style: mutedStyle}
	runningLook = look{mark: "[..]", style: runningStyle}
)

// spinnerFrames replace runningLook.mark while the TUI ticks.
var spinnerFrames = []string{"[=  ]", "[ = ]", "[  =]", "[ = ]"}
