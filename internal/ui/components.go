package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/driftfield/internal/tilt"
	"github.com/olivier-w/driftfield/internal/util"
)

const logo = "ANTI-GRAVITY"

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// renderCard draws one card inside a cell of cellWidth columns and
// cardRows rows. The eased tilt nudges it sideways and up, and a hovered
// card shows its glow under the pointer.
func renderCard(c *tilt.Card, cellWidth int, maxRotation float64) string {
	cur := c.Current()
	inner := cellWidth - 6
	if inner < 1 {
		inner = 1
	}

	shift := 0
	lift := 0
	if maxRotation > 0 {
		shift = int(math.Round(clampUnit(cur.RotateY / maxRotation)))
		lift = int(math.Round(math.Max(0, clampUnit(cur.RotateX/maxRotation))))
	}

	glow := strings.Repeat(" ", inner)
	if c.Hovered() && c.Rect.W > 0 {
		col := int(cur.Glow.X / c.Rect.W * float64(inner))
		col = max(0, min(inner-1, col))
		glow = strings.Repeat(" ", col) + glowStyle.Render("✦") + strings.Repeat(" ", inner-col-1)
	}

	style := cardStyle
	if cur.Scale > 1.005 {
		style = cardHoverStyle
	}
	body := strings.Join([]string{
		cardTitleStyle.Render(truncate(c.Title, inner)),
		cardBodyStyle.Render(truncate(c.Body, inner)),
		glow,
	}, "\n")
	return style.
		Width(inner + 2).
		MarginLeft(1 + shift).
		MarginRight(1 - shift).
		MarginTop(1 - lift).
		MarginBottom(lift).
		Render(body)
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func renderCards(deck *tilt.Deck, width int, maxRotation float64) string {
	cards := deck.Cards()
	if len(cards) == 0 {
		return ""
	}
	cellWidth := width / len(cards)
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = renderCard(c, cellWidth, maxRotation)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderHeader(banner string, glitching bool, right string, width int) string {
	style := bannerStyle
	if glitching {
		style = glitchingStyle
	}
	left := statusStyle.Render(logo)
	mid := style.Render(banner)
	gapL := (width-lipgloss.Width(mid))/2 - lipgloss.Width(left)
	if gapL < 1 {
		gapL = 1
	}
	gapR := width - lipgloss.Width(left) - gapL - lipgloss.Width(mid) - lipgloss.Width(right)
	if gapR < 1 {
		gapR = 1
	}
	return left + strings.Repeat(" ", gapL) + mid + strings.Repeat(" ", gapR) + right
}

func renderStats(particles, edges, effects, hands int) string {
	return strings.Join([]string{
		util.Count(particles, "particle"),
		util.Count(edges, "link"),
		util.Count(effects, "effect"),
		util.Count(hands, "hand"),
	}, "  ")
}
