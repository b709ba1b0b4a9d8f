package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/edubd/internal/client/dialog"
	"github.com/dmitrijs2005/edubd/internal/client/gate"
	"github.com/dmitrijs2005/edubd/internal/client/models"
	"github.com/dmitrijs2005/edubd/internal/client/notify"
)

var (
	toastBase = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	toastStyles = map[notify.Kind]lipgloss.Style{
		notify.KindInfo:    toastBase.Foreground(lipgloss.Color("12")),
		notify.KindSuccess: toastBase.Foreground(lipgloss.Color("10")),
		notify.KindError:   toastBase.Foreground(lipgloss.Color("9")),
	}

	toastIcons = map[notify.Kind]string{
		notify.KindInfo:    "i",
		notify.KindSuccess: "✓",
		notify.KindError:   "✗",
	}

	dimStyle     = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func renderNotification(n notify.Notification) string {
	return toastStyles[n.Kind].Render(fmt.Sprintf("[%s] %s", toastIcons[n.Kind], n.Message))
}

func renderDialog(s dialog.State) string {
	if !s.Visible {
		return dimStyle.Render("(dialog closed)")
	}
	hint := map[dialog.View]string{
		dialog.ViewLogin:          "type 'login' to sign in, 'open register' to create an account",
		dialog.ViewRegister:       "type 'register' to create an account",
		dialog.ViewForgotPassword: "type 'forgot' to request a reset link",
	}[s.View]
	return headerStyle.Render("Dialog: "+string(s.View)) + " " + dimStyle.Render(hint)
}

func renderPage(p gate.Page) string {
	switch p.Decision.Outcome {
	case gate.OutcomeLoading:
		return dimStyle.Render(fmt.Sprintf("%s: loading...", p.Location))
	case gate.OutcomeForbidden:
		return blockedStyle.Render(fmt.Sprintf("%s: insufficient privilege", p.Location))
	case gate.OutcomeNotFound:
		return blockedStyle.Render(fmt.Sprintf("%s: page not found", p.Location))
	}

	title := p.Route.Title
	if title == "" {
		title = p.Location
	}
	line := headerStyle.Render(title) + dimStyle.Render(" "+p.Location)
	if p.From != "" {
		line += dimStyle.Render(fmt.Sprintf(" (redirected from %s)", p.From))
	}
	return line
}

func renderUsers(users []models.User) string {
	if len(users) == 0 {
		return dimStyle.Render("no users")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %-20s %-30s %s", "ID", "USERNAME", "EMAIL", "ROLE")))
	for _, u := range users {
		fmt.Fprintf(&b, "\n%-6d %-20s %-30s %s", u.ID, u.Username, u.Email, u.Role)
	}
	return b.String()
}

func renderUser(u *models.User) string {
	if u == nil {
		return dimStyle.Render("not signed in")
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	s := fmt.Sprintf("%s <%s> %s, id %d", name, u.Email, u.Role, u.ID)
	if u.AvatarURL != "" {
		s += ", avatar " + u.AvatarURL
	}
	return s
}
