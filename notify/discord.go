// Package notify posts accepted applications to a Discord channel through a webhook.
// Messages never carry contact details; reviewers read those from storage.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/CreativeUnicorns/recruitprefs"
)

// ErrInvalidWebhookURL is returned when a webhook URL is not of the form
// https://discord.com/api/webhooks/{id}/{token}.
var ErrInvalidWebhookURL = errors.New("notify: invalid discord webhook url")

const embedColor = 0x6C5CE7

// WebhookExecutor is the subset of *discordgo.Session used to post messages.
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier implements recruitprefs.Notifier.
type DiscordNotifier struct {
	exec     WebhookExecutor
	id       string
	token    string
	username string
}

var _ recruitprefs.Notifier = (*DiscordNotifier)(nil)

// NewDiscordNotifier builds a notifier for webhookURL backed by a token-less discordgo session.
func NewDiscordNotifier(webhookURL, username string) (*DiscordNotifier, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("notify: failed to create discord session: %w", err)
	}
	return NewDiscordNotifierWithExecutor(session, id, token, username), nil
}

// NewDiscordNotifierWithExecutor builds a notifier over exec.
func NewDiscordNotifierWithExecutor(exec WebhookExecutor, id, token, username string) *DiscordNotifier {
	if username == "" {
		username = "Recruitment"
	}
	return &DiscordNotifier{exec: exec, id: id, token: token, username: username}
}

// ParseWebhookURL extracts the webhook ID and token from a Discord webhook URL.
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", "", ErrInvalidWebhookURL
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "api" || parts[1] != "webhooks" || parts[2] == "" || parts[3] == "" {
		return "", "", ErrInvalidWebhookURL
	}
	return parts[2], parts[3], nil
}

// ApplicationReceived posts a summary embed. The applicant is identified by first
// name initial and application ID only.
func (n *DiscordNotifier) ApplicationReceived(ctx context.Context, app *recruitprefs.Application, primary, secondary *recruitprefs.Option) error {
	if app == nil {
		return recruitprefs.ErrInvalidInput
	}

	params := &discordgo.WebhookParams{
		Username:        n.username,
		Embeds:          []*discordgo.MessageEmbed{applicationEmbed(app, primary, secondary)},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}

	if _, err := n.exec.WebhookExecute(n.id, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("notify: discord webhook failed: %w", err)
	}
	return nil
}

func applicationEmbed(app *recruitprefs.Application, primary, secondary *recruitprefs.Option) *discordgo.MessageEmbed {
	secondName := "None"
	if secondary != nil {
		secondName = secondary.Name
	}
	firstName := app.PrimaryDepartment
	if primary != nil {
		firstName = primary.Name
	}

	return &discordgo.MessageEmbed{
		Title:       "New application received",
		Description: fmt.Sprintf("Applicant %s submitted application `%s`.", initial(app.FirstName), app.ID),
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Primary preference", Value: firstName, Inline: true},
			{Name: "Secondary preference", Value: secondName, Inline: true},
			{Name: "Year", Value: valueOr(app.Year, "Not given"), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Source: " + valueOr(app.Source, "web")},
		Timestamp: app.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r)) + "."
	}
	return "?"
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// Nop discards notifications.
type Nop struct{}

// ApplicationReceived does nothing.
func (Nop) ApplicationReceived(context.Context, *recruitprefs.Application, *recruitprefs.Option, *recruitprefs.Option) error {
	return nil
}
