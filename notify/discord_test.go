package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/recruitprefs"
)

type fakeExecutor struct {
	calls   int
	id      string
	token   string
	wait    bool
	params  *discordgo.WebhookParams
	options int
	err     error
}

func (f *fakeExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls++
	f.id, f.token, f.wait, f.params, f.options = webhookID, token, wait, data, len(options)
	return nil, f.err
}

func testApplication() *recruitprefs.Application {
	return &recruitprefs.Application{
		ID:                "APP_1754040600000_0123456789ABCDEF",
		FirstName:         "asha",
		LastName:          "Verma",
		Email:             "asha.verma@example.com",
		Phone:             "9876543210",
		RegNumber:         "23BCE1234",
		PrimaryDepartment: "technical",
		Source:            "web",
		SubmittedAt:       time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		id      string
		token   string
		wantErr bool
	}{
		{name: "valid", raw: "https://discord.com/api/webhooks/123/abc-DEF", id: "123", token: "abc-DEF"},
		{name: "trailing slash", raw: "https://discord.com/api/webhooks/123/abc/", id: "123", token: "abc"},
		{name: "http", raw: "http://discord.com/api/webhooks/123/abc", wantErr: true},
		{name: "missing token", raw: "https://discord.com/api/webhooks/123", wantErr: true},
		{name: "wrong path", raw: "https://discord.com/api/channels/123/abc", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, token, err := ParseWebhookURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWebhookURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestNewDiscordNotifier(t *testing.T) {
	n, err := NewDiscordNotifier("https://discord.com/api/webhooks/123/abc", "")
	require.NoError(t, err)
	assert.Equal(t, "Recruitment", n.username)

	_, err = NewDiscordNotifier("not a url", "")
	assert.ErrorIs(t, err, ErrInvalidWebhookURL)
}

func TestApplicationReceived(t *testing.T) {
	exec := &fakeExecutor{}
	n := NewDiscordNotifierWithExecutor(exec, "123", "tok", "Bot")
	app := testApplication()
	primary := &recruitprefs.Option{ID: "technical", Name: "Technical"}
	secondary := &recruitprefs.Option{ID: "design", Name: "Design"}

	require.NoError(t, n.ApplicationReceived(context.Background(), app, primary, secondary))
	require.Equal(t, 1, exec.calls)
	assert.Equal(t, "123", exec.id)
	assert.Equal(t, "tok", exec.token)
	assert.False(t, exec.wait)
	assert.Equal(t, 1, exec.options, "request carries the caller context")
	assert.Equal(t, "Bot", exec.params.Username)
	assert.NotNil(t, exec.params.AllowedMentions, "mentions are suppressed")

	require.Len(t, exec.params.Embeds, 1)
	embed := exec.params.Embeds[0]
	assert.Contains(t, embed.Description, "A.")
	assert.Contains(t, embed.Description, app.ID)
	assert.Equal(t, "Technical", embed.Fields[0].Value)
	assert.Equal(t, "Design", embed.Fields[1].Value)
	assert.Equal(t, "Not given", embed.Fields[2].Value)
	assert.Equal(t, "2025-08-01T09:30:00Z", embed.Timestamp)
}

func TestApplicationReceivedOmitsContactDetails(t *testing.T) {
	exec := &fakeExecutor{}
	n := NewDiscordNotifierWithExecutor(exec, "123", "tok", "")
	app := testApplication()

	require.NoError(t, n.ApplicationReceived(context.Background(), app, nil, nil))

	embed := exec.params.Embeds[0]
	texts := []string{embed.Title, embed.Description, embed.Footer.Text}
	for _, f := range embed.Fields {
		texts = append(texts, f.Name, f.Value)
	}
	for _, s := range texts {
		assert.NotContains(t, s, app.Email)
		assert.NotContains(t, s, app.Phone)
		assert.NotContains(t, s, app.RegNumber)
		assert.NotContains(t, s, app.LastName)
		assert.NotContains(t, s, "asha")
	}
	assert.Equal(t, "technical", embed.Fields[0].Value, "falls back to the department ID")
	assert.Equal(t, "None", embed.Fields[1].Value)
}

func TestApplicationReceivedErrors(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("429 too many requests")}
	n := NewDiscordNotifierWithExecutor(exec, "123", "tok", "")

	err := n.ApplicationReceived(context.Background(), testApplication(), nil, nil)
	assert.ErrorContains(t, err, "discord webhook failed")

	assert.ErrorIs(t, n.ApplicationReceived(context.Background(), nil, nil, nil), recruitprefs.ErrInvalidInput)
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "Z.", initial("  zoë"))
	assert.Equal(t, "?", initial("   "))
}

func TestNop(t *testing.T) {
	var n recruitprefs.Notifier = Nop{}
	assert.NoError(t, n.ApplicationReceived(context.Background(), nil, nil, nil))
}
