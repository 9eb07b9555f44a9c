package sponsorship

import (
	"strings"
	"text/template"

	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship/templates"
	"github.com/pkg/errors"
)

const (
	// NotificationTitle is the fixed title of every new-sponsor notification.
	NotificationTitle = "New Sponsor!"
	// NotificationFooter is the fixed footer label of every new-sponsor notification.
	NotificationFooter = "Sponsorship Notifications"
	// ColorSuccess is the accent color of new-sponsor notifications.
	ColorSuccess = 0x00FF00
	// DefaultDescriptionTemplate renders the sponsor as a markdown link followed by the monthly amount.
	DefaultDescriptionTemplate = `[{{ .Login }}]({{ .ProfileURL }}) just donated ${{ .Amount }}!`

	// maxDescriptionLength is the embed description limit of the notification sink, in characters.
	maxDescriptionLength = 4096
)

// Notification is a sink-agnostic rich message.
type Notification struct {
	Title            string
	Description      string
	Color            int
	Footer           string
	SuppressMentions bool
}

// DescriptionData is the data made available to the description template.
type DescriptionData struct {
	Login      string
	ProfileURL string
	Amount     int64
}

// DescriptionTemplate renders notification descriptions.
type DescriptionTemplate struct {
	tmpl *template.Template
}

// NewDescriptionTemplate parses text. An empty text selects DefaultDescriptionTemplate.
func NewDescriptionTemplate(text string) (*DescriptionTemplate, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultDescriptionTemplate
	}
	tmpl, err := template.New("description").Funcs(templates.StandardFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse notification template")
	}
	return &DescriptionTemplate{tmpl: tmpl}, nil
}

// MustDescriptionTemplate is like NewDescriptionTemplate but panics on a parse error.
func MustDescriptionTemplate(text string) *DescriptionTemplate {
	t, err := NewDescriptionTemplate(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template for the given sponsor and amount.
func (t *DescriptionTemplate) Render(login, profileURL string, amount int64) (string, error) {
	var buf strings.Builder
	if err := t.tmpl.Execute(&buf, DescriptionData{Login: login, ProfileURL: profileURL, Amount: amount}); err != nil {
		return "", errors.Wrap(err, "failed to render notification template")
	}
	return helpers.Truncate(buf.String(), maxDescriptionLength), nil
}

// NewNotification builds the new-sponsor notification for event.
func NewNotification(event *Event, description *DescriptionTemplate) (*Notification, error) {
	if description == nil {
		description = defaultDescription
	}
	sponsor := event.Sponsorship.Sponsor
	text, err := description.Render(sponsor.Login, sponsor.HTMLURL, event.Sponsorship.Tier.MonthlyPriceInDollars)
	if err != nil {
		return nil, err
	}
	return &Notification{
		Title:            NotificationTitle,
		Description:      text,
		Color:            ColorSuccess,
		Footer:           NotificationFooter,
		SuppressMentions: true,
	}, nil
}

var defaultDescription = MustDescriptionTemplate(DefaultDescriptionTemplate)
