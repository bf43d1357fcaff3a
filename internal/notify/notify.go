// Package notify defines how user-facing messages leave the application.
package notify

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/spigell/resumebek/internal/lang"
)

// Button is an inline link button attached to a message.
type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Message is a text with an optional button.
type Message struct {
	Text   string  `json:"text"`
	Button *Button `json:"button,omitempty"`
}

// MessageRef identifies a delivered message so it can be edited later.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

// Notifier delivers messages to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID int64, msg Message) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, msg Message) error
}

const (
	DefaultPhotoURL  = "https://aiphotos.kz"
	DefaultPromo     = "STUDENT"
	DefaultUTMSource = "resumebek"
	utmMedium        = "telegram"
)

// CTA configures the photo call-to-action link.
type CTA struct {
	URL       string `mapstructure:"url" validate:"omitempty,url"`
	Promo     string `mapstructure:"promo"`
	UTMSource string `mapstructure:"utm-source"`
}

// PhotoButton builds the localized photo offer button with a tracking URL for the user.
func PhotoButton(cta CTA, userID int64, l lang.Language) Button {
	l = l.OrDefault()

	base := strings.TrimSpace(cta.URL)
	if base == "" {
		base = DefaultPhotoURL
	}
	promo := strings.TrimSpace(cta.Promo)
	if promo == "" {
		promo = DefaultPromo
	}
	source := strings.TrimSpace(cta.UTMSource)
	if source == "" {
		source = DefaultUTMSource
	}

	query := url.Values{}
	query.Set("utm_source", source)
	query.Set("utm_medium", utmMedium)
	query.Set("user_id", strconv.FormatInt(userID, 10))
	query.Set("lang", string(l))
	query.Set("promo", promo)

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}

	return Button{
		Text: lang.Text(lang.PhotoButton, l),
		URL:  base + sep + query.Encode(),
	}
}
