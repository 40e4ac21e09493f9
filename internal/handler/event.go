package handler

import (
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/set-night/mediagrab/internal/config"
	"github.com/set-night/mediagrab/internal/domain"
	"github.com/set-night/mediagrab/internal/service"
)

// EventKind is what an inbound update asks for.
type EventKind int

const (
	EventIgnored EventKind = iota
	EventCommand
	EventURL
	EventText
	EventChoice
	EventUnknownChoice
)

// Event is a classified update.
type Event struct {
	Kind       EventKind
	Key        domain.SessionKey
	Command    string
	URL        string
	Variant    domain.Variant
	CallbackID string
}

// Classify turns a raw update into an Event.
func Classify(update *models.Update) Event {
	switch {
	case update.Message != nil:
		return classifyMessage(update.Message)
	case update.CallbackQuery != nil:
		return classifyCallback(update.CallbackQuery)
	}
	return Event{Kind: EventIgnored}
}

func classifyMessage(msg *models.Message) Event {
	if msg.From == nil {
		return Event{Kind: EventIgnored}
	}
	ev := Event{Key: domain.SessionKey{UserID: msg.From.ID, ChatID: msg.Chat.ID}}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return Event{Kind: EventIgnored}
	}

	if strings.HasPrefix(text, "/") {
		ev.Kind = EventCommand
		ev.Command = commandName(text)
		return ev
	}

	if u, ok := FindURL(text); ok {
		ev.Kind = EventURL
		ev.URL = u
		return ev
	}

	ev.Kind = EventText
	return ev
}

func classifyCallback(q *models.CallbackQuery) Event {
	ev := Event{CallbackID: q.ID, Kind: EventUnknownChoice}
	if !strings.HasPrefix(q.Data, config.VariantCallbackPrefix) {
		return ev
	}

	// Previews older than 48h arrive as inaccessible messages.
	switch {
	case q.Message.Message != nil:
		ev.Key = domain.SessionKey{UserID: q.From.ID, ChatID: q.Message.Message.Chat.ID}
	case q.Message.InaccessibleMessage != nil:
		ev.Key = domain.SessionKey{UserID: q.From.ID, ChatID: q.Message.InaccessibleMessage.Chat.ID}
	default:
		return ev
	}

	v, err := domain.ParseVariant(strings.TrimPrefix(q.Data, config.VariantCallbackPrefix))
	if err != nil {
		return ev
	}
	ev.Kind = EventChoice
	ev.Variant = v
	return ev
}

// commandName extracts "start" from "/start@SomeBot payload".
func commandName(text string) string {
	name := strings.Fields(text)[0]
	name = strings.TrimPrefix(name, "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// FindURL returns the first http(s) URL among the whitespace-separated tokens of text.
func FindURL(text string) (string, bool) {
	for _, token := range strings.Fields(text) {
		token = strings.TrimRight(token, ".,;!?)]}>\"'")
		token = strings.TrimLeft(token, "(<[{\"'")
		if service.IsMediaURL(token) {
			return token, true
		}
	}
	return "", false
}
