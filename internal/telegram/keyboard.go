package telegram

import (
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mediagrab/internal/config"
	"github.com/set-night/mediagrab/internal/domain"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// URLButton creates a URL inline keyboard button.
func URLButton(text, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text: text,
		URL:  url,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// VariantOption is one selectable output kind.
type VariantOption struct {
	Variant domain.Variant
	Label   string
}

// Links are the two static links shown under the variant choices.
type Links struct {
	Support string
	Channel string
}

var variantLabels = map[domain.Variant]string{
	domain.VariantVideo:     "🎬 Video",
	domain.VariantAudio:     "🎵 Audio",
	domain.VariantVoice:     "🎙 Voice note",
	domain.VariantThumbnail: "🖼 Thumbnail",
}

// VariantOptions lists the variants offered for every resolved URL, in order.
func VariantOptions() []VariantOption {
	opts := make([]VariantOption, len(domain.Variants))
	for i, v := range domain.Variants {
		opts[i] = VariantOption{Variant: v, Label: variantLabels[v]}
	}
	return opts
}

// VariantCallbackData is the callback payload of a variant button.
func VariantCallbackData(v domain.Variant) string {
	return config.VariantCallbackPrefix + string(v)
}

// VariantKeyboard lays out the variant buttons two per row, then the links.
func VariantKeyboard(links Links) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, opt := range VariantOptions() {
		row = append(row, InlineButton(opt.Label, VariantCallbackData(opt.Variant)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if row := linkRow(links); len(row) > 0 {
		rows = append(rows, row)
	}
	return InlineKeyboard(rows...)
}

// LinksKeyboard holds only the support and channel links. Nil when neither is set.
func LinksKeyboard(links Links) *models.InlineKeyboardMarkup {
	row := linkRow(links)
	if len(row) == 0 {
		return nil
	}
	return InlineKeyboard(row)
}

func linkRow(links Links) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton
	if links.Support != "" {
		row = append(row, URLButton("💬 Support", links.Support))
	}
	if links.Channel != "" {
		row = append(row, URLButton("📢 Channel", links.Channel))
	}
	return row
}
