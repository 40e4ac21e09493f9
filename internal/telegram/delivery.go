package telegram

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mediagrab/internal/domain"
)

// ArtifactCleaner removes every file of an artifact name.
type ArtifactCleaner interface {
	Cleanup(base string)
}

// Parcel is a produced artifact addressed to a chat.
type Parcel struct {
	ChatID   int64
	Base     string
	Artifact *domain.Artifact
	Metadata domain.Metadata
}

// Delivery uploads artifacts and always removes them afterwards.
type Delivery struct {
	transport Transport
	cleaner   ArtifactCleaner
}

func NewDelivery(transport Transport, cleaner ArtifactCleaner) *Delivery {
	return &Delivery{transport: transport, cleaner: cleaner}
}

// Deliver sends the artifact in the shape its variant calls for. The artifact's
// files are removed whether or not the upload succeeds.
func (d *Delivery) Deliver(ctx context.Context, p Parcel) error {
	defer d.cleaner.Cleanup(p.Base)

	f, err := os.Open(p.Artifact.Path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	upload := &models.InputFileUpload{Filename: filepath.Base(p.Artifact.Path), Data: f}
	caption := MediaCaption(p.Metadata)

	var thumb models.InputFile
	if len(p.Artifact.Thumbnail) > 0 {
		thumb = &models.InputFileUpload{Filename: "thumb.jpg", Data: bytes.NewReader(p.Artifact.Thumbnail)}
	}

	switch p.Artifact.Variant {
	case domain.VariantVideo:
		_, err = d.transport.SendVideo(ctx, &bot.SendVideoParams{
			ChatID:            p.ChatID,
			Video:             upload,
			Caption:           caption,
			Thumbnail:         thumb,
			SupportsStreaming: true,
		})
	case domain.VariantAudio:
		_, err = d.transport.SendAudio(ctx, &bot.SendAudioParams{
			ChatID:    p.ChatID,
			Audio:     upload,
			Title:     p.Metadata.Title,
			Performer: p.Metadata.Author,
			Thumbnail: thumb,
		})
	case domain.VariantVoice:
		_, err = d.transport.SendVoice(ctx, &bot.SendVoiceParams{
			ChatID:  p.ChatID,
			Voice:   upload,
			Caption: caption,
		})
	case domain.VariantThumbnail:
		_, err = d.transport.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:  p.ChatID,
			Photo:   upload,
			Caption: caption,
		})
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownVariant, p.Artifact.Variant)
	}
	if err != nil {
		return fmt.Errorf("send %s: %w", p.Artifact.Variant, err)
	}
	return nil
}
