package telegram

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

var errRejected = errors.New("request entity too large")

type sentFile struct {
	method    string
	filename  string
	data      []byte
	caption   string
	title     string
	performer string
	thumb     bool
}

type fakeTransport struct {
	mu        sync.Mutex
	nextID    int
	failSend  bool
	failPhoto bool

	messages []*bot.SendMessageParams
	photos   []*bot.SendPhotoParams
	files    []sentFile
	edits    []*bot.EditMessageTextParams
	deleted  []int
	actions  []models.ChatAction
}

func (f *fakeTransport) message() *models.Message {
	f.nextID++
	return &models.Message{ID: f.nextID}
}

func readUpload(in models.InputFile) (string, []byte) {
	up, ok := in.(*models.InputFileUpload)
	if !ok {
		return "", nil
	}
	data, _ := io.ReadAll(up.Data)
	return up.Filename, data
}

func (f *fakeTransport) SendMessage(ctx context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, p)
	return f.message(), nil
}

func (f *fakeTransport) SendPhoto(ctx context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPhoto {
		return nil, errRejected
	}
	f.photos = append(f.photos, p)
	if name, data := readUpload(p.Photo); name != "" {
		f.files = append(f.files, sentFile{method: "photo", filename: name, data: data, caption: p.Caption})
	}
	return f.message(), nil
}

func (f *fakeTransport) SendVideo(ctx context.Context, p *bot.SendVideoParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return nil, errRejected
	}
	name, data := readUpload(p.Video)
	f.files = append(f.files, sentFile{method: "video", filename: name, data: data, caption: p.Caption, thumb: p.Thumbnail != nil})
	return f.message(), nil
}

func (f *fakeTransport) SendAudio(ctx context.Context, p *bot.SendAudioParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return nil, errRejected
	}
	name, data := readUpload(p.Audio)
	f.files = append(f.files, sentFile{method: "audio", filename: name, data: data, caption: p.Caption,
		title: p.Title, performer: p.Performer, thumb: p.Thumbnail != nil})
	return f.message(), nil
}

func (f *fakeTransport) SendVoice(ctx context.Context, p *bot.SendVoiceParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return nil, errRejected
	}
	name, data := readUpload(p.Voice)
	f.files = append(f.files, sentFile{method: "voice", filename: name, data: data, caption: p.Caption})
	return f.message(), nil
}

func (f *fakeTransport) EditMessageText(ctx context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, p)
	return &models.Message{ID: p.MessageID}, nil
}

func (f *fakeTransport) DeleteMessage(ctx context.Context, p *bot.DeleteMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, p.MessageID)
	return true, nil
}

func (f *fakeTransport) AnswerCallbackQuery(ctx context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	return true, nil
}

func (f *fakeTransport) SendChatAction(ctx context.Context, p *bot.SendChatActionParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, p.Action)
	return true, nil
}
