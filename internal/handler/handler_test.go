package handler

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mediagrab/internal/config"
	"github.com/set-night/mediagrab/internal/domain"
	"github.com/set-night/mediagrab/internal/service"
	"github.com/set-night/mediagrab/internal/storage"
	"github.com/set-night/mediagrab/internal/worker"
)

const (
	testUserID = 7
	testChatID = 123
	testURL    = "https://video.example/watch?id=1"
)

var testKey = domain.SessionKey{UserID: testUserID, ChatID: testChatID}

type upload struct {
	method    string
	filename  string
	size      int64
	title     string
	performer string
}

type fakeTransport struct {
	mu      sync.Mutex
	nextID  int
	texts   []string
	edits   []string
	deleted []int
	uploads []upload
	answers []string
}

func (f *fakeTransport) message() *models.Message {
	f.nextID++
	return &models.Message{ID: f.nextID}
}

func drain(in models.InputFile) (string, int64) {
	up, ok := in.(*models.InputFileUpload)
	if !ok {
		return "", 0
	}
	n, _ := io.Copy(io.Discard, up.Data)
	return up.Filename, n
}

func (f *fakeTransport) SendMessage(ctx context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, p.Text)
	return f.message(), nil
}

func (f *fakeTransport) SendPhoto(ctx context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, size := drain(p.Photo)
	f.uploads = append(f.uploads, upload{method: "photo", filename: name, size: size})
	return f.message(), nil
}

func (f *fakeTransport) SendVideo(ctx context.Context, p *bot.SendVideoParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, size := drain(p.Video)
	f.uploads = append(f.uploads, upload{method: "video", filename: name, size: size})
	return f.message(), nil
}

func (f *fakeTransport) SendAudio(ctx context.Context, p *bot.SendAudioParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, size := drain(p.Audio)
	f.uploads = append(f.uploads, upload{method: "audio", filename: name, size: size, title: p.Title, performer: p.Performer})
	return f.message(), nil
}

func (f *fakeTransport) SendVoice(ctx context.Context, p *bot.SendVoiceParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, size := drain(p.Voice)
	f.uploads = append(f.uploads, upload{method: "voice", filename: name, size: size})
	return f.message(), nil
}

func (f *fakeTransport) EditMessageText(ctx context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, p.Text)
	return &models.Message{ID: p.MessageID}, nil
}

func (f *fakeTransport) DeleteMessage(ctx context.Context, p *bot.DeleteMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, p.MessageID)
	return true, nil
}

func (f *fakeTransport) AnswerCallbackQuery(ctx context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, p.CallbackQueryID)
	return true, nil
}

func (f *fakeTransport) SendChatAction(ctx context.Context, p *bot.SendChatActionParams) (bool, error) {
	return true, nil
}

func (f *fakeTransport) allText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(append(append([]string{}, f.texts...), f.edits...), "\n")
}

type fakeEngine struct {
	mu          sync.Mutex
	info        domain.EngineInfo
	extractErr  error
	downloadErr error
	ext         string
	size        int64
	downloads   int
}

func (e *fakeEngine) Extract(ctx context.Context, url string, cookieFile string) (*domain.EngineInfo, error) {
	if e.extractErr != nil {
		return nil, e.extractErr
	}
	info := e.info
	return &info, nil
}

func (e *fakeEngine) Download(ctx context.Context, url string, opts domain.DownloadOptions) error {
	e.mu.Lock()
	e.downloads++
	e.mu.Unlock()
	if e.downloadErr != nil {
		return e.downloadErr
	}
	path := strings.Replace(opts.OutputTemplate, "%(ext)s", e.ext, 1)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Truncate(e.size)
}

type harness struct {
	h          *Handler
	transport  *fakeTransport
	engine     *fakeEngine
	sessions   *service.SessionStore
	dispatcher *worker.Dispatcher[domain.SessionKey]
	dir        string
}

func newHarness(t *testing.T, eng *fakeEngine) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		SessionTTL:      30 * time.Minute,
		DownloadTimeout: time.Minute,
		AdminIDs:        []int64{testUserID},
	}
	tr := &fakeTransport{}
	artifacts := storage.NewArtifactStore(dir)
	cookies := service.NewCookieSelector(t.TempDir())
	sessions := service.NewSessionStore()
	dispatcher := worker.New[domain.SessionKey](context.Background(), 4)

	h := New(Deps{
		Transport: tr,
		Cfg:       cfg,
		Sessions:  sessions,
		Resolver:  service.NewMetadataResolver(eng, cookies, nil, time.Minute),
		Downloader: service.NewDownloader(eng, cookies, artifacts, nil, service.DownloaderOptions{
			MaxAttempts: config.MaxAttempts,
			MaxFileSize: config.MaxFileSize,
		}),
		Artifacts:  artifacts,
		Dispatcher: dispatcher,
	})
	return &harness{h: h, transport: tr, engine: eng, sessions: sessions, dispatcher: dispatcher, dir: dir}
}

func (hs *harness) send(update *models.Update) {
	hs.h.Dispatch(context.Background(), update)
	hs.dispatcher.Wait()
}

func textUpdate(text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   1,
		From: &models.User{ID: testUserID},
		Chat: models.Chat{ID: testChatID},
		Text: text,
	}}
}

func choiceUpdate(data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb-1",
		From: models.User{ID: testUserID},
		Data: data,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: 2, Chat: models.Chat{ID: testChatID}},
		},
	}}
}

func staleChoiceUpdate(data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb-1",
		From: models.User{ID: testUserID},
		Data: data,
		Message: models.MaybeInaccessibleMessage{
			Type:                models.MaybeInaccessibleMessageTypeInaccessibleMessage,
			InaccessibleMessage: &models.InaccessibleMessage{Chat: models.Chat{ID: testChatID}, MessageID: 2},
		},
	}}
}

func (hs *harness) dirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(hs.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected empty download dir, got %v", names)
	}
}

func clipEngine() *fakeEngine {
	return &fakeEngine{
		info: domain.EngineInfo{Title: "Test Clip", ViewCount: 42, Uploader: "Alice"},
		ext:  "mp3",
		size: 41 << 20,
	}
}

func TestPipeline_AudioDelivered(t *testing.T) {
	hs := newHarness(t, clipEngine())

	hs.send(textUpdate(testURL))

	sess, ok := hs.sessions.Get(testKey)
	if !ok {
		t.Fatal("expected a session after URL intake")
	}
	if sess.State != domain.StateAwaitingFormat || sess.Metadata.Title != "Test Clip" || sess.Metadata.Author != "Alice" {
		t.Errorf("unexpected session: %+v", sess)
	}
	if !strings.Contains(hs.transport.allText(), "Choose a format") {
		t.Errorf("expected preview, got %q", hs.transport.allText())
	}

	hs.send(choiceUpdate("fmt:audio"))

	if len(hs.transport.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %+v", hs.transport.uploads)
	}
	up := hs.transport.uploads[0]
	if up.method != "audio" || up.title != "Test Clip" || up.performer != "Alice" {
		t.Errorf("unexpected upload: %+v", up)
	}
	if up.filename != "123_Test Clip.mp3" || up.size != 41<<20 {
		t.Errorf("unexpected file: %s (%d bytes)", up.filename, up.size)
	}
	if len(hs.transport.answers) != 1 || hs.transport.answers[0] != "cb-1" {
		t.Errorf("expected callback to be answered, got %v", hs.transport.answers)
	}
	if _, ok := hs.sessions.Get(testKey); ok {
		t.Error("session should be destroyed after delivery")
	}
	hs.dirEmpty(t)
}

func TestPipeline_EngineAlwaysFails(t *testing.T) {
	eng := clipEngine()
	eng.downloadErr = errors.New("connection reset by peer")
	hs := newHarness(t, eng)

	hs.send(textUpdate(testURL))
	hs.send(choiceUpdate("fmt:audio"))

	if eng.downloads != 3 {
		t.Errorf("expected 3 attempts, got %d", eng.downloads)
	}
	if !strings.Contains(hs.transport.allText(), "failed after 3 attempts") {
		t.Errorf("expected failure message, got %q", hs.transport.allText())
	}
	if len(hs.transport.uploads) != 0 {
		t.Errorf("nothing should be uploaded, got %+v", hs.transport.uploads)
	}
	if _, ok := hs.sessions.Get(testKey); ok {
		t.Error("session should be destroyed after failure")
	}
	hs.dirEmpty(t)
}

func TestPipeline_TooLarge(t *testing.T) {
	eng := clipEngine()
	eng.ext = "mp4"
	eng.size = config.MaxFileSize + 1
	hs := newHarness(t, eng)

	hs.send(textUpdate(testURL))
	hs.send(choiceUpdate("fmt:video"))

	if eng.downloads != 1 {
		t.Errorf("size rejection must not retry, got %d attempts", eng.downloads)
	}
	if !strings.Contains(hs.transport.allText(), "over the 48 MiB limit") {
		t.Errorf("expected size message, got %q", hs.transport.allText())
	}
	if _, ok := hs.sessions.Get(testKey); ok {
		t.Error("session should be destroyed")
	}
	hs.dirEmpty(t)
}

func TestPipeline_Unresolved(t *testing.T) {
	eng := clipEngine()
	eng.extractErr = errors.New("Unsupported URL")
	hs := newHarness(t, eng)

	hs.send(textUpdate(testURL))

	if _, ok := hs.sessions.Get(testKey); ok {
		t.Error("no session may be created for an unresolved URL")
	}
	if !strings.Contains(hs.transport.allText(), "Couldn't read this link") {
		t.Errorf("expected unresolved message, got %q", hs.transport.allText())
	}
}

func TestPipeline_ChoiceWithoutSession(t *testing.T) {
	hs := newHarness(t, clipEngine())

	hs.send(choiceUpdate("fmt:video"))

	if hs.engine.downloads != 0 {
		t.Error("no download may run without a session")
	}
	if !strings.Contains(hs.transport.allText(), "send the link again") {
		t.Errorf("expected resend prompt, got %q", hs.transport.allText())
	}
}

func TestPipeline_ChoiceOnInaccessiblePreview(t *testing.T) {
	hs := newHarness(t, clipEngine())

	hs.send(staleChoiceUpdate("fmt:audio"))

	if hs.engine.downloads != 0 {
		t.Error("no download may run without a session")
	}
	if !strings.Contains(hs.transport.allText(), "send the link again") {
		t.Errorf("expected resend prompt, got %q", hs.transport.allText())
	}
	if len(hs.transport.answers) != 1 {
		t.Errorf("callback must be answered, got %v", hs.transport.answers)
	}
}

func TestPipeline_UnknownVariantPromptsResend(t *testing.T) {
	hs := newHarness(t, clipEngine())

	hs.send(choiceUpdate("fmt:gif"))
	if !strings.Contains(hs.transport.allText(), "send the link again") {
		t.Errorf("expected resend prompt, got %q", hs.transport.allText())
	}

	hs = newHarness(t, clipEngine())
	hs.send(choiceUpdate("other"))
	if len(hs.transport.texts) != 0 || len(hs.transport.answers) != 1 {
		t.Errorf("foreign callback should only be answered, got texts %v", hs.transport.texts)
	}
}

func TestPipeline_SecondChoiceAfterTerminal(t *testing.T) {
	hs := newHarness(t, clipEngine())

	hs.send(textUpdate(testURL))
	hs.send(choiceUpdate("fmt:audio"))
	hs.send(choiceUpdate("fmt:audio"))

	if len(hs.transport.uploads) != 1 {
		t.Errorf("expected a single delivery, got %d", len(hs.transport.uploads))
	}
	if len(hs.transport.answers) != 2 {
		t.Errorf("both presses must be answered, got %v", hs.transport.answers)
	}
}

func TestPipeline_NewURLReplacesSession(t *testing.T) {
	hs := newHarness(t, clipEngine())

	hs.send(textUpdate(testURL))
	first, _ := hs.sessions.Get(testKey)

	hs.send(textUpdate("look at this https://video.example/watch?id=2"))
	second, ok := hs.sessions.Get(testKey)
	if !ok || second.ID == first.ID || second.URL != "https://video.example/watch?id=2" {
		t.Fatalf("expected replacement session, got %+v", second)
	}
	if hs.sessions.Len() != 1 {
		t.Errorf("expected one session, got %d", hs.sessions.Len())
	}

	found := false
	for _, id := range hs.transport.deleted {
		if id == first.MessageIDs[0] {
			found = true
		}
	}
	if !found {
		t.Errorf("previous preview %d not deleted: %v", first.MessageIDs[0], hs.transport.deleted)
	}
}

func TestPipeline_ReusesExistingArtifact(t *testing.T) {
	hs := newHarness(t, clipEngine())
	if err := os.WriteFile(hs.dir+"/123_Test Clip.mp3", []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}

	hs.send(textUpdate(testURL))
	hs.send(choiceUpdate("fmt:audio"))

	if hs.engine.downloads != 0 {
		t.Errorf("engine should not run for an existing artifact, got %d", hs.engine.downloads)
	}
	if len(hs.transport.uploads) != 1 || hs.transport.uploads[0].size != 6 {
		t.Errorf("expected cached file to be delivered, got %+v", hs.transport.uploads)
	}
	hs.dirEmpty(t)
}

func TestCommands(t *testing.T) {
	hs := newHarness(t, clipEngine())

	hs.send(textUpdate("/start"))
	if !strings.Contains(hs.transport.allText(), "Send me a link") {
		t.Errorf("expected welcome, got %q", hs.transport.allText())
	}

	hs.send(textUpdate(testURL))
	hs.send(textUpdate("/cancel"))
	if _, ok := hs.sessions.Get(testKey); ok {
		t.Error("cancel should drop the pending session")
	}
	if !strings.Contains(hs.transport.allText(), "Pending link dropped") {
		t.Errorf("expected cancel confirmation, got %q", hs.transport.allText())
	}

	hs.send(textUpdate("/stats"))
	if !strings.Contains(hs.transport.allText(), "📊 Stats") {
		t.Errorf("expected stats for admin, got %q", hs.transport.allText())
	}

	hs.send(textUpdate("hello there"))
	if !strings.Contains(hs.transport.allText(), "Send me a link (http or https)") {
		t.Errorf("expected link hint, got %q", hs.transport.allText())
	}
}

func TestSweepExpired(t *testing.T) {
	hs := newHarness(t, clipEngine())
	hs.h.cfg.SessionTTL = time.Nanosecond

	hs.send(textUpdate(testURL))
	time.Sleep(time.Millisecond)

	if n := hs.h.SweepExpired(context.Background()); n != 1 {
		t.Errorf("expected 1 expired session, got %d", n)
	}
	hs.send(choiceUpdate("fmt:audio"))
	if hs.engine.downloads != 0 {
		t.Error("expired session must not run")
	}
}
