package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"songfetch/internal/chat"
	"songfetch/internal/i18n"
)

// FloodGate limits how many jobs a user may start per minute.
type FloodGate interface {
	Allow(userID string) bool
}

// Dispatcher routes frontend events into resolution and delivery jobs.
type Dispatcher struct {
	config     *Config
	frontend   chat.Frontend
	resolver   Resolver
	searcher   Searcher
	classifier LinkClassifier
	downloader Downloader
	artifacts  ArtifactStore
	history    HistoryStore
	metrics    Metrics
	floodgate  FloodGate
	localizer  *i18n.Localizer
	logger     *zap.Logger

	// downloads coalesces concurrent downloads of the same track.
	downloads singleflight.Group

	pendingSelections map[string]*pendingSelection
	selectionMutex    sync.Mutex

	activeJobs atomic.Int64
	jobSeq     atomic.Int64
}

// pendingSelection is a search prompt waiting for the user to pick.
type pendingSelection struct {
	job    *Job
	cancel context.CancelFunc
}

// NewDispatcher creates a dispatcher wired to the provided components.
func NewDispatcher(
	config *Config,
	frontend chat.Frontend,
	resolver Resolver,
	searcher Searcher,
	classifier LinkClassifier,
	downloader Downloader,
	artifacts ArtifactStore,
	history HistoryStore,
	metrics Metrics,
	floodgate FloodGate,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		config:            config,
		frontend:          frontend,
		resolver:          resolver,
		searcher:          searcher,
		classifier:        classifier,
		downloader:        downloader,
		artifacts:         artifacts,
		history:           history,
		metrics:           metrics,
		floodgate:         floodgate,
		localizer:         i18n.NewLocalizer(config.App.Language),
		logger:            logger.Named("dispatcher"),
		pendingSelections: make(map[string]*pendingSelection),
	}
}

// Start connects the frontend and blocks processing updates until ctx ends.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("Starting dispatcher")

	if err := d.frontend.Start(ctx); err != nil {
		return fmt.Errorf("failed to start chat frontend: %w", err)
	}

	return d.frontend.Listen(ctx, chat.Handlers{
		OnMessage:     d.handleMessage,
		OnSelection:   d.handleSelection,
		OnInlineQuery: d.handleInlineQuery,
	})
}

// handleMessage routes one incoming chat message.
func (d *Dispatcher) handleMessage(ctx context.Context, msg *chat.Message) {
	switch msg.Text {
	case "/start":
		d.reply(ctx, msg, d.localizer.T("bot.start"))
		return
	case "/help":
		d.reply(ctx, msg, d.localizer.T("bot.help"))
		return
	case "/recent":
		d.sendRecentDeliveries(ctx, msg)
		return
	}

	if !d.floodgate.Allow(msg.SenderID) {
		d.logger.Warn("Flood limit hit", zap.String("user", msg.SenderID))
		d.reply(ctx, msg, d.localizer.T("error.flood"))
		return
	}

	if link, found := d.classifier.ExtractURL(msg.Text); found {
		d.startLinkJob(ctx, msg, link)
		return
	}

	d.startSearchFlow(ctx, msg)
}

// recentDeliveriesLimit caps how many history rows a /recent reply shows.
const recentDeliveriesLimit = 10

// sendRecentDeliveries replies with the latest successfully delivered tracks.
func (d *Dispatcher) sendRecentDeliveries(ctx context.Context, msg *chat.Message) {
	records, err := d.history.Recent(ctx, recentDeliveriesLimit)
	if err != nil {
		d.logger.Error("Failed to load delivery history", zap.Error(err))
		d.reply(ctx, msg, d.localizer.T("error.unknown"))
		return
	}

	var lines []string
	for _, rec := range records {
		if rec.Outcome != JobDelivered.String() {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s - %s", rec.Artist, rec.Title))
	}

	if len(lines) == 0 {
		d.reply(ctx, msg, d.localizer.T("history.empty"))
		return
	}

	d.reply(ctx, msg, d.localizer.T("history.recent")+"\n"+strings.Join(lines, "\n"))
}

// startLinkJob spawns the full pipeline for a direct link request.
func (d *Dispatcher) startLinkJob(ctx context.Context, msg *chat.Message, link string) {
	if _, ok := d.classifier.Recognize(link); !ok {
		d.reply(ctx, msg, d.localizer.T("error.unsupported_link"))
		return
	}

	job := d.newJob(OriginChat, msg.ChatID, msg.SenderID)
	go d.runChatJob(ctx, job, msg.ID, link)
}

// startSearchFlow searches for free text and prompts the user to choose.
func (d *Dispatcher) startSearchFlow(ctx context.Context, msg *chat.Message) {
	searchMsgID, err := d.frontend.SendText(ctx, msg.ChatID, msg.ID, d.localizer.T("status.searching"))
	if err != nil {
		d.logger.Error("Failed to send search status", zap.Error(err))
		return
	}

	query := d.classifier.NormalizeQuery(msg.Text)

	d.metrics.RecordSearch()
	candidates, err := d.searcher.Search(ctx, query, d.config.Search.Limit)
	if err != nil {
		d.logger.Error("Search failed", zap.String("query", query), zap.Error(err))
		d.editText(ctx, msg.ChatID, searchMsgID, d.failureText(FailureState(err)))
		return
	}

	// No results is a normal outcome and never becomes a job.
	if len(candidates) == 0 {
		d.editText(ctx, msg.ChatID, searchMsgID, d.localizer.T("search.none"))
		return
	}

	if err := d.frontend.DeleteMessage(ctx, msg.ChatID, searchMsgID); err != nil {
		d.logger.Debug("Failed to delete search status", zap.Error(err))
	}

	options := make([]chat.SelectionOption, 0, len(candidates))
	for _, c := range candidates {
		label := c.Title
		if c.ChannelName != "" {
			label = fmt.Sprintf("%s - %s", c.Title, c.ChannelName)
		}
		options = append(options, chat.SelectionOption{
			Label:   label,
			Payload: DownloadPayload(c.WatchLink),
		})
	}

	keyboardMsgID, err := d.frontend.SendSelectionKeyboard(ctx, msg.ChatID, d.localizer.T("search.results"), options)
	if err != nil {
		d.logger.Error("Failed to send selection keyboard", zap.Error(err))
		return
	}

	job := d.newJob(OriginChat, msg.ChatID, msg.SenderID)
	job.MessageID = keyboardMsgID
	job.Candidates = candidates
	d.transition(job, JobAwaitingSelection)

	d.armSelectionTimeout(ctx, job)
}

// armSelectionTimeout registers the prompt and cancels the job when the
// user never answers.
func (d *Dispatcher) armSelectionTimeout(ctx context.Context, job *Job) {
	timeout := time.Duration(d.config.App.SelectionTimeoutSecs) * time.Second
	waitCtx, cancel := context.WithTimeout(ctx, timeout)

	key := selectionKey(job.ChatID, job.MessageID)
	d.selectionMutex.Lock()
	d.pendingSelections[key] = &pendingSelection{job: job, cancel: cancel}
	d.selectionMutex.Unlock()

	go func() {
		<-waitCtx.Done()
		if waitCtx.Err() != context.DeadlineExceeded {
			return // answered or shutting down
		}

		d.selectionMutex.Lock()
		_, stillPending := d.pendingSelections[key]
		delete(d.pendingSelections, key)
		d.selectionMutex.Unlock()
		if !stillPending {
			return
		}

		d.logger.Info("Selection prompt expired",
			zap.String("chat", job.ChatID),
			zap.String("message", job.MessageID))

		if err := d.frontend.RemoveKeyboard(ctx, job.ChatID, job.MessageID, d.localizer.T("selection.expired")); err != nil {
			d.logger.Debug("Failed to expire keyboard", zap.Error(err))
		}
		d.finishJob(ctx, job, context.DeadlineExceeded)
	}()
}

// handleSelection routes one pressed selection button.
func (d *Dispatcher) handleSelection(ctx context.Context, event *chat.SelectionEvent) {
	selection := ParseSelection(event.Payload)
	if selection.Kind == SelectionInvalid {
		if err := d.frontend.AnswerCallback(ctx, event.CallbackID, d.localizer.T("selection.invalid")); err != nil {
			d.logger.Debug("Failed to answer callback", zap.Error(err))
		}
		return
	}

	if err := d.frontend.AnswerCallback(ctx, event.CallbackID, ""); err != nil {
		d.logger.Debug("Failed to answer callback", zap.Error(err))
	}

	switch selection.Kind {
	case SelectionDownload:
		d.resumeSelection(ctx, event, selection.Link)
	case SelectionInlineDownload:
		job := d.newJob(OriginInline, "", event.SenderID)
		job.InlineMessageID = event.InlineMessageID
		go d.runInlineJob(ctx, job, selection.Link)
	case SelectionInvalid:
	}
}

// resumeSelection continues a suspended search job, or starts a fresh one
// when the prompt is no longer tracked (e.g. after a restart).
func (d *Dispatcher) resumeSelection(ctx context.Context, event *chat.SelectionEvent, link string) {
	key := selectionKey(event.ChatID, event.MessageID)

	d.selectionMutex.Lock()
	pending, ok := d.pendingSelections[key]
	delete(d.pendingSelections, key)
	d.selectionMutex.Unlock()

	var job *Job
	if ok {
		pending.cancel()
		job = pending.job
		job.Candidates = nil
	} else {
		job = d.newJob(OriginChat, event.ChatID, event.SenderID)
	}

	if event.ChatID != "" && event.MessageID != "" {
		if err := d.frontend.DeleteMessage(ctx, event.ChatID, event.MessageID); err != nil {
			d.logger.Debug("Failed to delete selection prompt", zap.Error(err))
		}
	}

	go d.runChatJob(ctx, job, "", link)
}

// handleInlineQuery answers an inline search with selectable results.
func (d *Dispatcher) handleInlineQuery(ctx context.Context, query *chat.InlineQuery) {
	q := d.classifier.NormalizeQuery(query.Query)
	if q == "" {
		return
	}

	d.metrics.RecordSearch()
	candidates, err := d.searcher.Search(ctx, q, d.config.Search.InlineLimit)
	if err != nil {
		d.logger.Error("Inline search failed", zap.String("query", q), zap.Error(err))
		return
	}

	results := make([]chat.InlineResult, 0, len(candidates))
	for i, c := range candidates {
		description := c.ChannelName
		if c.DurationText != "" {
			description = fmt.Sprintf("%s · %s", c.ChannelName, c.DurationText)
		}
		results = append(results, chat.InlineResult{
			ID:          fmt.Sprintf("%d", i),
			Title:       c.Title,
			Description: description,
			Thumbnail:   c.Thumbnail,
			Text:        fmt.Sprintf("🎵 %s\n%s", c.Title, c.WatchLink),
			Payload:     InlinePayload(c.WatchLink),
			ButtonLabel: "⬇️ Fetch song",
		})
	}

	if err := d.frontend.AnswerInlineQuery(ctx, query.ID, results); err != nil {
		d.logger.Error("Failed to answer inline query", zap.Error(err))
	}
}

func (d *Dispatcher) newJob(origin Origin, chatID, requestedBy string) *Job {
	job := &Job{
		RequestID:   fmt.Sprintf("job-%d-%d", time.Now().Unix(), d.jobSeq.Add(1)),
		Origin:      origin,
		ChatID:      chatID,
		RequestedBy: requestedBy,
		State:       JobCreated,
		StartedAt:   time.Now(),
	}
	d.metrics.SetActiveJobs(int(d.activeJobs.Add(1)))
	return job
}

// transition moves a job to a new state and logs it.
func (d *Dispatcher) transition(job *Job, state JobState) {
	d.logger.Debug("Job state change",
		zap.String("job", job.RequestID),
		zap.String("from", job.State.String()),
		zap.String("to", state.String()))
	job.State = state
}

func (d *Dispatcher) reply(ctx context.Context, msg *chat.Message, text string) {
	if _, err := d.frontend.SendText(ctx, msg.ChatID, msg.ID, text); err != nil {
		d.logger.Error("Failed to send reply", zap.Error(err))
	}
}

func (d *Dispatcher) editText(ctx context.Context, chatID, messageID, text string) {
	if err := d.frontend.EditText(ctx, chatID, messageID, text); err != nil {
		d.logger.Debug("Failed to edit message", zap.Error(err))
	}
}

func selectionKey(chatID, messageID string) string {
	return chatID + ":" + messageID
}
