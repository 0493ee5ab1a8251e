package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between two messages to the same chat, Telegram answers 429 above ~30/min.
const telegramSendInterval = 2 * time.Second

var (
	ErrNotifierStopped = errors.New("notifier stopped")
	ErrQueueFull       = errors.New("message queue is full")
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var _ Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier queues alerts and sends them from a single background worker.
type TelegramNotifier struct {
	bot      sender
	chatID   int64
	interval time.Duration

	mu       sync.Mutex
	lastSend time.Time

	queue     chan LineMovement
	queueDone chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	stopOnce  sync.Once
}

// NewTelegramNotifier connects to the bot API and starts the sender.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	n := newTelegramNotifier(bot, chatID, telegramSendInterval)
	slog.Info("Telegram notifier initialized", "chat_id", chatID, "bot", bot.Self.UserName)
	return n, nil
}

func newTelegramNotifier(bot sender, chatID int64, interval time.Duration) *TelegramNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		interval:  interval,
		queue:     make(chan LineMovement, 100),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	go n.messageSender()
	return n
}

// QueueLen returns current number of messages in the send queue.
func (n *TelegramNotifier) QueueLen() int {
	return len(n.queue)
}

// NotifyLineMovement queues an alert without blocking.
func (n *TelegramNotifier) NotifyLineMovement(ctx context.Context, lm LineMovement) error {
	select {
	case <-n.ctx.Done():
		return ErrNotifierStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- lm:
		return nil
	default:
		slog.Warn("Telegram message queue is full, dropping line movement message", "player", lm.Player, "prop_type", lm.PropType)
		return ErrQueueFull
	}
}

// Stop sends whatever is queued and stops the worker.
func (n *TelegramNotifier) Stop() {
	n.stopOnce.Do(n.cancel)
	<-n.queueDone
}

func (n *TelegramNotifier) messageSender() {
	defer close(n.queueDone)
	for {
		select {
		case <-n.ctx.Done():
			// drain before exit
			for {
				select {
				case lm := <-n.queue:
					n.send(lm, false)
				default:
					return
				}
			}
		case lm := <-n.queue:
			n.send(lm, true)
		}
	}
}

func (n *TelegramNotifier) send(lm LineMovement, wait bool) {
	text := FormatLineMovement(lm)
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	n.mu.Lock()
	defer n.mu.Unlock()

	if elapsed := time.Since(n.lastSend); wait && elapsed < n.interval {
		select {
		case <-n.ctx.Done():
		case <-time.After(n.interval - elapsed):
		}
	}

	start := time.Now()
	n.lastSend = start
	_, err := n.bot.Send(msg)
	if err != nil {
		slog.Error("Telegram send: failed", "error", err, "player", lm.Player, "cycle_id", lm.CycleID)
		return
	}
	slog.Info("Telegram send: success",
		"player", lm.Player,
		"prop_type", lm.PropType,
		"cycle_id", lm.CycleID,
		"send_duration", time.Since(start),
		"delay_since_detection_sec", time.Since(lm.DetectedAt).Seconds(),
		"queue_length", len(n.queue))
}
