// Package notifier posts a short run summary to Telegram chats.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"ringkas/internal/markdown"
	"ringkas/internal/metrics"
	"ringkas/internal/report"
	"strconv"
	"sync"
	"time"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
)

// Sender delivers one MarkdownV2 message to one chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type Notifier struct {
	sender  Sender
	chatIDs []int64
	log     *slog.Logger

	mu       sync.Mutex
	lastSent map[int64]time.Time
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
}

func New(sender Sender, chatIDs []int64, log *slog.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		chatIDs:  chatIDs,
		log:      log,
		lastSent: make(map[int64]time.Time),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// NotifyRun sends the run summary to every chat. Failures are logged and
// joined; the caller decides whether they matter.
func (n *Notifier) NotifyRun(
	ctx context.Context,
	info report.RunInfo,
	r metrics.AggregateReport,
) error {
	if n == nil || len(n.chatIDs) == 0 {
		return nil
	}

	messages := FormatRun(info, r)

	var errs []error
	for _, chatID := range n.chatIDs {
		for i, text := range messages {
			if err := n.send(ctx, chatID, text); err != nil {
				n.log.ErrorContext(ctx, "Failed to send run summary",
					"error", err,
					"chatID", chatID,
					"part", i+1,
					"partCount", len(messages))

				errs = append(errs, fmt.Errorf("send to chat %d: %w", chatID, err))

				break
			}
		}
	}

	if len(errs) == 0 {
		n.log.InfoContext(ctx, "Run summary is sent",
			"chatCount", len(n.chatIDs),
			"messageCount", len(messages))
	}

	return errors.Join(errs...)
}

func (n *Notifier) send(ctx context.Context, chatID int64, text string) error {
	n.mu.Lock()
	last, exists := n.lastSent[chatID]
	n.mu.Unlock()

	if exists {
		if delay := chatDelay(chatID) - n.now().Sub(last); delay > 0 {
			n.log.DebugContext(ctx, "Rate limiting message",
				"chatID", chatID,
				"delay", delay)

			if err := n.sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	err := n.sender.Send(ctx, chatID, text)

	n.mu.Lock()
	n.lastSent[chatID] = n.now()
	n.mu.Unlock()

	return err
}

// Group chats have negative IDs and a stricter limit.
func chatDelay(chatID int64) time.Duration {
	if chatID < 0 {
		return groupChatRate
	}
	return privateChatRate
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FormatRun renders the run summary as MarkdownV2 messages that fit the
// Telegram length limit.
func FormatRun(info report.RunInfo, r metrics.AggregateReport) []string {
	header := markdown.Bold("Evaluation finished") + "\n" +
		markdown.EscapeV2(fmt.Sprintf("%s / %s, reference %s", info.Provider, info.Model, info.Reference)) + "\n\n"
	continued := markdown.Bold("Evaluation finished (continue)") + "\n\n"

	blocks := []string{
		line("Run", info.RunID),
		line("Items", strconv.Itoa(r.TotalItems)),
		line("Generated", fmt.Sprintf("%d (%.1f%%)", r.SuccessfulSummaries, r.SuccessRate*100)),
		"\n",
		line("ROUGE-1", f4(r.Summary.Rouge1)),
		line("ROUGE-2", f4(r.Summary.Rouge2)),
		line("ROUGE-L", f4(r.Summary.RougeL)),
		line("BLEU", strconv.FormatFloat(r.Summary.BLEU, 'f', 2, 64)),
	}

	if r.Semantic.Available {
		blocks = append(blocks, line("Semantic F1", f4(r.Summary.SemanticF1)))
	}

	categories := metrics.BreakdownBy(r.Items, metrics.ByCategory)
	if len(categories) > 0 {
		blocks = append(blocks, "\n"+markdown.Bold("ROUGE-1 by category")+"\n")
		for _, g := range categories {
			blocks = append(blocks, line(g.Key, fmt.Sprintf("%s (n=%d)", f4(g.Rouge1.Mean), g.Count)))
		}
	}

	return markdown.Split(header, continued, blocks, markdown.MaxMessageLength)
}

func line(name, value string) string {
	return "• " + markdown.EscapeV2(name+": "+value) + "\n"
}

func f4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
