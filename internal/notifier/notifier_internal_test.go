package notifier

import (
	"context"
	"errors"
	"log/slog"
	"ringkas/internal/markdown"
	"ringkas/internal/metrics"
	"ringkas/internal/report"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   map[int64][]string
	failOn int64
}

func (s *recordingSender) Send(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chatID == s.failOn {
		return errors.New("chat not found")
	}

	if s.sent == nil {
		s.sent = make(map[int64][]string)
	}
	s.sent[chatID] = append(s.sent[chatID], text)

	return nil
}

func newTestNotifier(sender Sender, chatIDs []int64) (*Notifier, *[]time.Duration) {
	n := New(sender, chatIDs, slog.New(slog.DiscardHandler))

	var slept []time.Duration
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return clock }
	n.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	return n, &slept
}

func testReport() metrics.AggregateReport {
	return metrics.AggregateReport{
		TotalItems:          2,
		SuccessfulSummaries: 1,
		SuccessRate:         0.5,
		Summary:             metrics.Headline{Rouge1: 0.4, Rouge2: 0.2, RougeL: 0.3, BLEU: 12.5},
		Items: []metrics.ItemScore{
			{ID: "a", Category: "teknologi", Rouge1: 0.8, Generated: true},
			{ID: "b", Category: "hiburan"},
		},
	}
}

func TestFormatRunEscapesAndListsCategories(t *testing.T) {
	messages := FormatRun(report.RunInfo{RunID: "run-1", Provider: "openai", Model: "gpt-4o-mini"}, testReport())

	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	msg := messages[0]
	for _, want := range []string{`ROUGE\-1: 0\.4000`, `BLEU: 12\.50`, `teknologi: 0\.8000 \(n\=1\)`, `hiburan`, `gpt\-4o\-mini`} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in message:\n%s", want, msg)
		}
	}

	if strings.Contains(msg, "Semantic") {
		t.Fatalf("expected semantic line to be omitted when unavailable")
	}
}

func TestFormatRunSplitsLongSummaries(t *testing.T) {
	r := testReport()
	for i := range 400 {
		r.Items = append(r.Items, metrics.ItemScore{Category: strings.Repeat("k", 20) + string(rune('a'+i%26)) + strings.Repeat("x", i)})
	}

	messages := FormatRun(report.RunInfo{}, r)
	if len(messages) < 2 {
		t.Fatalf("expected summary to be split, got %d messages", len(messages))
	}

	for _, m := range messages {
		if len(m) > markdown.MaxMessageLength {
			t.Fatalf("message exceeds limit: %d", len(m))
		}
	}
}

func TestNotifyRunSendsToEveryChat(t *testing.T) {
	sender := &recordingSender{}
	n, _ := newTestNotifier(sender, []int64{1, -100})

	if err := n.NotifyRun(context.Background(), report.RunInfo{}, testReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent[1]) != 1 || len(sender.sent[-100]) != 1 {
		t.Fatalf("unexpected deliveries: %v", sender.sent)
	}
}

func TestNotifyRunJoinsFailures(t *testing.T) {
	sender := &recordingSender{failOn: 2}
	n, _ := newTestNotifier(sender, []int64{1, 2, 3})

	err := n.NotifyRun(context.Background(), report.RunInfo{}, testReport())
	if err == nil {
		t.Fatalf("expected error for failing chat")
	}

	if !strings.Contains(err.Error(), "chat 2") {
		t.Fatalf("expected error to name chat 2, got %v", err)
	}

	if len(sender.sent[1]) != 1 || len(sender.sent[3]) != 1 {
		t.Fatalf("expected other chats to still receive the summary: %v", sender.sent)
	}
}

func TestNotifyRunWithoutChats(t *testing.T) {
	sender := &recordingSender{}
	n, _ := newTestNotifier(sender, nil)

	if err := n.NotifyRun(context.Background(), report.RunInfo{}, testReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var nilNotifier *Notifier
	if err := nilNotifier.NotifyRun(context.Background(), report.RunInfo{}, testReport()); err != nil {
		t.Fatalf("unexpected error from nil notifier: %v", err)
	}
}

func TestSendPacesRepeatedMessages(t *testing.T) {
	sender := &recordingSender{}
	n, slept := newTestNotifier(sender, nil)
	ctx := context.Background()

	for range 2 {
		if err := n.send(ctx, -5, "x"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(*slept) != 1 || (*slept)[0] != groupChatRate {
		t.Fatalf("expected one group chat delay, got %v", *slept)
	}

	if chatDelay(7) != privateChatRate {
		t.Fatalf("unexpected private chat delay")
	}
}

func TestNewTelegramSenderRequiresToken(t *testing.T) {
	if _, err := NewTelegramSender(""); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}
