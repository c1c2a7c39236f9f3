package notify

import (
	"testing"
	"time"

	"github.com/vietddude/docpipe/internal/core/domain"
	"github.com/vietddude/docpipe/internal/session"
)

func networkErr() domain.ProcessingError {
	return domain.ProcessingError{
		Code:     domain.ErrorCodeNetwork,
		Message:  "connection reset",
		Severity: domain.SeverityMedium,
	}
}

func retryStrategy() domain.RecoveryStrategy {
	return domain.RecoveryStrategy{
		Type:        domain.StrategyRetry,
		Description: "Retrying after a transient connection problem",
		Automated:   true,
		MaxRetries:  3,
	}
}

func TestNewNotification_Template(t *testing.T) {
	n := NewNotification(networkErr(), retryStrategy(), domain.StageExtraction)

	if n.Title != "Network Error during extraction" {
		t.Errorf("unexpected title %q", n.Title)
	}
	if n.Stage != domain.StageExtraction {
		t.Errorf("unexpected stage %s", n.Stage)
	}
	if n.ID == "" {
		t.Error("notification needs an id")
	}
	if !n.AutoHide || n.Type != domain.NotificationWarning {
		t.Error("automated strategies should produce auto-hiding warnings")
	}

	if len(n.Actions) != 2 ||
		n.Actions[0].Action != domain.ActionRetry ||
		n.Actions[1].Action != domain.ActionSkip {
		t.Errorf("retry strategy should offer retry+skip, got %+v", n.Actions)
	}
}

func TestNewNotification_FallbackCarriesProcessor(t *testing.T) {
	strategy := domain.RecoveryStrategy{
		Type:              domain.StrategyFallback,
		Description:       "Switching to the alternative OCR engine",
		Automated:         true,
		FallbackProcessor: domain.FallbackAlternativeOCR,
	}
	n := NewNotification(networkErr(), strategy, domain.StageOCR)

	if len(n.Actions) != 2 || n.Actions[0].Action != domain.ActionFallback {
		t.Fatalf("fallback strategy should lead with use-alternative, got %+v", n.Actions)
	}
	data := n.Actions[0].Data
	if data == nil || data.Fallback == nil || data.Fallback.Processor != domain.FallbackAlternativeOCR {
		t.Errorf("fallback action should carry the processor name, got %+v", data)
	}
}

func TestNewNotification_ManualStaysVisible(t *testing.T) {
	strategy := domain.RecoveryStrategy{
		Type:        domain.StrategyManual,
		Description: "Repeated connection failures",
		UserAction:  "Please check your connection and try again",
	}
	n := NewNotification(networkErr(), strategy, domain.StageUpload)

	if n.AutoHide || n.Type != domain.NotificationError {
		t.Error("manual strategies should produce persistent error notifications")
	}
	if len(n.Actions) != 2 ||
		n.Actions[0].Action != domain.ActionRetry ||
		n.Actions[1].Action != domain.ActionCancel {
		t.Errorf("manual strategy should offer retry+cancel, got %+v", n.Actions)
	}
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	d := NewDispatcher(session.NewStore(), 8)
	token, ch := d.Subscribe()
	defer d.Unsubscribe(token)

	first := NewNotification(networkErr(), retryStrategy(), domain.StageUpload)
	second := NewNotification(networkErr(), retryStrategy(), domain.StageOCR)
	d.PublishNotification(first)
	d.PublishNotification(second)

	if got := <-ch; got.ID != first.ID {
		t.Errorf("expected first notification, got %s", got.ID)
	}
	if got := <-ch; got.ID != second.ID {
		t.Errorf("expected second notification, got %s", got.ID)
	}
}

func TestDispatcher_LateSubscriberMissesHistory(t *testing.T) {
	d := NewDispatcher(session.NewStore(), 8)
	d.PublishNotification(NewNotification(networkErr(), retryStrategy(), domain.StageUpload))

	token, ch := d.Subscribe()
	defer d.Unsubscribe(token)

	select {
	case n := <-ch:
		t.Errorf("late subscriber should see nothing, got %s", n.ID)
	default:
	}
}

func TestDispatcher_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	d := NewDispatcher(session.NewStore(), 1)
	token, ch := d.Subscribe()
	defer d.Unsubscribe(token)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.PublishNotification(NewNotification(networkErr(), retryStrategy(), domain.StageUpload))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a full subscriber buffer")
	}

	// Exactly the buffered notification survives.
	<-ch
	select {
	case <-ch:
		t.Error("expected the rest to be dropped")
	default:
	}
}

func TestDispatcher_UnsubscribeClosesChannel(t *testing.T) {
	d := NewDispatcher(session.NewStore(), 4)
	token, ch := d.Subscribe()
	d.Unsubscribe(token)

	if _, open := <-ch; open {
		t.Error("channel should be closed after unsubscribe")
	}

	// Publishing afterwards must not panic.
	d.PublishNotification(NewNotification(networkErr(), retryStrategy(), domain.StageUpload))
}

func TestDispatcher_SubscribersGetDetachedCopies(t *testing.T) {
	d := NewDispatcher(session.NewStore(), 4)
	tokenA, chA := d.Subscribe()
	defer d.Unsubscribe(tokenA)
	tokenB, chB := d.Subscribe()
	defer d.Unsubscribe(tokenB)

	published := NewNotification(networkErr(), retryStrategy(), domain.StageUpload)
	d.PublishNotification(published)

	a, b := <-chA, <-chB
	if a == b || a == published || b == published {
		t.Fatal("subscribers must not share a notification pointer")
	}

	a.Title = "mutated"
	a.Actions[0].Label = "mutated"
	if b.Title == "mutated" || b.Actions[0].Label == "mutated" {
		t.Error("mutating one subscriber's copy leaked into another's")
	}
	if published.Title == "mutated" {
		t.Error("mutating a delivered copy leaked into the original")
	}
}

func TestDispatcher_ProgressFeed(t *testing.T) {
	d := NewDispatcher(session.NewStore(), 4)
	token, ch := d.SubscribeProgress()
	defer d.UnsubscribeProgress(token)

	d.PublishProgress(domain.ProgressUpdate{SessionID: "sess-1", Stage: domain.StageOCR, Progress: 40})

	got := <-ch
	if got.SessionID != "sess-1" || got.Progress != 40 {
		t.Errorf("unexpected progress update %+v", got)
	}
}
