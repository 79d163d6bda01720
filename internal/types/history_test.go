package types

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makeHistory(n int) []Message {
	msgs := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		msgs = append(msgs, Message{Role: role, Content: fmt.Sprintf("msg-%d", i)})
	}
	return msgs
}

func TestBoundHistoryKeepsMostRecent(t *testing.T) {
	history := makeHistory(35)

	bounded := BoundHistory(history, DefaultMaxHistory)
	if len(bounded) != DefaultMaxHistory {
		t.Fatalf("expected %d entries, got %d", DefaultMaxHistory, len(bounded))
	}

	// Oldest entries are dropped; relative order of the rest is preserved.
	if bounded[0].Content != "msg-15" {
		t.Errorf("expected first retained entry msg-15, got %s", bounded[0].Content)
	}
	if bounded[len(bounded)-1].Content != "msg-34" {
		t.Errorf("expected last retained entry msg-34, got %s", bounded[len(bounded)-1].Content)
	}
}

func TestBoundHistoryIdempotent(t *testing.T) {
	history := makeHistory(50)

	once := BoundHistory(history, DefaultMaxHistory)
	twice := BoundHistory(once, DefaultMaxHistory)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("bounding is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestBoundHistoryNoOpWhenShort(t *testing.T) {
	history := makeHistory(5)
	bounded := BoundHistory(history, DefaultMaxHistory)
	if diff := cmp.Diff(history, bounded); diff != "" {
		t.Errorf("short history should be untouched (-in +out):\n%s", diff)
	}
}

func TestBoundHistoryUnlimited(t *testing.T) {
	history := makeHistory(100)
	if got := BoundHistory(history, 0); len(got) != 100 {
		t.Errorf("max<=0 should be unbounded, got %d entries", len(got))
	}
}
