package notifications

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

func TestLogNotifierWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Format: "json", Output: &buf})
	n := NewLogNotifier(logg, "hello@catalog.test")

	if err := n.SendWelcome(context.Background(), Welcome{UserID: 7, Email: "ana@example.com"}); err != nil {
		t.Fatalf("SendWelcome: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"to":"ana@example.com"`, `"user_id":7`, "welcome email queued"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}

func TestLogNotifierRequiresRecipient(t *testing.T) {
	if err := NewLogNotifier(nil, "").SendWelcome(context.Background(), Welcome{}); err == nil {
		t.Fatal("expected error without recipient")
	}
}
