package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "score", "req-1")
	_, child := StartChildSpan(ctx, "rank")
	child.SetAttr("candidates", 3)
	child.End()
	root.End()

	if SpanFromContext(ctx) != root {
		t.Fatal("root span not in context")
	}
	if len(root.Children) != 1 || root.Children[0].TraceID != "req-1" {
		t.Fatalf("children = %+v", root.Children)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	root.Log(ctx, logger)
	out := buf.String()
	if strings.Count(out, "msg=span") != 2 || !strings.Contains(out, "candidates=3") {
		t.Errorf("log output:\n%s", out)
	}
}

func TestSpanLogSkippedAboveDebug(t *testing.T) {
	_, root := StartSpan(context.Background(), "score", "req-1")
	root.End()
	var buf bytes.Buffer
	root.Log(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	if buf.Len() != 0 {
		t.Errorf("span logged at info level: %s", buf.String())
	}
}

func TestChildWithoutParent(t *testing.T) {
	_, span := StartChildSpan(context.Background(), "orphan")
	if span.TraceID != "" {
		t.Errorf("TraceID = %q", span.TraceID)
	}
}
