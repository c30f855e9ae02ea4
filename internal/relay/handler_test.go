package relay

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSSEHandlerStreamsEvents(t *testing.T) {
	broker := NewBroker()
	srv := httptest.NewServer(SSEHandler(broker))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q", got)
	}

	// wait until the handler has subscribed before publishing
	deadline := time.Now().Add(2 * time.Second)
	for broker.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	broker.PublishJSON(FeedRun, map[string]string{"status": "started"})

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	chunk := string(buf[:n])
	if !strings.Contains(chunk, "event: run") || !strings.Contains(chunk, `"status":"started"`) {
		t.Fatalf("stream chunk = %q", chunk)
	}
}

func TestParseFeedFilter(t *testing.T) {
	if parseFeedFilter("") != nil {
		t.Fatal("empty query should disable filtering")
	}

	filter := parseFeedFilter("run, verdict")
	if !filter["run"] || !filter["verdict"] || filter["step"] {
		t.Fatalf("filter = %v", filter)
	}
}
