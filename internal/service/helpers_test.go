package service

import (
	"game_portal_backend/internal/util"
	"sync"
	"testing"
)

type publishedEvent struct {
	topic string
	msg   WSMessage
}

// recordingFeed 记录所有推送，供断言使用
type recordingFeed struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *recordingFeed) Publish(topic string, msg WSMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{topic: topic, msg: msg})
}

func (f *recordingFeed) on(topic string) []WSMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []WSMessage
	for _, e := range f.events {
		if e.topic == topic {
			out = append(out, e.msg)
		}
	}
	return out
}

type staticPresence map[uint]bool

func (p staticPresence) IsUserOnline(userID uint) bool { return p[userID] }

func wantKind(t *testing.T, err error, kind util.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s", kind)
	}
	if got := util.KindOf(err); got != kind {
		t.Fatalf("error kind = %s (%v), want %s", got, err, kind)
	}
}
