package realtime

import (
	"sync"

	"github.com/run-bigpig/nexus/internal/logger"
)

var log = logger.New("Realtime")

const defaultBuffer = 64

// Hub 按会话分发事件的内存中枢
// 订阅者各持一个带缓冲的 channel，消费过慢时事件被丢弃而不是阻塞发布方
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber
}

type subscriber struct {
	ch     chan Event
	closed bool
}

// NewHub 创建事件中枢
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string][]*subscriber)}
}

// Subscribe 订阅指定会话的事件，返回只读 channel 与取消函数。
// 取消后 channel 关闭，重复取消是安全的
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, defaultBuffer)}

	h.mu.Lock()
	h.subscribers[sessionID] = append(h.subscribers[sessionID], sub)
	h.mu.Unlock()

	sub.ch <- Event{Type: EventConnected, SessionID: sessionID}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			subs := h.subscribers[sessionID]
			for i, s := range subs {
				if s == sub {
					h.subscribers[sessionID] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			if len(h.subscribers[sessionID]) == 0 {
				delete(h.subscribers, sessionID)
			}
			sub.closed = true
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish 向会话的全部订阅者派发事件，无订阅者时为空操作
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[event.SessionID] {
		if sub.closed {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			log.Warn("subscriber buffer full, dropping %s event for session %s", event.Type, event.SessionID)
		}
	}
}

// SubscriberCount 会话当前的订阅者数量
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}
