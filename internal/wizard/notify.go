package wizard

import (
	"sync"
	"time"
)

// NoticeKind classifies a notice.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a dismissible user-facing message.
type Notice struct {
	ID      uint64
	Kind    NoticeKind
	Title   string
	Message string
	// Retryable marks failures the user can retry from the same view.
	Retryable bool
	At        time.Time
}

// maxActive bounds the active list; the oldest notice is evicted first.
const maxActive = 16

// Notifier queues notices and fans them out to subscribers. Each controller
// owns one; there is no process-wide instance.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64
	active []Notice
	subs   map[uint64]chan Notice
	subSeq uint64
	now    func() time.Time
}

// NewNotifier returns an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uint64]chan Notice), now: time.Now}
}

// Publish records a notice and delivers it to subscribers. A notice
// supersedes any active one with the same kind and title. Slow
// subscribers miss notices rather than block the publisher.
func (n *Notifier) Publish(kind NoticeKind, title, message string, retryable bool) Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	notice := Notice{
		ID:        n.nextID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Retryable: retryable,
		At:        n.now(),
	}
	kept := n.active[:0]
	for _, old := range n.active {
		if old.Kind != kind || old.Title != title {
			kept = append(kept, old)
		}
	}
	n.active = append(kept, notice)
	if over := len(n.active) - maxActive; over > 0 {
		n.active = append(n.active[:0:0], n.active[over:]...)
	}

	for _, ch := range n.subs {
		select {
		case ch <- notice:
		default:
		}
	}
	return notice
}

// Subscribe returns a channel of future notices and a cancel func that
// closes it.
func (n *Notifier) Subscribe(buffer int) (<-chan Notice, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.subSeq++
	id := n.subSeq
	ch := make(chan Notice, buffer)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

// Dismiss removes an active notice. It reports whether the id was active.
func (n *Notifier) Dismiss(id uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, notice := range n.active {
		if notice.ID == id {
			n.active = append(n.active[:i:i], n.active[i+1:]...)
			return true
		}
	}
	return false
}

// Active returns the notices not yet dismissed, oldest first.
func (n *Notifier) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.active...)
}
