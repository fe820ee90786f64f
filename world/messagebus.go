package world

import (
	"container/heap"
	"sync"

	"github.com/lixenwraith/enginecore/corevalue"
)

// QueueType names the three immediate message queues by their
// observable delivery point rather than the source engine's opaque
// NextFrame/AfterInitialized/Count slots: Deferred delivers at the next
// sync point, PostInit delivers once component initialization batches
// finish draining, Urgent delivers within the current dispatch pass.
type QueueType uint8

const (
	Deferred QueueType = iota
	PostInit
	Urgent
	queueTypeCount
)

// MessageTypeID identifies a message's payload kind; dispatch looks up
// the target's RTTI-registered handler for this id the same way
// variant dispatch looks up a Visitor method.
type MessageTypeID uint32

// Message is one envelope traveling through the bus.
type Message struct {
	TypeID    MessageTypeID
	Target    ObjectID
	Recursive bool
	ToComponentManager uint16 // 0 means "dispatch to object", else a manager id
	Payload   any
	Due       corevalue.Time // zero means immediate
}

// MessageHandler receives a dispatched message.
type MessageHandler func(Message)

// MessageBus holds the three immediate FIFO queues plus one timed
// companion heap per queue, so a caller can schedule a message for a
// future Time on any queue without it jumping ahead of already-due
// immediate messages on that same queue.
type MessageBus struct {
	mu     sync.Mutex
	queues [queueTypeCount][]Message
	timed  [queueTypeCount]timedHeap

	handlers map[MessageTypeID][]MessageHandler
}

type timedMessage struct {
	msg Message
	due corevalue.Time
}

// timedHeap is a container/heap min-heap on due time, the same
// heap.Interface shape the resource package's load priority queue uses.
// Keeping each queue's timed messages in a heap rather than a plain
// slice lets PromoteDue pop only the messages that are actually due in
// O(k log n) instead of re-sorting the whole backlog every call.
type timedHeap []timedMessage

func (h timedHeap) Len() int            { return len(h) }
func (h timedHeap) Less(i, j int) bool  { return h[i].due < h[j].due }
func (h timedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timedHeap) Push(x any)         { *h = append(*h, x.(timedMessage)) }
func (h *timedHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func NewMessageBus() *MessageBus {
	return &MessageBus{handlers: make(map[MessageTypeID][]MessageHandler)}
}

// RegisterHandler adds h as a recipient for every message of the given
// type id, invoked in registration order.
func (b *MessageBus) RegisterHandler(id MessageTypeID, h MessageHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[id] = append(b.handlers[id], h)
}

// Send enqueues msg on the named immediate queue, or on the timed queue
// if msg.Due is set to a time after now.
func (b *MessageBus) Send(queue QueueType, msg Message, now corevalue.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg.Due != 0 && msg.Due > now {
		heap.Push(&b.timed[queue], timedMessage{msg: msg, due: msg.Due})
		return
	}
	b.queues[queue] = append(b.queues[queue], msg)
}

// PromoteDue moves every timed message on queue whose due time has
// arrived into its immediate queue. A message with due == now is
// promoted (and thus delivered in the same frame it becomes due); the
// poll cost is O(number of due messages * log n), not O(n log n), since
// the heap only pops its current minimum until it finds one not yet due.
func (b *MessageBus) PromoteDue(queue QueueType, now corevalue.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := &b.timed[queue]
	for h.Len() > 0 && (*h)[0].due <= now {
		item := heap.Pop(h).(timedMessage)
		b.queues[queue] = append(b.queues[queue], item.msg)
	}
}

// Consume drains and returns every message currently queued under
// queue, preserving FIFO order.
func (b *MessageBus) Consume(queue QueueType) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.queues[queue]
	b.queues[queue] = nil
	return msgs
}

// Dispatch runs every registered handler for msg.TypeID, in
// registration order.
func (b *MessageBus) Dispatch(msg Message) {
	b.mu.Lock()
	handlers := append([]MessageHandler(nil), b.handlers[msg.TypeID]...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
}

// DispatchAll drains queue and dispatches every message in order.
func (b *MessageBus) DispatchAll(queue QueueType) int {
	msgs := b.Consume(queue)
	for _, m := range msgs {
		b.Dispatch(m)
	}
	return len(msgs)
}

// Len reports how many messages currently wait on queue.
func (b *MessageBus) Len(queue QueueType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[queue])
}
