package resource

import (
	"container/heap"
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// workItem is one queued load request: the resource to load and the type
// name selecting which registered Loader handles it.
type workItem struct {
	resource *Resource
	typeName string
	index    int
}

// priorityQueue orders workItems by ascending priority score (computed
// fresh at push time); ties broken by insertion order via container/heap's
// stable index bookkeeping.
type priorityQueue struct {
	items []*workItem
	score map[*Resource]float64
}

func (q *priorityQueue) Len() int { return len(q.items) }
func (q *priorityQueue) Less(i, j int) bool {
	return q.score[q.items[i].resource] < q.score[q.items[j].resource]
}
func (q *priorityQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index, q.items[j].index = i, j
}
func (q *priorityQueue) Push(x any) {
	item := x.(*workItem)
	item.index = len(q.items)
	q.items = append(q.items, item)
}
func (q *priorityQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}

// workerPool is the bounded pool of load workers: a priority queue guarded
// by a mutex/condvar, with a semaphore bounding concurrently in-flight
// loads to the pool's worker count.
type workerPool struct {
	manager *Manager

	mu      sync.Mutex
	queue   priorityQueue
	queued  map[string]bool // uniqueID -> already queued, the at-most-one rule
	cond    *sync.Cond
	sem     *semaphore.Weighted
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func newWorkerPool(workers int, m *Manager) *workerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &workerPool{
		manager: m,
		queue:   priorityQueue{score: make(map[*Resource]float64)},
		queued:  make(map[string]bool),
		sem:     semaphore.NewWeighted(int64(workers)),
		ctx:     ctx,
		cancel:  cancel,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(1)
	go p.dispatchLoop()
	return p
}

// enqueue bumps the resource's priority if it is already queued, and
// otherwise adds it; this is the at-most-one-in-flight rule: a resource
// never has more than one pending or running load task.
func (p *workerPool) enqueue(r *Resource, typeName string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queued[r.UniqueID] {
		p.queue.score[r] = r.priorityScore(p.manager.clock())
		heap.Fix(&p.queue, p.findIndex(r))
		p.cond.Signal()
		return
	}

	r.mu.Lock()
	r.queuedForLoad = true
	r.mu.Unlock()

	p.queued[r.UniqueID] = true
	item := &workItem{resource: r, typeName: typeName}
	p.queue.score[r] = r.priorityScore(p.manager.clock())
	heap.Push(&p.queue, item)
	p.cond.Signal()
}

func (p *workerPool) findIndex(r *Resource) int {
	for i, it := range p.queue.items {
		if it.resource == r {
			return i
		}
	}
	return -1
}

func (p *workerPool) dispatchLoop() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.queue.Len() == 0 {
			if p.ctx.Err() != nil {
				p.mu.Unlock()
				return
			}
			p.cond.Wait()
		}
		if p.ctx.Err() != nil {
			p.mu.Unlock()
			return
		}
		item := heap.Pop(&p.queue).(*workItem)
		delete(p.queue.score, item.resource)
		p.mu.Unlock()

		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return
		}
		p.wg.Add(1)
		go func(it *workItem) {
			defer p.wg.Done()
			defer p.sem.Release(1)
			defer func() {
				p.mu.Lock()
				delete(p.queued, it.resource.UniqueID)
				p.mu.Unlock()
			}()
			p.runLoad(it)
		}(item)
	}
}

func (p *workerPool) runLoad(item *workItem) {
	p.manager.mu.Lock()
	loader, ok := p.manager.loaders[item.typeName]
	p.manager.mu.Unlock()
	if !ok {
		item.resource.MarkMissing(ErrLoaderFailed)
		return
	}

	desc, payload, err := runLoaderWithRetry(p.ctx, loader, item.resource.UniqueID)
	if err != nil {
		if shouldReport := item.resource.MarkMissing(err); shouldReport {
			p.manager.reportMissing(item.resource.UniqueID)
		}
		return
	}

	item.resource.setPayload(payload)
	if err := item.resource.ApplyLoadDesc(desc); err != nil {
		item.resource.MarkMissing(err)
		return
	}
	p.manager.notifyReload(item.resource.UniqueID, desc.State)
}

// shutdown cancels outstanding work and waits for in-flight loads to
// finish, per the manager's shutdown contract.
func (p *workerPool) shutdown() {
	p.cancel()
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}
