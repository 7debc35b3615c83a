// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

type task struct {
	execute  time.Time
	interval time.Duration // > 0 reschedules after firing
	callback func()
}

type taskQueue []*task

func (q taskQueue) Len() int            { return len(q) }
func (q taskQueue) Less(i, j int) bool  { return q[i].execute.Before(q[j].execute) }
func (q taskQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *taskQueue) Push(x interface{}) { *q = append(*q, x.(*task)) }

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	*q = old[:n-1]
	return t
}

// Manager drives scheduled callbacks off a coarse 100ms tick. Used for
// the idle-session sweep; callbacks run on their own goroutines.
type Manager struct {
	queue    taskQueue
	mutex    sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager() *Manager {
	m := &Manager{
		queue:    make(taskQueue, 0),
		stopChan: make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.process()
	return m
}

// Schedule registers a callback after delay; interval > 0 makes it
// recurring.
func (m *Manager) Schedule(delay, interval time.Duration, callback func()) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	heap.Push(&m.queue, &task{
		execute:  time.Now().Add(delay),
		interval: interval,
		callback: callback,
	})
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Manager) process() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return

		case <-ticker.C:
			now := time.Now()

			m.mutex.Lock()
			var due []*task
			for m.queue.Len() > 0 {
				next := m.queue[0]
				if next.execute.After(now) {
					break
				}
				heap.Pop(&m.queue)
				due = append(due, next)

				if next.interval > 0 {
					heap.Push(&m.queue, &task{
						execute:  now.Add(next.interval),
						interval: next.interval,
						callback: next.callback,
					})
				}
			}
			m.mutex.Unlock()

			for _, t := range due {
				go t.callback()
			}
		}
	}
}
