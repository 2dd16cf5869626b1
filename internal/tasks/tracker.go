// Package tasks — реестр фоновых задач в пределах процесса. Задача получает
// идентификатор, её состояние можно опрашивать, а при остановке сервера все
// задачи дожидаются завершения.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Статусы задачи.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Task — снимок состояния одной фоновой задачи.
type Task struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Tracker запускает функции в горутинах и хранит их статусы.
type Tracker struct {
	mu     sync.Mutex
	tasks  map[string]*Task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.SugaredLogger
}

// NewTracker создаёт пустой реестр задач.
func NewTracker(logger *zap.SugaredLogger) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Run запускает fn в фоне и возвращает идентификатор задачи.
// Контекст задачи отменяется при Stop.
func (t *Tracker) Run(fn func(ctx context.Context) error) string {
	id := uuid.NewString()

	t.mu.Lock()
	t.tasks[id] = &Task{ID: id, Status: StatusProcessing, StartedAt: time.Now()}
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		err := fn(t.ctx)

		t.mu.Lock()
		defer t.mu.Unlock()
		task := t.tasks[id]
		task.FinishedAt = time.Now()
		if err != nil {
			task.Status = StatusFailed
			task.Error = err.Error()
			if t.logger != nil {
				t.logger.Warnw("task failed", "task_id", id, "error", err)
			}
			return
		}
		task.Status = StatusCompleted
	}()

	return id
}

// Get возвращает снимок задачи по идентификатору.
func (t *Tracker) Get(id string) (Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, ok := t.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// Stop отменяет контексты всех задач и ждёт их завершения.
func (t *Tracker) Stop() {
	t.cancel()
	t.wg.Wait()
}
