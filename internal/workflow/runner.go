package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/auditlens/seo-audit/internal/db"
	"github.com/auditlens/seo-audit/internal/logging"
)

// RunnerConfig holds worker-pool configuration for the workflow runner.
type RunnerConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// DefaultRunnerConfig returns the default runner configuration.
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		Workers:     4,
		QueueSize:   100,
		TaskTimeout: 10 * time.Minute,
	}
}

// Runner executes workflow tasks on a bounded worker pool. Every request is
// first recorded as a workflow_tasks row, so tasks survive a process
// restart: Start re-enqueues anything still queued or running.
type Runner struct {
	conn      *gorm.DB
	audit     *AuditWorkflow
	sitemap   *SitemapWorkflow
	signed    *SignedWorkflow
	queue     chan uint
	workers   int
	timeout   time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	log       *logging.Logger
}

// NewRunner creates a new workflow runner.
func NewRunner(conn *gorm.DB, audit *AuditWorkflow, sitemap *SitemapWorkflow, signed *SignedWorkflow, config *RunnerConfig) *Runner {
	if config == nil {
		config = DefaultRunnerConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		conn:    conn,
		audit:   audit,
		sitemap: sitemap,
		signed:  signed,
		queue:   make(chan uint, config.QueueSize),
		workers: config.Workers,
		timeout: config.TaskTimeout,
		ctx:     ctx,
		cancel:  cancel,
		log:     logging.Default().WithComponent("runner"),
	}
}

// Start launches the worker pool and re-enqueues tasks interrupted by a
// previous shutdown.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("workflow runner is already running")
	}
	r.isRunning = true

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	recovered, err := r.recoverPending()
	if err != nil {
		r.log.Warn("failed to recover pending tasks", "error", err)
	} else if recovered > 0 {
		r.log.Info("re-enqueued pending tasks from previous run", "count", recovered)
	}

	r.log.Info("workflow runner started", "workers", r.workers)
	return nil
}

// Stop shuts the runner down gracefully, waiting for in-flight tasks.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return nil
	}
	r.isRunning = false
	r.cancel()
	close(r.queue)
	r.wg.Wait()

	r.log.Info("workflow runner stopped")
	return nil
}

// EnqueueAudit schedules a single-URL audit workflow.
func (r *Runner) EnqueueAudit(ctx context.Context, auditID uint, url string) error {
	return r.enqueue(ctx, db.TaskAudit, auditID, url)
}

// EnqueueSitemap schedules a sitemap audit workflow.
func (r *Runner) EnqueueSitemap(ctx context.Context, auditID uint, sitemapURL string) error {
	return r.enqueue(ctx, db.TaskSitemap, auditID, sitemapURL)
}

// EnqueueSigned schedules a signed-audit enrichment workflow.
func (r *Runner) EnqueueSigned(ctx context.Context, auditID uint) error {
	return r.enqueue(ctx, db.TaskSigned, auditID, "")
}

// enqueue durably records the task, then hands it to the pool. A full queue
// is not an error: the row stays queued and recovery picks it up later.
func (r *Runner) enqueue(ctx context.Context, kind db.TaskKind, auditID uint, payload string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.isRunning {
		return fmt.Errorf("workflow runner is not running")
	}

	task := db.WorkflowTask{
		Kind:    kind,
		AuditID: auditID,
		Payload: payload,
		Status:  db.TaskQueued,
	}
	if err := r.conn.WithContext(ctx).Create(&task).Error; err != nil {
		return fmt.Errorf("record workflow task: %w", err)
	}

	select {
	case r.queue <- task.ID:
	default:
		r.log.Warn("task queue full, task stays durable for recovery", "task_id", task.ID, "kind", kind)
	}
	return nil
}

// recoverPending re-enqueues tasks left queued or running by a previous
// process. Must be called with the lock held and workers started.
func (r *Runner) recoverPending() (int, error) {
	var tasks []db.WorkflowTask
	err := r.conn.
		Where("status IN ?", []db.TaskStatus{db.TaskQueued, db.TaskRunning}).
		Order("id asc").
		Find(&tasks).Error
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, task := range tasks {
		if task.Status == db.TaskRunning {
			r.conn.Model(&db.WorkflowTask{}).Where("id = ?", task.ID).
				Update("status", db.TaskQueued)
		}
		select {
		case r.queue <- task.ID:
			recovered++
		default:
			return recovered, fmt.Errorf("queue full during recovery, %d of %d re-enqueued", recovered, len(tasks))
		}
	}
	return recovered, nil
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	for {
		select {
		case taskID, ok := <-r.queue:
			if !ok {
				return
			}
			r.processTask(taskID)
		case <-r.ctx.Done():
			return
		}
	}
}

// processTask claims a task row and dispatches it to the matching workflow.
func (r *Runner) processTask(taskID uint) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	var task db.WorkflowTask
	if err := r.conn.First(&task, taskID).Error; err != nil {
		r.log.Error("failed to load task", "task_id", taskID, "error", err)
		return
	}
	if task.Status != db.TaskQueued {
		r.log.Debug("skipping task in non-queued state", "task_id", taskID, "status", task.Status)
		return
	}

	err := r.conn.Model(&db.WorkflowTask{}).Where("id = ?", taskID).Updates(map[string]interface{}{
		"status":   db.TaskRunning,
		"attempts": gorm.Expr("attempts + 1"),
	}).Error
	if err != nil {
		r.log.Error("failed to claim task", "task_id", taskID, "error", err)
		return
	}

	log := r.log.WithAudit(task.AuditID)
	log.Info("processing task", "task_id", taskID, "kind", task.Kind)

	runErr := r.dispatch(ctx, &task)

	fields := map[string]interface{}{"status": db.TaskDone, "error": ""}
	if runErr != nil {
		fields["status"] = db.TaskFailed
		fields["error"] = runErr.Error()
		log.Error("task failed", "task_id", taskID, "kind", task.Kind, "error", runErr)
	}
	if err := r.conn.Model(&db.WorkflowTask{}).Where("id = ?", taskID).Updates(fields).Error; err != nil {
		log.Error("failed to finalize task", "task_id", taskID, "error", err)
	}
}

func (r *Runner) dispatch(ctx context.Context, task *db.WorkflowTask) error {
	switch task.Kind {
	case db.TaskAudit:
		// The audit workflow logs its own failures and leaves the audit in
		// progress; the task itself is considered delivered.
		r.audit.Run(ctx, task.AuditID, task.Payload)
		return nil
	case db.TaskSitemap:
		_, err := r.sitemap.Run(ctx, task.AuditID, task.Payload)
		return err
	case db.TaskSigned:
		_, err := r.signed.Run(ctx, task.AuditID)
		return err
	default:
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
}
