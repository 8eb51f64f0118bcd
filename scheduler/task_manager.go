package scheduler

import (
	"log"
	"sync"
	"time"

	"pricingradar/models"
)

// ScanFunc runs a scan for one marketplace (empty = all) and returns the
// result.
type ScanFunc func(marketplace models.Marketplace, force bool) (*models.ScanResult, error)

// TaskManager manages async scan tasks. Scans are slow (a headless browser
// session per scan), so API clients submit a task and poll for the result
// instead of holding a request open.
//
// tm.mutex guards the task map, the worker counter, and every mutation of
// a stored ScanTask. Readers get snapshot copies, so JSON encoding a task
// never observes a worker mid-write.
type TaskManager struct {
	tasks      map[string]*models.ScanTask
	taskQueue  chan *models.ScanTask
	workers    int
	maxWorkers int
	scanFunc   ScanFunc
	mutex      sync.RWMutex
	stopChan   chan bool
}

// NewTaskManager creates a task manager processing scans with scanFunc.
func NewTaskManager(scanFunc ScanFunc, maxWorkers int) *TaskManager {
	tm := &TaskManager{
		tasks:      make(map[string]*models.ScanTask),
		taskQueue:  make(chan *models.ScanTask, 100),
		maxWorkers: maxWorkers,
		scanFunc:   scanFunc,
		stopChan:   make(chan bool),
	}

	go tm.processTasks()
	log.Printf("🚀 Task manager started with %d max workers", maxWorkers)
	return tm
}

// SubmitScan queues an async scan of one marketplace (empty = all).
func (tm *TaskManager) SubmitScan(marketplace models.Marketplace) *models.ScanTask {
	task := models.NewScanTask(marketplace)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("📝 Task %s submitted (marketplace=%q)", task.ID, marketplace)
	default:
		tm.mutateTask(task, func() { task.Fail("Task queue is full") })
		log.Printf("❌ Failed to submit task %s - queue full", task.ID)
	}

	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	return snapshotLocked(task)
}

// GetTask returns a copy of a task by ID.
func (tm *TaskManager) GetTask(taskID string) (*models.ScanTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	if !exists {
		return nil, false
	}
	return snapshotLocked(task), true
}

// GetActiveTasks returns copies of all queued or running tasks.
func (tm *TaskManager) GetActiveTasks() []*models.ScanTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var active []*models.ScanTask
	for _, task := range tm.tasks {
		if task.IsActive() {
			active = append(active, snapshotLocked(task))
		}
	}

	return active
}

// CleanupOldTasks removes completed tasks older than maxAge.
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
			log.Printf("🧹 Cleaned up old task: %s", taskID)
		}
	}
}

// mutateTask applies fn to a task under the manager lock. All writes to a
// stored task go through here.
func (tm *TaskManager) mutateTask(task *models.ScanTask, fn func()) {
	tm.mutex.Lock()
	fn()
	tm.mutex.Unlock()
}

// snapshotLocked copies a task; the caller must hold the manager lock.
// The Result pointer is shared, but a result is assigned once on
// completion and never mutated afterwards.
func snapshotLocked(task *models.ScanTask) *models.ScanTask {
	copied := *task
	return &copied
}

func (tm *TaskManager) processTasks() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case task := <-tm.taskQueue:
			tm.mutex.Lock()
			if tm.workers < tm.maxWorkers {
				tm.workers++
				tm.mutex.Unlock()
				go tm.worker(task)
			} else {
				tm.mutex.Unlock()
				// At capacity: wait a beat, then re-queue.
				go func() {
					time.Sleep(1 * time.Second)
					select {
					case tm.taskQueue <- task:
						log.Printf("🔄 Re-queued task %s (max workers reached)", task.ID)
					default:
						tm.mutateTask(task, func() { task.Fail("System overloaded, unable to process task") })
						log.Printf("❌ Failed to re-queue task %s", task.ID)
					}
				}()
			}

		case <-ticker.C:
			tm.CleanupOldTasks(1 * time.Hour)

		case <-tm.stopChan:
			log.Println("🛑 Task manager stopped")
			return
		}
	}
}

func (tm *TaskManager) worker(task *models.ScanTask) {
	defer func() {
		tm.mutex.Lock()
		tm.workers--
		tm.mutex.Unlock()
	}()

	log.Printf("👷 Worker started processing task %s", task.ID)
	tm.mutateTask(task, func() {
		task.Start()
		task.UpdateProgress(10, "Scraping marketplaces...")
	})

	result, err := tm.scanFunc(task.Marketplace, true)
	if err != nil {
		tm.mutateTask(task, func() { task.Fail("Scan failed: " + err.Error()) })
		return
	}

	tm.mutateTask(task, func() {
		task.UpdateProgress(90, "Aggregating results...")
		task.Complete(result)
	})
	log.Printf("✅ Task %s completed in %v", task.ID, tm.taskDuration(task))
}

// taskDuration reads the task's duration under the manager lock.
func (tm *TaskManager) taskDuration(task *models.ScanTask) time.Duration {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	return task.Duration()
}

// Stop stops the task manager.
func (tm *TaskManager) Stop() {
	close(tm.stopChan)
	log.Println("🛑 Task manager stopping...")
}

// GetStats returns task manager statistics for the status endpoint.
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	stats := map[string]interface{}{
		"total_tasks":    len(tm.tasks),
		"active_workers": tm.workers,
		"max_workers":    tm.maxWorkers,
		"queue_size":     len(tm.taskQueue),
	}

	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		statusCounts[string(task.Status)]++
	}
	stats["tasks_by_status"] = statusCounts

	return stats
}
