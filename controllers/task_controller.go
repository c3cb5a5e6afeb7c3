package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"SproutGo/config"
	"SproutGo/models"
	"SproutGo/services"
	"SproutGo/storage"

	"github.com/gin-gonic/gin"
)

type TaskController struct {
	store        storage.Store
	scheduler    *services.SchedulerService
	limiter      *services.RateLimiter
	generator    *services.TaskGenerator
	tasks        *services.TaskService
	progress     *services.ProgressService
	orchestrator *services.CompletionOrchestrator
	notifier     services.Notifier
	notes        *services.NotificationService
}

func NewTaskController(
	store storage.Store,
	scheduler *services.SchedulerService,
	limiter *services.RateLimiter,
	generator *services.TaskGenerator,
	tasks *services.TaskService,
	progress *services.ProgressService,
	orchestrator *services.CompletionOrchestrator,
	notes *services.NotificationService,
) *TaskController {
	return &TaskController{
		store:        store,
		scheduler:    scheduler,
		limiter:      limiter,
		generator:    generator,
		tasks:        tasks,
		progress:     progress,
		orchestrator: orchestrator,
		notifier:     notes,
		notes:        notes,
	}
}

// GetDailyTasks returns today's batch, generating it first when the
// scheduling gate and the rate limiter both allow it.
func (tc *TaskController) GetDailyTasks(c *gin.Context) {
	uid := c.GetString("uid")
	ctx := c.Request.Context()

	profile, err := tc.store.GetProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "complete onboarding first"})
			return
		}
		config.Logger.Errorw("profile read failed", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	generated := tc.maybeGenerate(ctx, uid, profile)

	tasks, err := tc.tasks.FetchTasks(ctx, uid)
	if err != nil {
		config.Logger.Errorw("task fetch failed", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":     toTaskResponses(tasks),
		"generated": generated,
	})
}

// GenerateTasks is the explicit generation entry point. Unlike the implicit
// path in GetDailyTasks, a rate-limit denial surfaces to the caller with a
// countdown.
func (tc *TaskController) GenerateTasks(c *gin.Context) {
	uid := c.GetString("uid")
	ctx := c.Request.Context()

	profile, err := tc.store.GetProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "complete onboarding first"})
			return
		}
		config.Logger.Errorw("profile read failed", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	if !tc.scheduler.ShouldGenerateTasks(ctx, uid) {
		tasks, err := tc.tasks.FetchTasks(ctx, uid)
		if err != nil {
			config.Logger.Errorw("task fetch failed", "error", err, "uid", uid)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"tasks":     toTaskResponses(tasks),
			"generated": false,
			"message":   "today's tasks are already waiting, or yesterday's are unfinished",
		})
		return
	}

	result := tc.limiter.Check(ctx, uid, services.CategoryTaskGeneration)
	if !result.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":      services.FormatRetryAfter(result.RetryAfter),
			"retryAfter": result.RetryAfter,
			"resetAt":    result.ResetAt,
		})
		return
	}

	generated := tc.runGeneration(ctx, uid, profile)

	tasks, err := tc.tasks.FetchTasks(ctx, uid)
	if err != nil {
		config.Logger.Errorw("task fetch failed", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":     toTaskResponses(tasks),
		"generated": generated,
	})
}

// ToggleTask flips one task's completion. When the flip completes the whole
// batch, the completion orchestrator runs and any bonus tasks ride along in
// the response.
func (tc *TaskController) ToggleTask(c *gin.Context) {
	uid := c.GetString("uid")
	taskID := c.Param("id")
	ctx := c.Request.Context()

	task, err := tc.tasks.ToggleTaskCompletion(ctx, uid, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		config.Logger.Errorw("task toggle failed", "error", err, "uid", uid, "taskID", taskID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}

	response := gin.H{"task": models.ToTaskResponse(*task)}

	if task.Completed && !services.IsBonusDailyID(task.DailyID) {
		batch, err := tc.tasks.TasksForBatch(ctx, uid, task.DailyID)
		if err != nil {
			config.Logger.Errorw("batch read failed after toggle", "error", err, "uid", uid)
		} else if services.AllCompleted(batch) {
			bonus := tc.orchestrator.HandleAllTasksCompleted(ctx, uid, batch)
			if len(bonus) > 0 {
				response["bonusTasks"] = toTaskResponses(bonus)
			}
			response["batchCompleted"] = true
		}
	}

	c.JSON(http.StatusOK, response)
}

// maybeGenerate runs the implicit daily generation check: not before the
// scheduled morning hour, only when the daily gate opens, and within the
// generation budget. Denials and failures are logged, never surfaced; the
// fetch below still serves whatever exists.
func (tc *TaskController) maybeGenerate(ctx context.Context, uid string, profile *models.ChildProfile) bool {
	if !tc.notes.MorningDue(ctx, uid) {
		return false
	}
	if !tc.scheduler.ShouldGenerateTasks(ctx, uid) {
		return false
	}

	result := tc.limiter.Check(ctx, uid, services.CategoryTaskGeneration)
	if !result.Allowed {
		config.Logger.Infow("daily generation rate limited",
			"uid", uid, "retryAfter", result.RetryAfter)
		return false
	}

	return tc.runGeneration(ctx, uid, profile)
}

func (tc *TaskController) runGeneration(ctx context.Context, uid string, profile *models.ChildProfile) bool {
	tasks := tc.generator.GeneratePersonalizedTasks(ctx, uid, profile)
	if len(tasks) == 0 {
		config.Logger.Warnw("generation produced no tasks", "uid", uid)
		return false
	}

	now := time.Now()
	dailyID := services.DailyID(now)
	snapshot := services.Snapshot(tc.progress.GetProgress(ctx, uid))

	if err := tc.tasks.PersistDailyBatch(ctx, uid, dailyID, tasks, snapshot); err != nil {
		if errors.Is(err, storage.ErrDuplicateBatch) {
			config.Logger.Debugw("concurrent generation lost the race", "uid", uid)
			return false
		}
		config.Logger.Errorw("batch persist failed", "error", err, "uid", uid)
		return false
	}

	if err := tc.store.SetLastTaskDate(ctx, uid, now); err != nil {
		config.Logger.Errorw("last task date stamp failed", "error", err, "uid", uid)
	}

	tc.notifier.TasksReady(ctx, uid, len(tasks))
	tc.notes.ScheduleNextMorning(ctx, uid)
	return true
}

func toTaskResponses(tasks []models.Task) []models.TaskResponse {
	responses := make([]models.TaskResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = models.ToTaskResponse(task)
	}
	return responses
}
