package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SproutGo/config"
	"SproutGo/models"
	"SproutGo/storage"
	"SproutGo/utils"

	lru "github.com/hashicorp/golang-lru"
)

// taskCacheSize bounds the in-memory (user, date) cache.
const taskCacheSize = 512

// defaultFetchTimeout bounds one remote task fetch. On expiry the fetch
// falls back to an empty list instead of blocking the caller.
const defaultFetchTimeout = 8 * time.Second

// TaskService persists generated tasks and fronts them with a bounded
// in-memory cache keyed by (user, date). The store is the source of truth
// for task content; the cached copy only wins for the completed flag, which
// preserves optimistic toggles across a refetch.
type TaskService struct {
	store        storage.TaskStore
	cache        *lru.Cache
	fetchTimeout time.Duration
	now          func() time.Time
}

func NewTaskService(store storage.TaskStore) *TaskService {
	cache, _ := lru.New(taskCacheSize)
	return &TaskService{
		store:        store,
		cache:        cache,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
	}
}

// FetchTasks returns the authoritative list for today: exact dailyId match
// first, then the legacy date format, then the four most recent tasks.
func (s *TaskService) FetchTasks(ctx context.Context, userID string) ([]models.Task, error) {
	now := s.now()
	today := DailyID(now)
	cacheKey := taskCacheKey(userID, today)

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	remote, err := s.store.TasksByDailyID(fetchCtx, userID, today)
	if err != nil {
		return s.fetchFallback(err, userID)
	}
	if len(remote) == 0 {
		remote, err = s.store.TasksByDailyID(fetchCtx, userID, LegacyDailyID(now))
		if err != nil {
			return s.fetchFallback(err, userID)
		}
	}
	if len(remote) == 0 {
		remote, err = s.store.RecentTasks(fetchCtx, userID, MaxDailyTasks)
		if err != nil {
			return s.fetchFallback(err, userID)
		}
	}

	merged := MergeTasks(remote, s.cachedTasks(cacheKey))
	s.cache.Add(cacheKey, merged)
	return merged, nil
}

// fetchFallback converts timeouts into an empty result; other store errors
// surface to the caller.
func (s *TaskService) fetchFallback(err error, userID string) ([]models.Task, error) {
	if errors.Is(err, context.DeadlineExceeded) {
		config.Logger.Warnw("task fetch timed out, returning empty set", "userID", userID)
		return []models.Task{}, nil
	}
	return nil, err
}

// TasksForBatch returns the stored tasks for one batch key, bypassing the
// cache.
func (s *TaskService) TasksForBatch(ctx context.Context, userID, dailyID string) ([]models.Task, error) {
	return s.store.TasksByDailyID(ctx, userID, dailyID)
}

// PersistDailyBatch writes the batch audit record and its tasks in one
// transaction. storage.ErrDuplicateBatch means a concurrent check already
// generated today's batch; callers treat it as a no-op.
func (s *TaskService) PersistDailyBatch(ctx context.Context, userID, dailyID string, tasks []models.Task, snapshot models.ProgressSnapshot) error {
	set := &models.DailyTaskSet{
		ID:          utils.GenerateID(),
		UserID:      userID,
		Date:        dailyID,
		TaskCount:   len(tasks),
		Progress:    snapshot,
		GeneratedAt: s.now(),
	}
	if err := s.store.CreateBatch(ctx, set, tasks); err != nil {
		return err
	}
	s.cache.Remove(taskCacheKey(userID, dailyID))
	return nil
}

// ToggleTaskCompletion flips a task's completed flag: cache copy first
// (optimistic), then the store. A failed store write reverts the cache copy
// and surfaces the error, so at most one optimistic mutation per task is ever
// outstanding. Concurrent toggles from two devices are last-write-wins.
func (s *TaskService) ToggleTaskCompletion(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, cacheKey, inCache := s.findCached(taskID)
	if !inCache {
		fetched, err := s.store.GetTask(ctx, taskID)
		if err != nil {
			return nil, err
		}
		task = *fetched
	}
	if task.UserID != userID {
		return nil, storage.ErrNotFound
	}

	previousCompleted := task.Completed
	previousCompletedAt := task.CompletedAt

	task.Completed = !task.Completed
	if task.Completed {
		completedAt := s.now()
		task.CompletedAt = &completedAt
	} else {
		task.CompletedAt = nil
	}

	if inCache {
		s.replaceCached(cacheKey, task)
	}

	if err := s.store.SetTaskCompleted(ctx, taskID, task.Completed, task.CompletedAt); err != nil {
		if inCache {
			task.Completed = previousCompleted
			task.CompletedAt = previousCompletedAt
			s.replaceCached(cacheKey, task)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// Force the next fetch to hit the store.
	todayKey := taskCacheKey(userID, DailyID(s.now()))
	s.cache.Remove(todayKey)
	if batchKey := taskCacheKey(userID, task.DailyID); batchKey != todayKey {
		s.cache.Remove(batchKey)
	}

	return &task, nil
}

// MergeTasks reconciles a server-fetched list against locally cached state:
// the local completed flag wins for a matching id, every other field comes
// from the server copy.
func MergeTasks(server []models.Task, local []models.Task) []models.Task {
	if len(local) == 0 {
		return server
	}
	localByID := make(map[string]models.Task, len(local))
	for _, task := range local {
		localByID[task.ID] = task
	}
	merged := make([]models.Task, len(server))
	for i, task := range server {
		if cached, ok := localByID[task.ID]; ok {
			task.Completed = cached.Completed
			task.CompletedAt = cached.CompletedAt
		}
		merged[i] = task
	}
	return merged
}

func taskCacheKey(userID, dailyID string) string {
	return userID + ":" + dailyID
}

func (s *TaskService) cachedTasks(key string) []models.Task {
	if value, ok := s.cache.Get(key); ok {
		if tasks, ok := value.([]models.Task); ok {
			return tasks
		}
	}
	return nil
}

func (s *TaskService) findCached(taskID string) (models.Task, string, bool) {
	for _, rawKey := range s.cache.Keys() {
		key, ok := rawKey.(string)
		if !ok {
			continue
		}
		for _, task := range s.cachedTasks(key) {
			if task.ID == taskID {
				return task, key, true
			}
		}
	}
	return models.Task{}, "", false
}

func (s *TaskService) replaceCached(key string, updated models.Task) {
	tasks := s.cachedTasks(key)
	for i, task := range tasks {
		if task.ID == updated.ID {
			next := make([]models.Task, len(tasks))
			copy(next, tasks)
			next[i] = updated
			s.cache.Add(key, next)
			return
		}
	}
}
