package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"SproutGo/models"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// local development without a database.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	profiles      map[string]*models.ChildProfile // keyed by user id
	progress      map[string]*models.UserProgress
	tasks         map[string]*models.Task
	batches       map[string]*models.DailyTaskSet // keyed by userID+"|"+date
	notifications map[string][]*models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		profiles:      make(map[string]*models.ChildProfile),
		progress:      make(map[string]*models.UserProgress),
		tasks:         make(map[string]*models.Task),
		batches:       make(map[string]*models.DailyTaskSet),
		notifications: make(map[string][]*models.Notification),
	}
}

func (s *MemoryStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*models.ChildProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (s *MemoryStore) SaveProfile(ctx context.Context, profile *models.ChildProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile.LastModified = time.Now().UTC()
	copied := *profile
	s.profiles[profile.UserID] = &copied
	return nil
}

func (s *MemoryStore) SetLastTaskDate(ctx context.Context, userID string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	profile.LastTaskDate = &date
	profile.LastModified = time.Now().UTC()
	return nil
}

func (s *MemoryStore) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.progress[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *progress
	return &copied, nil
}

func (s *MemoryStore) CreateProgress(ctx context.Context, progress *models.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *progress
	s.progress[progress.UserID] = &copied
	return nil
}

func (s *MemoryStore) UpdateArea(ctx context.Context, userID string, area models.DevelopmentArea, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress, ok := s.progress[userID]
	if !ok {
		return ErrNotFound
	}
	if !progress.SetValueFor(area, value) {
		return ErrNotFound
	}
	progress.LastModified = time.Now().UTC()
	return nil
}

func (s *MemoryStore) ResetProgress(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.progress[userID]; !ok {
		return ErrNotFound
	}
	s.progress[userID] = models.NewUserProgress(userID)
	return nil
}

func (s *MemoryStore) CreateBatch(ctx context.Context, set *models.DailyTaskSet, tasks []models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := set.UserID + "|" + set.Date
	if _, exists := s.batches[key]; exists {
		return ErrDuplicateBatch
	}
	copied := *set
	s.batches[key] = &copied
	for i := range tasks {
		task := tasks[i]
		s.tasks[task.ID] = &task
	}
	return nil
}

func (s *MemoryStore) TasksByDailyID(ctx context.Context, userID, dailyID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Task
	for _, task := range s.tasks {
		if task.UserID == userID && task.DailyID == dailyID {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) RecentTasks(ctx context.Context, userID string, limit int) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Task
	for _, task := range s.tasks {
		if task.UserID == userID {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *MemoryStore) SetTaskCompleted(ctx context.Context, taskID string, completed bool, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	task.Completed = completed
	task.CompletedAt = completedAt
	return nil
}

func (s *MemoryStore) HasIncompleteTasks(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, task := range s.tasks {
		if task.UserID == userID && !task.Completed {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) BatchExists(ctx context.Context, userID, dailyID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.batches[userID+"|"+dailyID]
	return ok, nil
}

func (s *MemoryStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *n
	s.notifications[n.UserID] = append(s.notifications[n.UserID], &copied)
	return nil
}

func (s *MemoryStore) RecentNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.notifications[userID]
	var out []models.Notification
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *list[i])
	}
	return out, nil
}
