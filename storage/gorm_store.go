package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"SproutGo/models"

	"gorm.io/gorm"
)

// GormStore is the MySQL-backed implementation used in production.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) SaveUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

func (s *GormStore) GetProfile(ctx context.Context, userID string) (*models.ChildProfile, error) {
	var profile models.ChildProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *GormStore) SaveProfile(ctx context.Context, profile *models.ChildProfile) error {
	profile.LastModified = time.Now().UTC()
	return s.db.WithContext(ctx).Save(profile).Error
}

func (s *GormStore) SetLastTaskDate(ctx context.Context, userID string, date time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.ChildProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"last_task_date": date,
			"last_modified":  time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	var progress models.UserProgress
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

func (s *GormStore) CreateProgress(ctx context.Context, progress *models.UserProgress) error {
	return s.db.WithContext(ctx).Create(progress).Error
}

func (s *GormStore) UpdateArea(ctx context.Context, userID string, area models.DevelopmentArea, value int) error {
	column, ok := models.ProgressColumn(area)
	if !ok {
		return errors.New("storage: unknown development area")
	}
	// Updates on a missing row reports zero affected rows with a nil error;
	// the caller needs ErrNotFound to know the record must be created first.
	// last_modified changes on every call, so an existing row always counts.
	result := s.db.WithContext(ctx).Model(&models.UserProgress{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			column:          value,
			"last_modified": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ResetProgress(ctx context.Context, userID string) error {
	fresh := models.NewUserProgress(userID)
	result := s.db.WithContext(ctx).Model(&models.UserProgress{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"communication": fresh.Communication,
			"motor_skills":  fresh.MotorSkills,
			"social":        fresh.Social,
			"cognitive":     fresh.Cognitive,
			"sensory":       fresh.Sensory,
			"behavior":      fresh.Behavior,
			"last_modified": fresh.LastModified,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateBatch(ctx context.Context, set *models.DailyTaskSet, tasks []models.Task) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(set).Error; err != nil {
			return err
		}
		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateBatch
		}
		return err
	}
	return nil
}

func (s *GormStore) TasksByDailyID(ctx context.Context, userID, dailyID string) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND daily_id = ?", userID, dailyID).
		Order("created_at asc").
		Find(&tasks).Error
	return tasks, err
}

func (s *GormStore) RecentTasks(ctx context.Context, userID string, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (s *GormStore) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *GormStore) SetTaskCompleted(ctx context.Context, taskID string, completed bool, completedAt *time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"completed":    completed,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) HasIncompleteTasks(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ? AND completed = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) BatchExists(ctx context.Context, userID, dailyID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.DailyTaskSet{}).
		Where("user_id = ? AND date = ?", userID, dailyID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *GormStore) RecentNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL error 1062 when the driver does not translate it.
	return strings.Contains(err.Error(), "Duplicate entry")
}
