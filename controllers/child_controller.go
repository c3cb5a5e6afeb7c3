package controllers

import (
	"errors"
	"net/http"
	"time"

	"SproutGo/config"
	"SproutGo/models"
	"SproutGo/services"
	"SproutGo/storage"
	"SproutGo/utils"

	"github.com/gin-gonic/gin"
)

type ChildController struct {
	store    storage.Store
	progress *services.ProgressService
}

func NewChildController(store storage.Store, progress *services.ProgressService) *ChildController {
	return &ChildController{store: store, progress: progress}
}

// Onboard creates or replaces the child profile for the authenticated parent
// and initializes the progress record. Input is validated before any store
// call.
func (cc *ChildController) Onboard(c *gin.Context) {
	uid := c.GetString("uid")

	var request models.OnboardChildRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := cc.store.GetProfile(c.Request.Context(), uid)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			config.Logger.Errorw("profile read failed", "error", err, "uid", uid)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			return
		}
		profile = &models.ChildProfile{
			ID:        utils.GenerateID(),
			UserID:    uid,
			CreatedAt: time.Now().UTC(),
		}
	}

	profile.Name = request.Name
	profile.Age = request.Age
	profile.Diagnosis = request.Diagnosis
	profile.DevelopmentAreas = models.DevelopmentAreas(request.DevelopmentAreas)
	profile.OnboardingDone = true

	if err := cc.store.SaveProfile(c.Request.Context(), profile); err != nil {
		config.Logger.Errorw("profile save failed", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}

	cc.progress.GetProgress(c.Request.Context(), uid)

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetChild returns the authenticated parent's child profile.
func (cc *ChildController) GetChild(c *gin.Context) {
	uid := c.GetString("uid")

	profile, err := cc.store.GetProfile(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no child profile yet"})
			return
		}
		config.Logger.Errorw("profile read failed", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
