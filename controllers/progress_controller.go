package controllers

import (
	"net/http"

	"SproutGo/config"
	"SproutGo/models"
	"SproutGo/services"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	progress *services.ProgressService
}

func NewProgressController(progress *services.ProgressService) *ProgressController {
	return &ProgressController{progress: progress}
}

// GetProgress returns the six-area record with derived difficulty tiers.
func (pc *ProgressController) GetProgress(c *gin.Context) {
	uid := c.GetString("uid")

	progress := pc.progress.GetProgress(c.Request.Context(), uid)

	response := models.ProgressResponse{LastModified: progress.LastModified}
	for _, area := range models.AllDevelopmentAreas {
		value, _ := progress.ValueFor(area)
		response.Areas = append(response.Areas, models.AreaProgress{
			Area:       area,
			Label:      area.Label(),
			Value:      value,
			Difficulty: services.CalculateDifficulty(value),
		})
	}

	c.JSON(http.StatusOK, response)
}

// UpdateProgress manually sets one area's value (clamped server side).
func (pc *ProgressController) UpdateProgress(c *gin.Context) {
	uid := c.GetString("uid")

	var request models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := request.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := pc.progress.UpdateProgress(c.Request.Context(), uid, request.Area, request.Value); err != nil {
		config.Logger.Errorw("progress update failed", "error", err, "uid", uid, "area", request.Area)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"area":       request.Area,
		"value":      models.ClampProgress(request.Value),
		"difficulty": services.CalculateDifficulty(models.ClampProgress(request.Value)),
	})
}

// ResetProgress puts every area back to the default value.
func (pc *ProgressController) ResetProgress(c *gin.Context) {
	uid := c.GetString("uid")

	if err := pc.progress.ResetProgress(c.Request.Context(), uid); err != nil {
		config.Logger.Errorw("progress reset failed", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "progress reset"})
}
