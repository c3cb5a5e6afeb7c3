package controllers

import (
	"net/http"

	"SproutGo/config"
	"SproutGo/services"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notes *services.NotificationService
}

func NewNotificationController(notes *services.NotificationService) *NotificationController {
	return &NotificationController{notes: notes}
}

// List returns the latest notifications for the authenticated user.
func (nc *NotificationController) List(c *gin.Context) {
	uid := c.GetString("uid")

	notifications, err := nc.notes.Recent(c.Request.Context(), uid, 20)
	if err != nil {
		config.Logger.Errorw("notification read failed", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
