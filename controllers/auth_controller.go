package controllers

import (
	"net/http"
	"time"

	"SproutGo/config"
	"SproutGo/models"
	"SproutGo/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct{}

// CreateTestUser creates a throwaway account and returns its token.
func (ac *AuthController) CreateTestUser(c *gin.Context) {
	now := time.Now().UTC()
	testUser := models.User{
		ID:         utils.GenerateID(),
		Username:   "test_parent",
		Email:      "test@example.com",
		CreatedAt:  now,
		LastLogin:  &now,
		IsTestUser: true,
	}

	if err := config.DB.Create(&testUser).Error; err != nil {
		config.Logger.Errorw("test user create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create test user"})
		return
	}

	token, err := utils.GenerateToken(testUser.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	config.Logger.Infow("test user created",
		"userID", testUser.ID,
		"username", testUser.Username,
	)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       testUser.ID,
			"username": testUser.Username,
			"email":    testUser.Email,
		},
	})
}
