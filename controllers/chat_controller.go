package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"SproutGo/config"
	"SproutGo/models"
	"SproutGo/services"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	chatService *services.ChatService
	limiter     *services.RateLimiter
	wg          sync.WaitGroup
}

func NewChatController(chatService *services.ChatService, limiter *services.RateLimiter) *ChatController {
	return &ChatController{
		chatService: chatService,
		limiter:     limiter,
	}
}

// SendMessage streams a support chat reply. Gated by both the hourly and the
// daily message limits.
func (cc *ChatController) SendMessage(ctx *gin.Context) {
	uid := ctx.GetString("uid")

	var chatRequest models.ChatRequest
	if err := ctx.ShouldBindJSON(&chatRequest); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := chatRequest.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, category := range []services.RateLimitCategory{services.CategoryChat, services.CategoryChatDaily} {
		result := cc.limiter.Check(ctx.Request.Context(), uid, category)
		if !result.Allowed {
			ctx.JSON(http.StatusTooManyRequests, gin.H{
				"error":      services.FormatRetryAfter(result.RetryAfter),
				"retryAfter": result.RetryAfter,
			})
			return
		}
	}

	sessionID := fmt.Sprintf("%s_support", uid)

	historySummary, err := config.RedisClient.Get(ctx, sessionID).Result()
	if err != nil {
		// Missing history is the common case for a first message.
		config.Logger.Debugw("no chat history summary", "sessionID", sessionID, "uid", uid)
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	stream, err := cc.chatService.GenerateSupportResponse(ctx, chatRequest.Message, historySummary)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat: " + err.Error()})
		return
	}

	// The generator sends on an unbuffered channel; keep draining after a
	// failed write so it can finish and Wait() does not hang at shutdown.
	var fullResponse strings.Builder
	writeFailed := false
	for chunk := range stream {
		fullResponse.WriteString(chunk)
		if writeFailed {
			continue
		}
		if _, err := ctx.Writer.Write([]byte(chunk)); err != nil {
			config.Logger.Errorw("stream write failed, draining remainder", "error", err, "uid", uid)
			writeFailed = true
			continue
		}
		ctx.Writer.Flush()
	}
	if writeFailed {
		// The client never saw the reply, so it stays out of the summary.
		return
	}

	// Fold the exchange into the rolling summary off the request path.
	cc.wg.Add(1)
	go func() {
		defer cc.wg.Done()

		background, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		exchange := fmt.Sprintf("Parent: %s\nSprout: %s", chatRequest.Message, fullResponse.String())
		summary, err := cc.chatService.GenerateSummary(background, exchange, historySummary)
		if err != nil {
			config.Logger.Errorw("chat summary failed", "error", err, "uid", uid)
			return
		}

		if err := config.RedisClient.Set(background, sessionID, summary, 24*time.Hour).Err(); err != nil {
			config.Logger.Errorw("chat summary store failed", "error", err, "uid", uid)
		}
	}()
}

// Wait blocks until background summary work finishes.
func (cc *ChatController) Wait() {
	cc.wg.Wait()
}
