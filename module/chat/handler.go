package chat

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"WChat/logger"
	midsec "WChat/middleware/security"
	"WChat/module/chat/service"
	"WChat/tools/errs"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, err error) {
	if ce := errs.AsCodeError(err); ce != nil {
		c.JSON(errs.HTTPStatus(ce.Code), gin.H{"success": false, "message": ce.Msg})
		return
	}
	logger.Errorf("[chat] handler error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
}

type startConversationRequest struct {
	ReceiverID string `json:"receiverId"`
}

func HandlerStartConversation(c *gin.Context) {
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ReceiverID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "receiverId is required"})
		return
	}

	conv, created, err := service.StartConversation(c.Request.Context(), midsec.AuthUserID(c), req.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	msg := "Conversation already exists"
	if created {
		status = http.StatusCreated
		msg = "Conversation started successfully"
	}
	c.JSON(status, gin.H{
		"success":      true,
		"message":      msg,
		"conversation": conv,
	})
}

func HandlerListMessages(c *gin.Context) {
	conversationID := c.Param("conversationId")
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	msgs, err := service.ListMessages(c.Request.Context(), conversationID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Messages fetched successfully",
		"messages": msgs,
	})
}

type sendMessageRequest struct {
	Content string `json:"content"`
	Media   string `json:"media"`
}

func (r *sendMessageRequest) validate() []fieldError {
	var out []fieldError
	if content := strings.TrimSpace(r.Content); content != "" && len(content) > 1000 {
		out = append(out, fieldError{"content", "Message must be between 1 and 1000 characters"})
	}
	return out
}

func HandlerSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": fields})
		return
	}

	msg, err := service.SendMessage(c.Request.Context(), service.SendParams{
		ConversationID: c.Param("conversationId"),
		SenderID:       midsec.AuthUserID(c),
		Content:        req.Content,
		Media:          req.Media,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Message sent successfully",
		"data":    msg,
	})
}
