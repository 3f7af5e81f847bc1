package service

import (
	"context"
	"strings"

	chatmodel "WChat/module/chat/model"
	usermodel "WChat/module/user/model"
	"WChat/logger"
	"WChat/service/chat"
	"WChat/service/storage"
	"WChat/tools/errs"
	"WChat/tools/ids"
)

var (
	gw    *chat.Gateway
	media *storage.MediaStore
)

// Init wires the message service to the realtime gateway and the media
// store.
func Init(g *chat.Gateway, m *storage.MediaStore) {
	gw = g
	media = m
}

// StartConversation finds or creates the 1:1 thread between the two
// users. The bool reports whether a new thread was created.
func StartConversation(ctx context.Context, authUserID, receiverID string) (*chatmodel.Conversation, bool, error) {
	receiver, err := usermodel.FindByID(ctx, receiverID)
	if err != nil {
		return nil, false, errs.Wrap(err)
	}
	if receiver == nil {
		return nil, false, errs.ErrReceiverNotFound
	}

	existing, err := chatmodel.FindBetween(ctx, authUserID, receiverID)
	if err != nil {
		return nil, false, errs.Wrap(err)
	}
	if existing != nil {
		return existing, false, nil
	}

	conv := &chatmodel.Conversation{
		ConversationID: ids.GenerateString(),
		Participants:   []string{authUserID, receiverID},
	}
	if err := conv.Insert(ctx); err != nil {
		return nil, false, errs.Wrap(err)
	}
	return conv, true, nil
}

type SendParams struct {
	ConversationID string
	SenderID       string
	Content        string
	Media          string // URL or inline data URL
}

// SendMessage persists the message, updates the conversation head, and
// then notifies the peer. The save comes first: the emit is best-effort
// and its loss is acceptable, the HTTP response already carries the
// message.
func SendMessage(ctx context.Context, p SendParams) (*chatmodel.Message, error) {
	conv, err := chatmodel.FindConversation(ctx, p.ConversationID)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if conv == nil {
		return nil, errs.ErrConversationNotFound
	}
	if !conv.HasParticipant(p.SenderID) {
		return nil, errs.ErrNotParticipant
	}

	content := strings.TrimSpace(p.Content)
	if content == "" && p.Media == "" {
		return nil, errs.ErrEmptyMessage
	}

	mediaURL := ""
	if p.Media != "" {
		mediaURL, err = media.SaveDataURL(p.Media)
		if err != nil {
			return nil, err
		}
	}

	msg := &chatmodel.Message{
		MessageID:      ids.GenerateString(),
		ConversationID: conv.ConversationID,
		SenderID:       p.SenderID,
		Content:        content,
		Media:          mediaURL,
	}
	if err := msg.Insert(ctx); err != nil {
		return nil, errs.Wrap(err)
	}
	if err := chatmodel.SetLastMessage(ctx, conv.ConversationID, msg.MessageID); err != nil {
		// the message itself is saved; losing the head pointer is worth
		// a log line, not a failed request
		logger.Errorf("[chat] set last message failed conv=%s: %v", conv.ConversationID, err)
	}

	if receiver := conv.OtherParticipant(p.SenderID); receiver != "" && gw != nil {
		gw.EmitToUser(receiver, chat.EventNewMessage, msg)
	}
	return msg, nil
}

// ListMessages pages a conversation newest-first, after checking the
// thread exists.
func ListMessages(ctx context.Context, conversationID string, page, limit int64) ([]*chatmodel.Message, error) {
	conv, err := chatmodel.FindConversation(ctx, conversationID)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if conv == nil {
		return nil, errs.ErrConversationNotFound
	}
	msgs, err := chatmodel.ListByConversation(ctx, conversationID, page, limit)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return msgs, nil
}
