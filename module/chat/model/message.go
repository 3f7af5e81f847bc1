package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mgo "WChat/service/mgo"
)

// Message is one chat message. The record is the system of record; the
// realtime emit that follows a save is best-effort notification only.
type Message struct {
	MessageID      string `bson:"message_id" json:"id"`
	ConversationID string `bson:"conversation_id" json:"conversationId"`
	SenderID       string `bson:"sender_id" json:"senderId"`
	Content        string `bson:"content,omitempty" json:"content"`
	Media          string `bson:"media,omitempty" json:"media,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime time.Time `bson:"update_time" json:"updatedAt"`
}

func (m *Message) GetTableName() string {
	return "message"
}

func (m *Message) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(m.GetTableName())
}

func msgColl() *mongo.Collection {
	return (&Message{}).Collection()
}

func (m *Message) Insert(ctx context.Context) error {
	now := time.Now()
	m.CreateTime = now
	m.UpdateTime = now
	_, err := msgColl().InsertOne(ctx, m)
	return err
}

// ListByConversation pages through a conversation newest-first.
func ListByConversation(ctx context.Context, conversationID string, page, limit int64) ([]*Message, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	cur, err := msgColl().Find(ctx,
		bson.M{"conversation_id": conversationID},
		options.Find().
			SetSort(bson.D{{Key: "create_time", Value: -1}}).
			SetSkip((page-1)*limit).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	out := make([]*Message, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByConversations removes every message of the given conversations,
// used by the account deletion cascade.
func DeleteByConversations(ctx context.Context, conversationIDs []string) error {
	if len(conversationIDs) == 0 {
		return nil
	}
	_, err := msgColl().DeleteMany(ctx, bson.M{"conversation_id": bson.M{"$in": conversationIDs}})
	return err
}
