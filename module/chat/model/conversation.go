package model

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	mgo "WChat/service/mgo"
)

// Conversation is a 1:1 thread between two users.
type Conversation struct {
	ConversationID string   `bson:"conversation_id" json:"id"`
	Participants   []string `bson:"participants" json:"participants"`
	LastMessage    string   `bson:"last_message,omitempty" json:"lastMessage,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime time.Time `bson:"update_time" json:"updatedAt"`
}

func (c *Conversation) GetTableName() string {
	return "conversation"
}

func (c *Conversation) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}

func convColl() *mongo.Collection {
	return (&Conversation{}).Collection()
}

func (c *Conversation) Insert(ctx context.Context) error {
	now := time.Now()
	c.CreateTime = now
	c.UpdateTime = now
	_, err := convColl().InsertOne(ctx, c)
	return err
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the peer of userID, empty if userID is not a
// participant.
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// FindConversation returns (nil, nil) when the id is unknown.
func FindConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	var c Conversation
	err := convColl().FindOne(ctx, bson.M{"conversation_id": conversationID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindBetween returns the existing conversation holding both users,
// (nil, nil) if they never talked.
func FindBetween(ctx context.Context, userA, userB string) (*Conversation, error) {
	var c Conversation
	err := convColl().FindOne(ctx, bson.M{
		"participants": bson.M{"$all": []string{userA, userB}},
	}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByParticipant lists every conversation the user takes part in.
func FindByParticipant(ctx context.Context, userID string) ([]*Conversation, error) {
	cur, err := convColl().Find(ctx, bson.M{"participants": userID})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	out := make([]*Conversation, 0, 8)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetLastMessage records the newest message id and bumps update_time.
func SetLastMessage(ctx context.Context, conversationID, messageID string) error {
	_, err := convColl().UpdateOne(ctx,
		bson.M{"conversation_id": conversationID},
		bson.M{"$set": bson.M{"last_message": messageID, "update_time": time.Now()}},
	)
	return err
}

// DeleteConversations removes the given conversations outright.
func DeleteConversations(ctx context.Context, conversationIDs []string) error {
	if len(conversationIDs) == 0 {
		return nil
	}
	_, err := convColl().DeleteMany(ctx, bson.M{"conversation_id": bson.M{"$in": conversationIDs}})
	return err
}
