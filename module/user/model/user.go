package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"github.com/pkg/errors"

	mgo "WChat/service/mgo"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User is the account main record.
type User struct {
	UserID   string `bson:"user_id" json:"UserID"`
	FullName string `bson:"full_name" json:"FullName"`
	Email    string `bson:"email" json:"Email"`
	Password string `bson:"password" json:"-"` // bcrypt hash, never serialized
	Avatar   string `bson:"avatar,omitempty" json:"Avatar"`
	Gender   string `bson:"gender" json:"Gender"`
	Age      int    `bson:"age" json:"Age"`
	Country  string `bson:"country" json:"Country"`
	Role     string `bson:"role" json:"Role"`

	LastSeen  time.Time  `bson:"last_seen,omitempty" json:"LastSeen"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"DeletedAt,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"CreateTime"`
	UpdateTime time.Time `bson:"update_time" json:"UpdateTime"`
}

func (u *User) GetTableName() string {
	return "user"
}

func (u *User) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(u.GetTableName())
}

func coll() *mongo.Collection {
	return (&User{}).Collection()
}

func (u *User) Insert(ctx context.Context) error {
	now := time.Now()
	if u.CreateTime.IsZero() {
		u.CreateTime = now
	}
	u.UpdateTime = now
	_, err := u.Collection().InsertOne(ctx, u)
	return err
}

// FindByEmail returns (nil, nil) when no account has the email.
func FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := coll().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns (nil, nil) when the user does not exist.
func FindByID(ctx context.Context, userID string) (*User, error) {
	var u User
	err := coll().FindOne(ctx, bson.M{"user_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListExcept returns every user except the given one, for the contact
// list screen.
func ListExcept(ctx context.Context, userID string) ([]*User, error) {
	cur, err := coll().Find(ctx,
		bson.M{"user_id": bson.M{"$ne": userID}},
		options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	users := make([]*User, 0, 16)
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateFields applies a partial $set and refreshes update_time.
func UpdateFields(ctx context.Context, userID string, set bson.M) error {
	if len(set) == 0 {
		return nil
	}
	set["update_time"] = time.Now()
	_, err := coll().UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": set})
	return err
}

func DeleteByID(ctx context.Context, userID string) error {
	_, err := coll().DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}
