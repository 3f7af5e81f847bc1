package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"WChat/global"
	"WChat/logger"
	chatmodel "WChat/module/chat/model"
	usermodel "WChat/module/user/model"
	"WChat/tools/errs"
	"WChat/tools/ids"
	"WChat/tools/security"
)

type SignupParams struct {
	FullName string
	Email    string
	Password string
	Gender   string
	Age      int
	Country  string
}

// Signup creates the account and returns it with a fresh access token.
func Signup(ctx context.Context, p SignupParams) (*usermodel.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))

	existing, err := usermodel.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", errs.Wrap(err)
	}
	if existing != nil {
		return nil, "", errs.ErrEmailTaken
	}

	hash, err := security.HashPassword(p.Password)
	if err != nil {
		return nil, "", errs.Wrap(err)
	}

	u := &usermodel.User{
		UserID:   ids.GenerateString(),
		FullName: strings.TrimSpace(p.FullName),
		Email:    email,
		Password: hash,
		Gender:   strings.ToLower(p.Gender),
		Age:      p.Age,
		Country:  strings.ToLower(p.Country),
		Role:     usermodel.RoleUser,
		LastSeen: time.Now(),
	}
	if err := u.Insert(ctx); err != nil {
		return nil, "", errs.Wrap(err)
	}

	token, _, _, err := security.Generate(global.JwtOptions(), u.UserID, nil)
	if err != nil {
		return nil, "", errs.Wrap(err)
	}
	return u, token, nil
}

// Login verifies the credentials and returns the user with a token. The
// same error covers unknown email and bad password on purpose.
func Login(ctx context.Context, email, password string) (*usermodel.User, string, error) {
	u, err := usermodel.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", errs.Wrap(err)
	}
	if u == nil || !security.CheckPassword(u.Password, password) {
		return nil, "", errs.ErrInvalidCredentials
	}

	token, _, _, err := security.Generate(global.JwtOptions(), u.UserID, nil)
	if err != nil {
		return nil, "", errs.Wrap(err)
	}
	return u, token, nil
}

// UpdateProfile applies a partial update and returns the fresh record.
func UpdateProfile(ctx context.Context, userID string, set bson.M) (*usermodel.User, error) {
	if len(set) == 0 {
		return nil, errs.ErrNoFieldsToUpdate
	}
	if err := usermodel.UpdateFields(ctx, userID, set); err != nil {
		return nil, errs.Wrap(err)
	}
	u, err := usermodel.FindByID(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if u == nil {
		return nil, errs.ErrUserNotFound
	}
	return u, nil
}

// DeleteAccount removes the user and everything they took part in:
// messages first, then conversations, then the account itself.
func DeleteAccount(ctx context.Context, userID string) error {
	convs, err := chatmodel.FindByParticipant(ctx, userID)
	if err != nil {
		return errs.Wrap(err)
	}
	convIDs := make([]string, 0, len(convs))
	for _, c := range convs {
		convIDs = append(convIDs, c.ConversationID)
	}

	if err := chatmodel.DeleteByConversations(ctx, convIDs); err != nil {
		return errs.Wrap(err)
	}
	if err := chatmodel.DeleteConversations(ctx, convIDs); err != nil {
		return errs.Wrap(err)
	}
	if err := usermodel.DeleteByID(ctx, userID); err != nil {
		return errs.Wrap(err)
	}

	logger.Infof("[user] account deleted user=%s conversations=%d", userID, len(convIDs))
	return nil
}
