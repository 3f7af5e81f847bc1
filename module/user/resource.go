package user

import (
	"github.com/gin-gonic/gin"

	"WChat/module/user/model"
	"WChat/tools/countries"
)

// UserResource is the full self-view of an account.
func UserResource(u *model.User) gin.H {
	return gin.H{
		"id":       u.UserID,
		"fullName": u.FullName,
		"email":    u.Email,
		"avatar":   u.Avatar,
		"gender":   u.Gender,
		"age":      u.Age,
		"country": gin.H{
			"code": u.Country,
			"name": countries.Name(u.Country),
		},
		"role":      u.Role,
		"createdAt": u.CreateTime,
		"updatedAt": u.UpdateTime,
	}
}

// UserListResource is the trimmed view used by the contact list; no
// email or role.
func UserListResource(u *model.User) gin.H {
	return gin.H{
		"id":       u.UserID,
		"fullName": u.FullName,
		"avatar":   u.Avatar,
		"gender":   u.Gender,
		"age":      u.Age,
		"country": gin.H{
			"code": u.Country,
			"name": countries.Name(u.Country),
		},
	}
}
