package user

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"WChat/global"
	"WChat/logger"
	midsec "WChat/middleware/security"
	"WChat/module/user/model"
	"WChat/module/user/service"
	"WChat/service/chat"
	"WChat/service/storage"
	"WChat/tools/errs"
)

var (
	gw    *chat.Gateway
	media *storage.MediaStore
)

// Init wires the handlers to the realtime gateway and the media store.
func Init(g *chat.Gateway, m *storage.MediaStore) {
	gw = g
	media = m
}

func setAuthCookie(c *gin.Context, token string) {
	maxAge := 7 * 24 * 3600
	secure := false
	if global.App != nil {
		if global.App.TokenTTLMin > 0 {
			maxAge = global.App.TokenTTLMin * 60
		}
		secure = global.App.Env == "production"
	}
	c.SetCookie(midsec.CookieName, token, maxAge, "/", "", secure, true)
}

func clearAuthCookie(c *gin.Context) {
	c.SetCookie(midsec.CookieName, "", -1, "/", "", false, true)
}

func respondError(c *gin.Context, err error, fields []FieldError) {
	if ce := errs.AsCodeError(err); ce != nil {
		body := gin.H{"success": false, "message": ce.Msg}
		if len(fields) > 0 {
			body["errors"] = fields
		}
		c.JSON(errs.HTTPStatus(ce.Code), body)
		return
	}
	logger.Errorf("[user] handler error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
}

func HandlerSignup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": fields})
		return
	}

	u, token, err := service.Signup(c.Request.Context(), service.SignupParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
		Age:      req.Age,
		Country:  req.Country,
	})
	if err != nil {
		if errs.ErrEmailTaken.Is(err) {
			respondError(c, err, []FieldError{{"email", "Email is already in use"}})
			return
		}
		respondError(c, err, nil)
		return
	}

	setAuthCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"user":    UserResource(u),
	})
}

func HandlerLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": fields})
		return
	}

	u, token, err := service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errs.ErrInvalidCredentials.Is(err) {
			// same message on both fields, do not leak which one failed
			respondError(c, err, []FieldError{
				{"password", "Invalid credentials"},
				{"email", "Invalid credentials"},
			})
			return
		}
		respondError(c, err, nil)
		return
	}

	setAuthCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User logged in successfully",
		"user":    UserResource(u),
	})
}

func HandlerLogout(c *gin.Context) {
	clearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User logged out successfully",
	})
}

func HandlerMe(c *gin.Context) {
	u, err := model.FindByID(c.Request.Context(), midsec.AuthUserID(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	if u == nil {
		respondError(c, errs.ErrUserNotFound, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User fetched successfully",
		"user":    UserResource(u),
	})
}

func HandlerList(c *gin.Context) {
	users, err := model.ListExcept(c.Request.Context(), midsec.AuthUserID(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, UserListResource(u))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Users fetched successfully",
		"users":   out,
	})
}

// HandlerUpdate accepts JSON or multipart; multipart may carry an avatar
// file that lands in the media store.
func HandlerUpdate(c *gin.Context) {
	userID := midsec.AuthUserID(c)
	set := bson.M{}
	var fields []FieldError

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req := UpdateUserRequest{}
		if v, ok := c.GetPostForm("fullName"); ok {
			req.FullName = &v
		}
		if v, ok := c.GetPostForm("age"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				req.Age = &n
			} else {
				fields = append(fields, FieldError{"age", "Age must be a number"})
			}
		}
		if v, ok := c.GetPostForm("country"); ok {
			req.Country = &v
		}
		fields = append(fields, req.Validate()...)
		if len(fields) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": fields})
			return
		}
		applyUpdate(set, &req)

		if fh, err := c.FormFile("avatar"); err == nil {
			url, uerr := media.SaveUpload(fh)
			if uerr != nil {
				respondError(c, uerr, nil)
				return
			}
			set["avatar"] = url
		}
	} else {
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		if fields = req.Validate(); len(fields) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": fields})
			return
		}
		applyUpdate(set, &req)
	}

	u, err := service.UpdateProfile(c.Request.Context(), userID, set)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"user":    UserResource(u),
	})
}

func applyUpdate(set bson.M, req *UpdateUserRequest) {
	if req.FullName != nil {
		set["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Age != nil {
		set["age"] = *req.Age
	}
	if req.Country != nil {
		set["country"] = strings.ToLower(*req.Country)
	}
}

// HandlerDelete cascades the account away and tells every connected
// client about it.
func HandlerDelete(c *gin.Context) {
	userID := midsec.AuthUserID(c)

	clearAuthCookie(c)
	if err := service.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err, nil)
		return
	}

	if gw != nil {
		gw.BroadcastAll(chat.EventUserDeleted, userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}
