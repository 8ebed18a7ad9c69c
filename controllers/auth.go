package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"chatfree/middleware"
	"chatfree/models"
	"chatfree/pkg/config"
	tokenstore "chatfree/pkg/token"
	"chatfree/store"
)

const tokenLifetime = 24 * time.Hour

// Register creates a user account.
func Register(s store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Username  string `json:"username"`
			Email     string `json:"email"`
			Password  string `json:"password"`
			Password2 string `json:"password2"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
			return
		}

		email := strings.TrimSpace(strings.ToLower(body.Email))
		username := strings.TrimSpace(body.Username)

		if email == "" || username == "" || body.Password == "" || body.Password2 == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username, email, password, and password confirmation are required"})
			return
		}
		if body.Password != body.Password2 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Passwords do not match"})
			return
		}
		if !hasLetter(body.Password) || !hasNumber(body.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Password must contain at least one letter and one number"})
			return
		}

		user := models.User{Email: email, Username: username}
		if err := user.SetPassword(body.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to set password"})
			return
		}
		if err := s.CreateUser(c.Request.Context(), &user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"message": "Email or username already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create user"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "User created", "username": user.Username, "email": user.Email})
	}
}

// Login verifies credentials and issues a bearer token.
func Login(s store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
			return
		}
		email := strings.TrimSpace(strings.ToLower(body.Email))
		if email == "" || body.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
			return
		}

		user, err := s.FindUserByEmail(c.Request.Context(), email)
		if err != nil || !user.CheckPassword(body.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}

		jti := uuid.NewString()
		claims := jwt.MapClaims{
			"sub": user.ID.Hex(),
			"exp": time.Now().Add(tokenLifetime).Unix(),
			"jti": jti,
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenStr, err := token.SignedString([]byte(config.JWTSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":    tokenStr,
			"id":       user.ID.Hex(),
			"username": user.Username,
			"email":    user.Email,
		})
	}
}

// Logout revokes the presented token's jti. The revocation only needs to
// outlive the token itself.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		jti, _ := c.Get(middleware.ContextJTIKey)
		if s, ok := jti.(string); ok && s != "" {
			tokenstore.Revoke(s, tokenLifetime)
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return true
		}
	}
	return false
}

func hasNumber(s string) bool {
	for _, r := range s {
		if '0' <= r && r <= '9' {
			return true
		}
	}
	return false
}
