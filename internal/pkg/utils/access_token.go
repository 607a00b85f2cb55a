package utils

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

const (
	usernameClaimKey string = "username"
	nameClaimKey     string = "name"
	adminClaimKey    string = "admin"
	tokenCtxKey      string = "accessToken"
)

type AccessToken struct {
	Token auth.Token
}

func GetAccessToken(ctx *gin.Context) auth.Token {
	at := getAccessToken(ctx)
	return at.Token
}

func getAccessToken(ctx *gin.Context) AccessToken {
	at, _ := getCtxValue(tokenCtxKey, ctx).(AccessToken)
	return at
}

// GetUsername identifies the caller: the username claim, then the display name, then
// the token subject.
func GetUsername(ctx *gin.Context) string {
	token := GetAccessToken(ctx)
	for _, key := range []string{usernameClaimKey, nameClaimKey} {
		if value, ok := token.Claims[key].(string); ok && value != "" {
			return value
		}
	}
	return token.Subject
}

func IsAdmin(ctx *gin.Context) bool {
	token := GetAccessToken(ctx)
	admin, _ := token.Claims[adminClaimKey].(bool)
	return admin
}

func getCtxValue(key string, ctx *gin.Context) any {
	value, exists := ctx.Get(key)
	if !exists {
		ctx.AbortWithStatus(http.StatusInternalServerError)
	}
	return value
}

func SetAccessTokenCtx(token *AccessToken, ctx *gin.Context) {
	ctx.Set(tokenCtxKey, *token)
}
