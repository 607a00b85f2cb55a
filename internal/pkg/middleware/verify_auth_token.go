package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/reject"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/utils"
	"github.com/kollektive-hackathon/flog-progression/pkg/firebase"
	"github.com/rs/zerolog/log"
)

const (
	accessTokenRequired string = "error.token.required"
	accessTokenInvalid  string = "error.token.invalid"
	adminRequired       string = "error.token.admin-required"
	internalKeyInvalid  string = "error.internal.key-invalid"

	InternalKeyHeader string = "X-Internal-Api-Key"
)

func VerifyAuthToken(context *gin.Context) {
	authHeader := context.Request.Header.Get("Authorization")
	idTokenValue := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if idTokenValue == "" {
		log.Warn().Msg("Token missing: 401")
		context.AbortWithStatusJSON(
			http.StatusUnauthorized,
			reject.NewProblem().
				WithTitle("Missing access token").
				WithStatus(http.StatusUnauthorized).
				WithCode(accessTokenRequired).
				Build())
		return
	}
	token, err := firebase.VerifyIdToken(context.Request.Context(), idTokenValue)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Error verifying token: %s", err.Error()))
		context.AbortWithStatusJSON(
			http.StatusUnauthorized,
			reject.NewProblem().
				WithTitle("Cannot verify access token").
				WithStatus(http.StatusUnauthorized).
				WithCode(accessTokenInvalid).
				WithDetail(err.Error()).
				Build())
		return
	}
	accessTokenDetails := utils.AccessToken{
		Token: *token,
	}
	utils.SetAccessTokenCtx(&accessTokenDetails, context)
}

// RequireAdmin must run after VerifyAuthToken.
func RequireAdmin(context *gin.Context) {
	if utils.IsAdmin(context) {
		return
	}
	log.Warn().Str("username", utils.GetUsername(context)).Msg("Admin claim missing: 403")
	context.AbortWithStatusJSON(
		http.StatusForbidden,
		reject.NewProblem().
			WithTitle("Admin access required").
			WithStatus(http.StatusForbidden).
			WithCode(adminRequired).
			Build())
}

// RequireInternalKey guards hooks called by other backend services.
func RequireInternalKey(key string) gin.HandlerFunc {
	return func(context *gin.Context) {
		given := context.Request.Header.Get(InternalKeyHeader)
		if key != "" && subtle.ConstantTimeCompare([]byte(given), []byte(key)) == 1 {
			return
		}
		log.Warn().Str("path", context.FullPath()).Msg("Internal key rejected: 401")
		context.AbortWithStatusJSON(
			http.StatusUnauthorized,
			reject.NewProblem().
				WithTitle("Invalid internal api key").
				WithStatus(http.StatusUnauthorized).
				WithCode(internalKeyInvalid).
				Build())
	}
}
