package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/nft-ticketing-go/config"
	"github.com/phillip/nft-ticketing-go/middleware"
	"github.com/phillip/nft-ticketing-go/models"
	"github.com/phillip/nft-ticketing-go/services"
	"github.com/phillip/nft-ticketing-go/utils"
)

// ---------------- CALLBACK ----------------
// AuthCallback registers the DID on first login. A session token is handed
// back only when the request carries a provider ID token for that DID; without
// a configured verifier the callback registers users and issues nothing.
func AuthCallback(cfg *config.Config, auth *services.AuthService, verifier *utils.IdentityVerifier) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		var input struct {
			DID     string `json:"did" binding:"required"`
			Name    string `json:"name"`
			IDToken string `json:"idToken"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		in := services.CallbackInput{DID: input.DID, Name: input.Name}
		if verifier != nil {
			if input.IDToken == "" {
				respondError(c, models.MissingField("idToken"))
				return
			}
			claims, err := verifier.Verify(input.IDToken)
			if err != nil {
				respondError(c, fmt.Errorf("%w: %v", models.ErrUnauthenticated, err))
				return
			}
			if claims.Subject != input.DID {
				respondError(c, fmt.Errorf("%w: token subject does not match did", models.ErrUnauthenticated))
				return
			}
			in.Email = claims.Email
			if in.Name == "" {
				in.Name = claims.Name
			}
		}

		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		user, err := auth.Callback(ctx, in)
		if err != nil {
			respondError(c, err)
			return
		}

		body := gin.H{
			"message": "User authenticated",
			"user": gin.H{
				"did":  user.DID,
				"role": user.Role,
				"name": user.Name,
			},
		}

		if verifier != nil {
			token, err := utils.IssueToken(secret, user, time.Now(), cfg.JWTTTL)
			if err != nil {
				respondError(c, err)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(middleware.SessionCookie, token, int(cfg.JWTTTL.Seconds()), "/", "", cfg.IsProduction(), true)
			body["token"] = token
		}

		c.JSON(http.StatusOK, body)
	}
}
