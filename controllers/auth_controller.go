package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/climaquote/dto"
	"github.com/princinho/climaquote/utils"
)

func (a *App) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto dto.LoginDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !utils.CheckSecret(a.Auth.SecretHash, a.Auth.Secret, dto.Secret) {
			a.Log.Warn().Str("ip", c.ClientIP()).Msg("rejected operator login")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		now := a.now()
		accessToken, err := utils.GenerateAccessToken(a.Auth.JWTSecret, utils.RoleOperator, a.Auth.TokenTTL, now)
		if err != nil {
			a.fail(c, err, http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token": accessToken,
			"expires_at":   now.Add(a.Auth.TokenTTL),
		})
	}
}
