package handlers

import (
	"github.com/Angel-Soto43/AzalMechanicalSupport/services"
	"github.com/Angel-Soto43/AzalMechanicalSupport/utils"

	"github.com/gin-gonic/gin"
)

var appServices *services.Container

func SetServices(container *services.Container) {
	appServices = container
}

func getServices() *services.Container {
	if appServices == nil {
		panic("services container is not initialized")
	}
	return appServices
}

// actorFromContext assembles the acting identity every mutating service
// call requires: user id from the token, address and agent from the request.
func actorFromContext(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:    c.GetUint("user_id"),
		IsAdmin:   c.GetBool("is_admin"),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func respondServiceError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := err.(*services.AppError); ok {
		if appErr.Data != nil {
			utils.ErrorWithData(c, appErr.HTTPCode, appErr.Message, appErr.Data)
		} else {
			utils.Error(c, appErr.HTTPCode, appErr.Message)
		}
		return true
	}
	utils.Error(c, 500, "internal error")
	return true
}
