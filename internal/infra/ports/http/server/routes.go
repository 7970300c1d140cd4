package server

import (
	"github.com/labstack/echo/v4"

	"github.com/qrave1/confeet-agent/internal/application/config"
	"github.com/qrave1/confeet-agent/internal/infra/ports/http/handlers"
	"github.com/qrave1/confeet-agent/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	callHandler *handlers.CallHandler,
	chatHandler *handlers.ChatHandler,
	connectionHandler *handlers.ConnectionHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")

	v1 := api.Group("/v1")
	v1.Use(middleware.JWTAuthMiddleware(cfg.ControlSecret))
	{
		v1.GET("/connection", connectionHandler.Status)

		calls := v1.Group("/calls")
		{
			calls.GET("/state", callHandler.State)
			calls.GET("/participants", callHandler.Participants)

			calls.POST("/initiate", callHandler.Initiate)
			calls.POST("/join", callHandler.Join)
			calls.POST("/accept", callHandler.Accept)
			calls.POST("/reject", callHandler.Reject)
			calls.POST("/cancel", callHandler.Cancel)
			calls.POST("/timeout", callHandler.Timeout)
			calls.POST("/end", callHandler.End)

			calls.POST("/joining-requests", callHandler.SendJoiningRequest)
			calls.POST("/joining-requests/invite", callHandler.RequestToJoin)
			calls.POST("/joining-requests/accept", callHandler.AcceptJoiningRequest)
			calls.POST("/joining-requests/dismiss", callHandler.DismissJoiningRequest)

			calls.POST("/group-notifications", callHandler.NotifyGroupCreated)
		}

		chat := v1.Group("/chat")
		{
			chat.GET("", chatHandler.State)
			chat.PUT("/active", chatHandler.SetActive)
			chat.GET("/messages", chatHandler.Messages)
			chat.POST("/messages", chatHandler.SendMessage)
			chat.POST("/history", chatHandler.LoadHistory)
			chat.POST("/seen", chatHandler.MarkSeen)
			chat.POST("/typing", chatHandler.Typing)
		}

		v1.GET("/notifications", chatHandler.Notifications)
		v1.DELETE("/notifications", chatHandler.ClearAllNotifications)
		v1.DELETE("/notifications/:id", chatHandler.ClearNotification)
	}

	return e
}
