// Package router wires every HTTP route to its handler and guards.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/arekbor/helpdesk/internal/auth"
	"github.com/arekbor/helpdesk/internal/config"
	"github.com/arekbor/helpdesk/internal/handler"
	"github.com/arekbor/helpdesk/internal/middleware"
	"github.com/arekbor/helpdesk/internal/repository"
)

// Deps carries everything the route table needs.
type Deps struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Tickets      *handler.TicketHandler
	Attachments  *handler.AttachmentHandler
	Subscription *handler.SubscriptionHandler
	Jobs         *handler.JobHandler

	Sessions *repository.SessionRepo
	Roles    *repository.RoleRepo

	SessionTTLMin int
	RateLimit     config.RateLimitConfig
	Redis         *redis.Client
}

// Register mounts the public and session-guarded route groups.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RateLimit(d.RateLimit, d.Redis))

	e.GET("/health", handler.Health)

	// Unauthenticated surface: account bootstrap and provider callbacks.
	e.POST("/register", d.Auth.Register)
	e.POST("/login", d.Auth.Login)
	e.POST("/verify-otp", d.Auth.VerifyOTP)
	e.GET("/login/google", d.Auth.GoogleLogin)
	e.GET("/login/google/callback", d.Auth.GoogleCallback)
	e.POST("/webhooks/stripe", d.Subscription.Webhook)

	guarded := e.Group("", middleware.Session(d.Sessions, d.SessionTTLMin))

	guarded.POST("/logout", d.Auth.Logout)
	guarded.POST("/reset-password", d.Auth.ResetPassword)

	can := func(action auth.Action, subject auth.Subject) echo.MiddlewareFunc {
		return middleware.RequireAbility(d.Roles, action, subject)
	}

	guarded.GET("/users", d.Users.List, can(auth.ActionRead, auth.SubjectUser))
	guarded.GET("/users/:uuid", d.Users.Get, can(auth.ActionRead, auth.SubjectUser))
	guarded.POST("/users", d.Users.Create, can(auth.ActionCreate, auth.SubjectUser))
	guarded.PATCH("/users/:uuid", d.Users.Update, can(auth.ActionUpdate, auth.SubjectUser))
	guarded.DELETE("/users/:uuid", d.Users.Delete, can(auth.ActionDelete, auth.SubjectUser))
	guarded.POST("/users/csv-upload", d.Users.UploadCSV, can(auth.ActionCreate, auth.SubjectUser))

	guarded.GET("/tickets", d.Tickets.List, can(auth.ActionRead, auth.SubjectTicket))
	guarded.GET("/tickets/:uuid", d.Tickets.Get, can(auth.ActionRead, auth.SubjectTicket))
	guarded.POST("/tickets", d.Tickets.Create, can(auth.ActionCreate, auth.SubjectTicket))
	guarded.PATCH("/tickets/:uuid", d.Tickets.Update, can(auth.ActionUpdate, auth.SubjectTicket))
	guarded.DELETE("/tickets/:uuid", d.Tickets.Delete, can(auth.ActionDelete, auth.SubjectTicket))

	guarded.POST("/attachments", d.Attachments.Create, can(auth.ActionCreate, auth.SubjectAttachment))
	guarded.DELETE("/attachments/:uuid", d.Attachments.Delete, can(auth.ActionDelete, auth.SubjectAttachment))

	guarded.POST("/subscriptions/payment-intent", d.Subscription.CreatePaymentIntent, can(auth.ActionCreate, auth.SubjectSubscription))
	guarded.GET("/subscriptions/prices", d.Subscription.Prices, can(auth.ActionRead, auth.SubjectSubscription))
	guarded.GET("/subscriptions/payment-methods", d.Subscription.PaymentMethods, can(auth.ActionRead, auth.SubjectSubscription))

	guarded.GET("/processing/:uuid", d.Jobs.Get, can(auth.ActionRead, auth.SubjectJob))
}
