package router

import (
	"github.com/Maniok19/Wikitricks/internal/config"
	"github.com/Maniok19/Wikitricks/internal/googleauth"
	"github.com/Maniok19/Wikitricks/internal/handler"
	"github.com/Maniok19/Wikitricks/internal/mail"
	"github.com/Maniok19/Wikitricks/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires every handler onto a gin engine. Route shapes and
// error bodies are part of the public API; the frontend depends on them.
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	mailer := mail.NewSMTPMailer(cfg.Mail, cfg.App.FrontendURL)
	google := googleauth.New(cfg.Google.ClientID)

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours,
		cfg.Security.BcryptCost, mailer, google)
	userHandler := handler.NewUserHandler(db, cfg.Security.BcryptCost, google)
	trickHandler := handler.NewTrickHandler(db)
	commentHandler := handler.NewCommentHandler(db)
	forumHandler := handler.NewForumHandler(db)
	skateparkHandler := handler.NewSkateparkHandler(db)
	voteHandler := handler.NewVoteHandler(db)
	leaderboardHandler := handler.NewLeaderboardHandler(db)
	adminHandler := handler.NewAdminHandler(db, cfg.App.PageSize)
	healthHandler := handler.NewHealthHandler(db)

	// public surface
	r.POST("/register", middleware.RateLimit(cfg.RateLimit.RegisterPerMinute), authHandler.Register)
	r.GET("/verify-email/:token", authHandler.VerifyEmail)
	r.POST("/login", middleware.RateLimit(cfg.RateLimit.LoginPerMinute), authHandler.Login)
	r.POST("/auth/google", authHandler.GoogleAuth)
	r.POST("/forgot-password", middleware.RateLimit(cfg.RateLimit.ResetPerMinute), authHandler.ForgotPassword)
	r.POST("/reset-password/:token", authHandler.ResetPassword)

	r.GET("/tricks", trickHandler.ListTricks)
	r.GET("/tricks/search", trickHandler.SearchTricks)
	r.GET("/tricks/:id", trickHandler.GetTrick)
	r.GET("/tricks/:id/comments", commentHandler.ListComments)

	r.GET("/forum/topics", forumHandler.ListTopics)
	r.GET("/forum/search", forumHandler.SearchTopics)
	r.GET("/forum/topics/:id", forumHandler.GetTopic)
	r.GET("/forum/topics/:id/replies", forumHandler.ListReplies)

	r.GET("/skateparks", skateparkHandler.ListSkateparks)
	r.POST("/create-skatepark", skateparkHandler.CreateSkatepark)

	r.GET("/leaderboards", leaderboardHandler.GetLeaderboards)
	r.GET("/health", healthHandler.Health)

	// authenticated surface
	authed := r.Group("/")
	authed.Use(middleware.AuthRequired(cfg.JWT.Secret), middleware.Audit(db))
	{
		authed.POST("/create-trick", trickHandler.CreateTrick)
		authed.DELETE("/tricks/:id", trickHandler.DeleteTrick)
		authed.POST("/tricks/:id/comments", commentHandler.CreateComment)

		authed.POST("/forum/topics", forumHandler.CreateTopic)
		authed.POST("/forum/topics/:id/replies", forumHandler.CreateReply)

		authed.POST("/tricks/:id/upvote", voteHandler.ToggleTrickUpvote)
		authed.GET("/tricks/:id/upvote-status", voteHandler.TrickUpvoteStatus)
		authed.POST("/replies/:id/upvote", voteHandler.ToggleReplyUpvote)
		authed.GET("/replies/:id/upvote-status", voteHandler.ReplyUpvoteStatus)

		authed.GET("/user/me", userHandler.GetMe)
		authed.PUT("/user/profile", userHandler.UpdateProfile)
	}

	// admin surface
	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired(cfg.JWT.Secret, db), middleware.Audit(db))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.DELETE("/tricks/:id", adminHandler.DeleteTrick)
		admin.DELETE("/comments/:id", adminHandler.DeleteComment)
		admin.DELETE("/forum/topics/:id", adminHandler.DeleteTopic)
		admin.DELETE("/forum/replies/:id", adminHandler.DeleteReply)
		admin.POST("/users/:id/toggle-admin", adminHandler.ToggleAdmin)
		admin.GET("/logs", adminHandler.ListLogs)
		admin.GET("/export/tricks.csv", adminHandler.ExportTricksCSV)
		admin.GET("/export/tricks.xlsx", adminHandler.ExportTricksXLSX)
	}

	return r
}
