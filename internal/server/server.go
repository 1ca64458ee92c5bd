package server

import (
	"log"
	"strings"
	"time"

	"anoa.com/mentorhub/internal/config"
	"anoa.com/mentorhub/internal/middleware"
	"anoa.com/mentorhub/pkg/storage"

	challengeHttp "anoa.com/mentorhub/internal/modules/challenge/delivery/http"
	challengeRepo "anoa.com/mentorhub/internal/modules/challenge/repository"
	challengeService "anoa.com/mentorhub/internal/modules/challenge/service"

	documentHttp "anoa.com/mentorhub/internal/modules/document/delivery/http"
	documentRepo "anoa.com/mentorhub/internal/modules/document/repository"
	documentService "anoa.com/mentorhub/internal/modules/document/service"

	forumHttp "anoa.com/mentorhub/internal/modules/forum/delivery/http"
	forumRepo "anoa.com/mentorhub/internal/modules/forum/repository"
	forumService "anoa.com/mentorhub/internal/modules/forum/service"

	matchHttp "anoa.com/mentorhub/internal/modules/match/delivery/http"
	matchRepo "anoa.com/mentorhub/internal/modules/match/repository"
	matchService "anoa.com/mentorhub/internal/modules/match/service"

	notiHttp "anoa.com/mentorhub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/mentorhub/internal/modules/notification/repository"
	notifService "anoa.com/mentorhub/internal/modules/notification/service"

	pointsHttp "anoa.com/mentorhub/internal/modules/points/delivery/http"
	pointsRepo "anoa.com/mentorhub/internal/modules/points/repository"
	pointsService "anoa.com/mentorhub/internal/modules/points/service"

	searchService "anoa.com/mentorhub/internal/modules/search/service"

	userHttp "anoa.com/mentorhub/internal/modules/user/delivery/http"
	userRepo "anoa.com/mentorhub/internal/modules/user/repository"
	userService "anoa.com/mentorhub/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	usersRepo := userRepo.NewUserRepository(db)

	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := searchService.NewSearchService(meiliClient)

	authSvc := userService.NewAuthService(usersRepo)
	authHandler := userHttp.NewAuthHandler(authSvc)

	adminSvc := userService.NewAdminService(usersRepo)
	adminHandler := userHttp.NewAdminHandler(adminSvc)

	documentsRepo := documentRepo.NewDocumentRepository(db)
	documentSvc := documentService.NewDocumentService(documentsRepo, fileStorage)
	documentHandler := documentHttp.NewDocumentHandler(documentSvc)

	notificationsRepo := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationsRepo, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	matchesRepo := matchRepo.NewMatchRepository(db)
	matchSvc := matchService.NewMatchService(matchesRepo, usersRepo, documentsRepo, notificationSvc)
	matchHandler := matchHttp.NewMatchHandler(matchSvc)

	ledgerRepo := pointsRepo.NewPointsRepository(db)
	pointsSvc := pointsService.NewPointsService(ledgerRepo, redisClient)
	pointsHandler := pointsHttp.NewPointsHandler(pointsSvc)

	challengesRepo := challengeRepo.NewChallengeRepository(db)
	challengeSvc := challengeService.NewChallengeService(challengesRepo, pointsSvc, notificationSvc)
	challengeHandler := challengeHttp.NewChallengeHandler(challengeSvc)

	threadsRepo := forumRepo.NewForumRepository(db)
	forumSvc := forumService.NewForumService(threadsRepo, usersRepo, redisClient, searchSvc, cfg.RateLimitThread)
	forumHandler := forumHttp.NewForumHandler(forumSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(usersRepo)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// Endpoints that also serve anonymous callers. user_id is set when a
	// valid token is present so views and vote lookups are per-user.
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/threads", forumHandler.GetAllThreads)
		public.GET("/threads/:thread_id", forumHandler.GetThread)
		public.GET("/threads/:thread_id/replies", forumHandler.GetReplies)
		public.GET("/threads/:thread_id/vote", forumHandler.GetThreadVote)
		public.GET("/replies/:reply_id/vote", forumHandler.GetReplyVote)
		public.POST("/threads/:thread_id/view", forumHandler.RecordView)
		public.POST("/threads/:thread_id/calculate-hot-score", forumHandler.CalculateHotScore)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.POST("/challenges", challengeHandler.CreateChallenge)
			adminGroup.POST("/participations/:participation_id/approve", challengeHandler.ApproveSubmission)
			adminGroup.POST("/participations/:participation_id/reject", challengeHandler.RejectSubmission)
			adminGroup.POST("/points/:user_id/recompute", pointsHandler.RecomputeBalance)
		}

		// Match lifecycle
		protected.POST("/matches", matchHandler.CreateMatch)
		protected.GET("/matches", matchHandler.ListMatches)
		protected.POST("/matches/:match_id/respond", matchHandler.RespondToMatch)
		protected.PATCH("/matches/:match_id/complete", matchHandler.CompleteMatch)
		protected.DELETE("/matches/:match_id", matchHandler.DeleteMatch)

		// Documents
		protected.POST("/documents", documentHandler.UploadDocument)
		protected.GET("/documents/me", documentHandler.GetMyDocuments)

		// Challenges
		protected.GET("/challenges", challengeHandler.GetAllChallenges)
		protected.GET("/challenges/:challenge_id", challengeHandler.GetChallenge)
		protected.POST("/challenges/:challenge_id/join", challengeHandler.JoinChallenge)
		protected.POST("/challenges/:challenge_id/submit", challengeHandler.SubmitChallenge)
		protected.GET("/participations/me", challengeHandler.GetMyParticipations)

		// Points and leaderboard
		protected.GET("/points/me", pointsHandler.GetMyBalance)
		protected.GET("/points/me/history", pointsHandler.GetMyHistory)
		protected.GET("/leaderboard", pointsHandler.GetLeaderboard)

		// Forum writes
		protected.POST("/threads", forumHandler.CreateThread)
		protected.DELETE("/threads/:thread_id", forumHandler.DeleteThread)
		protected.POST("/threads/:thread_id/replies", forumHandler.CreateReply)
		protected.DELETE("/replies/:reply_id", forumHandler.DeleteReply)
		protected.POST("/threads/:thread_id/vote", forumHandler.VoteOnThread)
		protected.POST("/replies/:reply_id/vote", forumHandler.VoteOnReply)

		// Notifications
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:notification_id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := strings.Split(allowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
