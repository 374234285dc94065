package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"election-service/internal/server/handlers"
	"election-service/internal/server/middleware"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(router *gin.Engine, jwtSecret string, voteHandler *handlers.VoteHandler, verifyHandler *handlers.VerifyHandler, electionHandler *handlers.ElectionHandler) {
	router.Use(middleware.CORS())
	router.Use(middleware.LogApi())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check route
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		public.GET("/elections/:election_id", electionHandler.GetElection)
		public.GET("/elections/:election_id/results", electionHandler.GetResults)
	}

	// Protected routes (require JWT authentication)
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuth(jwtSecret))
	{
		protected.POST("/elections/:election_id/votes", voteHandler.CastVote)

		protected.GET("/elections/:election_id/verify", verifyHandler.VerifyElection)
		protected.GET("/elections/:election_id/votes/:vote_id/verify", verifyHandler.VerifyVote)

		admin := protected.Group("/admin")
		{
			admin.POST("/elections/sweep", electionHandler.Sweep)
			admin.POST("/elections/finalize", electionHandler.DispatchFinalizations)
			admin.POST("/elections/:election_id/compromise", electionHandler.Compromise)
		}
	}
}
