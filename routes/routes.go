package routes

import (
	"time"

	"taxly/handlers"
	"taxly/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterFlowRoutes registers the registration wizard endpoints.
func RegisterFlowRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/flow")
	{
		api.POST("/start", hb.Flow.StartFlowHandler)
		api.POST("/:flowID/email", hb.Flow.SubmitEmailHandler)
		api.POST("/:flowID/resend", hb.Flow.ResendVerificationHandler)
		api.GET("/:flowID/status", hb.Flow.FlowStatusHandler)
		api.GET("/:flowID/wait", hb.Flow.WaitVerificationHandler)
		api.POST("/:flowID/personal-info", hb.Flow.SubmitPersonalInfoHandler)
		api.POST("/:flowID/plan", hb.Flow.SelectPlanHandler)
		api.POST("/:flowID/plan/back", hb.Flow.PlanBackHandler)
		api.POST("/:flowID/payment-intent", hb.Flow.CreatePaymentIntentHandler)
		api.POST("/:flowID/payment", hb.Flow.PaymentSuccessHandler)
		api.POST("/:flowID/finalize", hb.Flow.FinalizeHandler)
	}
}

// RegisterPlanRoutes registers the public plan catalog endpoint.
func RegisterPlanRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/plans", hb.Plans.ListPlansHandler)
}

// RegisterAccountRoutes registers the authenticated account endpoints.
func RegisterAccountRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/account")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.Account.MeHandler)
	}
}

// RegisterVerifyRoute registers the endpoint behind emailed verification links.
func RegisterVerifyRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/verify", hb.Verify.VerifyEmailHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterFlowRoutes(r, hb)
	RegisterPlanRoutes(r, hb)
	RegisterAccountRoutes(r, hb)
	RegisterVerifyRoute(r, hb)
	RegisterHealthRoute(r)
}
