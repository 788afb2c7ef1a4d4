package router

import (
	"time"

	"crewpay/config"
	"crewpay/internal/handler"
	"crewpay/internal/middleware"
	"crewpay/internal/repository"
	"crewpay/internal/service"
	"crewpay/internal/ws"
	"crewpay/pkg/processor"
	"crewpay/pkg/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, proc processor.Processor, store storage.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	txr := repository.NewTxRunner(db)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	auditFeed := ws.NewAuditFeed()

	// Services
	auditor := service.NewAuditor(auditRepo, auditFeed)
	authSvc := service.NewAuthService(cfg, userRepo)
	assignmentSvc := service.NewAssignmentService(txr, assignmentRepo, projectRepo, userRepo, auditor)
	projectSvc := service.NewProjectService(txr, projectRepo, assignmentSvc)
	settlementSvc := service.NewSettlementService(txr, userRepo, assignmentRepo, payoutRepo, proc, auditor)
	creditSvc := service.NewCreditService(txr, creditRepo, invoiceRepo, auditor)
	invoiceSvc := service.NewInvoiceService(txr, invoiceRepo, auditor)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userRepo)
	projectHandler := handler.NewProjectHandler(projectRepo, projectSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	settlementHandler := handler.NewSettlementHandler(settlementSvc, payoutRepo)
	creditHandler := handler.NewCreditHandler(creditSvc, creditRepo)
	invoiceHandler := handler.NewInvoiceHandler(invoiceRepo, invoiceSvc)
	auditHandler := handler.NewAuditHandler(auditRepo)
	documentHandler := handler.NewDocumentHandler(store, documentRepo)
	webhookHandler := handler.NewProcessorWebhookHandler(&cfg.Processor, settlementSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		// Processor webhooks are authenticated by signature, not JWT.
		api.POST("/webhooks/processor", webhookHandler.Handle)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/credits", creditHandler.GetBalance)
			me.GET("/credits/transactions", creditHandler.ListTransactions)
			me.POST("/credits/purchase", creditHandler.Purchase)
			me.GET("/invoices", invoiceHandler.List)
		}

		invoices := api.Group("/invoices")
		invoices.Use(authMw)
		{
			invoices.GET("/:id", invoiceHandler.Get)
			invoices.POST("/:id/pay-with-credit", creditHandler.PayInvoice)
		}

		documents := api.Group("/documents")
		documents.Use(authMw)
		{
			documents.POST("", documentHandler.Upload)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/users", userHandler.List)
			admin.PATCH("/users/:id/processor-account", userHandler.SetProcessorAccount)

			admin.POST("/projects", projectHandler.Create)
			admin.GET("/projects", projectHandler.List)
			admin.GET("/projects/:id", projectHandler.Get)
			admin.POST("/projects/:id/complete", projectHandler.Complete)
			admin.GET("/projects/:id/assignments", assignmentHandler.ListByProject)

			admin.POST("/assignments", assignmentHandler.Create)
			admin.GET("/assignments/:id", assignmentHandler.Get)
			admin.PATCH("/assignments/:id/amount", assignmentHandler.SetAmount)
			admin.POST("/assignments/:id/approve", assignmentHandler.Approve)
			admin.POST("/assignments/:id/reject", assignmentHandler.Reject)
			admin.POST("/assignments/approve-batch", assignmentHandler.ApproveBatch)
			admin.DELETE("/assignments/:id", assignmentHandler.Unassign)

			admin.POST("/settlement/batch", settlementHandler.ProcessBatch)
			admin.GET("/payouts", settlementHandler.ListPayouts)
			admin.GET("/payouts/:id", settlementHandler.GetPayout)
			admin.POST("/payouts/:id/confirm", settlementHandler.ConfirmPayout)
			admin.POST("/payouts/:id/redispatch", settlementHandler.Redispatch)

			admin.POST("/invoices", invoiceHandler.Create)
			admin.POST("/invoices/:id/record-payment", invoiceHandler.RecordPayment)
			admin.POST("/invoices/quote-charge", invoiceHandler.QuoteCharge)

			admin.GET("/audit", auditHandler.List)
		}

		api.GET("/ws/admin/events", ws.UpgradeAuditWS(&cfg.JWT, auditFeed))
	}

	return r
}
