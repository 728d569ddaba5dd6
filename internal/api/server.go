package api

import (
	"github.com/gin-gonic/gin"

	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/middleware"
)

type Server struct {
	auth         *AuthHandler
	company      *CompanyHandler
	employee     *EmployeeHandler
	order        *OrderHandler
	verification *VerificationHandler
	tariff       *TariffHandler
	authMW       *middleware.AuthMiddleware
	rateLimit    *middleware.RateLimitMiddleware
}

func NewServer(
	authService AuthService,
	companyService CompanyService,
	employeeService EmployeeService,
	orderService OrderService,
	verificationService VerificationService,
	tariffService TariffService,
	quota QuotaRecalculator,
	authMW *middleware.AuthMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
) *Server {
	return &Server{
		auth:         NewAuthHandler(authService),
		company:      NewCompanyHandler(companyService),
		employee:     NewEmployeeHandler(employeeService),
		order:        NewOrderHandler(orderService),
		verification: NewVerificationHandler(verificationService),
		tariff:       NewTariffHandler(tariffService, quota),
		authMW:       authMW,
		rateLimit:    rateLimit,
	}
}

func (s *Server) SetupRoutes(api *gin.RouterGroup) {
	api.Use(middleware.Metrics())
	api.Use(s.rateLimit.GlobalRateLimit(10000)) // 10k requests per minute per IP

	auth := api.Group("/auth")
	{
		auth.POST("/login", s.auth.Login)
		auth.POST("/logout", s.authMW.JWTAuth(), s.auth.Logout)
		auth.PUT("/password", s.authMW.JWTAuth(), s.auth.ChangePassword)
	}

	// Platform administration: companies and tariff templates.
	companies := api.Group("/companies", s.authMW.JWTAuth(), s.authMW.RequireStatus(domain.StatusAdmin))
	{
		companies.POST("", s.company.CreateCompany)
		companies.GET("", s.company.ListCompanies)
		companies.GET("/:id", s.company.GetCompany)
		companies.PUT("/:id/active", s.company.SetCompanyActive)
		companies.DELETE("/:id", s.company.DeleteCompany)

		companies.PUT("/:id/tariff", s.tariff.AssignTariff)
		companies.DELETE("/:id/tariff", s.tariff.UnassignTariff)
		companies.PATCH("/:id/tariff/limits", s.tariff.UpdateTariffLimits)
		companies.POST("/:id/tariff/reset", s.tariff.ResetCounters)
		companies.POST("/:id/tariff/recalculate/:kind", s.tariff.RecalculateCounter)
		companies.GET("/:id/tariff/history", s.tariff.GetTariffHistory)
	}

	tariffs := api.Group("/tariffs", s.authMW.JWTAuth(), s.authMW.RequireStatus(domain.StatusAdmin))
	{
		tariffs.POST("", s.tariff.CreateBaseTariff)
		tariffs.GET("", s.tariff.ListBaseTariffs)
		tariffs.DELETE("/:id", s.tariff.ArchiveBaseTariff)
	}

	// Company-scoped surface; every metered write goes through the quota
	// guard inside the services.
	tariff := api.Group("/tariff", s.authMW.JWTAuth(), s.rateLimit.CompanyRateLimit())
	{
		tariff.GET("/limits", s.tariff.GetLimitsInfo)
	}

	employees := api.Group("/employees", s.authMW.JWTAuth(), s.rateLimit.CompanyRateLimit(), s.authMW.RequireStatus(domain.StatusDirector))
	{
		employees.POST("", s.employee.CreateEmployee)
		employees.GET("", s.employee.ListEmployees)
		employees.GET("/:id", s.employee.GetEmployee)
		employees.DELETE("/:id", s.employee.DeleteEmployee)
		employees.POST("/replace", s.employee.ReplaceEmployees)
	}

	orders := api.Group("/orders", s.authMW.JWTAuth(), s.rateLimit.CompanyRateLimit(), s.authMW.RequireStatus(domain.StatusMetrolog))
	{
		orders.POST("", s.order.CreateOrder)
		orders.GET("", s.order.ListOrders)
		orders.GET("/:id", s.order.GetOrder)
		orders.POST("/:id/cancel", s.order.CancelOrder)
	}

	verifications := api.Group("/verifications", s.authMW.JWTAuth(), s.rateLimit.CompanyRateLimit(), s.authMW.RequireStatus(domain.StatusVerifier))
	{
		verifications.POST("", s.verification.CreateVerification)
		verifications.GET("", s.verification.ListVerifications)
		verifications.GET("/:id", s.verification.GetVerification)
		verifications.DELETE("/:id", s.verification.DeleteVerification)
		verifications.GET("/:id/protocol", s.verification.DownloadProtocol)
		verifications.GET("/documents", s.verification.ListDocuments)
		verifications.POST("/report", s.verification.RequestReport)
	}
}
