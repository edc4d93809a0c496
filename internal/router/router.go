package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/emonotate/emonotate/docs"
	"github.com/emonotate/emonotate/internal/config"
	"github.com/emonotate/emonotate/internal/middleware"
	"github.com/emonotate/emonotate/internal/modules/handler"
	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/emonotate/emonotate/internal/telemetry"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config              *config.Config
	Log                 *zap.Logger
	Auth                service.AuthService
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	ValueTypeHandler    *handler.ValueTypeHandler
	ContentHandler      *handler.ContentHandler
	CurveHandler        *handler.CurveHandler
	RequestHandler      *handler.RequestHandler
	QuestionaireHandler *handler.QuestionaireHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	cookie := d.Config.Auth.SessionCookie
	requireSession := middleware.SessionAuth(d.Auth, cookie)
	optionalSession := middleware.OptionalAuth(d.Auth, cookie)

	api := r.Group("/api")
	{
		// login always redirects, so it sits outside the session guard
		api.GET("/login/", d.AuthHandler.Login)
		api.POST("/login/", d.AuthHandler.Login)
		api.POST("/logout/", d.AuthHandler.Logout)

		api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		api.GET("/app", requireSession, d.AuthHandler.App)

		// export and mail endpoints keep their historical paths
		api.GET("/download_curve_data/", optionalSession, d.CurveHandler.DownloadByIDs)
		// request-scoped: unknown ids are 404 before the caller is checked against the request
		api.GET("/get_download_curve_data/:request_id", optionalSession, d.CurveHandler.DownloadByRequest)
		api.GET("/send/:request_id", optionalSession, d.RequestHandler.SendMail)
		api.GET("/reset_email_addresses/:request_id", optionalSession, d.RequestHandler.ResetEmails)

		users := api.Group("/users", requireSession)
		{
			users.GET("/me", d.UserHandler.Me)
			users.GET("", middleware.RequireStaff(), d.UserHandler.ListUsers)
			users.GET("/:id", middleware.RequireStaff(), d.UserHandler.GetUser)
			users.PUT("/:id/email", d.UserHandler.ChangeEmail)
		}

		valueTypes := api.Group("/valuetypes", requireSession)
		{
			valueTypes.GET("", d.ValueTypeHandler.ListValueTypes)
			valueTypes.POST("", middleware.RequirePerm(model.PermAddValueType), d.ValueTypeHandler.CreateValueType)
			valueTypes.GET("/:id", d.ValueTypeHandler.GetValueType)
			valueTypes.DELETE("/:id", middleware.RequirePerm(model.PermDeleteValueType), d.ValueTypeHandler.DeleteValueType)
		}

		contents := api.Group("/contents", requireSession)
		{
			contents.GET("", d.ContentHandler.ListContents)
			contents.POST("", middleware.RequirePerm(model.PermAddContent), d.ContentHandler.CreateContent)
			contents.GET("/:id", d.ContentHandler.GetContent)
			contents.DELETE("/:id", middleware.RequirePerm(model.PermDeleteContent), d.ContentHandler.DeleteContent)
		}

		youtube := api.Group("/youtube", requireSession)
		{
			youtube.GET("", d.ContentHandler.ListYouTube)
			youtube.POST("", middleware.RequirePerm(model.PermAddContent), d.ContentHandler.CreateYouTube)
		}

		curves := api.Group("/curves", requireSession)
		{
			curves.GET("", d.CurveHandler.ListCurves)
			curves.POST("", middleware.RequirePerm(model.PermAddCurve), d.CurveHandler.CreateCurve)
			curves.GET("/:id", d.CurveHandler.GetCurve)
			curves.PUT("/:id", middleware.RequirePerm(model.PermChangeCurve), d.CurveHandler.UpdateCurve)
			curves.PUT("/:id/lock", middleware.RequirePerm(model.PermChangeCurve), d.CurveHandler.LockCurve)
			curves.DELETE("/:id", middleware.RequirePerm(model.PermDeleteCurve), d.CurveHandler.DeleteCurve)
		}

		requests := api.Group("/requests", requireSession)
		{
			requests.GET("", d.RequestHandler.ListRequests)
			requests.POST("", middleware.RequirePerm(model.PermAddRequest), d.RequestHandler.CreateRequest)
			requests.GET("/room/:room_name", d.RequestHandler.GetRequestByRoom)
			requests.GET("/:id", d.RequestHandler.GetRequest)
			requests.PUT("/:id", middleware.RequirePerm(model.PermChangeRequest), d.RequestHandler.UpdateRequest)
			requests.DELETE("/:id", middleware.RequirePerm(model.PermDeleteRequest), d.RequestHandler.DeleteRequest)
			requests.GET("/:id/participants", middleware.RequirePerm(model.PermChangeRequest), d.RequestHandler.ListParticipants)
			requests.POST("/:id/participants", middleware.RequirePerm(model.PermChangeRequest), d.RequestHandler.AddParticipants)
		}

		questionaires := api.Group("/questionaires", requireSession)
		{
			questionaires.GET("", d.QuestionaireHandler.ListQuestionaires)
			questionaires.POST("", middleware.RequirePerm(model.PermAddQuestionaire), d.QuestionaireHandler.CreateQuestionaire)
			questionaires.GET("/:id", d.QuestionaireHandler.GetQuestionaire)
			questionaires.DELETE("/:id", middleware.RequirePerm(model.PermDeleteQuestionaire), d.QuestionaireHandler.DeleteQuestionaire)
		}
	}

	return r
}
