package main

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/domain/policy"
	"github.com/mwaldner/scrawl/internal/domain/sqlite"
	"github.com/mwaldner/scrawl/internal/domain/sqlite/repository"
	"github.com/mwaldner/scrawl/internal/http/handler"
	appmw "github.com/mwaldner/scrawl/internal/http/middleware"
	"github.com/mwaldner/scrawl/internal/infrastructure/aws/storage"
	"github.com/mwaldner/scrawl/internal/infrastructure/aws/websocket"
	"github.com/mwaldner/scrawl/internal/service"
	"github.com/mwaldner/scrawl/internal/service/jobs"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/uid"
	"github.com/mwaldner/scrawl/internal/validators"
)

const envVarsPrefix = "/scrawl/prod/"

func main() {
	validate := validator.New()
	registerValidators(validate)

	// Loads env vars depending on environment
	if os.Getenv("GO_ENV") == "production" {
		loadProdEnv() // AWS SSM Parameter Store
	} else {
		// Loads from .env
		if err := godotenv.Load(); err != nil {
			panic(err)
		}
	}

	if err := utils.InitJWT(os.Getenv("JWT_SECRET")); err != nil {
		log.Fatalf("failed to init token signing: %v", err)
	}

	machineID, _ := strconv.ParseInt(os.Getenv("MACHINE_ID"), 10, 64)
	uid.Init(machineID)

	db, err := sqlite.Init(envOr("DB_PATH", "database.db"))
	if err != nil {
		panic(err)
	}

	s3Client, err := storage.NewStorageClient()
	if err != nil {
		panic(err)
	}

	// Repos
	noteRepo := repository.NewNoteRepository(db)
	userRepo := repository.NewUserRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	// Optional realtime layer; disabled when no gateway endpoint is set.
	var wsService *service.WebSocketService
	if endpoint := os.Getenv("WS_GATEWAY_ENDPOINT"); endpoint != "" {
		gateway, gerr := websocket.NewAWSGatewayClient(context.Background(), endpoint, os.Getenv("AWS_REGION"))
		if gerr != nil {
			panic(gerr)
		}
		wsService = service.NewWebSocketService(connRepo, gateway)
	}

	// Services
	revisionService := service.NewRevisionService(revisionRepo)
	mediaService := service.NewMediaService(mediaRepo, s3Client)
	authService := service.NewAuthService(userRepo, validate)

	var notifier service.NoteNotifier
	if wsService != nil {
		notifier = wsService
	}
	noteService := service.NewNoteService(noteRepo, userRepo, revisionService, mediaService, notifier, validate)

	notePolicy := policy.NewNotePolicy(os.Getenv("ALLOW_GUEST_NOTES") == "true")
	gate := appmw.NewAccessGate(noteService, notePolicy, "/api/notes")

	// Handlers
	noteRoutes := handler.NewNoteDefault(noteService)
	revisionRoutes := handler.NewRevisionDefault(revisionService)
	mediaRoutes := handler.NewMediaDefault(mediaService)
	authRoutes := handler.NewAuthDefault(authService)

	e := echo.New()
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("30M"))

	authCfg := &appmw.AuthMiddlewareConfig{UserRepo: userRepo}
	if wsService != nil {
		authCfg.Sessions = wsService
	}
	authmw := appmw.NewAuthMiddleware(authCfg)

	// Notes: every route runs behind the auth middleware and the access
	// gate; the Require table below is the single source of truth for
	// what each operation demands.
	notes := e.Group("/api/notes", authmw, gate.Middleware())
	notes.POST("", noteRoutes.CreateNote)
	notes.POST("/:idOrAlias", noteRoutes.CreateNamedNote)
	notes.GET("/:idOrAlias", noteRoutes.GetNote)
	notes.PUT("/:idOrAlias", noteRoutes.UpdateNote)
	notes.DELETE("/:idOrAlias", noteRoutes.DeleteNote)
	notes.GET("/:idOrAlias/content", noteRoutes.GetNoteContent)
	notes.GET("/:idOrAlias/metadata", noteRoutes.GetNoteMetadata)
	notes.PUT("/:idOrAlias/permissions", noteRoutes.UpdateNotePermissions)
	notes.GET("/:idOrAlias/revisions", revisionRoutes.GetNoteRevisions)
	notes.GET("/:idOrAlias/revisions/:revisionId", revisionRoutes.GetNoteRevision)
	notes.POST("/:idOrAlias/media", mediaRoutes.UploadMedia)

	gate.Require(http.MethodPost, "/api/notes", entity.PermissionCreate)
	gate.Require(http.MethodPost, "/api/notes/:idOrAlias", entity.PermissionCreate)
	gate.Require(http.MethodGet, "/api/notes/:idOrAlias", entity.PermissionRead)
	gate.Require(http.MethodPut, "/api/notes/:idOrAlias", entity.PermissionWrite)
	gate.Require(http.MethodDelete, "/api/notes/:idOrAlias", entity.PermissionOwner)
	gate.Require(http.MethodGet, "/api/notes/:idOrAlias/content", entity.PermissionRead)
	gate.Require(http.MethodGet, "/api/notes/:idOrAlias/metadata", entity.PermissionRead)
	gate.Require(http.MethodPut, "/api/notes/:idOrAlias/permissions", entity.PermissionOwner)
	gate.Require(http.MethodGet, "/api/notes/:idOrAlias/revisions", entity.PermissionRead)
	gate.Require(http.MethodGet, "/api/notes/:idOrAlias/revisions/:revisionId", entity.PermissionRead)
	gate.Require(http.MethodPost, "/api/notes/:idOrAlias/media", entity.PermissionWrite)

	// Auth
	e.POST("/api/auth/signup", authRoutes.Signup)
	e.POST("/api/auth/login", authRoutes.Login)

	// Realtime connection registry
	if wsService != nil {
		wsRoutes := handler.NewWSDefault(wsService)
		e.POST("/api/ws/connect", wsRoutes.HandleConnect, authmw)
		e.POST("/api/ws/disconnect", wsRoutes.HandleDisconnect)
		e.POST("/api/ws/message", wsRoutes.HandleMessage)

		cleaner := jobs.NewConnectionCleaner(wsService)
		go cleaner.Start(context.Background())
	}

	// Docker Compose healthcheck
	e.GET("/health", healthCheckRoute)

	// A note route registered without a Require entry is a defect; find
	// out now instead of denying every request to it.
	if err := gate.ValidateRoutes(e); err != nil {
		log.Fatalf("%v", err)
	}

	if err := e.Start(":" + envOr("PORT", "7070")); err != nil {
		panic(err)
	}
}

func registerValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("alias", validators.Alias)
	_ = validate.RegisterValidation("hasupper", validators.HasUpper)
	_ = validate.RegisterValidation("haslower", validators.HasLower)
	_ = validate.RegisterValidation("hasdigit", validators.HasDigit)
}

func loadProdEnv() {
	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	client := ssm.NewFromConfig(cfg)
	out, err := client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
		Path:           aws.String(envVarsPrefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})
	if err != nil {
		log.Fatalf("unable to load prod environment, %v", err)
	}

	prefixLength := len(envVarsPrefix)
	// Export vars
	for _, param := range out.Parameters {
		key := (*param.Name)[prefixLength:]
		value := *param.Value
		if enverr := os.Setenv(key, value); enverr != nil {
			log.Fatalf("unable to set environment variable, %v", enverr)
		}
	}
	log.Debugf("loaded %d prod environment variables", len(out.Parameters))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func healthCheckRoute(c echo.Context) error {
	return c.String(200, "OK")
}
