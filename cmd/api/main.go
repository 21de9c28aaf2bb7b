package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mvinueza/contaec/internal/application/auth"
	"github.com/mvinueza/contaec/internal/application/billing"
	"github.com/mvinueza/contaec/internal/application/usecase"
	"github.com/mvinueza/contaec/internal/infrastructure/postgres"
	infrasri "github.com/mvinueza/contaec/internal/infrastructure/sri"
	"github.com/mvinueza/contaec/internal/infrastructure/sri/signer"
	httpRouter "github.com/mvinueza/contaec/internal/interfaces/http"
	"github.com/mvinueza/contaec/pkg/config"
	"github.com/mvinueza/contaec/pkg/logger"
	"github.com/mvinueza/contaec/pkg/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// Clave AES-256: de config, o aleatoria por proceso. Con clave aleatoria
	// lo cifrado no sobrevive a un reinicio; se advierte en el arranque.
	encKey, err := cfg.Security.EncryptionKeyBytes()
	if err != nil {
		log.Fatal().Err(err).Msg("ENCRYPTION_KEY inválida")
	}
	if encKey == nil {
		encKey, err = security.RandomKey()
		if err != nil {
			log.Fatal().Err(err).Msg("generar clave AES aleatoria")
		}
		log.Warn().Msg("ENCRYPTION_KEY no configurada: usando clave aleatoria, los datos cifrados no sobreviven a un reinicio")
	}
	crypto, err := security.NewCrypto(encKey)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar cifrado AES-256-GCM")
	}

	if cfg.Security.TokenSecret == "" {
		log.Fatal().Msg("TOKEN_SECRET es requerido")
	}
	tokens := security.NewTokenService([]byte(cfg.Security.TokenSecret))
	guard := security.NewGuard()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	retentionRepo := postgres.NewRetentionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Consulta de contribuyentes al catastro SRI (best-effort, rate limited).
	var lookup billing.ContribuyenteLookup
	if cfg.SRI.LookupEnabled {
		lookup = infrasri.NewLookupService(guard)
	}

	// La contraseña del certificado .p12 puede venir cifrada con la clave
	// AES de la aplicación (JSON {encrypted_data, iv, auth_tag}).
	certPassword := resolveCertPassword(cfg.SRI.CertPassword, crypto, log)

	xmlBuilder := infrasri.NewXMLBuilderService()
	signerSvc := signer.NewDigitalSignatureService()
	sriCfg := billing.SRIProcessConfig{
		AppEnv:       cfg.SRI.AppEnv,
		Environment:  cfg.SRI.Environment,
		CertPath:     cfg.SRI.CertPath,
		CertKeyPath:  cfg.SRI.CertKeyPath,
		CertPassword: certPassword,
	}

	// Cliente SOAP SRI: solo se usa si AppEnv es "test" o "prod".
	// En modo "dev" el orquestador simula la autorización.
	var submitter infrasri.Submitter
	if cfg.SRI.AppEnv != infrasri.AppEnvDev && cfg.SRI.AppEnv != "" {
		submitter = infrasri.NewSOAPClient()
	}

	// SRIOrchestrator: ciclo clave de acceso → XML → XAdES-BES → Envío SOAP → Update DB
	orchestrator := billing.NewSRIOrchestrator(
		invoiceRepo, companyRepo, clientRepo,
		xmlBuilder, signerSvc, submitter, sriCfg, log,
	)

	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, clientRepo, companyRepo, invoiceRepo,
		orchestrator, cfg.SRI.Environment,
	)
	clientUC := billing.NewClientUseCase(clientRepo, lookup, log)
	retentionUC := billing.NewRetentionUseCase(txRunner, retentionRepo, invoiceRepo)

	companyUC := usecase.NewCompanyUseCase(companyRepo)
	moduleSvc := usecase.NewModuleService(companyRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, tokens, guard)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ContaEC API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:   companyUC,
		Modules:     moduleSvc,
		AuthUC:      authUC,
		ClientUC:    clientUC,
		InvoiceUC:   invoiceUC,
		RetentionUC: retentionUC,
		Tokens:      tokens,
		Guard:       guard,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// resolveCertPassword descifra la contraseña del certificado si viene como
// payload cifrado; si no, la devuelve tal cual (texto plano).
func resolveCertPassword(raw string, crypto *security.Crypto, log *logger.Logger) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return raw
	}
	var payload security.EncryptedPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil || payload.Ciphertext == "" {
		return raw
	}
	plain, err := crypto.Decrypt(&payload)
	if err != nil {
		log.Fatal().Err(err).Msg("descifrar SRI_CERT_PASSWORD")
	}
	return plain
}
