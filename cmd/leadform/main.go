// Command leadform is the terminal host of the product request form. It takes
// the form fields (and an optional image path) as flags, submits them once,
// and hands the summary to the mail client.
//
//	leadform -name "Ana Gomez" -email ana@x.com -phone 555 \
//	    -details "Need 100 units" -image catalog.png
//
// Settings such as CACHE_DB_PATH, RELAY_URL and NOTIFY_RECIPIENT are read
// from the environment or a .env file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tbourn/pakchina-leads/internal/config"
	"github.com/tbourn/pakchina-leads/internal/domain"
	"github.com/tbourn/pakchina-leads/internal/notify"
	"github.com/tbourn/pakchina-leads/internal/observability"
	"github.com/tbourn/pakchina-leads/internal/relay"
	"github.com/tbourn/pakchina-leads/internal/repo"
	"github.com/tbourn/pakchina-leads/internal/services"
	"github.com/tbourn/pakchina-leads/internal/sysutil"
	"github.com/tbourn/pakchina-leads/internal/terminal"
)

var version = "dev"

// Exit codes.
const (
	exitOK       = 0
	exitFailed   = 1
	exitUsage    = 2
	exitRejected = 3
)

type formFlags struct {
	name, email, phone, whatsapp, details string
	image                                 string
	recipient                             string
	color                                 bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (formFlags, error) {
	var f formFlags
	fs := flag.NewFlagSet("leadform", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.name, "name", "", "your name (required)")
	fs.StringVar(&f.email, "email", "", "email address (required)")
	fs.StringVar(&f.phone, "phone", "", "phone number (required)")
	fs.StringVar(&f.whatsapp, "whatsapp", "", "WhatsApp number")
	fs.StringVar(&f.details, "details", "", "product details (required)")
	fs.StringVar(&f.image, "image", "", "path of an image to attach")
	fs.StringVar(&f.recipient, "to", "", "mail recipient (overrides NOTIFY_RECIPIENT)")
	fs.BoolVar(&f.color, "color", true, "colour terminal output")
	if err := fs.Parse(args); err != nil {
		return f, err
	}

	required := []struct{ flag, value string }{
		{"name", f.name}, {"email", f.email}, {"phone", f.phone}, {"details", f.details},
	}
	for _, r := range required {
		if r.value == "" {
			fmt.Fprintf(stderr, "missing required flag -%s\n", r.flag)
			fs.Usage()
			return f, flag.ErrHelp
		}
	}
	return f, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return exitUsage
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}
	logger := sysutil.SetupLogger(stderr, cfg.LogLevel, cfg.LogPretty)

	shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{Binary: "leadform", Version: version})
	if err != nil {
		logger.Error().Err(err).Msg("otel setup failed")
		return exitFailed
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()

	ctrl, closeStore, err := newController(ctx, cfg, f, stdout, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("setup failed")
		return exitFailed
	}
	defer closeStore()

	if f.image != "" {
		img, err := terminal.ImageFromPath(f.image)
		if err != nil {
			logger.Error().Err(err).Str("path", f.image).Msg("cannot read image")
			return exitUsage
		}
		if err := ctrl.SelectImage(ctx, img); err != nil {
			if services.IsValidationError(err) {
				return exitRejected
			}
			logger.Error().Err(err).Msg("image selection failed")
			return exitFailed
		}
	}

	out, err := ctrl.Submit(ctx, domain.FormValues{
		Name:           f.name,
		Email:          f.email,
		Phone:          f.phone,
		WhatsApp:       domain.OptionalString(f.whatsapp),
		ProductDetails: f.details,
	})
	if err != nil {
		logger.Error().Err(err).Str("state", out.State.String()).Msg("submission failed")
		return exitFailed
	}
	logger.Info().
		Int64("record_id", out.Record.ID).
		Str("delivery", string(out.Delivery)).
		Msg("submission complete")
	return exitOK
}

// newController wires the controller to the local cache, the relay, the
// mail hand-off and the terminal shell.
func newController(ctx context.Context, cfg config.Config, f formFlags, stdout io.Writer, logger *zerolog.Logger) (*services.SubmissionController, func(), error) {
	db, err := repo.OpenSQLite(cfg.Form.CacheDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := repo.MigrateCache(db); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrate cache: %w", err)
	}
	cache, err := repo.OpenClientCache(ctx, db, cfg.Form.CacheKey)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	ids, err := services.NewSnowflakeIDs(cfg.Form.NodeID)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	var opener notify.Opener = notify.LogOpener{Logger: logger}
	if cfg.Form.OpenMailClient {
		opener = notify.BrowserOpener{}
	}

	ctrl := &services.SubmissionController{
		Shell: terminal.NewShell(stdout, f.color),
		Store: cache,
		Notifier: &notify.Dispatcher{
			Recipient: sysutil.FirstNonEmpty(f.recipient, cfg.Form.NotifyRecipient),
			Opener:    opener,
			Logger:    logger,
		},
		IDs:           ids,
		MaxImageBytes: cfg.Form.MaxImageBytes,
		BannerTTL:     cfg.Form.BannerTTL,
		Logger:        logger,
	}
	// Leave the interfaces nil when the feature is off.
	if cfg.Form.RelayURL != "" {
		ctrl.Relay = relay.New(cfg.Form.RelayURL, cfg.Form.RelayTimeout)
	}
	if cfg.Form.UploadDir != "" {
		ctrl.Uploader = terminal.DirUploader{Dir: cfg.Form.UploadDir}
	}
	return ctrl, closeDB, nil
}

