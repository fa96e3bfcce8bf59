package notify

import (
	"context"
	"fmt"

	"github.com/cli/browser"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BrowserOpener opens links with the platform's default URL handler
// (xdg-open, open, or rundll32), which routes mailto: to the mail client.
type BrowserOpener struct{}

// OpenComposeLink implements Opener.
func (BrowserOpener) OpenComposeLink(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := browser.OpenURL(uri); err != nil {
		return fmt.Errorf("open compose link: %w", err)
	}
	return nil
}

// LogOpener only logs the link. Hosts use it when handing links to the
// platform is disabled.
type LogOpener struct {
	Logger *zerolog.Logger
}

// OpenComposeLink implements Opener.
func (o LogOpener) OpenComposeLink(_ context.Context, uri string) error {
	l := o.Logger
	if l == nil {
		l = &log.Logger
	}
	l.Info().Str("uri", uri).Msg("compose link")
	return nil
}
