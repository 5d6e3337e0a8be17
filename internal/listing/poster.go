package listing

import (
	"context"
	"fmt"
	"log"

	"github.com/dealerbridge/lotposter/internal/browser"
	"github.com/dealerbridge/lotposter/internal/form"
	"github.com/dealerbridge/lotposter/internal/prompt"
	"github.com/dealerbridge/lotposter/internal/vehicle"
)

// BrowserPoster owns the live-browser half of a capture: it attaches to the
// shared browser session, makes sure the operator is signed in and drives the
// listing flow for one vehicle.
type BrowserPoster struct {
	browser  *browser.Manager
	auth     browser.AuthConfig
	flowCfg  Config
	fillCfg  form.Config
	prompter *prompt.Prompter
	logger   *log.Logger
}

func NewBrowserPoster(mgr *browser.Manager, auth browser.AuthConfig, flowCfg Config, fillCfg form.Config, prompter *prompt.Prompter, logger *log.Logger) *BrowserPoster {
	if logger == nil {
		logger = log.Default()
	}
	if fillCfg.FlowURL == nil {
		fillCfg.FlowURL = defaultFlowURL
	}
	return &BrowserPoster{browser: mgr, auth: auth, flowCfg: flowCfg, fillCfg: fillCfg, prompter: prompter, logger: logger}
}

// Post fills the marketplace form for one vehicle. The returned report is
// meaningful even on error: it holds whatever fields were reached.
func (p *BrowserPoster) Post(ctx context.Context, rec vehicle.Record, imagePaths []string) (form.Report, error) {
	page, err := p.browser.Page(ctx)
	if err != nil {
		return form.Report{}, fmt.Errorf("browser session: %w", err)
	}

	if err := p.browser.EnsureAuthenticated(ctx, page, p.auth); err != nil {
		return form.Report{}, err
	}

	filler := form.NewFiller(page, p.fillCfg, p.logger)
	checkpoint := func(ctx context.Context, label string) {
		p.browser.Screenshot(ctx, page, label)
	}
	flow := NewFlow(page, filler, p.flowCfg, p.prompter, checkpoint, p.logger)
	return flow.Run(ctx, rec, imagePaths)
}
