// Package listing drives the multi-step marketplace vehicle form: it brings
// the browser to the form's first step, fills both steps from a captured
// vehicle record, attaches photos and leaves the final Post click to the
// operator.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/dealerbridge/lotposter/internal/form"
	"github.com/dealerbridge/lotposter/internal/infer"
	"github.com/dealerbridge/lotposter/internal/prompt"
	"github.com/dealerbridge/lotposter/internal/vehicle"
	"github.com/dealerbridge/lotposter/internal/wait"
)

// ErrFormLoadTimeout reports that the vehicle form's first step never
// rendered within the configured window.
var ErrFormLoadTimeout = errors.New("marketplace vehicle form did not load in time")

const (
	vehicleFormURL     = "https://www.facebook.com/marketplace/create/vehicle"
	descriptionMaxLen  = 9700
	fileInputSelector  = `input[type="file"]`
	entryButtonPattern = `(Vehicle for sale|Vehicle|Create listing|Create Listing|Get started|Get Started|Continue|Next)`
)

var defaultFlowURL = regexp.MustCompile(`(?i)facebook\.com/marketplace/.*create`)

// Page is the browser capability the flow drives. *cdp.Client satisfies it.
type Page interface {
	form.Page
	Navigate(ctx context.Context, url string) error
	SetFilesOnAllInputs(ctx context.Context, selector string, paths []string) (int, error)
}

// Checkpoint records a debug snapshot of the page under a short label.
// A nil Checkpoint disables snapshots.
type Checkpoint func(ctx context.Context, label string)

type Config struct {
	FormURL string
	// FlowURL identifies URLs inside the listing-creation flow; the landing
	// loop re-navigates whenever the page drifts outside it.
	FlowURL *regexp.Regexp

	LandingWait wait.Config

	// ForceVehicleType overrides the vehicle-type combo, the dealership
	// posts everything under one marketplace category.
	ForceVehicleType string
}

type Flow struct {
	page       Page
	filler     *form.Filler
	cfg        Config
	logger     *log.Logger
	prompter   *prompt.Prompter
	checkpoint Checkpoint
}

func NewFlow(page Page, filler *form.Filler, cfg Config, prompter *prompt.Prompter, checkpoint Checkpoint, logger *log.Logger) *Flow {
	if cfg.FormURL == "" {
		cfg.FormURL = vehicleFormURL
	}
	if cfg.FlowURL == nil {
		cfg.FlowURL = defaultFlowURL
	}
	if cfg.LandingWait.Timeout <= 0 {
		cfg.LandingWait.Timeout = 2 * time.Minute
	}
	if cfg.LandingWait.Interval <= 0 {
		cfg.LandingWait.Interval = 700 * time.Millisecond
	}
	if cfg.ForceVehicleType == "" {
		cfg.ForceVehicleType = "Car/van"
	}
	if logger == nil {
		logger = log.Default()
	}
	if checkpoint == nil {
		checkpoint = func(context.Context, string) {}
	}
	return &Flow{page: page, filler: filler, cfg: cfg, logger: logger, prompter: prompter, checkpoint: checkpoint}
}

// Run takes an authenticated browser through the whole listing flow and
// returns the per-field report. The final Post click is intentionally left
// to the operator.
func (f *Flow) Run(ctx context.Context, rec vehicle.Record, imagePaths []string) (form.Report, error) {
	f.logger.Printf("opening marketplace vehicle form")
	if err := f.page.Navigate(ctx, f.cfg.FormURL); err != nil {
		return f.filler.Report(), fmt.Errorf("open vehicle form: %w", err)
	}
	if err := f.ensureLanding(ctx); err != nil {
		return f.filler.Report(), err
	}

	f.prompter.PressEnter("On the 'Create vehicle' page. Close any popups, then press Enter to begin.")
	f.checkpoint(ctx, "step1-loaded")

	f.fillStepOne(ctx, rec)

	f.filler.ClickNextWhenEnabled(ctx)
	f.pause(ctx, 900*time.Millisecond)
	f.prompter.PressEnter("Step 2 loaded. Press Enter to autofill remaining fields and upload photos.")
	f.checkpoint(ctx, "step2-loaded")

	f.fillStepTwo(ctx, rec)
	f.uploadPhotos(ctx, imagePaths)

	f.checkpoint(ctx, "after-fill")
	f.logger.Printf("autofill complete; review the listing and click Post")
	return f.filler.Report(), nil
}

// ensureLanding waits for the form's first step, re-navigating when the page
// drifts out of the flow and clicking through any interstitial entry screens.
func (f *Flow) ensureLanding(ctx context.Context) error {
	const stepOneMarkerExpr = `(() => {
	const txt = (el) => ((el && (el.innerText || el.textContent)) || "").toLowerCase();
	return Array.from(document.querySelectorAll("div,label,span"))
		.some((el) => /vehicle type|about this vehicle|year\b/.test(txt(el)));
	})()`

	err := wait.Until(ctx, "vehicle form first step", f.cfg.LandingWait, func(ctx context.Context) (bool, error) {
		current, urlErr := f.page.CurrentURL(ctx)
		if urlErr == nil && !f.cfg.FlowURL.MatchString(current) {
			if navErr := f.page.Navigate(ctx, f.cfg.FormURL); navErr != nil {
				f.logger.Printf("re-open vehicle form: %v", navErr)
			}
			f.pause(ctx, 900*time.Millisecond)
		}

		marker, evalErr := f.page.EvaluateAny(ctx, stepOneMarkerExpr)
		if evalErr != nil {
			return false, nil
		}
		if loaded, _ := marker.(bool); loaded {
			return true, nil
		}

		f.filler.ClickByText(ctx, []string{`div[role="button"]`, "button", "div", `a[role="link"]`}, entryButtonPattern)
		return false, nil
	})
	if err != nil {
		if errors.Is(err, wait.ErrTimeout) {
			return ErrFormLoadTimeout
		}
		return err
	}
	return nil
}

func (f *Flow) fillStepOne(ctx context.Context, rec vehicle.Record) {
	f.filler.SelectComboByLabel(ctx, "vehicle type", form.Pattern(`vehicle type`), f.cfg.ForceVehicleType)
	f.filler.SelectComboByLabel(ctx, "year", form.Pattern(`^year\b`), rec.Year())
	f.filler.SelectComboByLabel(ctx, "make", form.Pattern(`^make\b`), rec.Make())

	f.filler.FillByLabel(ctx, "model", form.Keywords("model"), rec.Model())

	// The form wants the exact odometer reading, not the rounded figure the
	// description uses.
	exactMiles := rec.Mileage()
	if n, ok := vehicle.ParseMiles(exactMiles); ok {
		exactMiles = fmt.Sprintf("%d", n)
	}
	f.filler.FillByLabel(ctx, "mileage", form.Keywords("mileage", "odometer"), exactMiles)
	f.filler.FillByLabel(ctx, "price", form.Keywords("price"), rec.Price())

	f.filler.SelectComboByLabel(ctx, "body style", form.Pattern(`body style|bodytype`), infer.BodyStyle(rec))

	if !f.filler.SelectComboFromList(ctx, "exterior color", form.Pattern(`exterior colou?r`), infer.ColorCandidates(rec.ExteriorColor())) {
		f.filler.FillByLabel(ctx, "exterior color", form.Keywords("exterior colour", "exterior color", "exterior"), vehicle.NormalizeColor(rec.ExteriorColor()))
	}
	interior := vehicle.NormalizeColor(rec.InteriorColor())
	if !f.filler.SelectComboByLabel(ctx, "interior color", form.Pattern(`interior colou?r`), interior) {
		f.filler.FillByLabel(ctx, "interior color", form.Keywords("interior colour", "interior color", "interior"), interior)
	}

	f.filler.SetCheckboxByLabel(ctx, "clean title", form.Pattern(`clean title`), true)
	f.filler.SelectComboByLabel(ctx, "condition", form.Pattern(`vehicle condition|condition`), infer.ConditionLabel(exactMiles))
	f.filler.SelectComboFromList(ctx, "fuel type", form.Pattern(`fuel type|fuel`), infer.FuelCandidates(rec))
	f.filler.SelectComboByLabel(ctx, "transmission", form.Pattern(`transmission`), infer.Transmission(rec))
}

func (f *Flow) fillStepTwo(ctx context.Context, rec vehicle.Record) {
	f.filler.FillByLabel(ctx, "title", form.Keywords("listing title", "title"), vehicle.TitleFromParts(rec))

	desc := rec.Description()
	if desc == "" {
		desc = vehicle.DefaultDescription(rec)
	}
	if runes := []rune(desc); len(runes) > descriptionMaxLen {
		desc = string(runes[:descriptionMaxLen])
	}
	f.filler.FillByLabel(ctx, "description", form.Keywords("description", "details", "about"), desc)
}

// uploadPhotos attaches the downloaded images to the form's file inputs. When
// no input is mounted yet it clicks the add-photos affordance and waits for
// one to appear. Photos are best effort like every other field.
func (f *Flow) uploadPhotos(ctx context.Context, imagePaths []string) {
	if len(imagePaths) == 0 {
		return
	}

	n, err := f.page.SetFilesOnAllInputs(ctx, fileInputSelector, imagePaths)
	if err != nil {
		f.logger.Printf("attach photos: %v", err)
	}
	if n > 0 {
		f.logger.Printf("attached %d photo(s) to %d input(s)", len(imagePaths), n)
		return
	}

	if !f.filler.ClickByText(ctx, []string{`div[role="button"]`, "button", "div"}, `(Add Photos?|Photos)`) {
		f.logger.Printf("no photo input or add-photos control found, skipping photos")
		return
	}
	waitErr := wait.Until(ctx, "photo file input", wait.Config{Timeout: 4 * time.Second, Interval: 300 * time.Millisecond}, func(ctx context.Context) (bool, error) {
		count, attachErr := f.page.SetFilesOnAllInputs(ctx, fileInputSelector, imagePaths)
		if attachErr != nil {
			return false, nil
		}
		n = count
		return count > 0, nil
	})
	if waitErr != nil {
		f.logger.Printf("photo upload: %v", waitErr)
		return
	}
	f.logger.Printf("attached %d photo(s) to %d input(s)", len(imagePaths), n)
}

func (f *Flow) pause(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
