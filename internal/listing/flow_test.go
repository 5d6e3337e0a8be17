package listing

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/dealerbridge/lotposter/internal/form"
	"github.com/dealerbridge/lotposter/internal/prompt"
	"github.com/dealerbridge/lotposter/internal/vehicle"
	"github.com/dealerbridge/lotposter/internal/wait"
)

// flowPage scripts a marketplace page that accepts every interaction.
type flowPage struct {
	url          string
	markerLoaded bool
	fileCounts   []int

	navigations []string
	inserted    []string
	enters      int
	wentBack    int
	fileCalls   int
	entryClicks int
}

func (p *flowPage) EvaluateAny(_ context.Context, expression string) (any, error) {
	switch {
	case strings.Contains(expression, "about this vehicle"):
		return p.markerLoaded, nil
	case strings.Contains(expression, `role="combobox"`):
		return "ok", nil
	case strings.Contains(expression, "const target = norm"):
		return "clicked", nil
	case strings.Contains(expression, "controls"):
		return "ok", nil
	case strings.Contains(expression, "checkbox"):
		return "toggled", nil
	case strings.Contains(expression, "^next$"):
		return "ok", nil
	case strings.Contains(expression, "const re = new RegExp"):
		p.entryClicks++
		return "ok", nil
	default:
		return nil, nil
	}
}

func (p *flowPage) InsertText(_ context.Context, text string) error {
	p.inserted = append(p.inserted, text)
	return nil
}

func (p *flowPage) PressEnter(context.Context) error {
	p.enters++
	return nil
}

func (p *flowPage) CurrentURL(context.Context) (string, error) {
	return p.url, nil
}

func (p *flowPage) NavigateBack(context.Context) error {
	p.wentBack++
	return nil
}

func (p *flowPage) WaitForSelector(context.Context, string, time.Duration) error {
	return nil
}

func (p *flowPage) Navigate(_ context.Context, url string) error {
	p.navigations = append(p.navigations, url)
	p.url = url
	return nil
}

func (p *flowPage) SetFilesOnAllInputs(_ context.Context, _ string, _ []string) (int, error) {
	p.fileCalls++
	if len(p.fileCounts) == 0 {
		return 1, nil
	}
	head := p.fileCounts[0]
	p.fileCounts = p.fileCounts[1:]
	return head, nil
}

func newTestFlow(page *flowPage, landing wait.Config) *Flow {
	logger := log.New(io.Discard, "", 0)
	filler := form.NewFiller(page, form.Config{
		PopupWait:   wait.Config{Timeout: 20 * time.Millisecond, Interval: 5 * time.Millisecond},
		NextWait:    wait.Config{Timeout: 50 * time.Millisecond, Interval: 5 * time.Millisecond},
		SettleDelay: time.Millisecond,
	}, logger)
	prompter := prompt.New(strings.NewReader(""), io.Discard, false)
	return NewFlow(page, filler, Config{LandingWait: landing}, prompter, nil, logger)
}

func testRecord() vehicle.Record {
	return vehicle.Record{
		"year":          "2021",
		"make":          "Chevrolet",
		"model":         "Silverado 1500",
		"trim":          "LT Crew Cab",
		"price":         "38995",
		"mileage":       "45,231 miles",
		"exteriorColor": "Summit White",
		"interiorColor": "Jet Black",
		"transmission":  "10-Speed Automatic",
		"engine":        "5.3L V8",
	}
}

func TestRunFillsEveryField(t *testing.T) {
	page := &flowPage{markerLoaded: true}
	f := newTestFlow(page, wait.Config{Timeout: time.Second, Interval: 5 * time.Millisecond})

	report, err := f.Run(context.Background(), testRecord(), []string{"images/00.jpg"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{
		"vehicle type", "year", "make", "model", "mileage", "price",
		"body style", "exterior color", "interior color", "clean title",
		"condition", "fuel type", "transmission", "title", "description",
	}
	got := make(map[string]form.Status)
	for _, r := range report.Results {
		got[r.Field] = r.Status
	}
	for _, field := range want {
		if got[field] != form.StatusFilled {
			t.Fatalf("field %q status = %q, want filled (report %+v)", field, got[field], report.Results)
		}
	}

	if len(page.navigations) == 0 || page.navigations[0] != vehicleFormURL {
		t.Fatalf("navigations = %v", page.navigations)
	}
	if page.fileCalls == 0 {
		t.Fatalf("expected photo attachment")
	}
}

func TestRunNoImagesSkipsUpload(t *testing.T) {
	page := &flowPage{markerLoaded: true}
	f := newTestFlow(page, wait.Config{Timeout: time.Second, Interval: 5 * time.Millisecond})

	if _, err := f.Run(context.Background(), testRecord(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if page.fileCalls != 0 {
		t.Fatalf("fileCalls = %d, want 0", page.fileCalls)
	}
}

func TestEnsureLandingTimesOut(t *testing.T) {
	page := &flowPage{markerLoaded: false}
	f := newTestFlow(page, wait.Config{Timeout: 30 * time.Millisecond, Interval: 5 * time.Millisecond})

	_, err := f.Run(context.Background(), testRecord(), nil)
	if !errors.Is(err, ErrFormLoadTimeout) {
		t.Fatalf("err = %v, want ErrFormLoadTimeout", err)
	}
	if page.entryClicks == 0 {
		t.Fatalf("expected entry-screen click attempts while waiting")
	}
}

func TestEnsureLandingRenavigatesWhenOffFlow(t *testing.T) {
	page := &flowPage{markerLoaded: true}
	f := newTestFlow(page, wait.Config{Timeout: 5 * time.Second, Interval: 5 * time.Millisecond})
	// Simulate a redirect away from the flow after the initial open.
	page.url = "https://www.facebook.com/home.php"

	if err := f.ensureLanding(context.Background()); err != nil {
		t.Fatalf("ensure landing: %v", err)
	}
	if len(page.navigations) == 0 {
		t.Fatalf("expected a re-navigation to the vehicle form")
	}
	if page.url != vehicleFormURL {
		t.Fatalf("url = %q, want %q", page.url, vehicleFormURL)
	}
}

func TestUploadPhotosClicksAffordanceWhenNoInputMounted(t *testing.T) {
	page := &flowPage{markerLoaded: true, fileCounts: []int{0, 2}}
	f := newTestFlow(page, wait.Config{Timeout: time.Second, Interval: 5 * time.Millisecond})

	f.uploadPhotos(context.Background(), []string{"images/00.jpg", "images/01.jpg"})
	if page.fileCalls < 2 {
		t.Fatalf("fileCalls = %d, want retry after clicking add photos", page.fileCalls)
	}
	if page.entryClicks == 0 {
		t.Fatalf("expected add-photos click")
	}
}
