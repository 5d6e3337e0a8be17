// Package form locates marketplace form controls by inferred label text and
// fills them. All primitives are best effort: a missing or renamed label
// leaves the field blank and records the outcome in the run report, it
// never aborts the listing flow.
package form

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/dealerbridge/lotposter/internal/wait"
)

// Page is the live-document capability the primitives drive. *cdp.Client
// satisfies it.
type Page interface {
	EvaluateAny(ctx context.Context, expression string) (any, error)
	InsertText(ctx context.Context, text string) error
	PressEnter(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)
	NavigateBack(ctx context.Context) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
}

type Config struct {
	// FlowURL identifies URLs that belong to the listing-creation flow.
	// Combo selection checks it after typing into a popup search: typing in
	// the wrong search box can trigger a site-wide search navigation.
	FlowURL *regexp.Regexp

	PopupWait wait.Config
	NextWait  wait.Config

	// SettleDelay is the short pause after a click or fill that the host
	// page's reactive logic needs before the next interaction.
	SettleDelay time.Duration
}

type Filler struct {
	page   Page
	cfg    Config
	logger *log.Logger
	report Report
}

func NewFiller(page Page, cfg Config, logger *log.Logger) *Filler {
	if cfg.PopupWait.Timeout <= 0 {
		cfg.PopupWait.Timeout = 3 * time.Second
	}
	if cfg.PopupWait.Interval <= 0 {
		cfg.PopupWait.Interval = 150 * time.Millisecond
	}
	if cfg.NextWait.Timeout <= 0 {
		cfg.NextWait.Timeout = 12 * time.Second
	}
	if cfg.NextWait.Interval <= 0 {
		cfg.NextWait.Interval = 800 * time.Millisecond
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 150 * time.Millisecond
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Filler{page: page, cfg: cfg, logger: logger}
}

// Report returns the per-field outcomes recorded so far.
func (f *Filler) Report() Report {
	return f.report
}

// FillByLabel finds a text-input-like control whose label blob matches and
// sets its value through the mechanism its type requires. Returns whether a
// control was found and filled.
func (f *Filler) FillByLabel(ctx context.Context, field string, matcher LabelMatcher, value string) bool {
	if strings.TrimSpace(value) == "" {
		f.report.add(field, StatusSkipped, "no value")
		return false
	}
	if matcher.isZero() {
		f.report.add(field, StatusFailed, "empty matcher")
		return false
	}

	expression := fmt.Sprintf(`(() => {
	const txt = (n) => ((n && (n.innerText || n.textContent)) || "").toLowerCase();
	const controls = Array.from(document.querySelectorAll('input, textarea, [role="textbox"], [contenteditable="true"]'));
	for (const el of controls) {
		const aria = ((el.getAttribute && el.getAttribute("aria-label")) || "").toLowerCase();
		const ph = ((el.getAttribute && el.getAttribute("placeholder")) || "").toLowerCase();
		const labelledby = ((el.getAttribute && el.getAttribute("aria-labelledby")) || "")
			.split(/\s+/).filter(Boolean)
			.map((id) => document.getElementById(id)).map(txt).join(" ");
		const labFor = el.id ? txt(document.querySelector('label[for="' + el.id + '"]')) : "";
		const parentLab = txt(el.closest("label"));
		const near = txt(el.parentElement);
		const blob = [aria, ph, labelledby, labFor, parentLab, near].join(" ");
		if (!(%s)) continue;

		el.scrollIntoView({behavior: "instant", block: "center"});
		const value = %s;
		if (el.getAttribute && el.getAttribute("contenteditable") === "true") {
			const sel = window.getSelection();
			const range = document.createRange();
			el.focus();
			range.selectNodeContents(el);
			sel.removeAllRanges();
			sel.addRange(range);
			document.execCommand("insertText", false, value);
			el.dispatchEvent(new InputEvent("input", {bubbles: true}));
			el.dispatchEvent(new Event("change", {bubbles: true}));
			return "ok";
		}
		if ("value" in el) {
			const proto = el.tagName.toLowerCase() === "textarea"
				? HTMLTextAreaElement.prototype
				: HTMLInputElement.prototype;
			const desc = Object.getOwnPropertyDescriptor(proto, "value");
			if (desc && desc.set) { desc.set.call(el, value); } else { el.value = value; }
			el.dispatchEvent(new InputEvent("input", {bubbles: true}));
			el.dispatchEvent(new Event("change", {bubbles: true}));
			return "ok";
		}
		el.focus();
		return "focused";
	}
	return "not_found";
	})()`, matcher.predicate("blob"), jsString(value))

	result, err := f.page.EvaluateAny(ctx, expression)
	if err != nil {
		f.fail(field, fmt.Errorf("fill by label: %w", err))
		return false
	}

	switch result {
	case "ok":
		f.settle(ctx)
		f.report.add(field, StatusFilled, "")
		return true
	case "focused":
		// role=textbox without a value property: type through the keyboard.
		if err := f.page.InsertText(ctx, value); err != nil {
			f.fail(field, fmt.Errorf("insert text: %w", err))
			return false
		}
		f.settle(ctx)
		f.report.add(field, StatusFilled, "typed")
		return true
	default:
		f.report.add(field, StatusFailed, "no control matched "+matcher.String())
		return false
	}
}

// SetCheckboxByLabel finds a container whose visible text matches, locates
// its checkbox and clicks only when the current state differs from want.
func (f *Filler) SetCheckboxByLabel(ctx context.Context, field string, matcher LabelMatcher, want bool) bool {
	expression := fmt.Sprintf(`(() => {
	const nodes = Array.from(document.querySelectorAll("label, div, span"));
	for (const n of nodes) {
		const text = (((n.innerText || n.textContent) || "").trim()).toLowerCase();
		if (!text || !(%s)) continue;
		let box = n.querySelector('input[type="checkbox"]');
		if (!box && n.closest("label")) box = n.closest("label").querySelector('input[type="checkbox"]');
		if (!box && n.parentElement) box = n.parentElement.querySelector('input[type="checkbox"]');
		if (!box) continue;
		if (Boolean(box.checked) !== %t) {
			box.click();
			return "toggled";
		}
		return "unchanged";
	}
	return "not_found";
	})()`, matcher.predicate("text"), want)

	result, err := f.page.EvaluateAny(ctx, expression)
	if err != nil {
		f.fail(field, fmt.Errorf("set checkbox: %w", err))
		return false
	}

	switch result {
	case "toggled":
		f.settle(ctx)
		f.report.add(field, StatusFilled, "")
		return true
	case "unchanged":
		f.report.add(field, StatusFilled, "already set")
		return true
	default:
		f.report.add(field, StatusFailed, "no checkbox matched "+matcher.String())
		return false
	}
}

// ClickByText clicks the first element among the selectors whose visible
// text matches the pattern.
func (f *Filler) ClickByText(ctx context.Context, selectors []string, pattern string) bool {
	expression := fmt.Sprintf(`(() => {
	const re = new RegExp(%s, "i");
	const els = Array.from(document.querySelectorAll(%s));
	for (const el of els) {
		const text = ((el.innerText || el.textContent) || "").trim();
		if (re.test(text)) {
			el.click();
			return "ok";
		}
	}
	return "not_found";
	})()`, jsString(pattern), jsString(strings.Join(selectors, ",")))

	result, err := f.page.EvaluateAny(ctx, expression)
	if err != nil {
		f.logger.Printf("click by text %q: %v", pattern, err)
		return false
	}
	if result != "ok" {
		return false
	}
	f.settle(ctx)
	return true
}

// ClickNextWhenEnabled polls for a button whose text is exactly "Next" and
// which is not disabled, then clicks it. The button flickers between
// disabled and enabled while the form validates, so presence alone is not
// enough.
func (f *Filler) ClickNextWhenEnabled(ctx context.Context) bool {
	expression := `(() => {
	const els = Array.from(document.querySelectorAll('div[role="button"], button'));
	for (const el of els) {
		const text = ((el.innerText || el.textContent) || "").trim();
		const disabled = el.getAttribute("aria-disabled") === "true" || el.hasAttribute("disabled");
		if (/^next$/i.test(text) && !disabled) {
			el.click();
			return "ok";
		}
	}
	return "not_found";
	})()`

	err := wait.Until(ctx, "enabled Next button", f.cfg.NextWait, func(ctx context.Context) (bool, error) {
		result, evalErr := f.page.EvaluateAny(ctx, expression)
		if evalErr != nil {
			return false, evalErr
		}
		return result == "ok", nil
	})
	if err != nil {
		f.logger.Printf("next button: %v", err)
		return false
	}
	f.settle(ctx)
	return true
}

func (f *Filler) fail(field string, err error) {
	f.logger.Printf("field %s: %v", field, err)
	f.report.add(field, StatusFailed, err.Error())
}

func (f *Filler) settle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(f.cfg.SettleDelay):
	}
}
