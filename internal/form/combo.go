package form

import (
	"context"
	"fmt"
	"strings"
)

const popupSelector = `[role="listbox"], [role="menu"], [role="dialog"]`

// SelectComboByLabel opens the combo box whose own or nearby label text
// matches, then selects value: an exact (case- and whitespace-normalized)
// option match is clicked; otherwise the value is typed into the popup's
// search input, or into the keyboard focus when the popup has none, and
// confirmed with Enter. If the typing escaped into a site-wide search and
// the page navigated away from the listing flow, the page is brought back.
func (f *Filler) SelectComboByLabel(ctx context.Context, field string, matcher LabelMatcher, value string) bool {
	if strings.TrimSpace(value) == "" {
		f.report.add(field, StatusSkipped, "no value")
		return false
	}

	if !f.openCombo(ctx, field, matcher) {
		return false
	}

	// Give the popup a moment; absence is not fatal, some combos render
	// options inline.
	if err := f.page.WaitForSelector(ctx, popupSelector, f.cfg.PopupWait.Timeout); err != nil {
		f.logger.Printf("field %s: combo popup: %v", field, err)
	}

	clicked, err := f.clickExactOption(ctx, value)
	if err != nil {
		f.fail(field, fmt.Errorf("select option: %w", err))
		return false
	}

	if !clicked {
		if err := f.typeIntoPopup(ctx, value); err != nil {
			f.fail(field, fmt.Errorf("type into popup: %w", err))
			return false
		}
	}

	f.settle(ctx)
	f.recoverFromStraySearch(ctx, field)
	f.report.add(field, StatusFilled, "")
	return true
}

// SelectComboFromList tries each candidate in order until one selects.
func (f *Filler) SelectComboFromList(ctx context.Context, field string, matcher LabelMatcher, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if f.SelectComboByLabel(ctx, field, matcher, candidate) {
			return true
		}
	}
	f.report.add(field, StatusFailed, "no candidate accepted")
	return false
}

func (f *Filler) openCombo(ctx context.Context, field string, matcher LabelMatcher) bool {
	expression := fmt.Sprintf(`(() => {
	const combos = Array.from(document.querySelectorAll('[role="combobox"], div[role="combobox"], label[role="combobox"]'));
	for (const el of combos) {
		const self = (((el.innerText || el.textContent) || "").trim()).toLowerCase();
		const wrap = el.closest("label");
		const near = (((wrap && wrap.innerText) || (el.parentElement && el.parentElement.innerText) || "").trim()).toLowerCase();
		if (!(%s) && !(%s)) continue;
		el.scrollIntoView({behavior: "instant", block: "center"});
		el.click();
		return "ok";
	}
	return "not_found";
	})()`, matcher.predicate("self"), matcher.predicate("near"))

	result, err := f.page.EvaluateAny(ctx, expression)
	if err != nil {
		f.fail(field, fmt.Errorf("open combo: %w", err))
		return false
	}
	if result != "ok" {
		f.report.add(field, StatusFailed, "no combo matched "+matcher.String())
		return false
	}
	f.settle(ctx)
	return true
}

func (f *Filler) clickExactOption(ctx context.Context, value string) (bool, error) {
	expression := fmt.Sprintf(`(() => {
	const norm = (s) => String(s || "").toLowerCase().replace(/\s+/g, " ").trim();
	const target = norm(%s);
	const options = Array.from(document.querySelectorAll(
		'div[role="listbox"] [role="option"], [role="menu"] [role="menuitem"], [role="listbox"] span'));
	for (const o of options) {
		if (norm(o.innerText || o.textContent) === target) {
			o.click();
			return "clicked";
		}
	}
	return "none";
	})()`, jsString(value))

	result, err := f.page.EvaluateAny(ctx, expression)
	if err != nil {
		return false, err
	}
	return result == "clicked", nil
}

// typeIntoPopup locates a search input inside the opened popup, avoiding the
// page-wide search box, clears it and types the value. When the popup has no
// search input the value is typed into whatever holds keyboard focus.
func (f *Filler) typeIntoPopup(ctx context.Context, value string) error {
	expression := `(() => {
	const sels = [
		'div[role="listbox"] input[aria-label="Search"]:not([aria-label*="Facebook"])',
		'div[role="dialog"] input[aria-label="Search"]:not([aria-label*="Facebook"])',
		'div[role="listbox"] input[type="search"]:not([aria-label*="Facebook"])',
		'div[role="dialog"] input[type="search"]:not([aria-label*="Facebook"])'
	];
	const search = document.querySelector(sels.join(","));
	if (search) {
		search.focus();
		search.value = "";
		return "search";
	}
	return "keyboard";
	})()`

	if _, err := f.page.EvaluateAny(ctx, expression); err != nil {
		return err
	}
	if err := f.page.InsertText(ctx, value); err != nil {
		return err
	}
	return f.page.PressEnter(ctx)
}

// recoverFromStraySearch navigates back when the page has left the listing
// flow, which happens when the typed value landed in a site-wide search box.
func (f *Filler) recoverFromStraySearch(ctx context.Context, field string) {
	if f.cfg.FlowURL == nil {
		return
	}
	current, err := f.page.CurrentURL(ctx)
	if err != nil {
		f.logger.Printf("field %s: current url: %v", field, err)
		return
	}
	if f.cfg.FlowURL.MatchString(current) {
		return
	}
	f.logger.Printf("field %s: page left listing flow (%s), going back", field, current)
	if err := f.page.NavigateBack(ctx); err != nil {
		f.logger.Printf("field %s: navigate back: %v", field, err)
		return
	}
	f.settle(ctx)
}
