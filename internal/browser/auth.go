package browser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dealerbridge/lotposter/internal/cdp"
	"github.com/dealerbridge/lotposter/internal/wait"
)

// ErrAuthTimeout reports that the marketplace session never reached an
// authenticated state within the configured window.
var ErrAuthTimeout = errors.New("timed out waiting for marketplace login")

type AuthConfig struct {
	HomeURL  string
	Email    string
	Password string

	MaxWait      time.Duration
	PollInterval time.Duration
}

var checkpointURL = regexp.MustCompile(`(?i)facebook\.com/.*(checkpoint|two_factor|login/checkpoint|device-based|save-device)`)

const loggedInMarkerExpr = `!!document.querySelector('a[aria-label="Account"], [aria-label="Your profile"], [data-click="profile_icon"]')`

// EnsureAuthenticated navigates to the marketplace home and waits until the
// session is confirmed: session cookie present, logged-in UI marker visible
// and no verification checkpoint active. Credentials are submitted when
// configured; otherwise the operator signs in manually in the live browser.
// Checkpoint and two-factor screens are surfaced as log lines only.
func (m *Manager) EnsureAuthenticated(ctx context.Context, page *cdp.Client, cfg AuthConfig) error {
	if cfg.HomeURL == "" {
		cfg.HomeURL = "https://www.facebook.com/"
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 10 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 1500 * time.Millisecond
	}

	m.logger.Printf("opening %s", cfg.HomeURL)
	if err := page.Navigate(ctx, cfg.HomeURL); err != nil {
		return fmt.Errorf("open marketplace home: %w", err)
	}
	settle(ctx, time.Second)

	loginVisible, err := page.EvaluateAny(ctx, `document.querySelector('input[name="email"]') !== null`)
	if err != nil {
		return fmt.Errorf("probe login form: %w", err)
	}
	if visible, _ := loginVisible.(bool); visible {
		if cfg.Email != "" && cfg.Password != "" {
			m.logger.Printf("login form detected, submitting credentials")
			if err := m.submitCredentials(ctx, page, cfg.Email, cfg.Password); err != nil {
				m.logger.Printf("credential submit failed, falling back to manual login: %v", err)
			}
		} else {
			m.logger.Printf("on login page; please sign in manually in the browser window")
		}
	}

	lastURL := ""
	err = wait.Until(ctx, "authenticated session", wait.Config{Timeout: cfg.MaxWait, Interval: cfg.PollInterval}, func(ctx context.Context) (bool, error) {
		current, urlErr := page.CurrentURL(ctx)
		if urlErr != nil {
			return false, nil
		}
		if current != lastURL {
			lastURL = current
			m.logger.Printf("browser at %s", current)
		}

		checkpoint := checkpointURL.MatchString(current)
		if checkpoint {
			m.logger.Printf("login verification detected; complete it in the browser, waiting")
		}

		cookies, cookieErr := page.Cookies(ctx)
		if cookieErr != nil {
			return false, nil
		}
		hasSession := false
		for _, cookie := range cookies {
			if cookie.Name == "c_user" && cookie.Value != "" {
				hasSession = true
				break
			}
		}

		marker, evalErr := page.EvaluateAny(ctx, loggedInMarkerExpr)
		loggedInUI := false
		if evalErr == nil {
			loggedInUI, _ = marker.(bool)
		}

		return hasSession && loggedInUI && !checkpoint, nil
	})
	if err != nil {
		if errors.Is(err, wait.ErrTimeout) {
			return ErrAuthTimeout
		}
		return err
	}

	m.logger.Printf("marketplace session ready")
	return nil
}

func (m *Manager) submitCredentials(ctx context.Context, page *cdp.Client, email, password string) error {
	fill := func(selector, value string) error {
		result, err := page.EvaluateAny(ctx, fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return "not_found";
		el.focus();
		const desc = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, "value");
		desc.set.call(el, %q);
		el.dispatchEvent(new InputEvent("input", {bubbles: true}));
		el.dispatchEvent(new Event("change", {bubbles: true}));
		return "ok";
		})()`, selector, value))
		if err != nil {
			return err
		}
		if result != "ok" {
			return fmt.Errorf("no element matches %q", selector)
		}
		return nil
	}

	if err := fill(`input[name="email"]`, email); err != nil {
		return err
	}
	if err := fill(`input[name="pass"]`, password); err != nil {
		return err
	}

	result, err := page.EvaluateAny(ctx, `(() => {
	const btn = document.querySelector('button[name="login"]');
	if (!btn) return "not_found";
	btn.click();
	return "ok";
	})()`)
	if err != nil {
		return err
	}
	if result != "ok" {
		return errors.New("no login button found")
	}
	settle(ctx, 2*time.Second)
	return nil
}

func settle(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
