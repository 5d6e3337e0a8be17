// Package browser owns the long-lived Chrome session the listing flow runs
// in. The browser is launched (or attached to) lazily on first use and kept
// alive across capture requests so the marketplace login survives between
// listings.
package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dealerbridge/lotposter/internal/cdp"
	"github.com/dealerbridge/lotposter/internal/wait"
)

type Config struct {
	// Executable overrides Chrome binary discovery.
	Executable string
	ProfileDir string
	UserAgent  string
	DebugPort  int

	// BaseURL attaches to an already-running DevTools endpoint instead of
	// launching a browser.
	BaseURL string

	// ShotsDir enables debug screenshots at named checkpoints when set.
	ShotsDir string
}

type Manager struct {
	cfg    Config
	logger *log.Logger

	proc       *exec.Cmd
	procExited chan struct{}
	client     *cdp.Client
}

func NewManager(cfg Config, logger *log.Logger) *Manager {
	if cfg.DebugPort <= 0 {
		cfg.DebugPort = 9222
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// Page returns the shared page client, launching or attaching to the
// browser on first use. Callers never close it; the session is reused for
// the next capture.
func (m *Manager) Page(ctx context.Context) (*cdp.Client, error) {
	if m.client != nil {
		if m.alive() {
			return m.client, nil
		}
		m.logger.Printf("browser process went away, relaunching")
		_ = m.client.Close()
		m.client = nil
		m.proc = nil
		m.procExited = nil
	}

	baseURL := m.cfg.BaseURL
	if baseURL == "" {
		launched, err := m.launch()
		if err != nil {
			return nil, err
		}
		baseURL = launched
	}

	if err := wait.Until(ctx, "devtools endpoint", wait.Config{Timeout: 15 * time.Second, Interval: 200 * time.Millisecond}, func(ctx context.Context) (bool, error) {
		return devtoolsReady(ctx, baseURL), nil
	}); err != nil {
		return nil, err
	}

	client, err := cdp.Dial(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("attach to browser: %w", err)
	}
	if err := m.preparePage(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	m.client = client
	return client, nil
}

func (m *Manager) launch() (string, error) {
	executable := m.cfg.Executable
	if executable == "" {
		found, err := findChromeBinary()
		if err != nil {
			return "", err
		}
		executable = found
	}

	if m.cfg.ProfileDir != "" {
		if err := os.MkdirAll(m.cfg.ProfileDir, 0o755); err != nil {
			return "", fmt.Errorf("create profile dir: %w", err)
		}
	}

	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", m.cfg.DebugPort),
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-blink-features=AutomationControlled",
		"--lang=en-US,en",
		"--no-sandbox",
		"--disable-setuid-sandbox",
	}
	if m.cfg.ProfileDir != "" {
		args = append(args, "--user-data-dir="+m.cfg.ProfileDir)
	}
	args = append(args, "about:blank")

	cmd := exec.Command(executable, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start browser: %w", err)
	}

	m.adopt(cmd)
	m.logger.Printf("launched %s (pid %d) on debug port %d", executable, cmd.Process.Pid, m.cfg.DebugPort)
	return fmt.Sprintf("http://127.0.0.1:%d", m.cfg.DebugPort), nil
}

// adopt takes ownership of a started browser process: it reaps the child so
// an exit is observable instead of leaving a zombie that still answers
// signal probes.
func (m *Manager) adopt(cmd *exec.Cmd) {
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	m.proc = cmd
	m.procExited = exited
}

func (m *Manager) alive() bool {
	if m.proc == nil {
		// Attached to an external browser; probe the endpoint instead.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return devtoolsReady(ctx, m.cfg.BaseURL)
	}
	select {
	case <-m.procExited:
		return false
	default:
		return true
	}
}

func (m *Manager) preparePage(ctx context.Context, client *cdp.Client) error {
	if m.cfg.UserAgent != "" {
		if err := client.Call(ctx, "Network.setUserAgentOverride", map[string]any{
			"userAgent": m.cfg.UserAgent,
		}, nil); err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}
	if err := client.Call(ctx, "Network.enable", nil, nil); err != nil {
		return err
	}
	return client.Call(ctx, "Network.setExtraHTTPHeaders", map[string]any{
		"headers": map[string]string{"accept-language": "en-US,en;q=0.9"},
	}, nil)
}

// Screenshot saves a debug checkpoint PNG when a shots directory is
// configured. Failures are logged only.
func (m *Manager) Screenshot(ctx context.Context, client *cdp.Client, name string) {
	if m.cfg.ShotsDir == "" {
		return
	}
	data, err := client.CaptureScreenshot(ctx)
	if err != nil {
		m.logger.Printf("screenshot %s: %v", name, err)
		return
	}
	if err := os.MkdirAll(m.cfg.ShotsDir, 0o755); err != nil {
		m.logger.Printf("screenshot %s: %v", name, err)
		return
	}
	decoded, err := decodeBase64(data)
	if err != nil {
		m.logger.Printf("screenshot %s: %v", name, err)
		return
	}
	path := filepath.Join(m.cfg.ShotsDir, fmt.Sprintf("%d_%s.png", time.Now().UnixMilli(), name))
	if err := os.WriteFile(path, decoded, 0o644); err != nil {
		m.logger.Printf("screenshot %s: %v", name, err)
		return
	}
	m.logger.Printf("screenshot saved: %s", path)
}

func devtoolsReady(ctx context.Context, baseURL string) bool {
	if baseURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/json/version", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func decodeBase64(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, errors.New("invalid data url payload")
		}
		payload = parts[1]
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return decoded, nil
}

func findChromeBinary() (string, error) {
	candidates := []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no chrome binary found; set CHROME_EXECUTABLE")
}
