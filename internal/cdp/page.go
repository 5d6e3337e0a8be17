package cdp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultSelectorTimeout = 12 * time.Second
	pollInterval           = 150 * time.Millisecond
)

func (c *Client) Navigate(ctx context.Context, targetURL string) error {
	if err := c.Call(ctx, "Page.enable", nil, nil); err != nil {
		return err
	}
	return c.Call(ctx, "Page.navigate", map[string]any{"url": targetURL}, nil)
}

// CurrentURL reports the page's location; combo selection uses it to detect
// an accidental site-search navigation.
func (c *Client) CurrentURL(ctx context.Context) (string, error) {
	return c.EvaluateString(ctx, `String(window.location.href || "")`)
}

// NavigateBack steps one entry back in the page's navigation history. It is
// a no-op at the start of history.
func (c *Client) NavigateBack(ctx context.Context) error {
	var history struct {
		CurrentIndex int `json:"currentIndex"`
		Entries      []struct {
			ID int `json:"id"`
		} `json:"entries"`
	}
	if err := c.Call(ctx, "Page.getNavigationHistory", nil, &history); err != nil {
		return err
	}
	if history.CurrentIndex <= 0 || history.CurrentIndex >= len(history.Entries) {
		return nil
	}
	return c.Call(ctx, "Page.navigateToHistoryEntry", map[string]any{
		"entryId": history.Entries[history.CurrentIndex-1].ID,
	}, nil)
}

func (c *Client) CaptureScreenshot(ctx context.Context) (string, error) {
	if err := c.Call(ctx, "Page.enable", nil, nil); err != nil {
		return "", err
	}
	var response struct {
		Data string `json:"data"`
	}
	if err := c.Call(ctx, "Page.captureScreenshot", map[string]any{"format": "png"}, &response); err != nil {
		return "", err
	}
	return response.Data, nil
}

// WaitForSelector polls until a visible element matches the selector.
func (c *Client) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return errors.New("selector is required")
	}
	if timeout <= 0 {
		timeout = defaultSelectorTimeout
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	expression := fmt.Sprintf(`(() => {
	const visible = (el) => {
		const style = window.getComputedStyle(el);
		if (!style || style.display === "none" || style.visibility === "hidden") return false;
		const rect = el.getBoundingClientRect();
		return rect.width > 1 && rect.height > 1;
	};
	return Array.from(document.querySelectorAll(%q)).some(visible);
	})()`, selector)
	for {
		value, err := c.EvaluateAny(waitCtx, expression)
		if err != nil {
			return err
		}
		if found, ok := value.(bool); ok && found {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("timeout waiting for selector %q", selector)
		case <-time.After(pollInterval):
		}
	}
}

// InsertText types into whatever currently holds keyboard focus.
func (c *Client) InsertText(ctx context.Context, text string) error {
	if err := c.Call(ctx, "Input.insertText", map[string]any{"text": text}, nil); err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	return nil
}

// PressEnter dispatches a full Enter key sequence to the focused element.
func (c *Client) PressEnter(ctx context.Context) error {
	for _, eventType := range []string{"keyDown", "char", "keyUp"} {
		payload := map[string]any{
			"type":                  eventType,
			"key":                   "Enter",
			"code":                  "Enter",
			"windowsVirtualKeyCode": 13,
			"nativeVirtualKeyCode":  13,
		}
		if eventType == "char" {
			payload["text"] = "\r"
			payload["unmodifiedText"] = "\r"
		}
		if err := c.Call(ctx, "Input.dispatchKeyEvent", payload, nil); err != nil {
			return fmt.Errorf("dispatch enter %s: %w", eventType, err)
		}
	}
	return nil
}

// SetFilesOnAllInputs assigns the same local files to every element matching
// the selector and reports how many inputs were populated.
func (c *Client) SetFilesOnAllInputs(ctx context.Context, selector string, paths []string) (int, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return 0, errors.New("selector is required")
	}
	if len(paths) == 0 {
		return 0, nil
	}

	var doc struct {
		Root struct {
			NodeID int `json:"nodeId"`
		} `json:"root"`
	}
	if err := c.Call(ctx, "DOM.getDocument", map[string]any{"depth": 1}, &doc); err != nil {
		return 0, fmt.Errorf("get document: %w", err)
	}

	var nodes struct {
		NodeIDs []int `json:"nodeIds"`
	}
	if err := c.Call(ctx, "DOM.querySelectorAll", map[string]any{
		"nodeId":   doc.Root.NodeID,
		"selector": selector,
	}, &nodes); err != nil {
		return 0, fmt.Errorf("query file inputs: %w", err)
	}

	populated := 0
	for _, nodeID := range nodes.NodeIDs {
		if nodeID == 0 {
			continue
		}
		if err := c.Call(ctx, "DOM.setFileInputFiles", map[string]any{
			"files":  paths,
			"nodeId": nodeID,
		}, nil); err != nil {
			continue
		}
		populated++
	}
	return populated, nil
}

type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
}

// Cookies returns the browser's cookies for the current browsing context.
func (c *Client) Cookies(ctx context.Context) ([]Cookie, error) {
	if err := c.Call(ctx, "Network.enable", nil, nil); err != nil {
		return nil, err
	}
	var response struct {
		Cookies []Cookie `json:"cookies"`
	}
	if err := c.Call(ctx, "Network.getCookies", nil, &response); err != nil {
		return nil, err
	}
	return response.Cookies, nil
}
