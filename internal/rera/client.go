package rera

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"advisory-portal/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// ErrNotRegistered means the registry has no project for the given ID.
// This is a permanent condition, not a transient failure.
var ErrNotRegistered = errors.New("rera id not found in registry")

// RegistryProject is the data extracted from one registry detail page
type RegistryProject struct {
	ReraID           string
	ProjectName      string
	PromoterName     string
	District         string
	State            string
	ProjectStatus    models.ProjectStatus
	ComplianceStatus models.ComplianceStatus
	RegistrationDate *time.Time
	ExpiryDate       *time.Time
}

// ClientConfig holds registry client settings
type ClientConfig struct {
	BaseURL          string
	Timeout          time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
	UserAgent        string
	HeadlessFallback bool
}

// Client fetches and parses project pages from the state RERA portal.
// The portal serves server-rendered HTML for most projects; a few state
// portals render the detail table with JavaScript, for which the client
// falls back to a headless browser fetch.
type Client struct {
	http             *http.Client
	baseURL          string
	userAgent        string
	maxRetries       int
	retryDelay       time.Duration
	headlessFallback bool
}

// NewClient creates a registry client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Client{
		http:             &http.Client{Timeout: cfg.Timeout},
		baseURL:          strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:        cfg.UserAgent,
		maxRetries:       cfg.MaxRetries,
		retryDelay:       cfg.RetryDelay,
		headlessFallback: cfg.HeadlessFallback,
	}
}

// FetchProject retrieves and parses the registry detail page for a RERA ID
func (c *Client) FetchProject(ctx context.Context, reraID string) (*RegistryProject, error) {
	pageURL := fmt.Sprintf("%s/project/%s", c.baseURL, reraID)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between retries
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		project, err := c.fetchOnce(ctx, pageURL, reraID)
		if err == nil {
			return project, nil
		}
		if errors.Is(err, ErrNotRegistered) {
			return nil, err
		}
		lastErr = err
		log.Printf("[RERA] fetch attempt %d/%d failed for %s: %v", attempt+1, c.maxRetries+1, reraID, err)
	}

	return nil, fmt.Errorf("registry fetch failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, pageURL, reraID string) (*RegistryProject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotRegistered
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry page: %w", err)
	}

	project := parseProjectDoc(doc, reraID)
	if project != nil {
		return project, nil
	}

	// No detail table in the static page. Some state portals render it
	// client-side; retry through a headless browser once.
	if c.headlessFallback {
		log.Printf("[RERA] static page empty for %s, falling back to headless fetch", reraID)
		return c.fetchRendered(ctx, pageURL, reraID)
	}

	return nil, fmt.Errorf("registry page for %s has no project detail table", reraID)
}

// fetchRendered loads the page in headless Chrome and parses the
// rendered DOM
func (c *Client) fetchRendered(ctx context.Context, pageURL, reraID string) (*RegistryProject, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(c.userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, 45*time.Second)
	defer timeoutCancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("headless fetch failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered page: %w", err)
	}

	project := parseProjectDoc(doc, reraID)
	if project == nil {
		return nil, fmt.Errorf("rendered page for %s has no project detail table", reraID)
	}
	return project, nil
}

// parseProjectDoc extracts project fields from a registry detail page.
// Registry pages lay the data out as label/value table rows; returns nil
// when no recognizable detail table is present.
func parseProjectDoc(doc *goquery.Document, reraID string) *RegistryProject {
	fields := make(map[string]string)

	doc.Find("table.project-details tr, table#projectDetail tr, .detail-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := normalizeLabel(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(1).Text())
		if label != "" && value != "" {
			fields[label] = value
		}
	})

	if len(fields) == 0 {
		return nil
	}

	project := &RegistryProject{
		ReraID:       reraID,
		ProjectName:  pickField(fields, "project name", "name of project"),
		PromoterName: pickField(fields, "promoter name", "name of promoter", "promoter"),
		District:     pickField(fields, "district"),
		State:        pickField(fields, "state"),
	}

	project.ProjectStatus = mapProjectStatus(pickField(fields, "project status", "status of project"))
	project.ComplianceStatus = mapComplianceStatus(pickField(fields, "compliance status", "registration status"))

	if d := parseRegistryDate(pickField(fields, "registration date", "date of registration")); d != nil {
		project.RegistrationDate = d
	}
	if d := parseRegistryDate(pickField(fields, "expiry date", "proposed completion date", "valid upto")); d != nil {
		project.ExpiryDate = d
	}

	return project
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimSuffix(s, ":")
}

func pickField(fields map[string]string, labels ...string) string {
	for _, l := range labels {
		if v, ok := fields[l]; ok {
			return v
		}
	}
	return ""
}

// mapProjectStatus normalizes registry wording onto the fixed taxonomy
func mapProjectStatus(s string) models.ProjectStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "under construction", "ongoing", "new project":
		return models.ProjectUnderConstruction
	case "completed":
		return models.ProjectCompleted
	case "delayed", "lapsed":
		return models.ProjectDelayed
	case "cancelled", "revoked":
		return models.ProjectCancelled
	case "approved", "registered":
		return models.ProjectApproved
	}
	return ""
}

// mapComplianceStatus normalizes the registry's compliance wording
func mapComplianceStatus(s string) models.ComplianceStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "valid", "registered":
		return models.ComplianceActive
	case "non-compliant", "non compliant", "defaulter":
		return models.ComplianceNonCompliant
	case "suspended":
		return models.ComplianceSuspended
	case "cancelled", "revoked":
		return models.ComplianceCancelled
	}
	return ""
}

// parseRegistryDate handles the date formats state portals use
func parseRegistryDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"02-01-2006", "02/01/2006", "2006-01-02", "02 Jan 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// StatusError carries the registry's HTTP status for breaker decisions
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registry returned status %d", e.Code)
}
