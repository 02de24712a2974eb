package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"advisory-portal/internal/config"
	"advisory-portal/internal/rera"
)

// Registry smoke-check tool. Run it against a known RERA ID before enabling
// auto-sync in a new deployment to confirm the portal still parses.

type CheckResult struct {
	CheckName string    `json:"check_name"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Details   any       `json:"details,omitempty"`
}

type SmokeCheckResults struct {
	ReraID         string        `json:"rera_id"`
	RegistryURL    string        `json:"registry_url"`
	Results        []CheckResult `json:"results"`
	OverallSuccess bool          `json:"overall_success"`
	ExecutedAt     time.Time     `json:"executed_at"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	reraID := os.Getenv("CHECK_RERA_ID")
	if len(os.Args) > 1 {
		reraID = os.Args[1]
	}
	if reraID == "" {
		log.Fatal("Usage: rera-check <RERA_ID> (or set CHECK_RERA_ID)")
	}

	configPath := os.Getenv("CONFIG_PATH")
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		} else {
			cfg = loaded
		}
	}

	client := rera.NewClient(rera.ClientConfig{
		BaseURL:          cfg.Rera.RegistryBaseURL,
		Timeout:          cfg.Rera.GetTimeout(),
		MaxRetries:       cfg.Rera.MaxRetries,
		RetryDelay:       cfg.Rera.GetRetryDelay(),
		UserAgent:        cfg.Rera.UserAgent,
		HeadlessFallback: cfg.Rera.HeadlessFallback,
	})

	results := &SmokeCheckResults{
		ReraID:      reraID,
		RegistryURL: cfg.Rera.RegistryBaseURL,
		ExecutedAt:  time.Now(),
	}

	log.Println("============================================")
	log.Printf("Registry smoke check: %s", reraID)
	log.Println("============================================")

	fetchResult, project := checkFetchStability(client, reraID)
	results.Results = append(results.Results, fetchResult)

	if project != nil {
		results.Results = append(results.Results, checkParsedFields(project))
	} else {
		log.Println("[ERROR] Fetch failed, skipping field checks")
	}

	results.OverallSuccess = true
	for _, r := range results.Results {
		if !r.Success {
			results.OverallSuccess = false
			break
		}
	}

	log.Println("\n============================================")
	log.Println("Smoke check summary")
	log.Println("============================================")
	for i, r := range results.Results {
		status := "PASS"
		if !r.Success {
			status = "FAIL"
		}
		log.Printf("%d. %s: %s", i+1, r.CheckName, status)
		log.Printf("   %s", r.Message)
	}

	saveResults(results)

	if !results.OverallSuccess {
		os.Exit(1)
	}
}

// checkFetchStability fetches the same project page twice with a pause in
// between. Intermittent parses usually mean the portal is A/B testing a new
// detail page layout.
func checkFetchStability(client *rera.Client, reraID string) (CheckResult, *rera.RegistryProject) {
	result := CheckResult{
		CheckName: "Fetch stability (2 consecutive fetches)",
		Timestamp: time.Now(),
	}

	log.Println("\n[Check 1] Fetch stability...")

	successCount := 0
	var project *rera.RegistryProject
	var lastErr error

	for i := 1; i <= 2; i++ {
		log.Printf("  Attempt %d/2...", i)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		p, err := client.FetchProject(ctx, reraID)
		cancel()

		if err != nil {
			log.Printf("  Attempt %d failed: %v", i, err)
			lastErr = err
			continue
		}

		log.Printf("  Attempt %d succeeded: %s", i, p.ProjectName)
		successCount++
		project = p

		if i < 2 {
			time.Sleep(2 * time.Second)
		}
	}

	if successCount == 2 {
		result.Success = true
		result.Message = fmt.Sprintf("2 consecutive fetches succeeded (project: %s)", project.ProjectName)
	} else {
		result.Success = false
		result.Message = fmt.Sprintf("%d/2 fetches succeeded, last error: %v", successCount, lastErr)
	}

	return result, project
}

// checkParsedFields verifies the fields the verifier depends on came through
// the parse non-empty.
func checkParsedFields(project *rera.RegistryProject) CheckResult {
	result := CheckResult{
		CheckName: "Parsed field completeness",
		Timestamp: time.Now(),
	}

	log.Println("\n[Check 2] Parsed fields...")
	log.Printf("  Project:   %s", project.ProjectName)
	log.Printf("  Promoter:  %s", project.PromoterName)
	log.Printf("  Status:    %s", project.ProjectStatus)
	log.Printf("  District:  %s / %s", project.District, project.State)

	var missing []string
	if project.ProjectName == "" {
		missing = append(missing, "project_name")
	}
	if project.PromoterName == "" {
		missing = append(missing, "promoter_name")
	}
	if project.ProjectStatus == "" {
		missing = append(missing, "project_status")
	}

	if len(missing) == 0 {
		result.Success = true
		result.Message = "All verifier-critical fields parsed"
		result.Details = map[string]interface{}{
			"project_name":  project.ProjectName,
			"promoter_name": project.PromoterName,
			"status":        project.ProjectStatus,
			"expiry_set":    project.ExpiryDate != nil,
		}
	} else {
		result.Success = false
		result.Message = fmt.Sprintf("Missing fields: %v (portal layout may have changed)", missing)
		result.Details = map[string]interface{}{"missing": missing}
	}

	return result
}

func saveResults(results *SmokeCheckResults) {
	filename := fmt.Sprintf("rera-check-%s.json", results.ExecutedAt.Format("20060102-150405"))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Printf("[ERROR] Failed to marshal results: %v", err)
		return
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		log.Printf("[ERROR] Failed to write results file: %v", err)
		return
	}

	log.Printf("\nResults saved: %s", filename)
}
