package notify

import (
	"fmt"
	"log"
	"time"

	"advisory-portal/internal/models"

	"gorm.io/gorm"
)

// Rule is one nurturing trigger. Matches decides whether the rule fires
// for a lead at the given time, Message renders the outbound text, and
// NextStage (when set) is where the lead moves after a successful send.
type Rule struct {
	Key         string
	Description string
	// RepeatAfter is the minimum gap between two firings of the same
	// rule against the same lead. Zero means the rule fires at most
	// once per lead, ever.
	RepeatAfter time.Duration
	Matches     func(lead *models.Lead, now time.Time) bool
	Message     func(lead *models.Lead) string
	NextStage   models.LeadStage
}

// Rules returns the fixed nurturing rule set evaluated each cycle
func Rules() []Rule {
	return []Rule{
		{
			Key:         "immediate_follow_up",
			Description: "Welcome message for a freshly captured lead",
			Matches: func(lead *models.Lead, now time.Time) bool {
				return lead.Stage == models.LeadStageNew
			},
			Message: func(lead *models.Lead) string {
				return fmt.Sprintf("Hi %s, thank you for your enquiry. Our advisor will reach out shortly with details.", lead.Name)
			},
			NextStage: models.LeadStageContacted,
		},
		{
			Key:         "follow_up_24h",
			Description: "Follow-up a day after first contact",
			Matches: func(lead *models.Lead, now time.Time) bool {
				return lead.Stage == models.LeadStageContacted &&
					lead.LastContactAt != nil &&
					now.Sub(*lead.LastContactAt) >= 24*time.Hour
			},
			Message: func(lead *models.Lead) string {
				return fmt.Sprintf("Hi %s, following up on your enquiry. Would you like a detailed report on the project you asked about?", lead.Name)
			},
			NextStage: models.LeadStageNurturing,
		},
		{
			Key:         "weekly_nurture",
			Description: "Weekly touch for leads in the nurturing stage",
			RepeatAfter: 7 * 24 * time.Hour,
			Matches: func(lead *models.Lead, now time.Time) bool {
				return lead.Stage == models.LeadStageNurturing &&
					lead.LastContactAt != nil &&
					now.Sub(*lead.LastContactAt) >= 7*24*time.Hour
			},
			Message: func(lead *models.Lead) string {
				return fmt.Sprintf("Hi %s, here is this week's market update for your shortlisted localities. Reply STOP to opt out.", lead.Name)
			},
		},
		{
			Key:         "price_alert",
			Description: "Pricing update for leads tracking a specific listing",
			RepeatAfter: 14 * 24 * time.Hour,
			Matches: func(lead *models.Lead, now time.Time) bool {
				return lead.PropertyID != nil &&
					(lead.Stage == models.LeadStageContacted || lead.Stage == models.LeadStageNurturing)
			},
			Message: func(lead *models.Lead) string {
				return fmt.Sprintf("Hi %s, pricing for the project you shortlisted has been updated. Reply YES for the latest quote.", lead.Name)
			},
		},
		{
			Key:         "site_visit_reminder",
			Description: "Nudge contacted leads toward a site visit",
			Matches: func(lead *models.Lead, now time.Time) bool {
				return lead.PropertyID != nil &&
					lead.Stage == models.LeadStageContacted &&
					lead.LastContactAt != nil &&
					now.Sub(*lead.LastContactAt) >= 3*24*time.Hour
			},
			Message: func(lead *models.Lead) string {
				return fmt.Sprintf("Hi %s, site visits are open this weekend for the project you enquired about. Shall we book a slot?", lead.Name)
			},
		},
		{
			Key:         "cold_reactivation",
			Description: "Reactivation attempt for cold leads",
			RepeatAfter: 30 * 24 * time.Hour,
			Matches: func(lead *models.Lead, now time.Time) bool {
				return lead.Stage == models.LeadStageCold
			},
			Message: func(lead *models.Lead) string {
				return fmt.Sprintf("Hi %s, it has been a while. New RERA-verified projects matching your budget are now available. Interested?", lead.Name)
			},
			NextStage: models.LeadStageNurturing,
		},
	}
}

// Engine evaluates the nurturing rules against the lead base and
// dispatches matched messages over WhatsApp
type Engine struct {
	db     *gorm.DB
	sender Sender
	rules  []Rule
}

// NewEngine creates a nurture engine with the fixed rule set
func NewEngine(db *gorm.DB, sender Sender) *Engine {
	return &Engine{
		db:     db,
		sender: sender,
		rules:  Rules(),
	}
}

// CycleResult summarizes one nurturing run
type CycleResult struct {
	EvaluatedLeads int              `json:"evaluated_leads"`
	Sent           int              `json:"sent"`
	Failed         int              `json:"failed"`
	Skipped        int              `json:"skipped"`
	ByRule         map[string]int   `json:"by_rule"`
	ExecutedAt     time.Time        `json:"executed_at"`
	Errors         []string         `json:"errors,omitempty"`
}

// RunCycle evaluates every rule against every non-converted lead. The
// first matching rule wins per lead per cycle, so one run sends at most
// one message to each lead.
func (e *Engine) RunCycle(now time.Time) (*CycleResult, error) {
	result := &CycleResult{
		ByRule:     make(map[string]int),
		ExecutedAt: now,
	}

	var leads []models.Lead
	if err := e.db.Where("stage != ?", models.LeadStageConverted).Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	result.EvaluatedLeads = len(leads)

	for i := range leads {
		lead := &leads[i]

		for _, rule := range e.rules {
			if !rule.Matches(lead, now) {
				continue
			}

			fired, err := e.alreadyFired(rule, lead.ID, now)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("lead %s rule %s: %v", lead.ID, rule.Key, err))
				result.Failed++
				break
			}
			if fired {
				result.Skipped++
				break
			}

			e.dispatch(rule, lead, now, result)
			break
		}
	}

	log.Printf("[Nurture] Cycle done: %d leads evaluated, %d sent, %d failed, %d skipped",
		result.EvaluatedLeads, result.Sent, result.Failed, result.Skipped)

	return result, nil
}

// alreadyFired checks the nurture log for a prior firing that still
// suppresses this rule for this lead
func (e *Engine) alreadyFired(rule Rule, leadID string, now time.Time) (bool, error) {
	query := e.db.Model(&models.NurtureLog{}).
		Where("rule_key = ? AND lead_id = ? AND success = ?", rule.Key, leadID, true)

	if rule.RepeatAfter > 0 {
		query = query.Where("sent_at > ?", now.Add(-rule.RepeatAfter))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *Engine) dispatch(rule Rule, lead *models.Lead, now time.Time, result *CycleResult) {
	entry := models.NurtureLog{
		RuleKey: rule.Key,
		LeadID:  lead.ID,
		Channel: "whatsapp",
	}

	messageID, err := e.sender.Send(lead.Phone, rule.Message(lead))
	if err != nil {
		entry.Success = false
		entry.Error = err.Error()
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("lead %s rule %s: %v", lead.ID, rule.Key, err))
		log.Printf("[Nurture] Send failed for lead %s (rule %s): %v", lead.ID, rule.Key, err)
	} else {
		entry.Success = true
		entry.MessageID = messageID
		result.Sent++
		result.ByRule[rule.Key]++

		updates := map[string]interface{}{
			"last_contact_at": &now,
		}
		if rule.NextStage != "" {
			updates["stage"] = rule.NextStage
		}
		if err := e.db.Model(&models.Lead{}).Where("id = ?", lead.ID).Updates(updates).Error; err != nil {
			log.Printf("[Nurture] Failed to update lead %s after send: %v", lead.ID, err)
		}
	}

	if err := e.db.Create(&entry).Error; err != nil {
		log.Printf("[Nurture] Failed to record nurture log for lead %s: %v", lead.ID, err)
	}
}

// RuleStats reports how often each rule has fired
func (e *Engine) RuleStats() ([]map[string]interface{}, error) {
	var counts []struct {
		RuleKey string
		Count   int64
	}
	if err := e.db.Model(&models.NurtureLog{}).
		Where("success = ?", true).
		Select("rule_key, count(*) as count").
		Group("rule_key").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	fired := make(map[string]int64)
	for _, c := range counts {
		fired[c.RuleKey] = c.Count
	}

	stats := make([]map[string]interface{}, 0, len(e.rules))
	for _, rule := range e.rules {
		stats = append(stats, map[string]interface{}{
			"key":         rule.Key,
			"description": rule.Description,
			"repeatable":  rule.RepeatAfter > 0,
			"total_sent":  fired[rule.Key],
		})
	}
	return stats, nil
}
