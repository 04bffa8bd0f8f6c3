// Package scoring computes the 0-100 lead quality score of a contact.
//
// The score is the sum of independent signals clamped to 100. Each signal only
// ever adds points, so adding an attribute never lowers the score.
package scoring

import (
	"strings"

	"github.com/wagnerlima/tenant-crm/internal/models"
)

const MaxScore = 100

var (
	executiveTerms = []string{"ceo", "cto", "cfo", "vp", "director", "head"}
	founderTerms   = []string{"president", "founder", "owner"}
	freeMailHosts  = []string{"gmail", "yahoo", "hotmail", "outlook"}
)

// Score returns the lead score for the given contact attributes.
func Score(c models.ContactInput) int {
	score := 0

	if c.CompanyID != nil {
		score += 20
	}

	if title := strings.ToLower(strings.TrimSpace(c.Title)); title != "" {
		score += 10
		if containsAny(title, executiveTerms) {
			score += 10
		}
		if containsAny(title, founderTerms) {
			score += 15
		}
	}

	if present(c.Phone) {
		score += 10
	}
	if present(c.Mobile) {
		score += 5
	}
	if present(c.LinkedinURL) {
		score += 15
	}
	if present(c.TwitterHandle) {
		score += 5
	}
	if present(c.Street) && present(c.City) && present(c.State) && present(c.Country) {
		score += 10
	}

	switch strings.ToLower(strings.TrimSpace(c.LeadSource)) {
	case "referral", "partner":
		score += 15
	case "web", "campaign", "event":
		score += 5
	}

	if IsCorporateEmail(c.Email) {
		score += 10
	}

	if score > MaxScore {
		return MaxScore
	}
	return score
}

// IsCorporateEmail reports whether the address has a domain that is not one of
// the free mail providers.
func IsCorporateEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	for _, label := range strings.Split(strings.ToLower(email[at+1:]), ".") {
		for _, host := range freeMailHosts {
			if label == host {
				return false
			}
		}
	}
	return true
}

// Band buckets a score for display.
func Band(score int) string {
	switch {
	case score >= 80:
		return "hot"
	case score >= 50:
		return "warm"
	case score >= 30:
		return "cool"
	default:
		return "cold"
	}
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
