// Package seed loads the sample marketplace used for demos and local runs.
package seed

import (
	"context"
	"fmt"
	"time"

	"dealmatch/internal/domain"
	"dealmatch/internal/ports"
)

func strPtr(s string) *string { return &s }

// Profiles are the sample counterparties. Revenue, budget and head-count are
// expressed as schema range options.
func Profiles(now time.Time) []domain.Profile {
	return []domain.Profile{
		{
			ID:          "sample-sarah-chen",
			Role:        domain.RoleSeller,
			Name:        "Sarah Chen",
			Company:     "TechFlow Solutions",
			Location:    "San Francisco, CA",
			Industry:    "Technology",
			Revenue:     "$1M - $5M",
			Employees:   "11-50",
			Description: "Profitable SaaS company serving enterprise clients with automated workflow solutions. Strong recurring revenue and growing customer base.",
			Verified:    true,
			Interests:   []string{"SaaS", "Enterprise", "Automation"},
			LastActive:  "2 hours ago",
			CreatedAt:   now.Add(-72 * time.Hour),
		},
		{
			ID:          "sample-michael-rodriguez",
			Role:        domain.RoleBuyer,
			Name:        "Michael Rodriguez",
			Company:     "Growth Capital Partners",
			Location:    "Austin, TX",
			Industry:    "Other",
			Budget:      "$1M - $5M",
			Employees:   "11-50",
			Description: "Experienced investor looking for profitable tech companies with strong growth potential. Focus on B2B SaaS and fintech.",
			Verified:    true,
			Interests:   []string{"SaaS", "Fintech", "B2B"},
			LastActive:  "1 hour ago",
			CreatedAt:   now.Add(-48 * time.Hour),
		},
		{
			ID:          "sample-jennifer-walsh",
			Role:        domain.RoleSeller,
			Name:        "Jennifer Walsh",
			Company:     "Coastal Manufacturing",
			Location:    "Portland, OR",
			Industry:    "Manufacturing",
			Revenue:     "$5M+",
			Employees:   "11-50",
			Description: "Family-owned manufacturing business specializing in sustainable packaging solutions. Established client relationships and steady growth.",
			Verified:    true,
			Interests:   []string{"Manufacturing", "Sustainability", "B2B"},
			LastActive:  "30 minutes ago",
			CreatedAt:   now.Add(-24 * time.Hour),
		},
	}
}

// Documents are one analyzed and one still-analyzing sample upload.
func Documents() []domain.Document {
	analyzedAt := time.Date(2024, 1, 15, 0, 5, 0, 0, time.UTC)
	return []domain.Document{
		{
			ID:         "sample-pl-2023",
			Name:       "P&L Statement 2023.pdf",
			Type:       "financial",
			UploadedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Status:     domain.DocumentAnalyzed,
			Summary:    strPtr("Strong financial performance with 25% YoY revenue growth. Healthy profit margins and consistent cash flow."),
			KeyMetrics: map[string]string{
				"Revenue":       "$2.5M",
				"Profit Margin": "18%",
				"Growth Rate":   "25%",
				"Cash Flow":     "Positive",
			},
			FinishedAt: &analyzedAt,
		},
		{
			ID:         "sample-balance-q4",
			Name:       "Balance Sheet Q4.pdf",
			Type:       "financial",
			UploadedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Status:     domain.DocumentAnalyzing,
		},
	}
}

// Load inserts the samples that are not stored yet.
func Load(ctx context.Context, profiles ports.ProfileRepository, docs ports.DocumentRepository, now time.Time) error {
	for _, p := range Profiles(now) {
		if _, err := profiles.Get(ctx, p.ID); err == nil {
			continue
		}
		if err := profiles.Create(ctx, p); err != nil {
			return fmt.Errorf("seed profile %s: %w", p.ID, err)
		}
	}
	for _, d := range Documents() {
		if _, err := docs.Get(ctx, d.ID); err == nil {
			continue
		}
		if err := docs.Insert(ctx, d); err != nil {
			return fmt.Errorf("seed document %s: %w", d.ID, err)
		}
	}
	return nil
}
