package models

import "time"

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// SampleFeatures returns the demo data set. Every call returns fresh copies.
func SampleFeatures() []*FeatureRequest {
	return []*FeatureRequest{
		{
			ID:          "1",
			Title:       "Dark mode support",
			Description: "Add a toggle to switch between light and dark themes throughout the entire application.",
			Status:      FeatureStatusInProgress,
			Category:    "UI/UX",
			Votes:       124,
			Comments:    18,
			Author:      "Sarah Chen",
			Date:        day(2024, time.January, 15),
			UserVote:    UserVoteUp,
		},
		{
			ID:          "2",
			Title:       "Keyboard shortcuts",
			Description: "Implement customizable keyboard shortcuts for common actions to improve productivity.",
			Status:      FeatureStatusPlanned,
			Category:    "Productivity",
			Votes:       89,
			Comments:    12,
			Author:      "Mike Johnson",
			Date:        day(2024, time.January, 18),
		},
		{
			ID:          "3",
			Title:       "Export to CSV",
			Description: "Allow users to export all feature requests and voting data to CSV format for external analysis.",
			Status:      FeatureStatusCompleted,
			Category:    "Integration",
			Votes:       156,
			Comments:    24,
			Author:      "Emma Williams",
			Date:        day(2024, time.January, 10),
		},
		{
			ID:          "4",
			Title:       "Email notifications",
			Description: "Send email alerts when features change status or receive new comments.",
			Status:      FeatureStatusUnderReview,
			Category:    "Notifications",
			Votes:       67,
			Comments:    9,
			Author:      "Alex Rodriguez",
			Date:        day(2024, time.January, 20),
		},
		{
			ID:          "5",
			Title:       "Mobile app",
			Description: "Create native iOS and Android apps for managing feature requests on the go.",
			Status:      FeatureStatusPlanned,
			Category:    "Platform",
			Votes:       203,
			Comments:    45,
			Author:      "James Lee",
			Date:        day(2024, time.January, 12),
		},
		{
			ID:          "6",
			Title:       "Advanced filtering",
			Description: "Add more filter options like date range, vote count, and custom tags.",
			Status:      FeatureStatusInProgress,
			Category:    "Features",
			Votes:       92,
			Comments:    15,
			Author:      "Lisa Park",
			Date:        day(2024, time.January, 19),
		},
		{
			ID:          "7",
			Title:       "API webhooks",
			Description: "Trigger webhooks when specific events occur (new feature, status change, etc.).",
			Status:      FeatureStatusPlanned,
			Category:    "Integration",
			Votes:       78,
			Comments:    11,
			Author:      "David Kim",
			Date:        day(2024, time.January, 17),
		},
		{
			ID:          "8",
			Title:       "Markdown support in descriptions",
			Description: "Allow rich text formatting in feature descriptions using Markdown syntax.",
			Status:      FeatureStatusCompleted,
			Category:    "Features",
			Votes:       134,
			Comments:    22,
			Author:      "Rachel Green",
			Date:        day(2024, time.January, 8),
		},
	}
}
