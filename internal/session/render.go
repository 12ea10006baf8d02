package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joescharf/votehub/internal/models"
	"github.com/joescharf/votehub/internal/output"
	"github.com/joescharf/votehub/internal/projector"
)

const (
	dateLayout = "2006-01-02"
	shortIDLen = 12
)

// ShortID trims long generated ids for table display.
func ShortID(id string) string {
	return shortenID(id, shortIDLen)
}

func shortenID(id string, width int) string {
	if len(id) > width {
		return id[:width]
	}
	return id
}

// IDWidth returns the display width, at least 12, at which every feature
// keeps a distinct case-insensitive id prefix. Ids generated in the same
// millisecond share their first 12 characters.
func IDWidth(features []*models.FeatureRequest) int {
	longest := 0
	for _, f := range features {
		longest = max(longest, len(f.ID))
	}

	width := shortIDLen
	for ; width < longest; width++ {
		seen := make(map[string]bool, len(features))
		unique := true
		for _, f := range features {
			p := strings.ToUpper(shortenID(f.ID, width))
			if seen[p] {
				unique = false
				break
			}
			seen[p] = true
		}
		if unique {
			break
		}
	}
	return width
}

// RenderList prints features as a table in the given order, with ids cut
// to width characters.
func RenderList(ui *output.UI, features []*models.FeatureRequest, width int) {
	if len(features) == 0 {
		ui.Info("No feature requests found.")
		return
	}

	table := ui.Table([]string{"ID", "Votes", "You", "Title", "Category", "Status", "Date", "Comments"})
	for _, f := range features {
		_ = table.Append([]string{
			shortenID(f.ID, width),
			output.VotesColor(f.Votes),
			output.VoteMarker(string(f.UserVote)),
			f.Title,
			f.Category,
			output.StatusColor(string(f.Status)),
			f.Date.Format(dateLayout),
			strconv.Itoa(f.Comments),
		})
	}
	_ = table.Render()
}

// RenderFeature prints the detail view of one feature.
func RenderFeature(ui *output.UI, f *models.FeatureRequest) {
	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(ShortID(f.ID)), f.Title)
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.StatusColor(string(f.Status)))
	fmt.Fprintf(ui.Out, "  Category:   %s\n", f.Category)
	fmt.Fprintf(ui.Out, "  Votes:      %s %s\n", output.VotesColor(f.Votes), output.VoteMarker(string(f.UserVote)))
	fmt.Fprintf(ui.Out, "  Your vote:  %s\n", f.UserVote)
	fmt.Fprintf(ui.Out, "  Comments:   %d\n", f.Comments)
	fmt.Fprintf(ui.Out, "  Author:     %s\n", f.Author)
	fmt.Fprintf(ui.Out, "  Date:       %s\n", f.Date.Format(dateLayout))
	fmt.Fprintf(ui.Out, "  Desc:       %s\n", f.Description)
	if f.ID != ShortID(f.ID) {
		fmt.Fprintf(ui.Out, "  Full ID:    %s\n", f.ID)
	}
}

// RenderCategories prints the category filter sidebar, marking the selected entry.
func RenderCategories(ui *output.UI, counts []projector.CategoryCount, selected string) {
	table := ui.Table([]string{"", "Category", "Features"})
	for _, c := range counts {
		mark := ""
		if c.Category == selected {
			mark = output.Cyan("▸")
		}
		_ = table.Append([]string{mark, c.Category, strconv.Itoa(c.Count)})
	}
	_ = table.Render()
}
