// Package rank orders the browse pages and computes each item's
// call-to-action for the viewing user. It is pure: callers fetch items,
// the viewer's own reports, and the viewer's claims, and get back an
// ordered page.
package rank

import (
	"sort"
	"strings"

	"github.com/founditapp/foundit/internal/model"
)

// Call-to-action labels. Matching the product copy exactly: clients render
// these verbatim.
const (
	ActionClaim      = "Claim Item"
	ActionFoundThis  = "I Found This"
	ActionPending    = "Claim Pending"
	ActionAccepted   = "Claim Accepted"
	ActionRejected   = "Claim Rejected"
	ActionReportFake = "Report Fake"
	ActionOwnItem    = "Your Item"
)

// Entry is one row of a browse page.
type Entry struct {
	Item    model.Item `json:"item"`
	Action  string     `json:"action"`
	Enabled bool       `json:"enabled"`
}

// BrowsePage builds the ordered found-items or lost-items view for one
// viewer. pageType selects which item type is listed; the viewer's own
// reports of the opposite type drive the match-priority group.
//
// Ordering: items whose title fuzzy-matches one of the viewer's own
// opposite-type reports first, then the remaining active items newest
// first, then the viewer's own items (which they cannot claim), and all
// completed items last sorted by date descending. Within every group
// newer items come first.
func BrowsePage(items []model.Item, viewerEmail string, viewerReports []model.Item, viewerClaims []model.Claim, pageType string) []Entry {
	oppositeType := model.ItemTypeLost
	if pageType == model.ItemTypeLost {
		oppositeType = model.ItemTypeFound
	}

	var matchTitles []string
	for _, r := range viewerReports {
		if r.Type == oppositeType && r.ReporterEmail == viewerEmail {
			matchTitles = append(matchTitles, r.Title)
		}
	}

	claimsByItem := make(map[string]string, len(viewerClaims))
	for _, c := range viewerClaims {
		if c.ClaimerEmail == viewerEmail {
			claimsByItem[c.ItemID] = c.Status
		}
	}

	var matched, active, own, completed []model.Item
	for _, item := range items {
		if item.Type != pageType {
			continue
		}
		switch {
		case item.Status == model.ItemStatusCompleted:
			completed = append(completed, item)
		case item.ReporterEmail == viewerEmail && viewerEmail != "":
			own = append(own, item)
		case matchesAny(item.Title, matchTitles):
			matched = append(matched, item)
		default:
			active = append(active, item)
		}
	}

	newestFirst(matched)
	newestFirst(active)
	newestFirst(own)
	byDateDesc(completed)

	page := make([]Entry, 0, len(matched)+len(active)+len(own)+len(completed))
	for _, group := range [][]model.Item{matched, active, own, completed} {
		for _, item := range group {
			page = append(page, entryFor(item, viewerEmail, claimsByItem[item.ID], pageType))
		}
	}
	return page
}

// entryFor picks the call-to-action for one item. Own items are never
// claimable; completed items invite a fake-resolution report; an existing
// claim shows its status as a disabled label.
func entryFor(item model.Item, viewerEmail, claimStatus, pageType string) Entry {
	e := Entry{Item: item}

	switch {
	case viewerEmail != "" && item.ReporterEmail == viewerEmail:
		e.Action = ActionOwnItem
	case item.Status == model.ItemStatusCompleted:
		e.Action = ActionReportFake
		e.Enabled = true
	case claimStatus == model.ClaimStatusPending:
		e.Action = ActionPending
	case claimStatus == model.ClaimStatusAccepted:
		e.Action = ActionAccepted
	case claimStatus == model.ClaimStatusRejected:
		e.Action = ActionRejected
	case pageType == model.ItemTypeLost:
		e.Action = ActionFoundThis
		e.Enabled = true
	default:
		e.Action = ActionClaim
		e.Enabled = true
	}
	return e
}

// TitlesMatch reports whether two item titles fuzzy-match:
// case-insensitive substring containment in either direction. Loose on
// purpose ("Key" matches "Turkey"), kept as the product behaves.
func TitlesMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func matchesAny(title string, candidates []string) bool {
	for _, c := range candidates {
		if TitlesMatch(title, c) {
			return true
		}
	}
	return false
}

func newestFirst(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// byDateDesc orders completed items by their reported date, newest first,
// falling back to creation time. Dates are ISO strings so lexical order
// is chronological.
func byDateDesc(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date > items[j].Date
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
