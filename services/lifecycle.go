package services

import (
	"fmt"

	"otodom-pipeline/models"
	"otodom-pipeline/utils"
)

// LifecycleFilter retains expired listings whose lifetime (days between first
// appearance and expiration) falls inside a duration window. Both window ends
// are inclusive.
type LifecycleFilter struct {
	logger *utils.Logger
}

// NewLifecycleFilter creates a LifecycleFilter with the given logger.
func NewLifecycleFilter(logger *utils.Logger) *LifecycleFilter {
	return &LifecycleFilter{logger: logger}
}

// MarkExpired flips active records whose link the expiry sweep reported gone
// to expired state, stamping the given date as the expiration date. Records
// already expired keep their original expiration date. Returns the number of
// records marked.
func (f *LifecycleFilter) MarkExpired(records []*models.Record, gone map[string]bool, date string) int {
	marked := 0
	for _, r := range records {
		if r.Expired == 1 || !gone[r.Link] {
			continue
		}
		r.Expired = 1
		r.ExpiredDateRaw = date
		r.ExpiredDate = ParseDate(date)
		marked++
	}
	f.logger.Info("[lifecycle] Marked %d listings as expired", marked)
	return marked
}

// FilterExpired keeps records with expired==1 whose expiration happened
// between durationStart and durationEnd days (inclusive) after the added
// date. An expired record with an unparseable expired date indicates an
// upstream defect and is surfaced as an error rather than silently coerced.
func (f *LifecycleFilter) FilterExpired(records []*models.Record, durationStart, durationEnd int) ([]*models.Record, error) {
	out := make([]*models.Record, 0, len(records))

	for _, r := range records {
		if r.Expired != 1 {
			continue
		}

		if r.ExpiredDate.IsZero() {
			r.ExpiredDate = ParseDate(r.ExpiredDateRaw)
		}
		if r.ExpiredDate.IsZero() {
			return nil, fmt.Errorf("lifecycle: expired record %q has unparseable expired date %q",
				r.Link, r.ExpiredDateRaw)
		}

		days := int(r.ExpiredDate.Sub(r.Added).Hours() / 24)
		if days >= durationStart && days <= durationEnd {
			out = append(out, r)
		}
	}

	f.logger.Info("[lifecycle] %d of %d records expired within [%d, %d] days",
		len(out), len(records), durationStart, durationEnd)
	return out, nil
}
