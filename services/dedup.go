package services

import (
	"fmt"
	"sort"

	"otodom-pipeline/models"
	"otodom-pipeline/utils"
)

// Deduplicator collapses repeated observations of the same listing (matched
// by title) into one canonical record: attributes from the most recent
// snapshot, first-appearance date from the earliest one.
type Deduplicator struct {
	logger *utils.Logger
	cutoff string // earliest reliable added date, "YYYY-MM-DD" parsed at New time
}

// NewDeduplicator creates a Deduplicator. cutoff is the earliest reliable
// added date (records before it are either corrected from their last-update
// date or discarded).
func NewDeduplicator(logger *utils.Logger, cutoff string) (*Deduplicator, error) {
	if t := ParseDate(dashesToDots(cutoff)); t.IsZero() {
		return nil, fmt.Errorf("dedup: invalid cutoff date %q", cutoff)
	}
	return &Deduplicator{logger: logger, cutoff: cutoff}, nil
}

func dashesToDots(isoDate string) string {
	// "2024-12-01" → "01.12.2024"
	if len(isoDate) != 10 {
		return isoDate
	}
	return isoDate[8:10] + "." + isoDate[5:7] + "." + isoDate[0:4]
}

// Deduplicate parses record dates, corrects pre-cutoff appearance dates from
// the update timestamp, drops records still outside the reliable window, and
// merges each title group into a single canonical record. The output is
// sorted by (added date, link). A duplicate link among the merged records
// indicates a dedup logic defect and is returned as a fatal error.
func (d *Deduplicator) Deduplicate(records []*models.Record) ([]*models.Record, error) {
	cutoff := ParseDate(dashesToDots(d.cutoff))

	kept := make([]*models.Record, 0, len(records))
	discarded := 0
	for _, r := range records {
		r.Added = ParseDate(r.AddedRaw)
		r.LastUpdate = ParseDate(r.LastUpdateRaw)
		if r.ExpiredDateRaw != "" {
			r.ExpiredDate = ParseDate(r.ExpiredDateRaw)
		}

		// Appearance dates before the cutover are unreliable; the update
		// timestamp is the better estimate when present. An unparseable
		// added date gets no backfill and falls out with the pre-cutoff rows.
		if !r.Added.IsZero() && r.Added.Before(cutoff) && !r.LastUpdate.IsZero() {
			r.Added = r.LastUpdate
			r.AddedRaw = r.LastUpdateRaw
		}
		if r.Added.Before(cutoff) {
			discarded++
			continue
		}
		kept = append(kept, r)
	}

	groups := make(map[string][]*models.Record)
	order := make([]string, 0, len(kept))
	for _, r := range kept {
		if _, seen := groups[r.Title]; !seen {
			order = append(order, r.Title)
		}
		groups[r.Title] = append(groups[r.Title], r)
	}

	merged := make([]*models.Record, 0, len(groups))
	for _, title := range order {
		merged = append(merged, mergeGroup(groups[title]))
	}

	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].Added.Equal(merged[j].Added) {
			return merged[i].Added.Before(merged[j].Added)
		}
		return merged[i].Link < merged[j].Link
	})

	if err := checkUniqueLinks(merged); err != nil {
		return nil, err
	}

	d.logger.Info("[dedup] %d records → %d canonical listings (%d before cutoff %s)",
		len(records), len(merged), discarded, d.cutoff)
	return merged, nil
}

// mergeGroup folds one title group into a single record: the snapshot with
// the latest added date wins every attribute except the added date itself,
// which is the earliest across the group. Added-date ties break on link so
// the fold is deterministic.
func mergeGroup(group []*models.Record) *models.Record {
	latest := group[0]
	earliest := group[0].Added
	earliestRaw := group[0].AddedRaw

	for _, r := range group[1:] {
		if r.Added.After(latest.Added) ||
			(r.Added.Equal(latest.Added) && r.Link > latest.Link) {
			latest = r
		}
		if r.Added.Before(earliest) {
			earliest = r.Added
			earliestRaw = r.AddedRaw
		}
	}

	out := *latest
	out.Added = earliest
	out.AddedRaw = earliestRaw
	return &out
}

func checkUniqueLinks(records []*models.Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.Link]; dup {
			return fmt.Errorf("dedup: duplicate link %q after deduplication", r.Link)
		}
		seen[r.Link] = struct{}{}
	}
	return nil
}
