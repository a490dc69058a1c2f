package services

import (
	"math"
	"strconv"
	"strings"

	"otodom-pipeline/models"
	"otodom-pipeline/utils"
)

// Preparer turns raw scrape-time observations into master-dataset records:
// district extraction, announcement-date splitting, coordinate typing. Rows
// that cannot be placed in a Warsaw district are dropped.
type Preparer struct {
	logger *utils.Logger
}

// NewPreparer creates a Preparer with the given logger.
func NewPreparer(logger *utils.Logger) *Preparer {
	return &Preparer{logger: logger}
}

// Prepare converts a scrape batch into records ready for appending to the
// master dataset. New records start life active (expired=0, no expired date).
func (p *Preparer) Prepare(raw []*models.RawObservation) []*models.Record {
	records := make([]*models.Record, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		district, ok := FindDistrict(r.Location)
		if !ok {
			p.logger.Debug("[prepare] No Warsaw district in %q, dropping %s", r.Location, r.Link)
			dropped++
			continue
		}

		rec := &models.Record{
			AddedRaw:      ExtractAddedDate(r.AnnouncementDate),
			LastUpdateRaw: ExtractLastUpdate(r.AnnouncementDate),

			Link:  strings.TrimSpace(r.Link),
			Title: strings.TrimSpace(r.Title),

			Expired: 0,

			District: district,
			Location: r.Location,

			RentPrice:       r.RentPrice,
			AdditionalFees:  r.AdditionalFees,
			AreaRoomNum:     r.AreaRoomNum,
			Floor:           r.Floor,
			BuildingType:    r.BuildingType,
			ExtraSpace:      r.ExtraSpace,
			FlatCondition:   r.FlatCondition,
			AdvertiserType:  r.AdvertiserType,
			StudentsAllowed: r.StudentsAllowed,
			Furnishings:     r.Furnishings,
			ElevatorRaw:     r.Elevator,
			Parking:         r.Parking,
			YearConstructed: r.YearConstructed,
			AdditionalInfo:  r.AdditionalInfo,
			Heating:         r.Heating,
			Security:        r.Security,
			Safeguards:      r.Safeguards,
			Equipment:       r.Equipment,
			Utilities:       r.Utilities,
			AvailableFrom:   r.AvailableFrom,
			Deposit:         r.Deposit,
			Description:     r.Description,

			Latitude:  parseCoordinate(r.Latitude),
			Longitude: parseCoordinate(r.Longitude),
		}

		records = append(records, rec)
	}

	p.logger.Info("[prepare] Prepared %d of %d observations (%d outside Warsaw)",
		len(records), len(raw), dropped)
	return records
}

func parseCoordinate(raw string) float64 {
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return val
}
