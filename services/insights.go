package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"otodom-pipeline/models"
	"otodom-pipeline/utils"
)

// InsightService computes summary analytics over the feature table.
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates an InsightService with the given logger.
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate builds a MarketReport from the feature rows.
func (s *InsightService) Generate(rows []*models.FeatureRecord) *models.MarketReport {
	report := &models.MarketReport{
		ListingsByDistrict: make(map[string]int),
	}

	if len(rows) == 0 {
		return report
	}

	report.TotalListings = len(rows)

	var rented []*models.FeatureRecord
	var expiryDays []float64

	for _, r := range rows {
		if r.Expired == 1 {
			report.ExpiredListings++
			if !r.ExpiredDate.IsZero() && !r.Added.IsZero() {
				expiryDays = append(expiryDays, r.ExpiredDate.Sub(r.Added).Hours()/24)
			}
		}
		if !math.IsNaN(r.Rent) && r.Rent > 0 {
			rented = append(rented, r)
		}
		if r.District != "" {
			report.ListingsByDistrict[r.District]++
		}
	}

	if len(rented) > 0 {
		report.MinRent = rented[0].Rent
		report.MaxRent = rented[0].Rent
		report.MostExpensive = rented[0]
		var total float64
		for _, r := range rented {
			total += r.Rent
			if r.Rent < report.MinRent {
				report.MinRent = r.Rent
			}
			if r.Rent > report.MaxRent {
				report.MaxRent = r.Rent
				report.MostExpensive = r
			}
		}
		report.AverageRent = round2(total / float64(len(rented)))
	}

	if len(expiryDays) > 0 {
		var total float64
		for _, d := range expiryDays {
			total += d
		}
		report.AvgDaysToExpiry = round2(total / float64(len(expiryDays)))
	}

	return report
}

// Print renders the report to stdout.
func (s *InsightService) Print(r *models.MarketReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  WARSAW RENTAL MARKET SNAPSHOT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Tracked listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  Expired listings : \033[1m%d\033[0m\n", r.ExpiredListings)
	if r.AvgDaysToExpiry > 0 {
		fmt.Printf("  Avg days on market (expired) : \033[1m%.1f\033[0m\n", r.AvgDaysToExpiry)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Rent Statistics (PLN / month)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AverageRent > 0 {
		fmt.Printf("  Average rent : \033[1;32m%.2f zł\033[0m\n", r.AverageRent)
		fmt.Printf("  Minimum rent : \033[1;32m%.2f zł\033[0m\n", r.MinRent)
		fmt.Printf("  Maximum rent : \033[1;32m%.2f zł\033[0m\n", r.MaxRent)
	} else {
		fmt.Printf("  No rent data available\n")
	}
	fmt.Println()

	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Printf("  District : %s\n", r.MostExpensive.District)
		fmt.Printf("  Rent     : \033[1;31m%.0f zł/month\033[0m\n", r.MostExpensive.Rent)
		fmt.Println()
	}

	fmt.Printf("\033[1;33m  Listings by District\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ListingsByDistrict) == 0 {
		fmt.Printf("  No district data\n")
	} else {
		type distCount struct {
			district string
			count    int
		}
		var dists []distCount
		for d, cnt := range r.ListingsByDistrict {
			dists = append(dists, distCount{d, cnt})
		}
		sort.Slice(dists, func(i, j int) bool {
			if dists[i].count != dists[j].count {
				return dists[i].count > dists[j].count
			}
			return dists[i].district < dists[j].district
		})
		for _, dc := range dists {
			bar := strings.Repeat("█", dc.count)
			fmt.Printf("  %-20s %s (%d)\n", truncate(dc.district, 18), bar, dc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
