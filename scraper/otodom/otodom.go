package otodom

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"otodom-pipeline/config"
	"otodom-pipeline/models"
	"otodom-pipeline/utils"
)

var pageParamRegexp = regexp.MustCompile(`&page=[^&]*`)

// Scraper collects rental announcements from otodom.pl search results: it
// walks the paginated listing, then visits each announcement page and
// extracts the attribute table, coordinates and description.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	pool    *utils.WorkerPool
	visited *utils.LinkSet
	retry   *utils.RetryConfig

	mu  sync.Mutex
	obs []*models.RawObservation
}

// New creates a ready-to-use otodom Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visited: utils.NewLinkSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// browserContext builds a headless browser context shared by the page visits
// of one scrape or expiry sweep. The returned cancel tears the browser down.
func (s *Scraper) browserContext() (context.Context, context.CancelFunc) {
	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[otodom] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

// Scrape drives pagination and announcement-page scraping. knownLinks are
// skipped entirely (already in the master dataset).
func (s *Scraper) Scrape(knownLinks []string) ([]*models.RawObservation, error) {
	for _, l := range knownLinks {
		s.visited.Add(l)
	}

	allocCtx, cancel := s.browserContext()
	defer cancel()

	links, err := s.collectAnnouncementLinks(allocCtx)
	if err != nil {
		return nil, fmt.Errorf("otodom: collect links: %w", err)
	}
	s.logger.Info("[otodom] Found %d new announcement links", len(links))

	for _, link := range links {
		l := link
		s.pool.Submit(func() {
			obs, err := s.scrapeAnnouncement(allocCtx, l)
			if err != nil {
				s.logger.Warn("[otodom] Announcement failed for %s: %v", l, err)
				return
			}
			s.mu.Lock()
			s.obs = append(s.obs, obs)
			s.mu.Unlock()
		})
	}
	s.pool.Wait()

	s.logger.Info("[otodom] Scrape complete: %d raw observations", len(s.obs))
	return s.obs, nil
}

// collectAnnouncementLinks walks the paginated search results until a page
// without results appears, gathering unseen announcement links.
func (s *Scraper) collectAnnouncementLinks(allocCtx context.Context) ([]string, error) {
	var links []string

	for page := 1; page <= s.cfg.MaxPages; page++ {
		pageURL := pageParamRegexp.ReplaceAllString(s.cfg.SearchURL, fmt.Sprintf("&page=%d", page))

		var pageLinks []string
		var noResults bool

		err := s.retry.Do(fmt.Sprintf("search-page-%d", page), func() error {
			ctx, cancel := chromedp.NewContext(allocCtx)
			defer cancel()

			ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
			defer cancelTimeout()

			return chromedp.Run(ctx,
				chromedp.Navigate(pageURL),
				chromedp.Sleep(3*time.Second),
				chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
				chromedp.Sleep(2*time.Second),
				chromedp.Evaluate(`!!document.querySelector('div[data-cy="no-search-results"]')`, &noResults),
				chromedp.Evaluate(`
					Array.from(document.querySelectorAll('a[data-cy="listing-item-link"]'))
						.map(function(a) { return a.href; })
				`, &pageLinks),
			)
		})
		if err != nil {
			return nil, err
		}
		if noResults {
			break
		}

		added := 0
		for _, l := range pageLinks {
			if s.visited.Add(l) {
				links = append(links, l)
				added++
			}
		}
		s.logger.Info("[otodom] Page %d: %d links (%d new)", page, len(pageLinks), added)

		time.Sleep(time.Duration(s.cfg.RateLimitMs) * time.Millisecond)
	}

	return links, nil
}

// scrapeAnnouncement visits one announcement page and extracts every raw
// field of the observation.
func (s *Scraper) scrapeAnnouncement(allocCtx context.Context, link string) (*models.RawObservation, error) {
	obs := &models.RawObservation{Link: link, ScrapedAt: time.Now()}

	err := s.retry.Do("announcement-page", func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		type adData struct {
			Title            string `json:"title"`
			Location         string `json:"location"`
			AnnouncementDate string `json:"announcementDate"`
			RentPrice        string `json:"rentPrice"`
			AdditionalFees   string `json:"additionalFees"`
			AreaRoomNum      string `json:"areaRoomNum"`
			Floor            string `json:"floor"`
			BuildingType     string `json:"buildingType"`
			ExtraSpace       string `json:"extraSpace"`
			FlatCondition    string `json:"flatCondition"`
			AdvertiserType   string `json:"advertiserType"`
			StudentsAllowed  string `json:"studentsAllowed"`
			Furnishings      string `json:"furnishings"`
			Elevator         string `json:"elevator"`
			Parking          string `json:"parking"`
			YearConstructed  string `json:"yearConstructed"`
			AdditionalInfo   string `json:"additionalInfo"`
			Heating          string `json:"heating"`
			Security         string `json:"security"`
			Safeguards       string `json:"safeguards"`
			Equipment        string `json:"equipment"`
			Utilities        string `json:"utilities"`
			AvailableFrom    string `json:"availableFrom"`
			Deposit          string `json:"deposit"`
			Latitude         string `json:"latitude"`
			Longitude        string `json:"longitude"`
			Approximate      bool   `json:"approximate"`
			Description      string `json:"description"`
		}

		var ad adData

		err := chromedp.Run(ctx,
			chromedp.Navigate(link),
			chromedp.Sleep(3*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			// descriptions are collapsed behind a show-more button
			chromedp.Evaluate(`
				(function() {
					var btns = document.querySelectorAll('button');
					for (var i = 0; i < btns.length; i++) {
						if (btns[i].innerText.indexOf('Pokaż więcej') >= 0) { btns[i].click(); }
					}
				})()
			`, nil),
			chromedp.Sleep(time.Second),

			chromedp.Evaluate(`
				(function() {
					function byTestID(name) {
						var el = document.querySelector('[data-testid="table-value-' + name + '"]');
						var text = el ? el.innerText.trim() : '';
						return text === 'brak informacji' ? '' : text;
					}
					function byAria(label, tag) {
						var el = document.querySelector((tag || 'div') + '[aria-label="' + label + '"]');
						return el ? el.innerText.trim() : '';
					}

					var result = {
						title:  byAria('Tytuł ogłoszenia', 'h1') || (document.querySelector('h1') ? document.querySelector('h1').innerText.trim() : ''),
						location: byAria('Adres', 'a'),
						rentPrice: byAria('Cena', 'strong'),
						additionalFees: byTestID('rent'),
						areaRoomNum: byTestID('area') + ' ' + byTestID('rooms_num'),
						floor: byTestID('floor'),
						buildingType: byTestID('building_type'),
						extraSpace: byTestID('outdoor'),
						flatCondition: byTestID('construction_status'),
						advertiserType: byTestID('advertiser_type'),
						studentsAllowed: byTestID('rent_to_students'),
						furnishings: byTestID('equipment_types'),
						elevator: byTestID('lift'),
						parking: byTestID('car'),
						yearConstructed: byTestID('build_year'),
						additionalInfo: byTestID('extras_types'),
						heating: byTestID('heating'),
						security: byTestID('security_types'),
						safeguards: byTestID('security'),
						equipment: byTestID('equipment_types'),
						utilities: byTestID('media_types'),
						availableFrom: byTestID('free_from'),
						deposit: byTestID('deposit'),
						latitude: '', longitude: '', approximate: false,
						announcementDate: '', description: ''
					};

					// added / updated dates live in the ad-info section
					var dateLines = [];
					document.querySelectorAll('div, p').forEach(function(el) {
						var t = el.innerText || '';
						if ((t.indexOf('Dodano:') === 0 || t.indexOf('Aktualizacja:') === 0) && t.length < 60) {
							dateLines.push(t.split('\n')[0]);
						}
					});
					result.announcementDate = dateLines.join('\n');

					// coordinates come from the Google Maps link next to the map
					var mapLink = document.querySelector('a[title^="Pokaż ten obszar w Mapach Google"]');
					if (mapLink && mapLink.href) {
						var m = mapLink.href.match(/ll=([^,]+),([^&]+)/);
						if (m) { result.latitude = m[1]; result.longitude = m[2]; }
					}
					var approxText = 'ogłoszeniodawca nie wskazał dokładnego adresu';
					result.approximate = (document.body.innerText || '').indexOf(approxText) >= 0;

					var desc = document.querySelector('div[data-cy="adPageAdDescription"]');
					if (desc) { result.description = desc.innerText.trim(); }

					return result;
				})()
			`, &ad),
		)
		if err != nil {
			return fmt.Errorf("chromedp announcement extract: %w", err)
		}

		obs.Title = ad.Title
		obs.Location = ad.Location
		obs.AnnouncementDate = ad.AnnouncementDate
		obs.RentPrice = ad.RentPrice
		obs.AdditionalFees = ad.AdditionalFees
		obs.AreaRoomNum = strings.TrimSpace(ad.AreaRoomNum)
		obs.Floor = ad.Floor
		obs.BuildingType = ad.BuildingType
		obs.ExtraSpace = ad.ExtraSpace
		obs.FlatCondition = ad.FlatCondition
		obs.AdvertiserType = ad.AdvertiserType
		obs.StudentsAllowed = ad.StudentsAllowed
		obs.Furnishings = ad.Furnishings
		obs.Elevator = ad.Elevator
		obs.Parking = ad.Parking
		obs.YearConstructed = ad.YearConstructed
		obs.AdditionalInfo = ad.AdditionalInfo
		obs.Heating = ad.Heating
		obs.Security = ad.Security
		obs.Safeguards = ad.Safeguards
		obs.Equipment = ad.Equipment
		obs.Utilities = ad.Utilities
		obs.AvailableFrom = ad.AvailableFrom
		obs.Deposit = ad.Deposit
		obs.Latitude = ad.Latitude
		obs.Longitude = ad.Longitude
		obs.ApproximateCoord = ad.Approximate
		obs.Description = ad.Description

		return nil
	})

	return obs, err
}

// CheckExpired visits known announcement links and reports which ones no
// longer resolve to an active listing. Links that fail to load are not
// reported either way.
func (s *Scraper) CheckExpired(links []string) map[string]bool {
	expired := make(map[string]bool, len(links))
	if len(links) == 0 {
		return expired
	}

	allocCtx, cancel := s.browserContext()
	defer cancel()

	var mu sync.Mutex

	for _, link := range links {
		l := link
		s.pool.Submit(func() {
			ctx, cancel := chromedp.NewContext(allocCtx)
			defer cancel()
			ctx, cancelTimeout := context.WithTimeout(ctx, 30*time.Second)
			defer cancelTimeout()

			var gone bool
			err := chromedp.Run(ctx,
				chromedp.Navigate(l),
				chromedp.Sleep(2*time.Second),
				chromedp.Evaluate(`
					(document.body.innerText || '').indexOf('Ogłoszenie wygasło') >= 0 ||
					!!document.querySelector('div[data-cy="expired-ad"]')
				`, &gone),
			)
			if err != nil {
				s.logger.Warn("[otodom] Expiry check failed for %s: %v", l, err)
				return
			}
			mu.Lock()
			expired[l] = gone
			mu.Unlock()
		})
	}
	s.pool.Wait()
	return expired
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
