// Package calendar resolves trading schedules for assets. Crypto trades every
// calendar day; commodities and indices follow their exchange calendar plus
// any ad-hoc closures recorded in the holidays table.
package calendar

import (
	"context"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	scm "github.com/scmhub/calendar"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/asset-horizon/internal/engine"
	"github.com/yourusername/asset-horizon/internal/models"
)

// HolidaySource lists the stored closures for one exchange.
type HolidaySource interface {
	ListHolidays(ctx context.Context, exchange string) ([]models.ExchangeHoliday, error)
}

// micByExchange maps the exchange names carried on assets to ISO 10383 MICs
// understood by scmhub/calendar.
var micByExchange = map[string]string{
	"NYSE":     "xnys",
	"NASDAQ":   "xnas",
	"LSE":      "xlon",
	"XETRA":    "xfra",
	"EURONEXT": "xpar",
	"TSE":      "xtks",
	"HKEX":     "xhkg",
	"ASX":      "xasx",
	"SIX":      "xswx",
	"TSX":      "xtse",
	"CME":      "xnys",
	"COMEX":    "xnys",
	"NYMEX":    "xnys",
	"ICE":      "xnys",
}

// Provider builds per-asset trading day predicates, caching holiday sets so a
// full recompute run hits the database once per exchange.
type Provider struct {
	source HolidaySource
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewProvider creates a Provider. source may be nil, in which case only the
// library calendars are consulted.
func NewProvider(source HolidaySource, logger *logrus.Logger) *Provider {
	return &Provider{
		source: source,
		cache:  cache.New(1*time.Hour, 2*time.Hour),
		logger: logger,
	}
}

// TradingDayFn returns the predicate the engine uses to decide which calendar
// days the asset is expected to trade on.
func (p *Provider) TradingDayFn(ctx context.Context, asset *models.Asset) (engine.TradingDayFn, error) {
	if asset.AssetType == models.AssetTypeCrypto {
		return engine.AllDaysTrading, nil
	}

	closures, err := p.holidaySet(ctx, asset.Exchange)
	if err != nil {
		return nil, err
	}

	cal := p.exchangeCalendar(asset.Exchange)
	return func(date time.Time) bool {
		if _, closed := closures[models.Day(date).Unix()]; closed {
			return false
		}
		if cal != nil {
			return cal.IsBusinessDay(date.In(cal.Loc))
		}
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}, nil
}

func (p *Provider) exchangeCalendar(exchange string) *scm.Calendar {
	mic, ok := micByExchange[strings.ToUpper(exchange)]
	if !ok {
		mic = "xnys"
	}
	cal := scm.GetCalendar(mic)
	if cal == nil {
		cal = scm.GetCalendar("xnys")
	}
	if cal == nil && p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"exchange": exchange,
			"mic":      mic,
		}).Warn("No exchange calendar available, falling back to Mon-Fri")
	}
	return cal
}

func (p *Provider) holidaySet(ctx context.Context, exchange string) (map[int64]struct{}, error) {
	if p.source == nil || exchange == "" {
		return nil, nil
	}
	if cached, found := p.cache.Get(exchange); found {
		return cached.(map[int64]struct{}), nil
	}

	holidays, err := p.source.ListHolidays(ctx, exchange)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(holidays))
	for _, h := range holidays {
		set[models.Day(h.Date).Unix()] = struct{}{}
	}
	p.cache.Set(exchange, set, cache.DefaultExpiration)
	return set, nil
}
