package steam

import (
	"time"

	"github.com/MrWong99/steamscout/internal/catalog"
)

// The Steam responses below are the only place loosely-typed upstream JSON
// exists in the codebase. Everything is coerced into [catalog.Record] here
// so the engine never sees a missing key or an odd shape.

// appListResponse is the body of GET /ISteamApps/GetAppList/v2/.
type appListResponse struct {
	AppList struct {
		Apps []appEntry `json:"apps"`
	} `json:"applist"`
}

// appEntry is one row of the app list: the full ID and name universe, with
// no pricing or genre data.
type appEntry struct {
	AppID catalog.AppID `json:"appid"`
	Name  string        `json:"name"`
}

// appDetailsEnvelope is one value of the appdetails response object, which
// is keyed by the appid rendered as a string. Success false means the store
// has no sellable page for the app.
type appDetailsEnvelope struct {
	Success bool           `json:"success"`
	Data    appDetailsData `json:"data"`
}

type appDetailsData struct {
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	ShortDescription string            `json:"short_description"`
	IsFree           bool              `json:"is_free"`
	Developers       []string          `json:"developers"`
	Publishers       []string          `json:"publishers"`
	PriceOverview    *priceOverview    `json:"price_overview"`
	Genres           []tagged          `json:"genres"`
	Categories       []tagged          `json:"categories"`
	Metacritic       *metacriticBlock  `json:"metacritic"`
	Recommendations  *recommendsBlock  `json:"recommendations"`
	ReleaseDate      releaseDateBlock  `json:"release_date"`
}

// priceOverview carries prices in integer cents of the store currency.
type priceOverview struct {
	Initial         int64 `json:"initial"`
	Final           int64 `json:"final"`
	DiscountPercent int   `json:"discount_percent"`
}

type tagged struct {
	Description string `json:"description"`
}

type metacriticBlock struct {
	Score float64 `json:"score"`
}

type recommendsBlock struct {
	Total int64 `json:"total"`
}

type releaseDateBlock struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

// featuredResponse is the slice of GET /featuredcategories the accessor
// consumes: the ids of the current sale listing.
type featuredResponse struct {
	Specials struct {
		Items []struct {
			ID catalog.AppID `json:"id"`
		} `json:"items"`
	} `json:"specials"`
}

// releaseDateLayouts are the display formats Steam renders dates in. The
// store localises; these cover the English variants. Anything else (including
// "Coming soon" and bare years) coerces to an unknown date.
var releaseDateLayouts = []string{
	"Jan 2, 2006",
	"2 Jan, 2006",
}

func parseReleaseDate(block releaseDateBlock) time.Time {
	if block.ComingSoon || block.Date == "" {
		return time.Time{}
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, block.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// toRecord coerces one appdetails payload into the normalized record shape.
// Missing optional fields stay observable: nil rating and popularity, zero
// release date. Free and unpriced apps carry a zero price.
func toRecord(id catalog.AppID, data appDetailsData) catalog.Record {
	rec := catalog.Record{
		ID:         id,
		Name:       data.Name,
		IsFree:     data.IsFree,
		Summary:    data.ShortDescription,
		Developers: data.Developers,
		Publishers: data.Publishers,

		ReleaseDate: parseReleaseDate(data.ReleaseDate),
	}
	if data.PriceOverview != nil {
		rec.PriceCents = data.PriceOverview.Final
		rec.InitialPriceCents = data.PriceOverview.Initial
		rec.DiscountPercent = data.PriceOverview.DiscountPercent
	}
	for _, g := range data.Genres {
		if g.Description != "" {
			rec.Genres = append(rec.Genres, g.Description)
		}
	}
	for _, c := range data.Categories {
		if c.Description != "" {
			rec.Tags = append(rec.Tags, c.Description)
		}
	}
	if data.Metacritic != nil {
		score := data.Metacritic.Score
		rec.Rating = &score
	}
	if data.Recommendations != nil {
		total := data.Recommendations.Total
		rec.Popularity = &total
	}
	return rec
}
