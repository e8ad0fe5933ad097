package views

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jinzhu/now"
	"github.com/matsen/citeline/internal/normalize"
	"github.com/matsen/citeline/internal/reference"
)

// BucketTimeFormat renders bucket labels, e.g. 2016-12-31T00:00:00.000Z.
const BucketTimeFormat = "2006-01-02T15:04:05.000Z"

// YearBucket counts the articles published in one calendar year.
type YearBucket struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Label returns the time stamp a bucket is keyed by: midnight UTC on the last
// day of its year. Keys are ISO-8601 only for years 0 through 9999; other
// years are formatted as-is, e.g. "-0005-12-31T00:00:00.000Z".
func (b YearBucket) Label() time.Time {
	jan1 := time.Date(b.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return now.With(now.With(jan1).EndOfYear()).BeginningOfDay()
}

// Series is a sparse yearly time series, ascending by year.
type Series []YearBucket

// Total returns the sum of all bucket counts.
func (s Series) Total() int {
	total := 0
	for _, b := range s {
		total += b.Count
	}
	return total
}

// MarshalJSON encodes the series as an object of ISO-8601 labels to counts,
// in ascending year order.
func (s Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(b.Label().Format(BucketTimeFormat))
		buf.WriteString(`":`)
		buf.WriteString(strconv.Itoa(b.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BuildTimeSeries counts articles per publication year. Articles without a
// year are excluded; years without articles produce no bucket. Dates are fully
// resolved, so a malformed month or day fails the series too.
func BuildTimeSeries(articles []reference.Article) (Series, error) {
	series, _, err := buildTimeSeries(articles)
	return series, err
}

func buildTimeSeries(articles []reference.Article) (Series, int, error) {
	counts := make(map[int]int)
	skipped := 0
	for _, a := range articles {
		date, err := normalize.ResolveDate(a.PubDate)
		if errors.Is(err, normalize.ErrMissingYear) {
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("article %s: %w", a.PMID, err)
		}
		counts[date.Year]++
	}

	series := make(Series, 0, len(counts))
	for year, count := range counts {
		series = append(series, YearBucket{Year: year, Count: count})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Year < series[j].Year
	})
	return series, skipped, nil
}
