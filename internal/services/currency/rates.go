package currency

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"fintrack/internal/models"
)

// DefaultRatesURL is the ECB daily euro foreign exchange reference rates feed
const DefaultRatesURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// BaseCurrency is the currency the reference rates are quoted against
const BaseCurrency = "EUR"

// Rates are units of each currency per one euro on a given day
type Rates struct {
	Date  models.Date
	Rates map[string]decimal.Decimal
}

// Currencies lists the known currency codes, base included, sorted
func (r *Rates) Currencies() []string {
	codes := make([]string, 0, len(r.Rates)+1)
	codes = append(codes, BaseCurrency)
	for code := range r.Rates {
		if code != BaseCurrency {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// Rate returns units of code per euro
func (r *Rates) Rate(code string) (decimal.Decimal, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == BaseCurrency {
		return decimal.NewFromInt(1), true
	}
	rate, ok := r.Rates[code]
	return rate, ok
}

// Convert converts amount from one currency to another through the euro
func (r *Rates) Convert(amount float64, from, to string) (float64, error) {
	fromRate, ok := r.Rate(from)
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", from)
	}
	toRate, ok := r.Rate(to)
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", to)
	}
	if fromRate.IsZero() {
		return 0, fmt.Errorf("zero rate for %q", from)
	}

	eur := decimal.NewFromFloat(amount).DivRound(fromRate, 16)
	return eur.Mul(toRate).InexactFloat64(), nil
}

// RatesClient fetches reference rates over HTTP
type RatesClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewRatesClient creates a client for the feed at url, or DefaultRatesURL when empty
func NewRatesClient(url string, log *logrus.Logger) *RatesClient {
	if url == "" {
		url = DefaultRatesURL
	}
	return &RatesClient{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Latest downloads and parses the current rates
func (c *RatesClient) Latest(ctx context.Context) (*Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debugf("rates XML response: %d bytes", len(body))

	rates, err := ParseRates(body)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"date":       rates.Date.String(),
		"currencies": len(rates.Rates),
	}).Info("Retrieved exchange rates")
	return rates, nil
}

// ParseRates reads the ECB eurofxref XML document
func ParseRates(data []byte) (*Rates, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	cubes := doc.FindElements("//Cube[@currency]")
	if len(cubes) == 0 {
		return nil, fmt.Errorf("no exchange rates found in XML")
	}

	rates := &Rates{Rates: make(map[string]decimal.Decimal, len(cubes))}
	if day := doc.FindElement("//Cube[@time]"); day != nil {
		date, err := models.ParseDate(day.SelectAttrValue("time", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to parse rates date: %w", err)
		}
		rates.Date = date
	}

	for _, cube := range cubes {
		code := strings.ToUpper(cube.SelectAttrValue("currency", ""))
		rate, err := decimal.NewFromString(cube.SelectAttrValue("rate", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %w", code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("non-positive rate for %s", code)
		}
		rates.Rates[code] = rate
	}
	return rates, nil
}
