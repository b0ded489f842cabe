package api

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/damon-houk/ezv-rates/internal/apperrors"
	"github.com/damon-houk/ezv-rates/internal/domain/entity"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// The documents declare a default namespace on the root element; stripping
// it keeps all element lookups unqualified.
var xmlnsPattern = regexp.MustCompile(` xmlns=[^>]+>`)

// EZVClient implements the RateSource interface against the EZV rate service
type EZVClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewEZVClient creates a new EZV rate service client
func NewEZVClient(baseURL string, httpClient *http.Client, log logger.Logger) *EZVClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &EZVClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     log,
	}
}

// dailyDocument represents the "one day, all currencies" response shape
type dailyDocument struct {
	Date    string      `xml:"datum"`
	Entries []dailyRate `xml:"devise"`
}

type dailyRate struct {
	Code    string `xml:"code,attr"`
	Label   string `xml:"waehrung"`
	Rate    string `xml:"kurs"`
	Country string `xml:"land_en"`
}

// monthlyDocument represents the "one currency, one month" response shape
type monthlyDocument struct {
	Entries []monthlyRate `xml:"kurs"`
}

type monthlyRate struct {
	Label string `xml:"waehrung"`
	Date  string `xml:"datum"`
	Value string `xml:"wert"`
}

// FetchDaily retrieves the full rate snapshot published for one day
func (c *EZVClient) FetchDaily(ctx context.Context, day time.Time) ([]entity.Rate, error) {
	reqURL := fmt.Sprintf("%s?activeSearchType=userDefinedDay&d=%s", c.baseURL, day.Format("20060102"))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var doc dailyDocument
	if err := unmarshalStripped(body, &doc); err != nil {
		return nil, c.parseFailure(reqURL, body, err)
	}

	rates := make([]entity.Rate, 0, len(doc.Entries))
	if len(doc.Entries) == 0 {
		return rates, nil
	}

	// One report date for the whole document
	date, err := time.Parse("2006-01-02", doc.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid document date %q: %w", doc.Date, err)
	}

	for _, e := range doc.Entries {
		units, code, err := splitLabel(e.Label)
		if err != nil {
			return nil, err
		}

		// The label's code and the entry's own attribute must agree
		if !strings.EqualFold(code, e.Code) {
			return nil, fmt.Errorf("%w: label code %q does not match entry code %q", apperrors.ErrDataIntegrity, code, e.Code)
		}

		price, err := perUnitPrice(e.Rate, units)
		if err != nil {
			return nil, err
		}

		rates = append(rates, entity.Rate{
			Date:     date,
			Symbol:   code,
			Country:  e.Country,
			Price:    price,
			Currency: entity.HomeCurrency,
		})
	}

	return rates, nil
}

// FetchMonthly retrieves all daily rates of one currency for one calendar month
func (c *EZVClient) FetchMonthly(ctx context.Context, symbol string, month time.Time) ([]entity.Rate, error) {
	reqURL := fmt.Sprintf("%s?activeSearchType=month&d=%s&w=%s",
		c.baseURL,
		month.Format("200601"),
		url.QueryEscape(strings.ToLower(symbol)))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var doc monthlyDocument
	if err := unmarshalStripped(body, &doc); err != nil {
		return nil, c.parseFailure(reqURL, body, err)
	}

	rates := make([]entity.Rate, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		units, code, err := splitLabel(e.Label)
		if err != nil {
			return nil, err
		}

		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid rate date %q: %w", e.Date, err)
		}

		price, err := perUnitPrice(e.Value, units)
		if err != nil {
			return nil, err
		}

		rates = append(rates, entity.Rate{
			Date:     date,
			Symbol:   code,
			Price:    price,
			Currency: entity.HomeCurrency,
		})
	}

	return rates, nil
}

// get executes a request and returns the raw response body
func (c *EZVClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("Requesting rate document", map[string]interface{}{
		"url": reqURL,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{URL: reqURL, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// parseFailure reports the offending URL and raw body before the error
// propagates, since the body is the only evidence of what the source sent
func (c *EZVClient) parseFailure(reqURL string, body []byte, err error) error {
	c.logger.Error("Failed to parse rate document", map[string]interface{}{
		"url":   reqURL,
		"body":  string(body),
		"error": err.Error(),
	})

	return &ParseError{URL: reqURL, Body: string(body), Err: err}
}

func unmarshalStripped(body []byte, v interface{}) error {
	return xml.Unmarshal(xmlnsPattern.ReplaceAll(body, []byte(">")), v)
}

// splitLabel splits a currency label like "100 JPY" into the units
// multiplier and the currency code
func splitLabel(label string) (string, string, error) {
	fields := strings.Fields(label)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("%w: malformed currency label %q", apperrors.ErrDataIntegrity, label)
	}
	return fields[0], fields[1], nil
}

// perUnitPrice converts a raw quoted value into a per-single-unit price
func perUnitPrice(raw, units string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid rate value %q: %w", raw, err)
	}

	unitCount, err := decimal.NewFromString(units)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid units value %q: %w", units, err)
	}

	if unitCount.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: zero units in currency label", apperrors.ErrDataIntegrity)
	}

	return value.Div(unitCount), nil
}
