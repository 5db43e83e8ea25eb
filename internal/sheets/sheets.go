// Package sheets pulls inventory rows from a Google Sheets range over its
// REST values API. The feed is best-effort display data: any failure, from
// transport to a malformed payload, yields the hardcoded fallback list
// instead of an error.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://sheets.googleapis.com"

type StockRecord struct {
	Model string `json:"model"`
	Stock int    `json:"stock"`
	Sales int    `json:"sales"`
}

// fallbackStock mirrors the last known catalog snapshot; served whenever
// the live sheet cannot be read.
var fallbackStock = []StockRecord{
	{Model: "Oversized Tee", Stock: 120, Sales: 45},
	{Model: "Graphic Hoodie", Stock: 80, Sales: 30},
	{Model: "Classic Cap", Stock: 200, Sales: 75},
	{Model: "Basic Joggers", Stock: 60, Sales: 25},
}

type Service struct {
	baseURL       string
	apiKey        string
	spreadsheetID string
	readRange     string
	http          *http.Client
}

func NewService(baseURL, apiKey, spreadsheetID, readRange string) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Service{
		baseURL:       baseURL,
		apiKey:        apiKey,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

type valuesResponse struct {
	Values [][]string `json:"values"`
}

// FetchStock returns the sheet's rows mapped to stock records, or the
// fallback list. It never returns an error; failures are logged only.
func (s *Service) FetchStock(ctx context.Context) []StockRecord {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?key=%s",
		s.baseURL,
		url.PathEscape(s.spreadsheetID),
		url.PathEscape(s.readRange),
		url.QueryEscape(s.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Printf("sheets request build failed: %v", err)
		return fallbackStock
	}

	resp, err := s.http.Do(req)
	if err != nil {
		log.Printf("sheets fetch failed: %v", err)
		return fallbackStock
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("sheets fetch failed: status %d", resp.StatusCode)
		return fallbackStock
	}

	var payload valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("sheets decode failed: %v", err)
		return fallbackStock
	}

	records := mapRows(payload.Values)
	if len(records) == 0 {
		log.Printf("sheets returned no usable rows, serving fallback")
		return fallbackStock
	}
	return records
}

// mapRows converts raw sheet rows into records. The first row is a header
// and skipped; rows with missing cells or non-numeric counts are dropped.
func mapRows(rows [][]string) []StockRecord {
	if len(rows) < 2 {
		return nil
	}

	records := make([]StockRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 3 {
			continue
		}
		stock, err := strconv.Atoi(row[1])
		if err != nil {
			continue
		}
		sales, err := strconv.Atoi(row[2])
		if err != nil {
			continue
		}
		records = append(records, StockRecord{Model: row[0], Stock: stock, Sales: sales})
	}
	return records
}

// Fallback exposes the fallback list for callers that want to compare.
func Fallback() []StockRecord {
	out := make([]StockRecord, len(fallbackStock))
	copy(out, fallbackStock)
	return out
}
