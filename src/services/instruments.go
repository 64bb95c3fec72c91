package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/anvesh2019/dhan-trading/src/models"
)

// InstrumentMaster is a read-only symbol to security-id resolver built once at
// startup from the broker's instrument master CSV.
type InstrumentMaster struct {
	symbolToSecurityID map[string]string
}

func FetchInstrumentMaster(baseURL, exchangeSegment, accessToken string) (*InstrumentMaster, error) {
	client := http.Client{
		Timeout: 20 * time.Second,
	}

	url := fmt.Sprintf("%s/instrument/%s", strings.TrimRight(baseURL, "/"), exchangeSegment)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("FetchInstrumentMaster: failed to create request: %w", err)
	}

	req.Header.Add("accept", "text/csv")
	req.Header.Add("access-token", accessToken)

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FetchInstrumentMaster: failed to fetch instrument master: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FetchInstrumentMaster: failed to fetch instrument master: %s", res.Status)
	}

	csvBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("FetchInstrumentMaster: failed to read response body: %w", err)
	}

	master, err := NewInstrumentMasterFromCSV(csvBytes)
	if err != nil {
		return nil, fmt.Errorf("FetchInstrumentMaster: %w", err)
	}

	log.Infof("instrument master loaded: %d symbols", master.Len())

	return master, nil
}

// NewInstrumentMasterFromCSV decodes the master CSV, keeps NSE equities only
// and dedupes by symbol (first row wins).
func NewInstrumentMasterFromCSV(csvBytes []byte) (*InstrumentMaster, error) {
	// Some master dumps label the symbol column UNDERLYING_SYMBOL.
	if idx := bytes.IndexByte(csvBytes, '\n'); idx > 0 {
		header := bytes.Replace(csvBytes[:idx], []byte("UNDERLYING_SYMBOL"), []byte("SYMBOL"), 1)
		csvBytes = append(append([]byte{}, header...), csvBytes[idx:]...)
	}

	var records []*models.InstrumentRecord
	if err := gocsv.UnmarshalBytes(csvBytes, &records); err != nil {
		return nil, fmt.Errorf("NewInstrumentMasterFromCSV: failed to decode csv: %w", err)
	}

	symbolToSecurityID := make(map[string]string, len(records))
	for _, record := range records {
		if !record.IsNSEEquity() {
			continue
		}

		symbol := record.NormalizedSymbol()
		if symbol == "" {
			continue
		}

		if _, ok := symbolToSecurityID[symbol]; ok {
			continue
		}

		symbolToSecurityID[symbol] = strconv.Itoa(record.SecurityID)
	}

	return &InstrumentMaster{symbolToSecurityID: symbolToSecurityID}, nil
}

// Resolve maps a trading symbol to its security id.
func (m *InstrumentMaster) Resolve(symbol string) (string, bool) {
	securityID, ok := m.symbolToSecurityID[strings.ToUpper(strings.TrimSpace(symbol))]
	return securityID, ok
}

func (m *InstrumentMaster) Len() int {
	return len(m.symbolToSecurityID)
}
