package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/anvesh2019/dhan-trading/src/models"
	"github.com/anvesh2019/dhan-trading/src/utils"
)

const dhanDateTimeLayout = "2006-01-02 15:04:05"

// DhanClient talks to the Dhan v2 REST API. Every call builds its own
// http.Client with an explicit timeout; nothing is cached across calls.
type DhanClient struct {
	baseURL         string
	clientID        string
	accessToken     string
	exchangeSegment string
	location        *time.Location
	simulation      bool
}

func NewDhanClient(baseURL, clientID, accessToken, exchangeSegment string, location *time.Location, simulation bool) *DhanClient {
	return &DhanClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		clientID:        clientID,
		accessToken:     accessToken,
		exchangeSegment: exchangeSegment,
		location:        location,
		simulation:      simulation,
	}
}

func (c *DhanClient) do(ctx context.Context, method, path string, payload interface{}, timeout time.Duration) ([]byte, error) {
	client := http.Client{
		Timeout: timeout,
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("DhanClient:do(): failed to marshal payload: %w", err)
		}

		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:do(): failed to create request: %w", err)
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("access-token", c.accessToken)
	if payload != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	log.Debugf("%s %s", method, req.URL.String())

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:do(): request failed: %w", err)
	}

	defer res.Body.Close()

	responseBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:do(): failed to read response body: %w", err)
	}

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("DhanClient:do(): %s %s returned %s: %s", method, path, res.Status, string(responseBytes))
	}

	return responseBytes, nil
}

// FetchPositions returns open intraday positions. Closed and non-intraday
// positions are filtered out here so callers never see them.
func (c *DhanClient) FetchPositions(ctx context.Context) ([]*models.Position, error) {
	responseBytes, err := c.do(ctx, http.MethodGet, "/positions", nil, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:FetchPositions(): %w", err)
	}

	dtos, err := utils.ParseDhanResponse[[]*models.DhanPositionDTO](responseBytes)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:FetchPositions(): %w", err)
	}

	positions := make([]*models.Position, 0, len(dtos))
	for _, dto := range dtos {
		if !dto.IsOpenIntraday() {
			continue
		}

		positions = append(positions, dto.ToPosition())
	}

	return positions, nil
}

func (c *DhanClient) FetchOrderList(ctx context.Context) ([]*models.Order, error) {
	responseBytes, err := c.do(ctx, http.MethodGet, "/orders", nil, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:FetchOrderList(): %w", err)
	}

	dtos, err := utils.ParseDhanResponse[[]*models.DhanOrderDTO](responseBytes)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:FetchOrderList(): %w", err)
	}

	orders := make([]*models.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, dto.ToOrder(c.location))
	}

	return orders, nil
}

type placeOrderResponseDTO struct {
	OrderID     string `json:"orderId"`
	OrderStatus string `json:"orderStatus"`
}

func (c *DhanClient) PlaceStopLossOrder(ctx context.Context, req *PlaceStopLossRequest) (string, error) {
	if req.Quantity <= 0 {
		return "", fmt.Errorf("DhanClient:PlaceStopLossOrder(): quantity must be positive")
	}

	if c.simulation {
		log.Infof("[SIM] place SL-M %s %s qty=%d trigger=%.2f", req.Symbol, req.Side, req.Quantity, req.TriggerPrice)
		return fmt.Sprintf("SIM-SLM-%s", req.Symbol), nil
	}

	payload := map[string]interface{}{
		"dhanClientId":    c.clientID,
		"correlationId":   uuid.NewString(),
		"exchangeSegment": c.exchangeSegment,
		"securityId":      req.SecurityID,
		"transactionType": string(req.Side),
		"orderType":       string(models.OrderTypeStopLossMarket),
		"productType":     models.ProductTypeIntraday,
		"quantity":        req.Quantity,
		"price":           0.0,
		"triggerPrice":    req.TriggerPrice,
		"validity":        "DAY",
	}

	responseBytes, err := c.do(ctx, http.MethodPost, "/orders", payload, 15*time.Second)
	if err != nil {
		return "", fmt.Errorf("DhanClient:PlaceStopLossOrder(): %w", err)
	}

	dto, err := utils.ParseDhanResponse[placeOrderResponseDTO](responseBytes)
	if err != nil {
		return "", fmt.Errorf("DhanClient:PlaceStopLossOrder(): %w", err)
	}

	log.Infof("PlaceStopLossOrder: %s %s qty=%d trigger=%.2f orderID=%s", req.Symbol, req.Side, req.Quantity, req.TriggerPrice, dto.OrderID)

	return dto.OrderID, nil
}

func (c *DhanClient) CancelOrder(ctx context.Context, orderID string) error {
	if c.simulation {
		log.Infof("[SIM] cancel order %s", orderID)
		return nil
	}

	if _, err := c.do(ctx, http.MethodDelete, "/orders/"+orderID, nil, 8*time.Second); err != nil {
		return fmt.Errorf("DhanClient:CancelOrder(): %w", err)
	}

	return nil
}

// FetchIntradayCandles fetches OHLCV candles for [from, to] at the given
// interval. The broker returns parallel arrays which are zipped into sorted
// candles.
func (c *DhanClient) FetchIntradayCandles(ctx context.Context, securityID string, interval time.Duration, from, to time.Time) ([]*models.Candle, error) {
	payload := map[string]interface{}{
		"securityId":      securityID,
		"exchangeSegment": c.exchangeSegment,
		"instrument":      "EQUITY",
		"interval":        strconv.Itoa(int(interval.Minutes())),
		"oi":              false,
		"fromDate":        from.Format(dhanDateTimeLayout),
		"toDate":          to.Format(dhanDateTimeLayout),
	}

	responseBytes, err := c.do(ctx, http.MethodPost, "/charts/intraday", payload, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:FetchIntradayCandles(): %w", err)
	}

	dto, err := utils.ParseDhanResponse[models.DhanIntradayDTO](responseBytes)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:FetchIntradayCandles(): %w", err)
	}

	return dto.ToCandles(c.location), nil
}

// FetchPreviousCandle returns the most recently completed candle before now.
// Returns models.ErrNoCandleData when the interval has no candles, e.g. outside
// market hours.
func (c *DhanClient) FetchPreviousCandle(ctx context.Context, securityID string, interval time.Duration) (*models.Candle, error) {
	now := time.Now().In(c.location)
	start, end := models.PreviousCandleRange(now, interval)

	candles, err := c.FetchIntradayCandles(ctx, securityID, interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("DhanClient:FetchPreviousCandle(): %w", err)
	}

	if len(candles) == 0 {
		return nil, models.ErrNoCandleData
	}

	return candles[len(candles)-1], nil
}

type ohlcQuoteDTO struct {
	LastPrice float64 `json:"last_price"`
}

func (c *DhanClient) FetchLastPrice(ctx context.Context, securityID string) (float64, error) {
	payload := map[string]interface{}{
		c.exchangeSegment: []string{securityID},
	}

	responseBytes, err := c.do(ctx, http.MethodPost, "/marketfeed/ohlc", payload, 8*time.Second)
	if err != nil {
		return 0, fmt.Errorf("DhanClient:FetchLastPrice(): %w", err)
	}

	quotes, err := utils.ParseDhanResponse[map[string]map[string]ohlcQuoteDTO](responseBytes)
	if err != nil {
		return 0, fmt.Errorf("DhanClient:FetchLastPrice(): %w", err)
	}

	quote, ok := quotes[c.exchangeSegment][securityID]
	if !ok || quote.LastPrice <= 0 {
		return 0, fmt.Errorf("DhanClient:FetchLastPrice(): no last price for security %s", securityID)
	}

	return quote.LastPrice, nil
}

type fundLimitDTO struct {
	// The broker's own field name, typo included.
	AvailableBalance float64 `json:"availabelBalance"`
}

func (c *DhanClient) FetchAvailableBalance(ctx context.Context) (float64, error) {
	responseBytes, err := c.do(ctx, http.MethodGet, "/fundlimit", nil, 8*time.Second)
	if err != nil {
		return 0, fmt.Errorf("DhanClient:FetchAvailableBalance(): %w", err)
	}

	dto, err := utils.ParseDhanResponse[fundLimitDTO](responseBytes)
	if err != nil {
		return 0, fmt.Errorf("DhanClient:FetchAvailableBalance(): %w", err)
	}

	return dto.AvailableBalance, nil
}

type marginDTO struct {
	// Leverage arrives either as a number or as a string like "5x".
	Leverage    interface{} `json:"leverage"`
	MaxLeverage interface{} `json:"max_leverage"`
}

// FetchMarginLeverage asks the margin calculator what leverage the broker
// grants for a 1-share intraday buy at price.
func (c *DhanClient) FetchMarginLeverage(ctx context.Context, securityID string, price float64) (float64, error) {
	payload := map[string]interface{}{
		"dhanClientId":    c.clientID,
		"exchangeSegment": c.exchangeSegment,
		"transactionType": string(models.TransactionTypeBuy),
		"quantity":        1,
		"productType":     models.ProductTypeIntraday,
		"securityId":      securityID,
		"price":           price,
		"triggerPrice":    price,
	}

	responseBytes, err := c.do(ctx, http.MethodPost, "/margincalculator", payload, 10*time.Second)
	if err != nil {
		return 0, fmt.Errorf("DhanClient:FetchMarginLeverage(): %w", err)
	}

	dto, err := utils.ParseDhanResponse[marginDTO](responseBytes)
	if err != nil {
		return 0, fmt.Errorf("DhanClient:FetchMarginLeverage(): %w", err)
	}

	leverage := parseLeverage(dto.MaxLeverage)
	if leverage == 0 {
		leverage = parseLeverage(dto.Leverage)
	}

	if leverage == 0 {
		return 0, fmt.Errorf("DhanClient:FetchMarginLeverage(): no leverage in response for security %s", securityID)
	}

	return leverage, nil
}

// parseLeverage accepts both numeric leverage values and strings like "5x".
func parseLeverage(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		s := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(v)), "X")

		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}

		return parsed
	default:
		return 0
	}
}

func (c *DhanClient) PlaceSuperOrder(ctx context.Context, req *SuperOrderRequest) (string, error) {
	if req.Quantity <= 0 {
		return "", fmt.Errorf("DhanClient:PlaceSuperOrder(): quantity must be positive")
	}

	if c.simulation {
		log.Infof("[SIM] place super order %s %s qty=%d stopLoss=%.2f trailingJump=%.2f", req.Symbol, req.Side, req.Quantity, req.StopLossPrice, req.TrailingJump)
		return fmt.Sprintf("SIM-SUPER-%s", req.Symbol), nil
	}

	payload := map[string]interface{}{
		"dhanClientId":    c.clientID,
		"correlationId":   models.SuperOrderCorrelationPrefix + uuid.NewString(),
		"exchangeSegment": c.exchangeSegment,
		"securityId":      req.SecurityID,
		"transactionType": string(req.Side),
		"orderType":       string(models.OrderTypeMarket),
		"productType":     models.ProductTypeIntraday,
		"quantity":        req.Quantity,
		"price":           0.0,
		"targetPrice":     req.TargetPrice,
		"stopLossPrice":   req.StopLossPrice,
		"trailingJump":    req.TrailingJump,
		"tag":             req.Tag,
	}

	responseBytes, err := c.do(ctx, http.MethodPost, "/super/orders", payload, 15*time.Second)
	if err != nil {
		return "", fmt.Errorf("DhanClient:PlaceSuperOrder(): %w", err)
	}

	dto, err := utils.ParseDhanResponse[placeOrderResponseDTO](responseBytes)
	if err != nil {
		return "", fmt.Errorf("DhanClient:PlaceSuperOrder(): %w", err)
	}

	log.Infof("PlaceSuperOrder: %s %s qty=%d stopLoss=%.2f orderID=%s", req.Symbol, req.Side, req.Quantity, req.StopLossPrice, dto.OrderID)

	return dto.OrderID, nil
}

func (c *DhanClient) ConvertToSuperOrder(ctx context.Context, orderID string) error {
	if c.simulation {
		log.Infof("[SIM] convert order %s to super order", orderID)
		return nil
	}

	payload := map[string]interface{}{
		"dhanClientId":   c.clientID,
		"orderId":        orderID,
		"convertToSuper": true,
	}

	if _, err := c.do(ctx, http.MethodPost, "/orders/modify", payload, 12*time.Second); err != nil {
		return fmt.Errorf("DhanClient:ConvertToSuperOrder(): %w", err)
	}

	return nil
}
