package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/client"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/events"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/repository"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/service"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(false); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubCandleStore struct {
	lastFilter repository.CandleFilter
	err        error
}

func (s *stubCandleStore) GetCandles(_ context.Context, filter repository.CandleFilter) ([]model.Candle, error) {
	s.lastFilter = filter
	return []model.Candle{{SymbolID: filter.SymbolID, Close: 100}}, s.err
}

func (s *stubCandleStore) CountCandles(_ context.Context, _ repository.CandleFilter) (int, error) {
	return 1, s.err
}

func (s *stubCandleStore) GetDataAvailability(_ context.Context, symbolIDs []int, _ string) ([]model.DataAvailability, error) {
	result := make([]model.DataAvailability, 0, len(symbolIDs))
	for _, id := range symbolIDs {
		result = append(result, model.DataAvailability{SymbolID: id, Candles: 5})
	}
	return result, s.err
}

type stubSymbolStore struct{}

func (stubSymbolStore) GetSymbolByID(_ context.Context, id int) (*model.Symbol, error) {
	if id == 1 {
		return &model.Symbol{ID: 1, Symbol: "BTCUSDT"}, nil
	}
	return nil, nil
}

type stubComparer struct {
	request *model.EngineCompareRequest
	err     error
}

func (s *stubComparer) CompareStrategies(_ context.Context, request *model.EngineCompareRequest) (json.RawMessage, error) {
	s.request = request
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(`{"winner":"weekly"}`), nil
}

type testRouter struct {
	engine   *gin.Engine
	candles  *stubCandleStore
	comparer *stubComparer
}

func newTestRouter() *testRouter {
	logger := zap.NewNop()
	candles := &stubCandleStore{}
	comparer := &stubComparer{}

	timeframeHandler := NewTimeframeHandler(service.NewTimeframeService(logger), logger)
	marketDataHandler := NewMarketDataHandler(
		service.NewMarketDataService(candles, stubSymbolStore{}, events.NopPublisher{}, logger), logger)
	backtestHandler := NewBacktestHandler(
		service.NewBacktestService(comparer, events.NopPublisher{}, logger), logger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		timeframes := v1.Group("/timeframes")
		timeframes.GET("", timeframeHandler.GetAllTimeframes)
		timeframes.GET("/validate/:timeframe", timeframeHandler.ValidateTimeframe)
		timeframes.POST("/range/validate", timeframeHandler.ValidateRange)
		timeframes.GET("/:timeframe/default-range", timeframeHandler.GetDefaultRange)

		marketData := v1.Group("/market-data")
		marketData.GET("/candles", marketDataHandler.GetCandles)
		marketData.GET("/availability", marketDataHandler.GetDataAvailability)

		v1.POST("/backtest/compare", backtestHandler.CompareStrategies)
	}

	return &testRouter{engine: router, candles: candles, comparer: comparer}
}

func (r *testRouter) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTimeframeHandler_GetAllTimeframes(t *testing.T) {
	w := newTestRouter().do(http.MethodGet, "/api/v1/timeframes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var timeframes []model.Timeframe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &timeframes))
	require.Len(t, timeframes, 5)
	assert.Equal(t, "1h", timeframes[0].Name)
	assert.Equal(t, "4h", timeframes[0].Limit.SuggestedTimeframe)
}

func TestTimeframeHandler_ValidateTimeframe(t *testing.T) {
	r := newTestRouter()

	body := decode(t, r.do(http.MethodGet, "/api/v1/timeframes/validate/1w", ""))
	assert.Equal(t, true, body["valid"])

	body = decode(t, r.do(http.MethodGet, "/api/v1/timeframes/validate/5h", ""))
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "5h", body["timeframe"])
}

func TestTimeframeHandler_ValidateRange(t *testing.T) {
	r := newTestRouter()

	w := r.do(http.MethodPost, "/api/v1/timeframes/range/validate",
		`{"timeframe":"1h","start_date":"2020-01-01","end_date":"2024-01-01"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["is_valid"])
	assert.Equal(t, true, body["was_adjusted"])
	assert.Equal(t, "2023-10-01T00:00:00Z", body["adjusted_start_date"])
	assert.Equal(t, float64(48), body["selected_months"])
	assert.Equal(t,
		"Date range limited to 3 months for 1H timeframe. Showing data from 2023-10-01 to 2024-01-01. Consider the 4H timeframe for longer periods.",
		body["message"])
}

func TestTimeframeHandler_ValidateRange_BadRequests(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"missing dates", `{"timeframe":"1h"}`},
		{"missing timeframe", `{"start_date":"2020-01-01","end_date":"2024-01-01"}`},
		{"unparsable date", `{"timeframe":"1h","start_date":"01/01/2020","end_date":"2024-01-01"}`},
		{"reversed", `{"timeframe":"1h","start_date":"2024-02-01","end_date":"2024-01-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := r.do(http.MethodPost, "/api/v1/timeframes/range/validate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestTimeframeHandler_GetDefaultRange(t *testing.T) {
	r := newTestRouter()

	w := r.do(http.MethodGet, "/api/v1/timeframes/1w/default-range?end_date=2024-12-31", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "2023-01-01T00:00:00Z", body["start_date"])
	assert.Equal(t, "2024-12-31T00:00:00Z", body["end_date"])
	assert.Equal(t, float64(730), body["visible_days"])

	w = r.do(http.MethodGet, "/api/v1/timeframes/1w/default-range?end_date=soon", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarketDataHandler_GetCandles_AdjustsRange(t *testing.T) {
	r := newTestRouter()

	w := r.do(http.MethodGet,
		"/api/v1/market-data/candles?symbol_id=1&timeframe=1h&start_date=2020-01-01&end_date=2024-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(RangeAdjustedHeader))

	body := decode(t, w)
	rng, ok := body["range"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, rng["was_adjusted"])
	assert.Equal(t, "2023-10-01T00:00:00Z", rng["adjusted_start_date"])

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1000), pagination["itemsPerPage"])

	assert.Equal(t, "2023-10-01", r.candles.lastFilter.StartDate.Format("2006-01-02"))
}

func TestMarketDataHandler_GetCandles_NoRange(t *testing.T) {
	r := newTestRouter()

	w := r.do(http.MethodGet, "/api/v1/market-data/candles?symbol_id=1&timeframe=1d&limit=9000&sort_direction=desc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(RangeAdjustedHeader))

	body := decode(t, w)
	assert.NotContains(t, body, "range")
	assert.Equal(t, float64(5000), body["pagination"].(map[string]interface{})["itemsPerPage"])
	assert.Equal(t, "DESC", r.candles.lastFilter.SortDirection)
}

func TestMarketDataHandler_GetCandles_Errors(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"bad symbol", "/api/v1/market-data/candles?symbol_id=abc&timeframe=1d", http.StatusBadRequest},
		{"missing timeframe", "/api/v1/market-data/candles?symbol_id=1", http.StatusBadRequest},
		{"bad start", "/api/v1/market-data/candles?symbol_id=1&timeframe=1d&start_date=x", http.StatusBadRequest},
		{"unknown symbol", "/api/v1/market-data/candles?symbol_id=2&timeframe=1d", http.StatusNotFound},
		{"reversed range", "/api/v1/market-data/candles?symbol_id=1&timeframe=1d&start_date=2024-01-02&end_date=2024-01-01", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, r.do(http.MethodGet, tt.target, "").Code)
		})
	}
}

func TestMarketDataHandler_GetCandles_RepositoryFailure(t *testing.T) {
	r := newTestRouter()
	r.candles.err = errors.New("db down")

	w := r.do(http.MethodGet, "/api/v1/market-data/candles?symbol_id=1&timeframe=1d", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to get candle data", decode(t, w)["error"])
}

func TestMarketDataHandler_GetDataAvailability(t *testing.T) {
	r := newTestRouter()

	w := r.do(http.MethodGet, "/api/v1/market-data/availability?symbol_ids=1,%202&timeframe=1d", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["availability"], 2)

	assert.Equal(t, http.StatusBadRequest, r.do(http.MethodGet, "/api/v1/market-data/availability?timeframe=1d", "").Code)
	assert.Equal(t, http.StatusBadRequest, r.do(http.MethodGet, "/api/v1/market-data/availability?symbol_ids=1,b&timeframe=1d", "").Code)
	assert.Equal(t, http.StatusBadRequest, r.do(http.MethodGet, "/api/v1/market-data/availability?symbol_ids=1", "").Code)
}

const compareBody = `{
	"symbol_id": 1,
	"timeframe": "1d",
	"start_date": "2010-01-01",
	"end_date": "2024-01-01",
	"initial_capital": 5000,
	"strategies": [
		{"name": "weekly", "type": "dca_fixed", "params": {"amount": 100}},
		{"name": "dip", "type": "dca_dip"}
	]
}`

func TestBacktestHandler_CompareStrategies(t *testing.T) {
	r := newTestRouter()

	w := r.do(http.MethodPost, "/api/v1/backtest/compare", compareBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(RangeAdjustedHeader))

	body := decode(t, w)
	assert.Equal(t, map[string]interface{}{"winner": "weekly"}, body["result"])
	assert.Equal(t, "2019-01-01T00:00:00Z", body["range"].(map[string]interface{})["adjusted_start_date"])

	require.NotNil(t, r.comparer.request)
	assert.Equal(t, "2019-01-01", r.comparer.request.StartDate.Format("2006-01-02"))
}

func TestBacktestHandler_CompareStrategies_Validation(t *testing.T) {
	r := newTestRouter()

	oneStrategy := `{"symbol_id":1,"timeframe":"1d","start_date":"2023-01-01","end_date":"2024-01-01",
		"initial_capital":100,"strategies":[{"name":"a","type":"dca_fixed"}]}`
	assert.Equal(t, http.StatusBadRequest, r.do(http.MethodPost, "/api/v1/backtest/compare", oneStrategy).Code)

	noCapital := `{"symbol_id":1,"timeframe":"1d","start_date":"2023-01-01","end_date":"2024-01-01",
		"strategies":[{"name":"a","type":"x"},{"name":"b","type":"y"}]}`
	assert.Equal(t, http.StatusBadRequest, r.do(http.MethodPost, "/api/v1/backtest/compare", noCapital).Code)

	assert.Nil(t, r.comparer.request)
}

func TestBacktestHandler_CompareStrategies_EngineErrors(t *testing.T) {
	r := newTestRouter()

	r.comparer.err = &client.EngineError{StatusCode: http.StatusServiceUnavailable}
	w := r.do(http.MethodPost, "/api/v1/backtest/compare", compareBody)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	r.comparer.err = &client.EngineError{StatusCode: http.StatusBadRequest, Message: "unknown strategy type"}
	w = r.do(http.MethodPost, "/api/v1/backtest/compare", compareBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "unknown strategy type")

	r.comparer.err = errors.New("boom")
	w = r.do(http.MethodPost, "/api/v1/backtest/compare", compareBody)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
