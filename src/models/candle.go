package models

import (
	"sort"
	"time"
)

type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// DhanIntradayDTO mirrors the parallel-array shape of the broker's intraday
// charts response: one slice per field, index i across all slices describes
// candle i.
type DhanIntradayDTO struct {
	Open      []float64 `json:"open"`
	High      []float64 `json:"high"`
	Low       []float64 `json:"low"`
	Close     []float64 `json:"close"`
	Volume    []float64 `json:"volume"`
	Timestamp []float64 `json:"timestamp"`
}

func at(arr []float64, i int) float64 {
	if i < len(arr) {
		return arr[i]
	}

	return 0
}

// ToCandles zips the parallel arrays into candles sorted by timestamp
// ascending. Entries without a timestamp are dropped; epoch values may arrive
// in seconds or milliseconds.
func (dto *DhanIntradayDTO) ToCandles(loc *time.Location) []*Candle {
	n := len(dto.Timestamp)
	for _, arr := range [][]float64{dto.Open, dto.High, dto.Low, dto.Close, dto.Volume} {
		if len(arr) > n {
			n = len(arr)
		}
	}

	candles := make([]*Candle, 0, n)
	for i := 0; i < n; i++ {
		ts := at(dto.Timestamp, i)
		if ts <= 0 {
			continue
		}

		var timestamp time.Time
		if ts > 1e12 {
			timestamp = time.UnixMilli(int64(ts)).In(loc)
		} else {
			timestamp = time.Unix(int64(ts), 0).In(loc)
		}

		candles = append(candles, &Candle{
			Timestamp: timestamp,
			Open:      at(dto.Open, i),
			High:      at(dto.High, i),
			Low:       at(dto.Low, i),
			Close:     at(dto.Close, i),
			Volume:    at(dto.Volume, i),
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	return candles
}
