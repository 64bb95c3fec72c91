package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/anvesh2019/dhan-trading/src/models"
	"github.com/anvesh2019/dhan-trading/src/services"
	"github.com/anvesh2019/dhan-trading/src/utils"
)

type RunArgs struct {
	SecurityID      string
	IntervalMinutes int
}

type RunResult struct {
	Candle       *models.Candle `json:"candle"`
	LongTrigger  float64        `json:"longTrigger"`
	ShortTrigger float64        `json:"shortTrigger"`
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/fetch_prev_candle/main.go --security-id 11536",
	Short: "Print the last completed candle and the stop triggers it implies",
	Run: func(cmd *cobra.Command, args []string) {
		securityID, err := cmd.Flags().GetString("security-id")
		if err != nil {
			log.Fatalf("error getting security-id: %v", err)
		}

		intervalMinutes, err := cmd.Flags().GetInt("interval")
		if err != nil {
			log.Fatalf("error getting interval: %v", err)
		}

		result, err := Run(RunArgs{SecurityID: securityID, IntervalMinutes: intervalMinutes})
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		resultJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal result: %v", err)
		}

		fmt.Println(string(resultJSON))
	},
}

func Run(args RunArgs) (RunResult, error) {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Fatalf("error loading environment variables: %v", err)
	}

	clientID := utils.RequireEnv("DHAN_CLIENT_ID")
	accessToken := utils.RequireEnv("DHAN_ACCESS_TOKEN")
	baseURL := utils.GetenvOrDefault("DHAN_BASE_URL", "https://api.dhan.co/v2")
	exchangeSegment := utils.GetenvOrDefault("DHAN_EXCHANGE_SEGMENT", "NSE_EQ")

	location, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		log.Fatalf("error loading market timezone: %v", err)
	}

	broker := services.NewDhanClient(baseURL, clientID, accessToken, exchangeSegment, location, false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	candle, err := broker.FetchPreviousCandle(ctx, args.SecurityID, time.Duration(args.IntervalMinutes)*time.Minute)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to fetch previous candle: %w", err)
	}

	longTrigger, err := candle.StopTrigger(models.PositionDirectionLong, models.DefaultTickSize)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to compute long trigger: %w", err)
	}

	shortTrigger, err := candle.StopTrigger(models.PositionDirectionShort, models.DefaultTickSize)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to compute short trigger: %w", err)
	}

	return RunResult{
		Candle:       candle,
		LongTrigger:  longTrigger,
		ShortTrigger: shortTrigger,
	}, nil
}

func main() {
	runCmd.PersistentFlags().String("security-id", "", "Security id to fetch")
	runCmd.PersistentFlags().Int("interval", 5, "Candle interval in minutes")

	if err := runCmd.MarkPersistentFlagRequired("security-id"); err != nil {
		log.Fatalf("error marking security-id required: %v", err)
	}

	if err := runCmd.Execute(); err != nil {
		log.Fatalf("error executing command: %v", err)
	}
}
