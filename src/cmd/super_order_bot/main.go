package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/anvesh2019/dhan-trading/src/models"
	"github.com/anvesh2019/dhan-trading/src/pubsub"
	"github.com/anvesh2019/dhan-trading/src/router"
	"github.com/anvesh2019/dhan-trading/src/services"
	"github.com/anvesh2019/dhan-trading/src/utils"
	"github.com/anvesh2019/dhan-trading/src/worker"
)

type RunArgs struct {
	ScanConfigPath string
	Simulation     bool
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/super_order_bot/main.go --scan-config scans.yaml",
	Short: "Trade screener signals as super orders with broker-managed stops",
	Run: func(cmd *cobra.Command, args []string) {
		scanConfigPath, err := cmd.Flags().GetString("scan-config")
		if err != nil {
			log.Fatalf("error getting scan-config: %v", err)
		}

		simulation, err := cmd.Flags().GetBool("simulation")
		if err != nil {
			log.Fatalf("error getting simulation: %v", err)
		}

		if err := Run(RunArgs{ScanConfigPath: scanConfigPath, Simulation: simulation}); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func excludedSymbols(raw string) map[string]struct{} {
	excluded := make(map[string]struct{})
	for _, symbol := range strings.Split(raw, ",") {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" {
			excluded[symbol] = struct{}{}
		}
	}

	return excluded
}

func Run(args RunArgs) error {
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

	scans, err := models.LoadScanConfig(args.ScanConfigPath)
	if err != nil {
		log.Fatalf("error loading scan config: %v", err)
	}

	broker := services.NewDhanClient(baseURL, clientID, accessToken, exchangeSegment, location, args.Simulation)

	instruments, err := services.FetchInstrumentMaster(baseURL, exchangeSegment, accessToken)
	if err != nil {
		log.Fatalf("error loading instrument master: %v", err)
	}

	screener := services.NewChartinkClient(
		utils.RequireEnv("CHARTINK_COOKIE"),
		utils.GetenvOrDefault("CHARTINK_CSRF_TOKEN", ""),
	)

	pubsub.Init()

	notifier := services.NewTelegramNotifier(
		utils.GetenvOrDefault("TELEGRAM_BOT_TOKEN", ""),
		utils.GetenvOrDefault("TELEGRAM_CHAT_ID", ""),
	)

	consumer := worker.NewNotificationConsumer(notifier)
	if err := consumer.Start(); err != nil {
		log.Fatalf("error starting notification consumer: %v", err)
	}

	signalCfg := worker.SignalConfig{
		LoopInterval:    utils.GetenvSeconds("BOT_LOOP_SECONDS", 15*time.Second),
		CutoffHour:      utils.GetenvInt("BOT_CUTOFF_HOUR", 15),
		CutoffMinute:    utils.GetenvInt("BOT_CUTOFF_MINUTE", 15),
		SignalAmount:    utils.GetenvFloat("BOT_SIGNAL_AMOUNT", 5000),
		MaxPositions:    utils.GetenvInt("BOT_MAX_POSITIONS", 5),
		Cooldown:        utils.GetenvSeconds("BOT_COOLDOWN_SECONDS", 1200*time.Second),
		BufferRatio:     utils.GetenvFloat("BOT_BUFFER_RATIO", 0.05),
		MinLeverage:     utils.GetenvFloat("BOT_MIN_LEVERAGE", 5),
		TriggerPct:      utils.GetenvFloat("BOT_TRIGGER_PCT", 0.0075),
		StepPct:         utils.GetenvFloat("BOT_STEP_PCT", 0.0025),
		TickSize:        utils.GetenvFloat("BOT_TICK_SIZE", 0.05),
		FillTimeout:     utils.GetenvSeconds("BOT_FILL_TIMEOUT_SECONDS", 120*time.Second),
		PollInterval:    utils.GetenvSeconds("BOT_POLL_SECONDS", 5*time.Second),
		LTPRetries:      utils.GetenvInt("BOT_LTP_RETRIES", 3),
		LTPRetryDelay:   utils.GetenvSeconds("BOT_LTP_RETRY_DELAY_SECONDS", 1*time.Second),
		ExcludedSymbols: excludedSymbols(utils.GetenvOrDefault("BOT_EXCLUDED_SYMBOLS", "")),
	}

	reconcilerCfg := worker.ReconcilerConfig{
		Interval:     time.Duration(utils.GetenvInt("SLM_CANDLE_INTERVAL_MINUTES", 5)) * time.Minute,
		TickSize:     utils.GetenvFloat("SLM_TICK_SIZE", 0.05),
		CutoffHour:   utils.GetenvInt("SLM_CUTOFF_HOUR", 15),
		CutoffMinute: utils.GetenvInt("SLM_CUTOFF_MINUTE", 0),
		FastMin:      utils.GetenvSeconds("SLM_FAST_MIN_SECONDS", 8*time.Second),
		FastMax:      utils.GetenvSeconds("SLM_FAST_MAX_SECONDS", 13*time.Second),
		TrailOffset:  utils.GetenvSeconds("SLM_TRAIL_OFFSET_SECONDS", 90*time.Second),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg := sync.WaitGroup{}

	signalWorker := worker.NewSignalWorker(&wg, broker, screener, instruments, scans, signalCfg, location)
	signalWorker.Start(ctx)

	// Positions opened here are still protected by the reconciler: super orders
	// carry their own stop, but manual trades and broker hiccups do not.
	reconciler := worker.NewStopLossReconciler(&wg, broker, reconcilerCfg, location)
	reconciler.StartFastWatcher(ctx)
	reconciler.StartTrailLoop(ctx)

	statusAddr := utils.GetenvOrDefault("STATUS_ADDR", ":8091")
	server := &http.Server{
		Addr:    statusAddr,
		Handler: router.NewStatusRouter(reconciler),
	}

	go func() {
		log.Infof("status API listening on %s", statusAddr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("status API stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("status API shutdown: %v", err)
	}

	wg.Wait()
	log.Info("all workers stopped")

	return nil
}

func main() {
	runCmd.PersistentFlags().String("scan-config", "scans.yaml", "Path to the YAML file holding the screener scan clauses")
	runCmd.PersistentFlags().Bool("simulation", false, "Log orders instead of sending them to the broker")

	if err := runCmd.Execute(); err != nil {
		log.Fatalf("error executing command: %v", err)
	}
}
