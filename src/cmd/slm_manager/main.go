package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/anvesh2019/dhan-trading/src/pubsub"
	"github.com/anvesh2019/dhan-trading/src/router"
	"github.com/anvesh2019/dhan-trading/src/services"
	"github.com/anvesh2019/dhan-trading/src/utils"
	"github.com/anvesh2019/dhan-trading/src/worker"
)

type RunArgs struct {
	Simulation bool
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/slm_manager/main.go",
	Short: "Keep every open intraday position protected by a resting SL-M order",
	Run: func(cmd *cobra.Command, args []string) {
		simulation, err := cmd.Flags().GetBool("simulation")
		if err != nil {
			log.Fatalf("error getting simulation: %v", err)
		}

		if err := Run(RunArgs{Simulation: simulation}); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
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

	broker := services.NewDhanClient(baseURL, clientID, accessToken, exchangeSegment, location, args.Simulation)

	pubsub.Init()

	notifier := services.NewTelegramNotifier(
		utils.GetenvOrDefault("TELEGRAM_BOT_TOKEN", ""),
		utils.GetenvOrDefault("TELEGRAM_CHAT_ID", ""),
	)

	consumer := worker.NewNotificationConsumer(notifier)
	if err := consumer.Start(); err != nil {
		log.Fatalf("error starting notification consumer: %v", err)
	}

	cfg := worker.ReconcilerConfig{
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

	reconciler := worker.NewStopLossReconciler(&wg, broker, cfg, location)
	reconciler.RunOnce(ctx)
	reconciler.StartFastWatcher(ctx)
	reconciler.StartTrailLoop(ctx)

	statusAddr := utils.GetenvOrDefault("STATUS_ADDR", ":8090")
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
	runCmd.PersistentFlags().Bool("simulation", false, "Log orders instead of sending them to the broker")

	if err := runCmd.Execute(); err != nil {
		log.Fatalf("error executing command: %v", err)
	}
}
