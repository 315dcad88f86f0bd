package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/oceanview/backend/internal/app"
	"github.com/oceanview/backend/internal/app/service/billing"
	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/platform/db"
	"github.com/oceanview/backend/internal/platform/payment/momo"
	"github.com/oceanview/backend/internal/platform/payment/vnpay"
	"github.com/oceanview/backend/internal/platform/push"
	"github.com/oceanview/backend/internal/platform/redis"
	"github.com/oceanview/backend/pkg/config"
	"github.com/oceanview/backend/pkg/logger"
	"github.com/oceanview/backend/pkg/types"
)

// invoicegen is the scheduled billing run. Cron fires it once per day for the
// daily cadence and on the first of each month for the monthly cadence.
func main() {
	cadenceFlag := flag.String("cadence", "monthly", "billing cadence to generate: monthly or daily")
	sweep := flag.Bool("sweep", true, "mark invoices past their due date as overdue")
	flag.Parse()

	var cadence types.PaymentCadence
	switch *cadenceFlag {
	case "monthly":
		cadence = types.PaymentCadenceMonthly
	case "daily":
		cadence = types.PaymentCadenceDaily
	default:
		zap.NewExample().Sugar().Errorf("unknown cadence %q", *cadenceFlag)
		os.Exit(2)
	}

	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	a := fx.New(
		logger.Module,
		config.Module,
		db.Module,
		redis.Module,
		vnpay.Module,
		momo.Module,
		push.Module,
		notification.Module,
		billing.Module,
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, log *zap.SugaredLogger, svc *billing.Service) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go func() {
						runCtx := context.Background()
						invoices, err := svc.CreateInvoices(runCtx, cadence)
						if err != nil {
							log.Errorw("invoice generation failed", "cadence", cadence, "error", err)
							_ = sd.Shutdown(fx.ExitCode(1))
							return
						}
						log.Infow("invoices generated", "cadence", cadence, "count", len(invoices))

						if *sweep {
							n, err := svc.SweepOverdue(runCtx)
							if err != nil {
								log.Errorw("overdue sweep failed", "error", err)
								_ = sd.Shutdown(fx.ExitCode(1))
								return
							}
							log.Infow("overdue invoices swept", "count", n)
						}
						_ = sd.Shutdown()
					}()
					return nil
				},
			})
		}),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		zap.NewExample().Sugar().Errorf("failed to start job: %v", err)
		exitCode = 1
		return
	}

	sig := <-a.Wait()
	exitCode = sig.ExitCode

	stopCtx, cancel2 := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancel2()
	if err := a.Stop(stopCtx); err != nil {
		zap.NewExample().Sugar().Errorf("failed to stop job: %v", err)
		exitCode = 1
	}
}
