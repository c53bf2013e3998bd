package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/croplink/agrimarket/config"
	"github.com/croplink/agrimarket/internal/adminapi"
	"github.com/croplink/agrimarket/internal/api"
	"github.com/croplink/agrimarket/internal/app"
	"github.com/croplink/agrimarket/internal/catalog"
	"github.com/croplink/agrimarket/internal/messaging"
	"github.com/croplink/agrimarket/internal/notify"
	"github.com/croplink/agrimarket/internal/order"
	"github.com/croplink/agrimarket/internal/scan"
	"github.com/croplink/agrimarket/internal/webserver"
)

var (
	BuildVersion string

	conffile = flag.String("c", "/etc/agrimarket.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate the database schema")
	showVer  = flag.Bool("v", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("agrimarket", BuildVersion)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database schema recreated")
		os.Exit(0)
	}

	orderSvc := order.NewService(application.DB(), application.Bus())
	catalogSvc := catalog.NewService(application.DB())
	messageSvc := messaging.NewService(application.DB())
	notifySvc, err := notify.NewService(application.DB())
	if err != nil {
		zap.S().Fatalf("notification service init failed: %v", err)
	}
	defer notifySvc.Release()
	if err := notifySvc.Subscribe(application.Bus()); err != nil {
		zap.S().Fatalf("notification subscribe failed: %v", err)
	}
	scanClient := scan.NewClient(cfg.Scan)

	webserver.Init(application)
	api.Use(orderSvc, catalogSvc, messageSvc, notifySvc, scanClient)
	api.Register()
	adminapi.Use(orderSvc, catalogSvc, notifySvc)
	adminapi.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return webserver.Instance().Listen()
	})

	g.Go(func() error {
		<-ctx.Done()
		zap.S().Info("shutdown signal received")
		webserver.Instance().Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server exited: %v", err)
		os.Exit(1)
	}
}
