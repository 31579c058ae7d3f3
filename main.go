package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"babybites/app/api"
	"babybites/app/client/generator"
	"babybites/app/client/whatsapp"
	"babybites/app/config"
	"babybites/app/rules"
	"babybites/app/service/dialog"
	"babybites/app/service/engine"
	"babybites/app/service/mealplan"
	"babybites/app/service/profile"
	"babybites/app/service/queue"
	"babybites/app/service/router"
	"babybites/app/service/story"
	"babybites/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	// A bad rule catalog is fatal, the process refuses to serve without it.
	catalog, err := rules.LoadCatalogFile(cfg.Rules.Path)
	if err != nil {
		log.Fatalf("food rules load failed: %v", err)
	}
	do.ProvideValue(di, catalog)
	do.ProvideValue(di, rules.NewEngine(catalog))

	do.Provide(di, func(di *do.Injector) (profile.Store, error) {
		return profile.NewFileStore(cfg.Data.Dir)
	})
	do.Provide(di, func(_ *do.Injector) (dialog.StateStore, error) {
		return dialog.NewMemoryStateStore(), nil
	})

	do.Provide(di, generator.NewOpenAI)
	do.Provide(di, whatsapp.NewSender)
	do.Provide(di, profile.New)
	do.Provide(di, dialog.New)
	do.Provide(di, mealplan.New)
	do.Provide(di, story.New)
	do.Provide(di, router.New)
	do.Provide(di, queue.New)
	do.Provide(di, engine.New)
	do.Provide(di, api.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	group, groupCtx := errgroup.WithContext(appCtx)

	group.Go(func() error {
		return do.MustInvoke[*api.Server](di).Run(groupCtx)
	})
	group.Go(func() error {
		do.MustInvoke[*engine.Service](di).Run(groupCtx)
		return nil
	})

	if err = group.Wait(); err != nil {
		slog.Error("Service stopped with error", "error", err)
	}
}
