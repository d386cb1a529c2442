//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/tessely/summarizer/internal/bootstrap"
	"github.com/tessely/summarizer/internal/domain/summarizer"
	"github.com/tessely/summarizer/internal/infra/config"
	httpiface "github.com/tessely/summarizer/internal/interface/http"
	"github.com/tessely/summarizer/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideSummarizerConfig,
		provideEmbedder,
		provideGenerator,
		provideResultStore,
		provideRunRepository,
		summarizer.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
