package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/logging"
	"github.com/akeil/coursedoc/pkg/server"
)

func doServe(ctx context.Context, s settings, listen string) error {
	if listen == "" {
		listen = s.cfg.Server.Listen
	}

	e, err := s.exporter(s.renderContext())
	if err != nil {
		return err
	}

	// the server runs without summaries if no provider is configured
	var sum server.Summarizer
	client, err := s.summarizer(ctx, "")
	if coursedoc.IsConfigurationError(err) {
		logging.Warning("Summaries are disabled: %v", err)
	} else if err != nil {
		return err
	} else {
		defer client.Close()
		sum = client
	}

	srv := server.New(e, sum, int64(s.cfg.Server.MaxBodyMB)<<20)
	err = srv.Run(ctx, listen)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
