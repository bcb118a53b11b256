// Package serve implements the "serve" subcommand: a minimal HTTP
// surface exposing the compiler as a batch service. Each request
// compiles its own Session from scratch and never touches another
// request's state concurrently (SPEC_FULL.md §5), so this is not a
// realtime client or live performance dispatcher — every request is one
// offline compile, same as running `compile` from the shell.
package serve

import (
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/scsess/scsess/internal/compiler"
	"github.com/scsess/scsess/internal/conf"
	"github.com/scsess/scsess/internal/logging"
	"github.com/scsess/scsess/internal/metrics"
	"github.com/scsess/scsess/internal/render"
)

var logger = logging.ForService("serve")

// Command builds the "serve" subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compiler over HTTP",
		Long:  `Serve exposes POST /compile (body: score YAML, query: duration) returning a compiled bundle file, and GET /metrics for Prometheus scraping.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, addr)
		},
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")

	return cmd
}

func run(settings *conf.Settings, addr string) error {
	registry := prometheus.NewRegistry()
	m, err := metrics.NewCompilerMetrics(registry)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	e.POST("/compile", compileHandler(m))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("starting server", "addr", addr)
	return e.Start(addr)
}

func compileHandler(m *metrics.CompilerMetrics) echo.HandlerFunc {
	return func(c echo.Context) error {
		duration := 0.0
		durationGiven := false
		if q := c.QueryParam("duration"); q != "" {
			v, err := strconv.ParseFloat(q, 64)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid duration: "+err.Error())
			}
			duration = v
			durationGiven = true
		}

		tmp, err := os.CreateTemp("", "scsess-score-*.yaml")
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()

		if _, err := io.Copy(tmp, c.Request().Body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "reading score body: "+err.Error())
		}
		if err := tmp.Close(); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		start := time.Now()
		result, err := compiler.CompileScore(tmp.Name(), duration, durationGiven)
		if err != nil {
			m.RecordCompile("failure", time.Since(start).Seconds(), 0)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		m.RecordCompile("success", time.Since(start).Seconds(), len(result.Bundles))

		bundleFile, err := os.CreateTemp("", "scsess-bundle-*.bin")
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		defer os.Remove(bundleFile.Name())
		bundleFile.Close()

		if err := render.WriteBundleFile(bundleFile.Name(), result.Bundles); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		return c.Attachment(bundleFile.Name(), "session.bundle")
	}
}
