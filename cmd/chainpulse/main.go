// Command chainpulse is the terminal dashboard: a force-directed bubble
// chart of per-coin news sentiment next to the scored news feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/chainpulse/internal/chart"
	"github.com/abelbrown/chainpulse/internal/config"
	"github.com/abelbrown/chainpulse/internal/feed"
	"github.com/abelbrown/chainpulse/internal/logging"
	"github.com/abelbrown/chainpulse/internal/news"
	"github.com/abelbrown/chainpulse/internal/otel"
	"github.com/abelbrown/chainpulse/internal/store"
	"github.com/abelbrown/chainpulse/internal/ui"
)

func main() {
	variantFlag := flag.String("variant", "", "Dashboard variant (overrides config and CHAINPULSE_VARIANT)")
	apiFlag := flag.String("api", "", "Sentiment API base URL")
	noSnapshots := flag.Bool("no-snapshots", false, "Do not record loaded lists in the snapshot store")
	flag.Parse()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *variantFlag != "" {
		cfg.Variant = *variantFlag
	}
	variant, err := cfg.Active()
	if err != nil {
		log.Fatalf("Invalid variant: %v", err)
	}
	apiURL := config.ResolveAPIURL(cfg.APIURL)
	if *apiFlag != "" {
		apiURL = *apiFlag
	}

	if err := logging.Init(config.Dir()); err != nil {
		log.Fatalf("Failed to init logging: %v", err)
	}
	defer logging.Close()

	events, err := otel.OpenLogger(config.EventLogPath())
	if err != nil {
		logging.Warn("Event log unavailable", "err", err)
		events = otel.NewNullLogger()
	}
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)
	defer events.Close()

	events.Emit(otel.Event{
		Level:    otel.LevelInfo,
		Kind:     otel.KindStartup,
		Comp:     "main",
		Endpoint: apiURL,
		Msg:      "variant " + cfg.Variant,
	})

	var st *store.Store
	if !*noSnapshots {
		st, err = store.Open(config.DBPath())
		if err != nil {
			// Snapshots are best effort; the dashboard runs without them.
			logging.Warn("Snapshot store unavailable", "err", err)
			events.Error(otel.KindStoreError, "store", err)
			st = nil
		} else {
			defer st.Close()
		}
	}

	client := news.NewClient(apiURL, news.Options{
		Timeout:         time.Duration(cfg.TimeoutSec) * time.Second,
		OnBreakerChange: breakerChanged(events),
	})

	chartOpts, err := chart.FromVariant(variant, cfg.UI.FrameRate)
	if err != nil {
		log.Fatalf("Invalid variant palette: %v", err)
	}
	chartOpts.Events = events

	cmds := commands{ctx: ctx, client: client, store: st, events: events}
	app := ui.NewApp(ui.AppConfig{
		LoadNews:     cmds.loadNews,
		RefreshNews:  cmds.refreshNews,
		SaveSnapshot: cmds.saveSnapshot(),
		Chart:        chartOpts,
		Feed:         feed.Options{Paginate: variant.Paginate, PageSize: variant.PageSize},
		UI:           cfg.UI,
		Obs:          ui.ObsConfig{Logger: events, Ring: ring},
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	program := tea.NewProgram(app, opts...)

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		logging.Error("Error running program", "err", err)
		events.Error(otel.KindError, "main", err)
		fmt.Fprintf(os.Stderr, "chainpulse: %v\n", err)
	}

	// Graceful shutdown
	cancel()
	events.Info(otel.KindShutdown, "main", "bye")
}
