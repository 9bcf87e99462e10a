// Command tileviewer opens a tile-pyramid map and displays it in a Qt
// window: config -> logging -> tilemap/archive -> tilecache ->
// projection -> gpsclient -> view -> maplayer/mapsource -> overlay ->
// widgethost/qt -> runtime.Manager, the wiring order SPEC_FULL.md's
// package layout describes. config, widgethost, and gpsclient are all
// registered as runtime.Components, so manager.StartAll both opens the
// window and dials gpsd (gpsclient.Client.Start calls Connect, which
// reconnects on its own via the taskrun.Host timer if the dial fails);
// manager.StopAll disconnects it on the way out. Grounded on the
// teacher's cmd/openteacher main: module manager construction and
// signal-driven graceful shutdown, re-scoped from registering dozens
// of lesson modules to this viewer's fixed component set.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LaPingvino/tilepilot/internal/config"
	"github.com/LaPingvino/tilepilot/internal/gpsclient"
	"github.com/LaPingvino/tilepilot/internal/logging"
	"github.com/LaPingvino/tilepilot/internal/mapsource"
	"github.com/LaPingvino/tilepilot/internal/overlay"
	"github.com/LaPingvino/tilepilot/internal/runtime"
	"github.com/LaPingvino/tilepilot/internal/tilecache"
	"github.com/LaPingvino/tilepilot/internal/tilecodec"
	"github.com/LaPingvino/tilepilot/internal/tilemap"
	"github.com/LaPingvino/tilepilot/internal/view"
	"github.com/LaPingvino/tilepilot/internal/waypoints"
	qthost "github.com/LaPingvino/tilepilot/internal/widgethost/qt"
)

func main() {
	mapFlag := flag.String("map", "", "path to a .tmc map manifest (overrides the saved default map)")
	settingsFlag := flag.String("settings", "", "path to the settings JSON file (default ~/.tilepilot/settings.json)")
	flag.Parse()

	log := logging.Global().Module("main")

	settingsPath := *settingsFlag
	if settingsPath == "" {
		settingsPath = config.DefaultPath()
	}
	cfg := config.New(settingsPath)
	// Load settings now: the window size and GPS client below are built
	// from them before manager.StartAll runs.
	if err := cfg.Start(context.Background()); err != nil {
		log.Error("load settings: %v", err)
		os.Exit(1)
	}

	winW, winH := 800, 600
	if v, err := cfg.GetInt(config.KeyWindowWidth); err == nil {
		winW = v
	}
	if v, err := cfg.GetInt(config.KeyWindowHeight); err == nil {
		winH = v
	}
	app := qthost.NewApp("tilepilot", winW, winH)

	gpsHost, _ := cfg.GetString(config.KeyGPSHost)
	gpsPort, _ := cfg.GetString(config.KeyGPSPort)
	reconnectSec, _ := cfg.GetInt(config.KeyGPSReconnectSec)
	gps := gpsclient.New(gpsHost, gpsPort, time.Duration(reconnectSec)*time.Second, qthost.NewTaskHost())

	manager := runtime.NewManager()
	if err := manager.Register(cfg); err != nil {
		log.Error("register config: %v", err)
		os.Exit(1)
	}
	if err := manager.Register(app); err != nil {
		log.Error("register widgethost: %v", err)
		os.Exit(1)
	}
	if err := manager.Register(gps); err != nil {
		log.Error("register gpsclient: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal %v, shutting down", sig)
		cancel()
	}()

	if err := manager.StartAll(ctx); err != nil {
		log.Error("startup failed: %v", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := manager.StopAll(stopCtx); err != nil {
			log.Error("shutdown: %v", err)
		}
	}()

	w, h := app.Widget().Canvas().Width(), app.Widget().Canvas().Height()

	vw := view.New(app.Widget())
	vw.Resize(w, h)
	app.Widget().OnResize(func(w, h int) { vw.Resize(w, h) })

	lowWater, _ := cfg.GetInt64(config.KeyCacheLowWater)
	highWater, _ := cfg.GetInt64(config.KeyCacheHighWater)
	cache := tilecache.New(lowWater, highWater, qthost.NewTaskHost())

	mapPath := *mapFlag
	if mapPath == "" {
		mapPath, _ = cfg.GetString(config.KeyDefaultMap)
	}
	if mapPath != "" {
		descriptor, err := tilemap.LoadDescriptor(mapPath)
		if err != nil {
			log.Error("load map %s: %v", mapPath, err)
		} else {
			defer descriptor.Close()
			src := mapsource.New(cache, tilecodec.StdDecoder{}, descriptor)
			vw.ChooseMap(src)
		}
	}

	gpsLayer := overlay.NewGPS(gps)
	vw.PrependLayer(gpsLayer)

	waypointsLayer := overlay.NewWaypoints(waypoints.New(""))
	vw.PrependLayer(waypointsLayer)

	gridLayer := overlay.NewGrid()
	vw.PrependLayer(gridLayer)

	vw.RequestRedraw(0, 0, w, h)

	app.Exec()

	// manager.StopAll (which disconnects gps) and descriptor.Close run
	// via the defers above as main returns.
}
