// Package app is the composition root: it builds every component
// described across the appliance's sub-packages, drives them through the
// Sync -> LowLevelInit -> HighLevelInit -> Application boot barrier, and
// owns their steady-state run loops for the life of the process.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/fx"

	"barracuda/internal/app/boot"
	"barracuda/internal/app/bus"
	"barracuda/internal/app/capability"
	"barracuda/internal/app/confighandlers"
	"barracuda/internal/app/console"
	"barracuda/internal/app/crash"
	"barracuda/internal/app/eventlog"
	"barracuda/internal/app/filewatch"
	"barracuda/internal/app/health"
	"barracuda/internal/app/iomanager"
	"barracuda/internal/app/passageway"
	"barracuda/internal/app/sud"
	"barracuda/internal/app/ticker"
	"barracuda/internal/app/timer"
	"barracuda/internal/app/whitelist"
	"barracuda/internal/config"
	"barracuda/internal/config/logger"
)

// bootModuleCount is the number of workers App.Start registers with the
// boot supervisor. Keep in sync with the Start calls below.
const bootModuleCount = 7

// App wires together every appliance component and owns their lifetime.
type App struct {
	cfg   *config.Config
	bus   *bus.Bus
	log   logger.Logger
	crash crash.Reporter

	caps    *capability.Aggregator
	timer   *timer.Service
	events  *eventlog.Buffer
	iomgr   *iomanager.Manager
	store   *whitelist.Store
	eval    *whitelist.Evaluator
	ticker  *ticker.Ticker
	reg     *confighandlers.Registry
	watcher *filewatch.Watcher
	health  *health.Sampler
	console *console.Reader

	passageways []*passageway.Driver

	wg sync.WaitGroup
}

// NewApp builds every component. Capability advertisements come from
// cfg.IO.Modules and cfg.ConsoleAccessPoints - static configuration
// standing in for the LowLevelInit advertisements real hardware modules
// would emit - so the aggregator is built synchronously here rather than
// across the boot barrier.
func NewApp(cfg *config.Config, b *bus.Bus, log logger.Logger, reporter crash.Reporter) (*App, error) {
	caps, err := buildCapabilities(cfg, reporter)
	if err != nil {
		return nil, err
	}

	watcher, err := filewatch.New(log)
	if err != nil {
		return nil, err
	}

	events := eventlog.New(config.EventLogCapacity)
	timerSvc := timer.NewService()
	store := whitelist.NewStore()

	return &App{
		cfg:   cfg,
		bus:   b,
		log:   log.WithComponent("APP"),
		crash: reporter,

		caps:    caps,
		timer:   timerSvc,
		events:  events,
		iomgr:   iomanager.New(b, caps, timerSvc, log),
		store:   store,
		eval:    whitelist.NewEvaluator(b, store, events, log),
		ticker:  ticker.New(b),
		reg:     confighandlers.New(),
		watcher: watcher,
		health:  health.New(events, log),
		console: console.NewReader(b, log),
	}, nil
}

// buildCapabilities gathers every advertisement and builds the aggregator.
// Add only panics on a mutate-after-build call, which can't happen against
// a freshly constructed Aggregator - the recover exists so that if it ever
// does (a genuine programming error), it reaches the crash reporter before
// the process goes down instead of just unwinding the stack silently.
func buildCapabilities(cfg *config.Config, reporter crash.Reporter) (*capability.Aggregator, error) {
	caps := capability.New()

	defer func() {
		if r := recover(); r != nil {
			reErr, ok := r.(error)
			if !ok {
				reErr = fmt.Errorf("%v", r)
			}

			reporter.ReportFatal(reErr, map[string]string{"phase": "capability_add"})
			panic(r)
		}
	}()

	for _, m := range cfg.IO.Modules {
		base := sud.Make(sud.KindIoManager, m.Instance, 0)

		caps.Add(capability.Advertisement{
			ModuleID: base,
			Kind:     capability.KindInputs,
			BaseSUD:  base,
			Count:    uint16(m.Inputs),
		})

		caps.Add(capability.Advertisement{
			ModuleID: base,
			Kind:     capability.KindOutputs,
			BaseSUD:  base,
			Count:    uint16(m.Outputs),
		})
	}

	consoleBase := sud.Make(sud.KindConsoleInput, 0, 0)
	caps.Add(capability.Advertisement{
		ModuleID: consoleBase,
		Kind:     capability.KindAccessPoints,
		BaseSUD:  consoleBase,
		Count:    uint16(cfg.ConsoleAccessPoints),
	})

	if err := caps.Build(); err != nil {
		reporter.ReportFatal(err, map[string]string{"phase": "capability_build"})
		return nil, err
	}

	return caps, nil
}

// Start builds the boot barrier, registers every worker, and blocks until
// stop closes and every worker's run loop has returned.
func (a *App) Start(stop <-chan struct{}) error {
	sup := boot.NewSupervisor(a.bus, a.log, bootModuleCount)

	a.spawn(sud.Make(sud.KindGenericWhitelist, 0, 0), a.loadWhitelist, a.registerHandlers, func() {
		a.eval.Run(stop)
	})

	a.spawn(sud.Make(sud.KindProfile, 0, 0), a.loadBinProfiles, a.registerTickerHandlers, func() {
		a.ticker.Run(stop)
	})

	a.spawn(sud.Make(sud.KindTrivialDCM, 0, 0), a.loadPassageways, a.registerPassagewayHandlers, func() {
		a.runPassageways(stop)
	})

	a.spawn(sud.Make(sud.KindIoManager, 0xFF, 0), nil, nil, func() {
		a.iomgr.Run(stop)
	})

	a.spawn(sud.Make(sud.KindTrace, 0, 0), nil, a.armFileWatches, func() {
		a.watcher.Run(stop)
		_ = a.watcher.Close()
	})

	a.spawn(sud.Make(sud.KindConsoleInput, 0, 0), nil, nil, func() {
		if err := a.console.Run(stop); err != nil {
			a.log.Error().Err(err).Msg("console reader exited")
		}
	})

	a.spawn(sud.Make(sud.KindEventStore, 0, 0), nil, a.registerEventHandlers, func() {
		a.health.Run(stop)
	})

	if err := sup.Run(); err != nil {
		a.crash.ReportFatal(err, map[string]string{"phase": "boot"})
		return err
	}

	a.wg.Wait()

	return nil
}

// spawn starts one boot.Worker goroutine: it performs the Sync/LLI/HLI
// handshake, waits for StageApplication, then calls run for the rest of
// the process's life.
func (a *App) spawn(id sud.SUD, lli, hli func(), run func()) {
	a.wg.Add(1)

	go func() {
		defer a.wg.Done()

		w := boot.NewWorker(a.bus, id)
		w.Run(lli, hli)
		w.WaitApplication()
		run()
	}()
}

func (a *App) loadWhitelist() {
	if err := whitelist.LoadEntries(a.store, a.cfg.Files.Whitelist); err != nil {
		a.log.Error().Err(err).Str("file", a.cfg.Files.Whitelist).Msg("failed to load whitelist entries")
	}

	if err := whitelist.LoadProfiles(a.store, a.cfg.Files.Profiles); err != nil {
		a.log.Error().Err(err).Str("file", a.cfg.Files.Profiles).Msg("failed to load whitelist profiles")
	}
}

func (a *App) registerHandlers() {
	if err := whitelist.RegisterHandlers(a.reg, a.store); err != nil {
		a.log.Error().Err(err).Msg("failed to register whitelist config handlers")
	}
}

func (a *App) registerTickerHandlers() {
	if err := ticker.RegisterHandlers(a.reg, a.ticker); err != nil {
		a.log.Error().Err(err).Msg("failed to register ticker config handlers")
	}
}

func (a *App) loadBinProfiles() {
	if err := ticker.Load(a.ticker, a.cfg.Files.BinProfiles); err != nil {
		a.log.Error().Err(err).Str("file", a.cfg.Files.BinProfiles).Msg("failed to load ticker profiles")
	}
}

func (a *App) loadPassageways() {
	settings, err := passageway.LoadSettings(a.cfg.Files.Passageways)
	if err != nil {
		a.log.Error().Err(err).Str("file", a.cfg.Files.Passageways).Msg("failed to load passageway settings")
		return
	}

	for _, s := range settings {
		d, err := passageway.BuildDriver(s, a.bus, a.timer, a.events, a.log)
		if err != nil {
			a.log.Error().Err(err).Int("passageway_id", s.ID).Msg("failed to build passageway driver")
			continue
		}

		a.passageways = append(a.passageways, d)
	}
}

func (a *App) registerPassagewayHandlers() {
	if err := passageway.RegisterHandlers(a.reg, a.passageways); err != nil {
		a.log.Error().Err(err).Msg("failed to register passageway config handlers")
	}
}

func (a *App) registerEventHandlers() {
	if err := eventlog.RegisterHandlers(a.reg, a.events); err != nil {
		a.log.Error().Err(err).Msg("failed to register event log config handlers")
	}
}

func (a *App) runPassageways(stop <-chan struct{}) {
	var wg sync.WaitGroup

	for _, d := range a.passageways {
		wg.Add(1)

		go func(d *passageway.Driver) {
			defer wg.Done()
			d.Run(stop)
		}(d)
	}

	wg.Wait()
}

// armFileWatches wires filewatch onto the four persisted record files.
// Entries, profiles, and bin-profiles reload in place under their owning
// store's mutex. A passageway topology change can't be applied to an
// already-built Driver's wiring without tearing it down mid-flight, so it
// only logs - applying it requires a restart.
func (a *App) armFileWatches() {
	if err := a.watcher.Watch(a.cfg.Files.Whitelist, func() error {
		return whitelist.LoadEntries(a.store, a.cfg.Files.Whitelist)
	}); err != nil {
		a.log.Error().Err(err).Str("file", a.cfg.Files.Whitelist).Msg("failed to watch whitelist file")
	}

	if err := a.watcher.Watch(a.cfg.Files.Profiles, func() error {
		return whitelist.LoadProfiles(a.store, a.cfg.Files.Profiles)
	}); err != nil {
		a.log.Error().Err(err).Str("file", a.cfg.Files.Profiles).Msg("failed to watch profiles file")
	}

	if err := a.watcher.Watch(a.cfg.Files.BinProfiles, func() error {
		return ticker.Load(a.ticker, a.cfg.Files.BinProfiles)
	}); err != nil {
		a.log.Error().Err(err).Str("file", a.cfg.Files.BinProfiles).Msg("failed to watch bin profiles file")
	}

	if err := a.watcher.Watch(a.cfg.Files.Passageways, func() error {
		a.log.Warn().Msg("passageways file changed externally; restart required to apply new topology")
		return nil
	}); err != nil {
		a.log.Error().Err(err).Str("file", a.cfg.Files.Passageways).Msg("failed to watch passageways file")
	}
}

// Module provides the fx dependency injection options for the app package.
var Module = fx.Options(
	bus.Module,
	crash.Module,
	fx.Provide(NewApp),
	fx.Invoke(Register),
)

// Register wires App into the fx lifecycle: OnStart launches Start in the
// background so fx can finish bootstrapping without waiting on the boot
// barrier, and OnStop closes the stop channel and waits for every worker
// to drain.
func Register(lifecycle fx.Lifecycle, app *App) {
	stop := make(chan struct{})
	done := make(chan struct{})

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)

				if err := app.Start(stop); err != nil {
					app.log.Error().Err(err).Msg("application exited with error")
					os.Exit(1)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)

			select {
			case <-done:
			case <-ctx.Done():
			}

			return nil
		},
	})
}
