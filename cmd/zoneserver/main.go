package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reqserver/zoneserver/internal/config"
	"github.com/reqserver/zoneserver/internal/core/event"
	coresys "github.com/reqserver/zoneserver/internal/core/system"
	"github.com/reqserver/zoneserver/internal/data"
	"github.com/reqserver/zoneserver/internal/handler"
	gonet "github.com/reqserver/zoneserver/internal/net"
	"github.com/reqserver/zoneserver/internal/net/packet"
	"github.com/reqserver/zoneserver/internal/persist"
	"github.com/reqserver/zoneserver/internal/session"
	"github.com/reqserver/zoneserver/internal/system"
	"github.com/reqserver/zoneserver/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(zoneName string, zoneID uint64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              REQ Zone Server               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mzone:\033[0m %s \033[90m(id %d)\033[0m\n\n", zoneName, zoneID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	cfgPath := "config/zone.toml"
	if p := os.Getenv("ZONESERVER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyFlags(flag.NewFlagSet("zoneserver", flag.ExitOnError), os.Args[1:]); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.ZoneName, cfg.Server.ZoneID)

	printSection("data")

	npcRepo := data.NewNPCRepo(log)
	if !npcRepo.LoadTemplates(cfg.World.TemplatesPath) {
		return fmt.Errorf("load npc templates: failed reading %s", cfg.World.TemplatesPath)
	}
	if !npcRepo.LoadZoneSpawns(cfg.World.SpawnsPath) {
		return fmt.Errorf("load npc spawns: failed reading %s", cfg.World.SpawnsPath)
	}
	printStat("npc templates", npcRepo.TemplateCount())
	printStat("npc spawn points", len(npcRepo.AllSpawns()))

	xpTable := data.NewXPTable()
	if err := xpTable.Load(cfg.World.XPTablePath, log); err != nil {
		return fmt.Errorf("load xp table: %w", err)
	}
	printStat("xp levels", int(xpTable.MaxLevel()))

	worldRules, err := data.LoadWorldRules(cfg.World.WorldRulesPath, log)
	if err != nil {
		return fmt.Errorf("load world rules: %w", err)
	}
	printOK("world rules loaded")

	worldState := world.NewState()
	npcCount := spawnNPCs(worldState, npcRepo, log)
	printStat("npc spawned", npcCount)
	fmt.Println()

	charRepo := persist.NewCharacterRepo(cfg.Persistence.CharactersDir, log)
	sessionSvc := session.NewService(cfg.Persistence.SessionsPath, log)
	sessionSvc.ReloadFromFile()

	eventBus := event.NewBus()
	event.Subscribe(eventBus, func(ev event.EntityKilled) {
		log.Debug("event: EntityKilled", zap.Uint64("npc_id", ev.NPCID), zap.Uint64("killer", ev.KillerID))
	})
	event.Subscribe(eventBus, func(ev event.PlayerDied) {
		log.Info("event: PlayerDied", zap.Uint64("character_id", ev.CharacterID))
	})
	event.Subscribe(eventBus, func(ev event.PlayerRespawned) {
		log.Info("event: PlayerRespawned", zap.Uint64("character_id", ev.CharacterID))
	})

	conns := gonet.NewConnectionRegistry()

	combatQueue := system.NewCombatQueue()
	deps := &handler.Deps{
		Config:   cfg,
		World:    worldState,
		Conns:    conns,
		CharRepo: charRepo,
		NPCRepo:  npcRepo,
		XPTable:  xpTable,
		Rules:    worldRules,
		Sessions: sessionSvc,
		Bus:      eventBus,
		Combat:   combatQueue,
		Log:      log,
	}

	pktReg := packet.NewRegistry(log)
	handler.RegisterAll(pktReg, deps)

	netServer, err := gonet.NewServer(cfg.Network.BindAddress, cfg.Network.InQueueSize, cfg.Network.OutQueueSize, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, conns, deps, cfg.Network.MaxPacketsPerTick, log))
	runner.Register(system.NewEventDispatchSystem(eventBus))
	runner.Register(system.NewPlayerSimSystem(deps))
	runner.Register(system.NewNPCAISystem(deps))
	runner.Register(system.NewNPCRespawnSystem(worldState, npcRepo))
	runner.Register(system.NewCombatResolverSystem(deps, combatQueue, conns))
	runner.Register(system.NewVisibilitySystem(deps, conns, log))
	persistSys := system.NewPersistenceSystem(worldState, charRepo, cfg.World.AutosaveIntervalSec, log)
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(worldState, log))

	printSection("ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		netServer.AcceptLoop()
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.World.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				runner.Tick(cfg.World.TickRate)
			}
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case sig := <-sigCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			persistSys.SaveAll()
			netServer.Shutdown()
			cancel()
			return nil
		}
	})

	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("tick rate %s, autosave every %ds", cfg.World.TickRate, cfg.World.AutosaveIntervalSec))
	fmt.Println()

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server loop: %w", err)
	}
	log.Info("zone server stopped")
	return nil
}

// spawnNPCs instantiates one NPC per configured spawn point, seeding
// combat stats from the spawn's template (§3, §6.3: consumed NPC Template
// & Spawn Repository). A spawn point referencing an unknown template is
// skipped with a warning rather than aborting boot.
func spawnNPCs(ws *world.State, npcRepo *data.NPCRepo, log *zap.Logger) int {
	count := 0
	for _, sp := range npcRepo.AllSpawns() {
		tmpl, ok := npcRepo.TemplateByID(sp.TemplateID)
		if !ok {
			log.Warn("spawn point references unknown template",
				zap.Uint64("spawn_id", sp.SpawnID), zap.Uint64("template_id", sp.TemplateID))
			continue
		}
		n := world.NewNPC(sp.TemplateID, sp.SpawnID, sp.X, sp.Y, sp.Z)
		n.Heading = sp.Heading
		n.MaxHP = tmpl.MaxHP
		n.HP = tmpl.MaxHP
		n.Level = tmpl.Level
		n.Damage = tmpl.MaxDamage
		n.AC = tmpl.AC
		n.AggroRadius = tmpl.AggroRadius
		n.AssistRadius = tmpl.AssistRadius
		n.LeashRadius = tmpl.LeashRadius
		n.Aggressive = tmpl.Aggressive
		ws.AddNPC(n)
		count++
	}
	return count
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
