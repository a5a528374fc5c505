// Command ndnreposyncd runs a single repo sync daemon: it owns the
// external data store, the sync tree's durable backing, the network
// face, the protocol engine, the command surface, and (optionally) a
// filesystem-watch handle, and blocks until interrupted.
package main

import (
	"encoding/hex"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/WeiqiJust/NDN-Repo/auth/ecdh"
	"github.com/WeiqiJust/NDN-Repo/auth/ed25519"
	"github.com/WeiqiJust/NDN-Repo/face"
	"github.com/WeiqiJust/NDN-Repo/handles/watch"
	"github.com/WeiqiJust/NDN-Repo/internal/config"
	"github.com/WeiqiJust/NDN-Repo/internal/xlog"
	"github.com/WeiqiJust/NDN-Repo/params"
	"github.com/WeiqiJust/NDN-Repo/store"
	"github.com/WeiqiJust/NDN-Repo/sync/command"
	"github.com/WeiqiJust/NDN-Repo/sync/engine"
	"github.com/WeiqiJust/NDN-Repo/sync/treestore"
)

func main() {
	cfgPath := flag.String("config", "repo.toml", "path to repo.toml")
	watchDir := flag.String("watch", "", "directory to mirror into the repo via the watch handle (optional)")
	flag.Parse()

	log := xlog.Root.New("component", "ndnreposyncd")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Crit("config load failed", "err", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.Node.DbDir, 64*1024*1024)
	if err != nil {
		log.Crit("store open failed", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	ts, err := treestore.Open(cfg.Node.DbDir)
	if err != nil {
		log.Crit("tree store open failed", "err", err)
		os.Exit(1)
	}
	defer ts.Close()

	key, err := ed25519.Generate()
	if err != nil {
		log.Crit("signing key generation failed", "err", err)
		os.Exit(1)
	}

	commandKey, err := ecdh.GenerateKeyPair()
	if err != nil {
		log.Crit("command-channel key generation failed", "err", err)
		os.Exit(1)
	}
	pubPath := filepath.Join(cfg.Node.DbDir, "command.pub")
	if err := os.WriteFile(pubPath, []byte(hex.EncodeToString(commandKey.Public)), 0644); err != nil {
		log.Crit("command-channel public key write failed", "path", pubPath, "err", err)
		os.Exit(1)
	}

	net := face.DefaultNetwork()

	pCfg := params.Config{
		SyncInterestReexpress:     cfg.Protocol.SyncInterestReexpress,
		RecoveryRetransmitInitial: cfg.Protocol.RecoveryRetransmit,
		RetryTimes:                cfg.Protocol.RetryTimes,
		Pipeline:                  cfg.Protocol.Pipeline,
		DefaultInterestLifetime:   cfg.Protocol.DefaultInterestLife,
	}
	if cfg.Protocol.WidePipeline {
		params.Enable(&pCfg, params.RevisionWidePipeline)
		log.Info("wide pipeline enabled", "pipeline", pCfg.Pipeline)
	}

	newEngine := func(creatorName string) (*engine.Engine, error) {
		e := engine.New(engine.Config{
			SyncPrefix:  cfg.Node.SyncPrefix,
			CreatorName: creatorName,
			Face:        net.NewFace(true),
			Store:       st,
			TreeStore:   ts,
			Signer:      key,
			Validator:   key,
			Params:      pCfg,
			Logger:      log.New("component", "sync-engine"),
		})
		e.OnError(func(err error) { log.Error("engine error", "err", err) })
		return e, nil
	}

	handler := command.New(command.Config{
		CommandPrefix: cfg.Node.CommandPrefix,
		BaseCreator:   cfg.Node.CreatorName,
		Face:          net.NewFace(true),
		NewEngine:     newEngine,
		ECDHKey:       commandKey,
		RateLimit:     5,
		RateBurst:     10,
		Logger:        log.New("component", "sync-command"),
	})
	// The original bootstrap registers the command prefix before the
	// sync prefix and only starts the engine once both succeed
	// (SPEC_FULL.md §4 supplemented feature 2); Listen registers the
	// command prefix, and Start below drives the sync-prefix
	// registration through the engine's own Start.
	handler.Listen()
	log.Info("command channel ready", "pubkey-file", pubPath)

	if status := handler.Start(false); status != command.StatusStarted {
		log.Crit("engine failed to start", "status", status)
		os.Exit(1)
	}
	log.Info("engine started", "creator", handler.Engine().CreatorName())

	if *watchDir != "" {
		w := watch.New(*watchDir, st, handler.Engine(), log.New("component", "watch-handle"))
		if err := w.Start(); err != nil {
			log.Crit("watch handle failed to start", "dir", *watchDir, "err", err)
			os.Exit(1)
		}
		defer w.Stop()
		log.Info("watching directory", "dir", *watchDir)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	handler.Stop()
}
