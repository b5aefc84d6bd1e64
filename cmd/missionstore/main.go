package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/factionboard/missionstore/internal/cache"
	"github.com/factionboard/missionstore/internal/config"
	"github.com/factionboard/missionstore/internal/influx"
	"github.com/factionboard/missionstore/internal/logging"
	"github.com/factionboard/missionstore/internal/storage"
	"github.com/factionboard/missionstore/internal/store"
	"github.com/factionboard/missionstore/pkg/core"
)

// Version can be overridden at build time via ldflags.
var Version = "0.0.1"

var rootCmd = &cobra.Command{
	Use:   "missionstore",
	Short: "Faction mission board",
	Long: `missionstore keeps a tabletop campaign's mission board: jobs posted by
factions, then accepted, completed or failed by the party. The board lives
in a local JSON file and mirrors itself to a shared database grid when one
is configured. Statuses move Available -> Accepted -> Completed/Failed;
reopen puts a mission back to Available.`,
	Version: Version,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("MISSIONSTORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("config", ".", "config directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("configDir", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(statusVerbCmd("accept", "Mark a mission Accepted", core.StatusAccepted))
	rootCmd.AddCommand(statusVerbCmd("complete", "Mark a mission Completed", core.StatusCompleted))
	rootCmd.AddCommand(statusVerbCmd("fail", "Mark a mission Failed", core.StatusFailed))
	rootCmd.AddCommand(statusVerbCmd("reopen", "Put a mission back to Available", core.StatusAvailable))
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statusCmd())
}

// withStore loads config, wires logging, backends and telemetry, then
// hands the assembled store to fn. Everything opened here is closed on
// the way out.
func withStore(ctx context.Context, fn func(context.Context, *store.Service) error) error {
	if err := config.Load(viper.GetString("configDir")); err != nil {
		return err
	}
	log := logging.Setup()

	backends := storage.NewBackends(log)
	defer backends.Close()

	var activity store.ActivityRecorder
	if config.GetInfluxConfig().Enabled {
		flux := influx.NewManager(log, filepath.Join(viper.GetString("dataDir"), "mission_activity_backup.gz"))
		if err := flux.Connect(); err != nil {
			log.Warn().Err(err).Msg("Activity telemetry unavailable")
		} else {
			activity = flux
		}
		defer flux.Close()
	}

	svc, err := store.New(store.Dependencies{
		Backends: backends,
		Cache:    cache.NewDocumentCache(),
		Factions: config.GetFactions(),
		Policy:   store.ParsePolicy(config.GetSavePolicy()),
		Activity: activity,
		Logger:   log,
		Now:      time.Now,
	})
	if err != nil {
		return err
	}
	return fn(ctx, svc)
}

// --- output helpers ---

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMissionTable(missions []core.Mission) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"ID", "Faction", "Title", "Status", "Reward", "Location", "Assigned"})
	for _, m := range missions {
		tw.AppendRow(table.Row{m.ID, m.Faction, m.Title, m.Status, m.Reward, m.Location, m.AssignedTo})
	}
	tw.Render()
}
