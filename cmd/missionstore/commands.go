package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/factionboard/missionstore/internal/store"
	"github.com/factionboard/missionstore/pkg/core"
)

func listCmd() *cobra.Command {
	var faction, statusList, search string
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List missions",
		Long:  "Lists the board. Without flags this is the player view: Available and Accepted missions only. --all shows the whole board.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := core.FilterOptions{Faction: faction, Query: search}
			switch {
			case cmd.Flags().Changed("status"):
				statuses, err := parseStatusList(statusList)
				if err != nil {
					return err
				}
				opts.Statuses = statuses
			case !all:
				opts.Statuses = []core.Status{core.StatusAvailable, core.StatusAccepted}
			}
			return withStore(cmd.Context(), func(ctx context.Context, svc *store.Service) error {
				missions := svc.Filter(ctx, opts)
				if viper.GetBool("json") {
					return printJSON(missions)
				}
				printMissionTable(missions)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&faction, "faction", "", "faction filter")
	cmd.Flags().StringVar(&statusList, "status", "", "status filter, comma-separated")
	cmd.Flags().StringVar(&search, "search", "", "substring match over title, location and reward")
	cmd.Flags().BoolVar(&all, "all", false, "show every status")
	return cmd
}

func parseStatusList(s string) ([]core.Status, error) {
	var statuses []core.Status
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		status, err := core.ParseStatus(part)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func addCmd() *cobra.Command {
	var faction, title, reward, location, hook string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Post a mission",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, svc *store.Service) error {
				mission, err := svc.CreateMission(ctx, faction, title, reward, location, hook)
				if err != nil {
					return err
				}
				return printJSONOrTable(mission)
			})
		},
	}
	cmd.Flags().StringVar(&faction, "faction", "", "posting faction")
	cmd.Flags().StringVar(&title, "title", "", "mission title")
	cmd.Flags().StringVar(&reward, "reward", "", "posted reward")
	cmd.Flags().StringVar(&location, "location", "", "where the job takes place")
	cmd.Flags().StringVar(&hook, "hook", "", "hook text read to the players")
	_ = cmd.MarkFlagRequired("faction")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, svc *store.Service) error {
				mission, ok := svc.Find(ctx, args[0])
				if !ok {
					return fmt.Errorf("mission %s not found", args[0])
				}
				return printJSONOrTable(mission)
			})
		},
	}
	return cmd
}

func editCmd() *cobra.Command {
	var title, reward, location, hook, status, assignedTo, notes string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit mission fields",
		Long:  "Edits a mission. Only flags actually set become part of the patch; every other field keeps its value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch core.MissionPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("reward") {
				patch.Reward = &reward
			}
			if cmd.Flags().Changed("location") {
				patch.Location = &location
			}
			if cmd.Flags().Changed("hook") {
				patch.Hook = &hook
			}
			if cmd.Flags().Changed("status") {
				parsed, err := core.ParseStatus(status)
				if err != nil {
					return err
				}
				patch.Status = &parsed
			}
			if cmd.Flags().Changed("assigned-to") {
				patch.AssignedTo = &assignedTo
			}
			if cmd.Flags().Changed("notes") {
				patch.Notes = &notes
			}
			return withStore(cmd.Context(), func(ctx context.Context, svc *store.Service) error {
				mission, found, err := svc.UpdateMission(ctx, args[0], patch)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("mission %s not found", args[0])
				}
				return printJSONOrTable(mission)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&reward, "reward", "", "reward")
	cmd.Flags().StringVar(&location, "location", "", "location")
	cmd.Flags().StringVar(&hook, "hook", "", "hook text")
	cmd.Flags().StringVar(&status, "status", "", "status (Available, Accepted, Completed, Failed)")
	cmd.Flags().StringVar(&assignedTo, "assigned-to", "", "party or character holding the job (empty clears)")
	cmd.Flags().StringVar(&notes, "notes", "", "GM notes (empty clears)")
	return cmd
}

func statusVerbCmd(use, short string, status core.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, svc *store.Service) error {
				mission, found, err := svc.SetStatus(ctx, args[0], status)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("mission %s not found", args[0])
				}
				return printJSONOrTable(mission)
			})
		},
	}
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a mission from the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, svc *store.Service) error {
				removed, err := svc.DeleteMission(ctx, args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("mission %s not found", args[0])
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"deleted": args[0]})
				}
				fmt.Println("deleted", args[0])
				return nil
			})
		},
	}
	return cmd
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, svc *store.Service) error {
				data, err := svc.Export(ctx)
				if err != nil {
					return err
				}
				if out == "" {
					_, err = os.Stdout.Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0644); err != nil {
					return err
				}
				fmt.Println("wrote", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write to file instead of stdout")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole board with a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), func(ctx context.Context, svc *store.Service) error {
				if err := svc.Import(ctx, data); err != nil {
					return err
				}
				count := len(svc.Load(ctx).Missions)
				if viper.GetBool("json") {
					return printJSON(map[string]any{"imported": count, "file": args[0]})
				}
				fmt.Printf("imported %d missions from %s\n", count, args[0])
				return nil
			})
		},
	}
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Board summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, svc *store.Service) error {
				stats := svc.Stats(ctx)
				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"mode":       stats.Mode.String(),
						"missions":   stats.Missions,
						"by_status":  stats.ByStatus,
						"by_faction": stats.ByFaction,
						"updated_at": stats.UpdatedAt,
						"revision":   stats.Revision,
					})
				}
				fmt.Printf("Storage: %s\n", stats.Mode)
				fmt.Printf("Missions: %d (updated %s)\n", stats.Missions, stats.UpdatedAt.Format(time.RFC3339))
				fmt.Println("By status:")
				for _, status := range core.Statuses() {
					if n := stats.ByStatus[status]; n > 0 {
						fmt.Printf("  %s: %d\n", status, n)
					}
				}
				fmt.Println("By faction:")
				for faction, n := range stats.ByFaction {
					fmt.Printf("  %s: %d\n", faction, n)
				}
				return nil
			})
		},
	}
	return cmd
}
