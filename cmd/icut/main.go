package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"icut-go/internal/app"
	"icut-go/internal/config"
	"icut-go/internal/editor"
	"icut-go/internal/timeline"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func readConfig() (*config.Config, error) {
	paths, err := app.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("resolving default paths: %w", err)
	}

	cfg, err := config.ReadFromFile(paths.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates an ICutApp. The caller must close it
// with closeApp. operation names the command in the edit history.
func newApp(ctx context.Context, operation string, params ...string) (*app.ICutApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewICutApp(ctx, cfg, operation, strings.Join(params, " "))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func closeApp(ctx context.Context, a *app.ICutApp) {
	if err := a.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func formatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return d.Truncate(time.Millisecond).String()
}

func optional(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

var rootCmd = &cobra.Command{
	Use:          "icut",
	Short:        "Timeline video editor library",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("resolving default paths: %w", err)
		}

		libraryID := uuid.New().String()
		cfg := config.NewConfig(libraryID, paths.BaseDir)

		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Library ID: %s\n", libraryID)
		fmt.Printf("Base Dir:   %s\n", paths.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("resolving default paths: %w", err)
		}
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", paths.ConfigPath)
		fmt.Printf("Library ID: %s\n", cfg.LibraryID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		fmt.Printf("Project:    %d fps %dx%d\n", cfg.Project.FrameRate, cfg.Project.Width, cfg.Project.Height)
		fmt.Printf("Stills:     %s\n", formatMs(cfg.Timeline.StillDurationMs))
		for _, s := range cfg.Snapshots {
			fmt.Printf("Snapshots:  %s (%s)\n", s.Name, s.Type)
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(true)
		if err != nil {
			return err
		}
		pub, err := app.SetupKeys(cfg, passphrase)
		if err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Printf("Public key: %s\n", pub)
		return nil
	},
}

// project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fps, _ := cmd.Flags().GetInt64("fps")
		width, _ := cmd.Flags().GetInt64("width")
		height, _ := cmd.Flags().GetInt64("height")

		ctx := cmd.Context()
		a, err := newApp(ctx, "CreateProject", args[0])
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		p, err := a.CreateProject(ctx, timeline.NewProject{
			Name:             args[0],
			FrameRate:        fps,
			ResolutionWidth:  width,
			ResolutionHeight: height,
		})
		if err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		fmt.Printf("Created project #%d %q (%d fps, %dx%d)\n", p.ID, p.Name, p.FrameRate, p.ResolutionWidth, p.ResolutionHeight)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, "ListProjects")
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		projects, err := a.ListProjects(ctx)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects.")
			return nil
		}
		for _, p := range projects {
			fmt.Printf("#%-4d %-30s %3d fps  %dx%d  updated %s\n",
				p.ID, p.Name, p.FrameRate, p.ResolutionWidth, p.ResolutionHeight, humanize.Time(p.UpdatedAt))
		}
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a project's library and timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := parseID(args[0], "project")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, "ShowProject")
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		view, err := a.ShowProject(ctx, projectID)
		if err != nil {
			return err
		}
		p := view.Project
		fmt.Printf("Project #%d %q\n", p.ID, p.Name)
		fmt.Printf("  %d fps, %dx%d, created %s\n", p.FrameRate, p.ResolutionWidth, p.ResolutionHeight, humanize.Time(p.CreatedAt))
		fmt.Printf("  %d asset(s), %d track(s), timeline %s\n", len(view.Assets), len(view.Tracks), formatMs(view.DurationMs()))
		return nil
	},
}

// asset command
var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage the media library",
}

var assetImportCmd = &cobra.Command{
	Use:   "import PATH...",
	Short: "Import media files or folders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")

		ctx := cmd.Context()
		a, err := newApp(ctx, "ImportAssets", append([]string{fmt.Sprintf("project=%d", projectID)}, args...)...)
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		result, err := a.ImportAssets(ctx, projectID, args)
		if err != nil {
			return fmt.Errorf("importing: %w", err)
		}
		for _, asset := range result.Assets {
			fmt.Printf("+ #%-4d %-6s %s\n", asset.ID, asset.Kind, asset.FilePath)
		}
		for _, f := range result.Failures {
			fmt.Printf("! %s: %v\n", f.Path, f.Err)
		}
		fmt.Printf("Imported %d file(s), %d failed\n", len(result.Assets), len(result.Failures))
		if len(result.Assets) == 0 && len(result.Failures) > 0 {
			return errors.New("nothing imported")
		}
		return nil
	},
}

var assetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")

		ctx := cmd.Context()
		a, err := newApp(ctx, "ListAssets")
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		entries, err := a.ListAssets(ctx, projectID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No assets.")
			return nil
		}
		for _, e := range entries {
			missing := ""
			if e.Missing {
				missing = "  [missing]"
			}
			duration := "-"
			if e.DurationMs != nil {
				duration = formatMs(*e.DurationMs)
			}
			fmt.Printf("#%-4d %-6s %9s  %8s  %sx%s  %s%s\n",
				e.ID, e.Kind, humanize.Bytes(uint64(e.FileSizeBytes)), duration,
				optional(e.Width), optional(e.Height), e.FilePath, missing)
		}
		return nil
	},
}

var assetRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove an asset no clip uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assetID, err := parseID(args[0], "asset")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, "DeleteAsset", args[0])
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		if err := a.DeleteAsset(ctx, assetID); err != nil {
			return fmt.Errorf("removing asset: %w", err)
		}
		fmt.Printf("Removed asset #%d\n", assetID)
		return nil
	},
}

// timeline command
var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Work with a project's timeline",
}

var timelineCommitCmd = &cobra.Command{
	Use:   "commit ASSET_ID",
	Short: "Place an asset on the empty timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")
		assetID, err := parseID(args[0], "asset")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, "CommitAsset", fmt.Sprintf("project=%d", projectID), args[0])
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		result, err := a.CommitAsset(ctx, projectID, assetID)
		if err != nil {
			return fmt.Errorf("committing asset: %w", err)
		}
		fmt.Printf("Track #%d (%s), clip #%d at %s for %s\n",
			result.Track.ID, result.Track.TrackType, result.Clip.ID,
			formatMs(result.Clip.StartMs), formatMs(result.Clip.DurationMs))
		return nil
	},
}

var timelineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show tracks and clips",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")

		ctx := cmd.Context()
		a, err := newApp(ctx, "ShowTimeline")
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		view, err := a.ShowTimeline(ctx, projectID)
		if err != nil {
			return err
		}
		printTimeline(view)
		return nil
	},
}

func printTimeline(view *editor.View) {
	if len(view.Tracks) == 0 {
		fmt.Println("Timeline is empty.")
		return
	}
	for _, tv := range view.Tracks {
		flags := ""
		if tv.Track.IsLocked {
			flags += " locked"
		}
		if tv.Track.IsMuted {
			flags += " muted"
		}
		fmt.Printf("Track #%d %s %d%s\n", tv.Track.ID, tv.Track.TrackType, tv.Track.OrderIndex, flags)
		for _, c := range tv.Clips {
			fmt.Printf("  clip #%-4d asset #%-4d %10s - %-10s\n", c.ID, c.AssetID, formatMs(c.StartMs), formatMs(c.EndMs()))
		}
	}
	fmt.Printf("Duration: %s\n", formatMs(view.DurationMs()))
}

// clip command
var clipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Manage clips",
}

var clipAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Place an asset on an existing track",
	RunE: func(cmd *cobra.Command, args []string) error {
		trackID, _ := cmd.Flags().GetInt64("track")
		assetID, _ := cmd.Flags().GetInt64("asset")
		startMs, _ := cmd.Flags().GetInt64("start")

		ctx := cmd.Context()
		a, err := newApp(ctx, "AddClip",
			fmt.Sprintf("track=%d", trackID), fmt.Sprintf("asset=%d", assetID), fmt.Sprintf("start=%d", startMs))
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		clip, err := a.AddClip(ctx, trackID, assetID, startMs)
		if err != nil {
			return fmt.Errorf("adding clip: %w", err)
		}
		fmt.Printf("Clip #%d on track #%d: %s - %s\n", clip.ID, clip.TrackID, formatMs(clip.StartMs), formatMs(clip.EndMs()))
		return nil
	},
}

// drop command
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drive the drag-and-drop editor",
}

var dropReplayCmd = &cobra.Command{
	Use:   "replay SCRIPT",
	Short: "Replay a recorded drag-and-drop script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")

		ctx := cmd.Context()
		a, err := newApp(ctx, "ReplayScript", fmt.Sprintf("project=%d", projectID), args[0])
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		result, err := a.ReplayScript(ctx, projectID, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d asset(s)\n", len(result.Imported))
		if result.LastError != nil {
			fmt.Printf("Last error: %v\n", result.LastError)
		}
		printTimeline(result.View)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View edit operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		a, err := newApp(ctx, "History")
		if err != nil {
			return err
		}
		defer closeApp(ctx, a)

		ops, err := a.History(ctx, limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No edit operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				duration = op.FinishedAt.Time.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-8s  %-8s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage library snapshots",
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the local library with the newest snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _ := cmd.Flags().GetString("store")

		cfg, err := readConfig()
		if err != nil {
			return err
		}
		version, err := app.Restore(cmd.Context(), cfg, store, func() (string, error) {
			return readPassphrase(false)
		})
		if err != nil {
			return fmt.Errorf("restoring library: %w", err)
		}
		fmt.Printf("Restored library %s at version %d\n", cfg.LibraryID, version)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	// project subcommands
	projectCmd.AddCommand(projectCreateCmd)
	projectCreateCmd.Flags().Int64("fps", 0, "Frame rate (default from config)")
	projectCreateCmd.Flags().Int64("width", 0, "Resolution width (default from config)")
	projectCreateCmd.Flags().Int64("height", 0, "Resolution height (default from config)")
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)

	// asset subcommands
	for _, c := range []*cobra.Command{assetImportCmd, assetListCmd} {
		c.Flags().Int64P("project", "p", 0, "Project id")
		c.MarkFlagRequired("project")
		assetCmd.AddCommand(c)
	}
	assetCmd.AddCommand(assetRmCmd)

	// timeline subcommands
	for _, c := range []*cobra.Command{timelineCommitCmd, timelineShowCmd} {
		c.Flags().Int64P("project", "p", 0, "Project id")
		c.MarkFlagRequired("project")
		timelineCmd.AddCommand(c)
	}

	// clip subcommands
	clipAddCmd.Flags().Int64("track", 0, "Track id")
	clipAddCmd.Flags().Int64("asset", 0, "Asset id")
	clipAddCmd.Flags().Int64("start", 0, "Start time in milliseconds")
	clipAddCmd.MarkFlagRequired("track")
	clipAddCmd.MarkFlagRequired("asset")
	clipCmd.AddCommand(clipAddCmd)

	// drop subcommands
	dropReplayCmd.Flags().Int64P("project", "p", 0, "Project id")
	dropReplayCmd.MarkFlagRequired("project")
	dropCmd.AddCommand(dropReplayCmd)

	// snapshot subcommands
	snapshotRestoreCmd.Flags().String("store", "", "Snapshot store name (default: the newest)")
	snapshotCmd.AddCommand(snapshotRestoreCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(assetCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(clipCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(snapshotCmd)
}
