package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"msgagent/display"
	"msgagent/handlers/api"
	"msgagent/storage"
	"msgagent/utils"
)

// withDemo opens the app and the demo store for run
func withDemo(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.openDemo(); err != nil {
			return err
		}
		return run(cmd, a, args)
	}
}

func (a *app) demoHandler() *api.DemoHandler {
	return api.NewDemoHandler(a.demo, a.demoProcessor(nil), api.DemoOptions{
		OwnerID:     a.cfg.Demo.OwnerID,
		MaxLength:   a.cfg.Limits.MaxMessageLength,
		ImportLimit: a.cfg.IMAP.Limit,
		Tags:        a.tags,
		Importer:    a.importer,
	})
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample messages, contacts and profiles into the demo store",
		Args:  cobra.NoArgs,
		RunE: withDemo(func(cmd *cobra.Command, a *app, args []string) error {
			var src []byte
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				src = raw
			}
			data, err := storage.LoadSeed(src)
			if err != nil {
				return err
			}
			if err := a.demo.Seed(data); err != nil {
				return err
			}
			display.SuccessMsg(cmd.OutOrStdout(), "Seeded %d messages and %d contacts into %s",
				len(data.Messages), len(data.Contacts), a.demo.DataDir())
			return nil
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file (defaults to the built-in samples)")
	return cmd
}

func newMessagesCmd() *cobra.Command {
	var pending bool
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List demo messages",
		Args:  cobra.NoArgs,
		RunE: withDemo(func(cmd *cobra.Command, a *app, args []string) error {
			messages, err := a.demo.Messages()
			if pending {
				messages, err = a.demo.Unprocessed()
			}
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), messages)
			}
			display.MessageTable(cmd.OutOrStdout(), messages)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&pending, "pending", "p", false, "Only unprocessed messages")
	return cmd
}

func newThreadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "Group demo messages by sender and show them in sorted order",
		Args:  cobra.NoArgs,
		RunE: withDemo(func(cmd *cobra.Command, a *app, args []string) error {
			messages, err := a.demo.Messages()
			if err != nil {
				return err
			}
			threads := utils.NewThreadBuilder().BuildThreads(messages)
			sorted := a.pipeline.SortThreads(threads)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"threads":    threads,
					"sorted_ids": sorted.Value,
				})
			}
			display.ThreadTable(cmd.OutOrStdout(), orderThreads(threads, sorted.Value))
			return nil
		}),
	}
}

func newProcessCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "process [ID...]",
		Short: "Organize demo messages and store the results",
		RunE: withDemo(func(cmd *cobra.Command, a *app, args []string) error {
			var ids []int
			if all {
				pending, err := a.demo.Unprocessed()
				if err != nil {
					return err
				}
				for _, m := range pending {
					ids = append(ids, m.ID)
				}
			}
			for _, raw := range args {
				var id int
				if _, err := fmt.Sscan(raw, &id); err != nil {
					return fmt.Errorf("invalid message id %q", raw)
				}
				ids = append(ids, id)
			}
			if len(ids) == 0 {
				return fmt.Errorf("no messages to process, pass IDs or --all")
			}

			h := a.demoHandler()
			failed := 0
			for _, id := range ids {
				result, err := h.ProcessMessage(cmd.Context(), id)
				if err != nil {
					failed++
					display.ErrorMsg(cmd.ErrOrStderr(), "Message %d: %v", id, err)
					continue
				}
				if jsonOutput {
					if err := writeJSON(cmd.OutOrStdout(), map[string]any{"id": id, "result": result}); err != nil {
						return err
					}
					continue
				}
				msg, _ := a.demo.Message(id)
				text := ""
				if msg != nil {
					text = msg.Text
				}
				display.ResultCard(cmd.OutOrStdout(), text, *result)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d messages failed", failed, len(ids))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Process every unprocessed message")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show demo processing statistics",
		Args:  cobra.NoArgs,
		RunE: withDemo(func(cmd *cobra.Command, a *app, args []string) error {
			stats, err := a.demo.Stats()
			if err != nil {
				return err
			}
			if counts, err := a.tags.Counts(); err == nil {
				stats.TagCounts = counts
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			display.Header(cmd.OutOrStdout(), "Demo statistics")
			display.StatsBlock(cmd.OutOrStdout(), stats)
			return nil
		}),
	}
}

func newImportCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch recent mail from the configured IMAP mailbox into the demo store",
		Args:  cobra.NoArgs,
		RunE: withDemo(func(cmd *cobra.Command, a *app, args []string) error {
			if a.importer == nil {
				return fmt.Errorf("no IMAP server configured, set [imap] server or MSGAGENT_IMAP_SERVER")
			}
			if limit <= 0 {
				limit = a.cfg.IMAP.Limit
			}
			report, err := a.importer.Import(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			display.SuccessMsg(cmd.OutOrStdout(), "Imported %d of %d fetched messages (%d skipped)",
				len(report.Imported), report.Fetched, report.Skipped)
			display.MessageTable(cmd.OutOrStdout(), report.Imported)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum messages to fetch (defaults to [imap] limit)")
	return cmd
}

func init() {
	demo := &cobra.Command{
		Use:   "demo",
		Short: "Work with the demo message store",
	}
	demo.AddCommand(newSeedCmd(), newMessagesCmd(), newThreadsCmd(), newProcessCmd(), newStatsCmd(), newImportCmd())
	rootCmd.AddCommand(demo)
}
