package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"msgagent/display"
	"msgagent/models"
	"msgagent/organizer"
	"msgagent/utils"
)

func newOrganizeCmd() *cobra.Command {
	var (
		req     models.MessageRequest
		style   string
		user    string
		trace   bool
		copyOut bool
	)

	cmd := &cobra.Command{
		Use:   "organize [TEXT]",
		Short: "Classify, tag, prioritize and draft a reply for one message",
		Long:  "Organize one message. TEXT is read from stdin when omitted or '-'.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			cleaned, truncated := utils.CleanMessageText(text, cfg.Limits.MaxMessageLength)
			if cleaned == "" {
				return fmt.Errorf("message text is empty")
			}
			if truncated {
				utils.Log.Warn("Message cut to %d characters", cfg.Limits.MaxMessageLength)
			}
			req.Text = cleaned

			if style != "" {
				s, ok := organizer.ParseStyle(style)
				if !ok {
					return fmt.Errorf("unknown style %q", style)
				}
				req.ToneProfile.Style = s
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			out := a.processor(nil).Process(cmd.Context(), user, req)

			if copyOut && out.Result.Draft != nil {
				if err := clipboard.WriteAll(*out.Result.Draft); err != nil {
					utils.Log.Warn("Failed to copy draft to clipboard: %v", err)
				} else {
					display.SuccessMsg(cmd.ErrOrStderr(), "Draft copied to clipboard")
				}
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				if trace {
					return writeJSON(w, out)
				}
				return writeJSON(w, out.Result)
			}
			display.ResultCard(w, req.Text, out.Result)
			if trace {
				display.ToolTrace(w, out.Steps)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.SenderID, "sender", "s", "", "Sender ID used for contact lookup")
	flags.StringVarP(&user, "user", "u", "cli", "User the message belongs to")
	flags.StringVar(&style, "style", "", "Reply style (正式, 輕鬆, 極簡, 詳細, 幽默, 專業 or formal, casual, ...)")
	flags.StringVar(&req.ToneProfile.Name, "name", "", "Name used in the reply signature")
	flags.StringVar(&req.ToneProfile.Signature, "signature", "", "Signature appended to the draft")
	flags.StringVar(&req.ToneProfile.Language, "lang", "", "Reply language (zh-tw, zh-cn, en, ja, ko)")
	flags.BoolVarP(&trace, "trace", "t", false, "Show each tool call")
	flags.BoolVar(&copyOut, "copy", false, "Copy the drafted reply to the clipboard")
	return cmd
}

func newSortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sort [FILE]",
		Short: "Order conversation threads by priority, recency and unread count",
		Long:  "Sort a JSON array of threads read from FILE or stdin and print the ordered IDs.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			var threads []models.ConversationThread
			if err := json.Unmarshal(raw, &threads); err != nil {
				var wrapped organizer.SortInput
				if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
					return fmt.Errorf("parse threads: %w", err)
				}
				threads = wrapped.Threads
			}

			decision := organizer.NewPipeline().SortThreads(threads)
			if decision.Err != nil {
				utils.Log.Warn("Sorting degraded, keeping input order: %v", decision.Err)
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(w, organizer.SortOutput{SortedThreads: decision.Value, Sorted: decision.Err == nil})
			}
			display.ThreadTable(w, orderThreads(threads, decision.Value))
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newOrganizeCmd(), newSortCmd())
}

// readArg returns the single text argument, or stdin for none or "-"
func readArg(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// readInput reads the named file, or stdin for none or "-"
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(stdin)
}

// orderThreads arranges threads in the order of ids
func orderThreads(threads []models.ConversationThread, ids []string) []models.ConversationThread {
	byID := make(map[string]models.ConversationThread, len(threads))
	for _, t := range threads {
		byID[t.ID] = t
	}
	ordered := make([]models.ConversationThread, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered
}
