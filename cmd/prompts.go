package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"msgagent/display"
	"msgagent/models"
	"msgagent/organizer"
	"msgagent/prompt"
)

func newPromptsCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:     "prompts",
		Aliases: []string{"prompt"},
		Short:   "Manage custom prompt templates",
	}
	cmd.PersistentFlags().StringVarP(&user, "user", "u", "cli", "Owner of the templates")

	withApp := func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return run(cmd, a, args)
		}
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			prompts, err := a.prompts.List(cmd.Context(), user)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), prompts)
			}
			display.Header(cmd.OutOrStdout(), fmt.Sprintf("Prompts for %s", user))
			display.PromptTable(cmd.OutOrStdout(), prompts)
			return nil
		}),
	}

	var activate bool
	save := &cobra.Command{
		Use:   "save NAME [FILE]",
		Short: "Validate and store a template, replacing one with the same name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}
			var p *models.PromptTemplate
			if activate {
				p, err = a.prompts.SaveAndActivate(cmd.Context(), user, args[0], string(raw))
			} else {
				p, err = a.prompts.Save(cmd.Context(), user, args[0], string(raw))
			}
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			display.SuccessMsg(cmd.OutOrStdout(), "Saved prompt %q (id %d)", p.Name, p.ID)
			for _, s := range prompt.MissingSections(p.Content) {
				display.ErrorMsg(cmd.ErrOrStderr(), "Missing section: %s", s)
			}
			return nil
		}),
	}
	save.Flags().BoolVar(&activate, "activate", false, "Make the saved template active")

	activateCmd := &cobra.Command{
		Use:   "activate ID",
		Short: "Make a stored template the active one",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.prompts.Activate(cmd.Context(), user, id); err != nil {
				return err
			}
			display.SuccessMsg(cmd.OutOrStdout(), "Activated prompt %d", id)
			return nil
		}),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.prompts.Delete(cmd.Context(), user, id); err != nil {
				return err
			}
			display.SuccessMsg(cmd.OutOrStdout(), "Deleted prompt %d", id)
			return nil
		}),
	}

	validate := &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check a template's syntax and placeholders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			valid, msg := prompt.ValidateSyntax(string(raw))
			missing := prompt.MissingSections(string(raw))
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"valid":            valid,
					"error":            msg,
					"missing_sections": missing,
				})
			}
			if !valid {
				display.ErrorMsg(cmd.OutOrStdout(), "Invalid template: %s", msg)
				return fmt.Errorf("template is invalid")
			}
			display.SuccessMsg(cmd.OutOrStdout(), "Template is valid")
			for _, s := range missing {
				display.ErrorMsg(cmd.OutOrStdout(), "Missing section: %s", s)
			}
			return nil
		},
	}

	vars := &cobra.Command{
		Use:   "vars [FILE]",
		Short: "List the variables a template references",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			names := prompt.ExtractVariables(string(raw))
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	var tone models.ToneProfile
	var style string
	render := &cobra.Command{
		Use:   "render [FILE]",
		Short: "Render a template, or the active one, for a tone profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if style != "" {
				s, ok := organizer.ParseStyle(style)
				if !ok {
					return fmt.Errorf("unknown style %q", style)
				}
				tone.Style = s
			}
			tone = organizer.NormalizeTone(tone)

			var out prompt.Rendered
			if len(args) == 0 {
				out = a.prompts.RenderFor(cmd.Context(), user, tone)
			} else {
				raw, err := readInput(cmd.InOrStdin(), args)
				if err != nil {
					return err
				}
				out = a.prompts.Renderer().Render(string(raw), tone)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if out.Fallback {
				display.ErrorMsg(cmd.ErrOrStderr(), "Rendering failed, showing the fallback prompt: %v", out.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		}),
	}
	render.Flags().StringVar(&tone.Name, "name", "", "Profile name")
	render.Flags().StringVar(&tone.Profile, "profile", "", "Profile description")
	render.Flags().StringVar(&style, "style", "", "Reply style")
	render.Flags().StringVar(&tone.Signature, "signature", "", "Signature")
	render.Flags().StringVar(&tone.Language, "lang", "", "Language")

	cmd.AddCommand(list, save, activateCmd, deleteCmd, validate, vars, render)
	return cmd
}

func init() {
	rootCmd.AddCommand(newPromptsCmd())
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid prompt id %q", raw)
	}
	return id, nil
}
