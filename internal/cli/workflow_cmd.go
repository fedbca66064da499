package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tollgate/internal/cli/formatter"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/service"
	"github.com/spf13/cobra"
)

func newWorkflowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflow",
		Aliases: []string{"wf"},
		Short:   "Drive approval workflows",
	}

	cmd.AddCommand(
		newWorkflowStartCmd(app),
		newWorkflowDecideCmd(app),
		newWorkflowResubmitCmd(app),
		newWorkflowHistoryCmd(app),
		newWorkflowStagesCmd(app),
	)

	return cmd
}

func newWorkflowStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start CODE",
		Short: "Open stage 1 for a draft or new request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := resolveRequest(ctx, app, args[0])
			if err != nil {
				return err
			}
			opened, err := app.Engine.StartWorkflow(ctx, req.Kind, req.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStageOpened(req.DisplayCode(), opened, app.now()))
			return nil
		},
	}
}

func newWorkflowDecideCmd(app *App) *cobra.Command {
	var actor, action, comments string
	var stage int

	cmd := &cobra.Command{
		Use:   "decide CODE",
		Short: "Approve, reject or request changes on the pending stage",
		Example: `  tollgate workflow decide INV-0001 --actor mgr-1 --action approve
  tollgate workflow decide CR-0004 --actor fin-1 --action reject --comments "over budget"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := resolveRequest(ctx, app, args[0])
			if err != nil {
				return err
			}

			if strings.TrimSpace(action) == "" {
				if !app.interactive() {
					return fmt.Errorf("%w: --action is required", domain.ErrInvalidAction)
				}
				history, err := app.Engine.QueryApprovalHistory(ctx, req.Kind, req.ID)
				if err != nil {
					return err
				}
				if err := decisionForm(req.DisplayCode(), pendingRecord(history), &action, &comments).Run(); err != nil {
					return err
				}
			}
			parsed, err := domain.ParseAction(action)
			if err != nil {
				return err
			}

			result, err := app.Engine.ProcessDecision(ctx, service.DecisionInput{
				Kind:      req.Kind,
				RequestID: req.ID,
				ActorID:   actor,
				Action:    parsed,
				Comments:  comments,
				Stage:     stage,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDecision(req.DisplayCode(), result, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Deciding user ID")
	cmd.Flags().StringVar(&action, "action", "", "approve, reject or changes_requested (prompted when omitted)")
	cmd.Flags().StringVar(&comments, "comments", "", "Decision comments")
	cmd.Flags().IntVar(&stage, "stage", 0, "Only decide if this stage is the one pending")
	_ = cmd.MarkFlagRequired("actor")

	return cmd
}

func newWorkflowResubmitCmd(app *App) *cobra.Command {
	var requester string

	cmd := &cobra.Command{
		Use:   "resubmit CODE",
		Short: "Restart a rejected or returned request at stage 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := resolveRequest(ctx, app, args[0])
			if err != nil {
				return err
			}
			opened, err := app.Engine.Resubmit(ctx, req.Kind, req.ID, requester)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStageOpened(req.DisplayCode(), opened, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&requester, "requester", "", "Original requester user ID")
	_ = cmd.MarkFlagRequired("requester")

	return cmd
}

func newWorkflowHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history CODE",
		Short: "Show every approval record of a request across cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := resolveRequest(ctx, app, args[0])
			if err != nil {
				return err
			}
			history, err := app.Engine.QueryApprovalHistory(ctx, req.Kind, req.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatHistory(req.DisplayCode(), history))
			return nil
		},
	}
}

func newWorkflowStagesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stages [KIND]",
		Short: "Show the configured stage sequence",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := app.Registry.Kinds()
			if len(args) == 1 {
				k, err := domain.ParseRequestKind(args[0])
				if err != nil {
					return err
				}
				kinds = []domain.RequestKind{k}
			}
			out := cmd.OutOrStdout()
			for _, k := range kinds {
				stages, err := app.Registry.Stages(k)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.FormatStages(k, stages))
			}
			return nil
		},
	}
}
