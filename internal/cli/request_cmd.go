package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tollgate/internal/cli/formatter"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
	"github.com/alexanderramin/tollgate/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newRequestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "request",
		Aliases: []string{"req"},
		Short:   "Create and inspect requests",
	}

	cmd.AddCommand(
		newRequestCreateCmd(app),
		newRequestListCmd(app),
		newRequestShowCmd(app),
	)

	return cmd
}

type requestFlags struct {
	kind                        kindFlag
	requester, amount, currency string
	submit                      bool

	project, category, description string
	horizon                        int

	purpose, payee, neededBy string
}

func newRequestCreateCmd(app *App) *cobra.Command {
	var f requestFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an investment or cash request",
		Example: `  tollgate request create --kind investment --requester u-7 --amount 250000 --project "Line 3 retrofit" --submit
  tollgate request create --kind cash --requester u-7 --amount 1200 --purpose "Booth deposit"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind := f.kind.kind
			amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
			if err != nil {
				return fmt.Errorf("%w: amount %q is not a number", domain.ErrInvalidRequest, f.amount)
			}
			base := domain.Request{RequesterID: f.requester, Amount: amount, Currency: f.currency}

			var (
				code   string
				opened *service.StageOpened
			)
			switch kind {
			case domain.KindInvestment:
				inv := &domain.InvestmentRequest{
					Request:       base,
					ProjectName:   f.project,
					Category:      f.category,
					Description:   f.description,
					HorizonMonths: f.horizon,
				}
				opened, err = app.Requests.CreateInvestment(ctx, inv, f.submit)
				code = inv.Code
			case domain.KindCashRequest:
				cr := &domain.CashRequest{Request: base, Purpose: f.purpose, Payee: f.payee}
				if f.neededBy != "" {
					t, perr := time.Parse("2006-01-02", f.neededBy)
					if perr != nil {
						return fmt.Errorf("%w: --needed-by must be YYYY-MM-DD", domain.ErrInvalidRequest)
					}
					cr.NeededBy = &t
				}
				opened, err = app.Requests.CreateCash(ctx, cr, f.submit)
				code = cr.Code
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s %s\n", kind.DisplayName(), formatter.Bold(code))
			if opened != nil {
				fmt.Fprint(out, formatter.FormatStageOpened(code, opened, app.now()))
			}
			return nil
		},
	}

	cmd.Flags().Var(&f.kind, "kind", "Request kind: investment or cash")
	cmd.Flags().StringVar(&f.requester, "requester", "", "Requester user ID")
	cmd.Flags().StringVar(&f.amount, "amount", "", "Requested amount")
	cmd.Flags().StringVar(&f.currency, "currency", "USD", "ISO currency code")
	cmd.Flags().BoolVar(&f.submit, "submit", false, "Submit immediately and start the approval workflow")
	cmd.Flags().StringVar(&f.project, "project", "", "Project name (investment)")
	cmd.Flags().StringVar(&f.category, "category", "", "Category (investment)")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (investment)")
	cmd.Flags().IntVar(&f.horizon, "horizon", 0, "Horizon in months (investment)")
	cmd.Flags().StringVar(&f.purpose, "purpose", "", "Purpose (cash)")
	cmd.Flags().StringVar(&f.payee, "payee", "", "Payee (cash)")
	cmd.Flags().StringVar(&f.neededBy, "needed-by", "", "Date the cash is needed, YYYY-MM-DD (cash)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("requester")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newRequestListCmd(app *App) *cobra.Command {
	var (
		kind      kindFlag
		requester string
		statuses  []string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.RequestFilter{RequesterID: requester, Limit: limit}
			for _, s := range statuses {
				filter.Outcomes = append(filter.Outcomes, domain.StatusOutcome(strings.ToLower(strings.TrimSpace(s))))
			}

			requests, err := app.Requests.List(cmd.Context(), kind.kind, filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRequestList(requests, app.now()))
			return nil
		},
	}

	cmd.Flags().Var(&kind, "kind", "Only list one kind")
	cmd.Flags().StringVar(&requester, "requester", "", "Only list requests by this user")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only list these outcomes (draft, in_progress, rejected, ...)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows per kind")

	return cmd
}

func newRequestShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE",
		Short: "Show a request with its approval history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := resolveRequest(ctx, app, args[0])
			if err != nil {
				return err
			}
			stages, err := app.Registry.Stages(req.Kind)
			if err != nil {
				return err
			}
			history, err := app.Engine.QueryApprovalHistory(ctx, req.Kind, req.ID)
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.ListForRequest(ctx, req.Kind, req.ID)
			if err != nil {
				return err
			}

			data := formatter.RequestDetailData{
				Request: req,
				Stages:  stages,
				History: history,
				Tasks:   tasks,
				Now:     app.now(),
			}
			switch req.Kind {
			case domain.KindInvestment:
				if data.Investment, err = app.Requests.GetInvestment(ctx, req.ID); err != nil {
					return err
				}
			case domain.KindCashRequest:
				if data.Cash, err = app.Requests.GetCash(ctx, req.ID); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRequestDetail(data))
			return nil
		},
	}
}
