package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/erazemk/toolshed/internal/auth"
	"github.com/erazemk/toolshed/internal/config"
	"github.com/erazemk/toolshed/internal/forms"
	"github.com/erazemk/toolshed/internal/notify"
	"github.com/erazemk/toolshed/internal/workflow"
)

// withApp opens the app for one command and closes it afterwards.
func withApp(cfg *config.Config, fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// report prints the board's notification, if any.
func report(b *notify.Board) {
	if n, ok := b.Current(); ok {
		fmt.Printf("[%s] %s\n", n.Severity, n.Message)
	}
}

func argID(args []string, what string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing %s id", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, args[0])
	}
	return id, nil
}

func runLogin(cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: toolshed login <username> <password>")
	}
	return withApp(cfg, func(ctx context.Context, a *app) error {
		form := &forms.LoginForm{Username: args[0], Password: args[1]}
		if err := form.Validate(); err != nil {
			return err
		}
		resp, err := a.api.Login(ctx, form.Username, form.Password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		id := auth.NewIdentity(resp.AccessToken, form.Username, resp.Role, resp.UserID)
		if err := a.session.Login(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", id.Username, id.Role)
		return nil
	})
}

func runLogout(cfg *config.Config, _ []string) error {
	return withApp(cfg, func(ctx context.Context, a *app) error {
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	})
}

func runWhoami(cfg *config.Config, _ []string) error {
	return withApp(cfg, func(_ context.Context, a *app) error {
		id, ok := a.session.Current()
		if !ok {
			return workflow.ErrNotLoggedIn
		}
		fmt.Printf("%s (id %d, %s)\n", id.Username, id.UserID, id.Role)
		if !id.ExpiresAt.IsZero() {
			fmt.Printf("Session expires %s\n", id.ExpiresAt.Local().Format(time.RFC1123))
		}
		return nil
	})
}

func runTools(cfg *config.Config, args []string) error {
	return withApp(cfg, func(ctx context.Context, a *app) error {
		if _, ok := a.session.Current(); !ok {
			return workflow.ErrNotLoggedIn
		}
		page, err := a.catalog.Browse(ctx, workflow.Query{Search: strings.Join(args, " "), PerPage: 100})
		report(a.catalog.Notifications())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tCONDITION\tAVAILABLE")
		for _, t := range page.Tools {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", t.ID, t.Name, t.Category, t.Condition, t.IsAvailable)
		}
		return w.Flush()
	})
}

func runReserve(cfg *config.Config, args []string) error {
	toolID, err := argID(args, "tool")
	if err != nil {
		return err
	}
	date := time.Now().Format("2006-01-02")
	if len(args) > 1 {
		date = args[1]
	}

	return withApp(cfg, func(ctx context.Context, a *app) error {
		// The availability check needs the current catalog.
		if err := a.ctrl.Reload(ctx); err != nil {
			report(a.ctrl.Notifications())
			return err
		}
		err := a.ctrl.Reserve(ctx, toolID, date)
		report(a.ctrl.Notifications())
		return err
	})
}

func runReservations(cfg *config.Config, _ []string) error {
	return withApp(cfg, func(ctx context.Context, a *app) error {
		if err := a.ctrl.Reload(ctx); err != nil {
			report(a.ctrl.Notifications())
			return err
		}

		fmt.Println(a.ctrl.Warning())
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOOL\tDATE\tSTATE")
		for _, r := range a.ctrl.Reservations() {
			state, _ := r.State()
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.ToolName(), r.ReservationDate, state)
		}
		return w.Flush()
	})
}

// reservationCommand reloads, then runs fn on the reservation id in args.
func reservationCommand(cfg *config.Config, args []string, fn func(ctx context.Context, a *app, id int64) error) error {
	id, err := argID(args, "reservation")
	if err != nil {
		return err
	}
	return withApp(cfg, func(ctx context.Context, a *app) error {
		if err := a.ctrl.Reload(ctx); err != nil {
			report(a.ctrl.Notifications())
			return err
		}
		err := fn(ctx, a, id)
		report(a.ctrl.Notifications())
		return err
	})
}

func runCancel(cfg *config.Config, args []string) error {
	return reservationCommand(cfg, args, func(ctx context.Context, a *app, id int64) error {
		return a.ctrl.Cancel(ctx, id)
	})
}

var checkoutForm forms.CheckoutForm

func checkoutFlags(fs *flag.FlagSet, _ *config.Config) {
	fs.StringVar(&checkoutForm.Name, "name", "", "")
	fs.StringVar(&checkoutForm.Address, "address", "", "")
	fs.StringVar(&checkoutForm.Phone, "phone", "", "")
	fs.StringVar(&checkoutForm.ExpectedReturnDate, "until", "", "")
	fs.BoolVar(&checkoutForm.AgreeToTerms, "agree", false, "")
}

func runCheckout(cfg *config.Config, args []string) error {
	return reservationCommand(cfg, args, func(ctx context.Context, a *app, id int64) error {
		return a.ctrl.Checkout(ctx, id, &checkoutForm)
	})
}

var (
	returnForm     forms.ReturnForm
	returnDetailed bool
)

func returnFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&returnForm.Condition, "condition", "", "")
	fs.StringVar(&returnForm.ReturnReason, "reason", "", "")
	fs.StringVar(&returnForm.Damages, "damages", "", "")
	fs.StringVar(&returnForm.Feedback, "feedback", "", "")
	fs.StringVar(&returnForm.CleaningStatus, "cleaning", "", "")
	fs.StringVar(&returnForm.ActualUsageDuration, "used-for", "", "")
	fs.StringVar(&returnForm.MissingParts, "missing", "", "")
	fs.StringVar(&returnForm.SafetyIssues, "safety", "", "")
	fs.StringVar(&returnForm.MaintenanceNeeded, "maintenance", "", "")
	fs.StringVar(&returnForm.NotesForNextUser, "notes", "", "")
	fs.BoolVar(&returnDetailed, "detailed", false, "")
	fs.BoolVar(&cfg.SendReturnMetadata, "send-return-metadata", cfg.SendReturnMetadata, "")
}

func runReturn(cfg *config.Config, args []string) error {
	if returnDetailed {
		returnForm.Variant = forms.ReturnDetailed
	}
	return reservationCommand(cfg, args, func(ctx context.Context, a *app, id int64) error {
		return a.ctrl.RequestReturn(ctx, id, &returnForm)
	})
}

func runPendingReturns(cfg *config.Config, _ []string) error {
	return withApp(cfg, func(ctx context.Context, a *app) error {
		returns, err := a.review.PendingReturns(ctx)
		report(a.review.Notifications())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOOL\tCONDITION\tREASON")
		for _, pr := range returns {
			cond, reason := "-", "-"
			if pr.Report != nil {
				cond, reason = pr.Report.Condition, pr.Report.ReturnReason
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", pr.Reservation.ID, pr.Reservation.ToolName(), cond, reason)
		}
		return w.Flush()
	})
}

func runApprove(cfg *config.Config, args []string) error {
	return decideReturn(cfg, args, (*workflow.Review).ApproveReturn)
}

func runReject(cfg *config.Config, args []string) error {
	return decideReturn(cfg, args, (*workflow.Review).RejectReturn)
}

func decideReturn(cfg *config.Config, args []string, decide func(*workflow.Review, context.Context, int64) error) error {
	id, err := argID(args, "reservation")
	if err != nil {
		return err
	}
	return withApp(cfg, func(ctx context.Context, a *app) error {
		if _, err := a.review.PendingReturns(ctx); err != nil {
			report(a.review.Notifications())
			return err
		}
		err := decide(a.review, ctx, id)
		report(a.review.Notifications())
		return err
	})
}
