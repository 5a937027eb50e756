package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/usecase"
	"github.com/hostkit/checkin-bridge/internal/conf"
	"github.com/hostkit/checkin-bridge/internal/data"
)

// The review CLI is the human half of the system: every outbound
// message is approved here before anything leaves the building, and
// the send itself only happens behind the explicit --send flag.
func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "review",
		Usage: "review and approve drafted guest and cleaner messages",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list drafts awaiting review, oldest first",
				Action: runList,
			},
			{
				Name:      "show",
				Usage:     "show a draft and its request",
				ArgsUsage: "<draft-id>",
				Action:    runShow,
			},
			{
				Name:      "ok",
				Usage:     "approve a draft as-is",
				ArgsUsage: "<draft-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "send",
						Usage: "also deliver the approved message through its channel",
					},
				},
				Action: runOK,
			},
			{
				Name:      "nok",
				Usage:     "reject a draft",
				ArgsUsage: "<draft-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "sent",
						Usage: "the message actually sent instead, if any",
					},
					&cli.StringFlag{
						Name:  "comment",
						Usage: "why the draft was rejected",
					},
				},
				Action: runNOK,
			},
			{
				Name:      "advance",
				Usage:     "move a request one status step forward",
				ArgsUsage: "<request-id>",
				Action:    runAdvance,
			},
			{
				Name:      "history",
				Usage:     "list all requests for a reservation",
				ArgsUsage: "<reservation-id>",
				Action:    runHistory,
			},
		},
		// Bare invocation behaves like list
		Action: runList,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env bundles everything a subcommand needs
type env struct {
	cfg    *conf.Config
	repos  *data.Repositories
	review *usecase.ReviewUsecase
}

func setup() (*env, error) {
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	repos, err := data.NewRepositories(cfg, log)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		repos:  repos,
		review: usecase.NewReviewUsecase(repos.Memory, log),
	}, nil
}

func (e *env) close() {
	e.repos.Close()
}

func runList(c *cli.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	drafts, err := e.review.Pending(c.Context)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		fmt.Println("no drafts awaiting review")
		return nil
	}

	for _, d := range drafts {
		fmt.Printf("#%-4d %-14s %-13s res=%-9d %s\n",
			d.DraftID, d.Step, d.Intent, d.ReservationID, firstLine(d.Body))
	}
	return nil
}

func runShow(c *cli.Context) error {
	draftID, err := argInt64(c, "draft-id")
	if err != nil {
		return err
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	draft, req, err := e.review.Show(c.Context, draftID)
	if err != nil {
		return err
	}

	fmt.Printf("Draft #%d  step=%s  intent=%s  verdict=%s\n",
		draft.DraftID, draft.Step, draft.Intent, draft.Verdict)
	fmt.Printf("Created: %s\n", draft.CreatedAt.Format(time.RFC3339))
	if req != nil {
		fmt.Printf("Request: %s  status=%s\n", req.RequestID, req.Status)
		fmt.Printf("Guest:   %s (%s), reservation %d\n", req.GuestName, req.PropertyName, req.ReservationID)
		fmt.Printf("Change:  %s -> %s on %s\n", req.OriginalTime, req.RequestedTime, req.RelevantDate)
		fmt.Printf("Asked:   %s\n", req.GuestMessage)
	}
	fmt.Printf("\n%s\n", draft.Body)
	if draft.Verdict != domain.VerdictPending {
		fmt.Printf("\nReviewed: %s\n", draft.ReviewedAt.Format(time.RFC3339))
		if draft.ActualMessageSent != "" {
			fmt.Printf("Actually sent: %s\n", draft.ActualMessageSent)
		}
		if draft.OwnerComment != "" {
			fmt.Printf("Comment: %s\n", draft.OwnerComment)
		}
	}
	return nil
}

func runOK(c *cli.Context) error {
	draftID, err := argInt64(c, "draft-id")
	if err != nil {
		return err
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	draft, req, err := e.review.Show(c.Context, draftID)
	if err != nil {
		return err
	}
	if draft.Verdict != domain.VerdictPending {
		return fmt.Errorf("draft %d already reviewed (%s)", draftID, draft.Verdict)
	}

	// Deliver first: a failed send must leave the draft reviewable
	if c.Bool("send") {
		if err := e.deliver(c.Context, draft, req); err != nil {
			return fmt.Errorf("send failed, draft left pending: %w", err)
		}
		fmt.Printf("draft %d sent\n", draftID)
	}

	if err := e.review.Review(c.Context, draftID, domain.VerdictOK, "", ""); err != nil {
		return err
	}
	fmt.Printf("draft %d approved\n", draftID)

	if c.Bool("send") && req != nil {
		fmt.Printf("next: review advance %s\n", req.RequestID)
	}
	return nil
}

// deliver routes an approved draft to its channel: cleaner queries go
// to the cleaning-staff chat, everything else to the guest.
func (e *env) deliver(ctx context.Context, draft *domain.Draft, req *domain.ProcessedRequest) error {
	if draft.Step == domain.StepCleanerQuery {
		if req == nil {
			return fmt.Errorf("cleaner query draft %d has no request", draft.DraftID)
		}
		query := &domain.CleanerQuery{
			RequestID:     req.RequestID,
			CleanerName:   e.cfg.Lark.CleanerName,
			GuestName:     req.GuestName,
			PropertyName:  req.PropertyName,
			RequestType:   req.Intent,
			OriginalTime:  req.OriginalTime,
			RequestedTime: req.RequestedTime,
			Date:          req.RelevantDate,
			GuestMessage:  req.GuestMessage,
		}
		_, err := e.repos.Cleaner.SendQuery(ctx, query, draft.Body)
		return err
	}

	subject := "About your stay"
	if req != nil {
		if req.Intent == domain.IntentEarlyCheckin {
			subject = "Your early check-in request"
		} else {
			subject = "Your late check-out request"
		}
	}
	return e.repos.Gateway.SendMessage(ctx, draft.ReservationID, subject, draft.Body)
}

func runNOK(c *cli.Context) error {
	draftID, err := argInt64(c, "draft-id")
	if err != nil {
		return err
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.review.Review(c.Context, draftID, domain.VerdictNOK,
		c.String("sent"), c.String("comment")); err != nil {
		return err
	}
	fmt.Printf("draft %d rejected\n", draftID)
	return nil
}

func runAdvance(c *cli.Context) error {
	requestID := c.Args().First()
	if requestID == "" {
		return fmt.Errorf("request-id argument is required")
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	status, err := e.review.Advance(c.Context, requestID)
	if err != nil {
		return err
	}
	fmt.Printf("request %s -> %s\n", requestID, status)
	return nil
}

func runHistory(c *cli.Context) error {
	reservationID, err := argInt64(c, "reservation-id")
	if err != nil {
		return err
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	requests, err := e.review.History(c.Context, reservationID)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		fmt.Println("no requests for this reservation")
		return nil
	}

	for _, r := range requests {
		fmt.Printf("%s  %-13s %-22s %s -> %s on %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Intent, r.Status,
			r.OriginalTime, r.RequestedTime, r.RelevantDate)
	}
	return nil
}

func argInt64(c *cli.Context, name string) (int64, error) {
	raw := c.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("%s argument is required", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i]
			break
		}
	}
	runes := []rune(s)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return s
}
