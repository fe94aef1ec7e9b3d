package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/api"
	"github.com/dmitrijs2005/accountkeeper/internal/workflow"
)

// Flow walks the account journey from an entry step chosen by the user,
// running each step interactively, and prints the path taken.
func (a *App) Flow(ctx context.Context) error {
	names := make([]string, 0, len(workflow.EntrySteps))
	for _, s := range workflow.EntrySteps {
		names = append(names, string(s))
	}

	start, err := getChoice(a.reader, "Start with", names, a.out)
	if err != nil {
		return err
	}

	path, err := workflow.Run(ctx, workflow.Step(start), a.execStep)

	steps := make([]string, 0, len(path))
	for _, s := range path {
		steps = append(steps, string(s))
	}
	fmt.Fprintln(a.out, "Path:", strings.Join(steps, " -> "))

	return err
}

func (a *App) execStep(ctx context.Context, step workflow.Step) workflow.Outcome {
	fmt.Fprintf(a.out, "[%s]\n", step)

	switch step {
	case workflow.StepSignUp:
		return a.okIf(a.Register(ctx))

	case workflow.StepVerify:
		return a.okIf(a.Verify(ctx))

	case workflow.StepSignIn:
		return a.okIf(a.Login(ctx))

	case workflow.StepForgotPassword:
		if err := a.ForgotPassword(ctx); err != nil {
			return a.okIf(err)
		}
		return a.okIf(a.ResetPassword(ctx))

	case workflow.StepLoginValidation:
		if a.isLoggedIn() {
			return workflow.Outcome{OK: true}
		}
		return a.okIf(a.Login(ctx))

	case workflow.StepSubscriptionValidation:
		resp, err := a.client.Subscription(ctx)
		planID := ""
		if err == nil && resp.Status == api.StatusOK && resp.Subscription != nil {
			planID = resp.Subscription.PlanID
		}
		return workflow.Outcome{OK: true, Subscription: workflow.StatusOf(planID, err)}

	case workflow.StepSubscriptionPlan:
		return a.okIf(a.Upgrade(ctx))

	case workflow.StepSubscribed:
		return a.okIf(a.Subscription(ctx))

	case workflow.StepUserSelection:
		choice, err := getSimpleText(a.reader, "Choose image or report", a.out)
		if err != nil {
			return a.okIf(err)
		}
		return workflow.Outcome{OK: true, Selection: strings.ToLower(choice)}

	case workflow.StepImage, workflow.StepReport:
		feature, _ := workflow.Feature(step)
		return a.okIf(a.useFeature(ctx, feature))
	}

	return workflow.Outcome{}
}

func (a *App) okIf(err error) workflow.Outcome {
	if err != nil {
		if !isRejected(err) {
			fmt.Fprintln(a.out, "error:", err)
		}
		return workflow.Outcome{}
	}
	return workflow.Outcome{OK: true}
}
