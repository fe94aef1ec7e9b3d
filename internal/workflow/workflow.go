// Package workflow is the routing table of the account journey:
//
//	sign_up -> verify -> login_validation
//	sign_in -> login_validation
//	forgot_password -> login_validation
//	login_validation -> subscription_validation
//	subscription_validation -> subscribed | subscription_plan
//	subscription_plan -> subscribed -> user_selection
//	user_selection -> image | report -> end
//
// Every function here is pure. A step that fails ends the journey.
package workflow

import (
	"context"
	"errors"
	"fmt"
)

type Step string

const (
	StepSignUp                 Step = "sign_up"
	StepVerify                 Step = "verify"
	StepSignIn                 Step = "sign_in"
	StepForgotPassword         Step = "forgot_password"
	StepLoginValidation        Step = "login_validation"
	StepSubscriptionValidation Step = "subscription_validation"
	StepSubscriptionPlan       Step = "subscription_plan"
	StepSubscribed             Step = "subscribed"
	StepUserSelection          Step = "user_selection"
	StepImage                  Step = "image"
	StepReport                 Step = "report"
	StepEnd                    Step = "end"
)

// Entry points a journey may start from.
var EntrySteps = []Step{StepSignUp, StepSignIn, StepForgotPassword}

type SubscriptionStatus string

const (
	StatusActive  SubscriptionStatus = "active"
	StatusNone    SubscriptionStatus = "none"
	StatusExpired SubscriptionStatus = "expired"
	StatusFailed  SubscriptionStatus = "failed"
	StatusUnknown SubscriptionStatus = "unknown"
)

const (
	SelectionImage  = "image"
	SelectionReport = "report"
)

// Outcome is what executing a step produced. Subscription is read only
// after subscription_validation and Selection only after user_selection.
type Outcome struct {
	OK           bool
	Subscription SubscriptionStatus
	Selection    string
}

var ErrUnknownStep = errors.New("unknown workflow step")

// RouteSubscription sends active subscribers straight on and everyone else
// through the plan step.
func RouteSubscription(status SubscriptionStatus) Step {
	if status == StatusActive {
		return StepSubscribed
	}
	return StepSubscriptionPlan
}

// RouteSelection picks the feature branch; anything but "report" is image.
func RouteSelection(choice string) Step {
	if choice == SelectionReport {
		return StepReport
	}
	return StepImage
}

// StatusOf classifies a subscription lookup: an error is failed, a
// resolved plan is active, anything else is none.
func StatusOf(planID string, err error) SubscriptionStatus {
	switch {
	case err != nil:
		return StatusFailed
	case planID != "":
		return StatusActive
	default:
		return StatusNone
	}
}

// Next returns the step after step given its outcome.
func Next(step Step, out Outcome) (Step, error) {
	if step == StepEnd {
		return StepEnd, nil
	}
	if !out.OK {
		if !known(step) {
			return "", fmt.Errorf("%w: %q", ErrUnknownStep, step)
		}
		return StepEnd, nil
	}

	switch step {
	case StepSignUp:
		return StepVerify, nil
	case StepVerify, StepSignIn, StepForgotPassword:
		return StepLoginValidation, nil
	case StepLoginValidation:
		return StepSubscriptionValidation, nil
	case StepSubscriptionValidation:
		return RouteSubscription(out.Subscription), nil
	case StepSubscriptionPlan:
		return StepSubscribed, nil
	case StepSubscribed:
		return StepUserSelection, nil
	case StepUserSelection:
		return RouteSelection(out.Selection), nil
	case StepImage, StepReport:
		return StepEnd, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
}

// Feature is the feature name recorded by a feature step.
func Feature(step Step) (string, bool) {
	switch step {
	case StepImage:
		return SelectionImage, true
	case StepReport:
		return SelectionReport, true
	default:
		return "", false
	}
}

// maxSteps bounds Run; the longest path has ten steps.
const maxSteps = 16

// Run drives a journey from start, calling exec for every step, and returns
// the visited steps including the final end.
func Run(ctx context.Context, start Step, exec func(ctx context.Context, step Step) Outcome) ([]Step, error) {
	path := make([]Step, 0, maxSteps)
	step := start

	for i := 0; i < maxSteps; i++ {
		path = append(path, step)
		if step == StepEnd {
			return path, nil
		}
		if err := ctx.Err(); err != nil {
			return path, err
		}

		next, err := Next(step, exec(ctx, step))
		if err != nil {
			return path, err
		}
		step = next
	}
	return path, fmt.Errorf("workflow did not finish within %d steps", maxSteps)
}

func known(step Step) bool {
	switch step {
	case StepSignUp, StepVerify, StepSignIn, StepForgotPassword, StepLoginValidation,
		StepSubscriptionValidation, StepSubscriptionPlan, StepSubscribed, StepUserSelection,
		StepImage, StepReport, StepEnd:
		return true
	}
	return false
}
