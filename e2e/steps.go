package e2e

import (
	"fmt"

	"github.com/cucumber/godog"

	"boxtribute/e2e/steps/box"
	"boxtribute/e2e/steps/shipment"
)

// RegisterSteps registers all step definitions from the modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	registerCommonSteps(ctx, tc)
	box.RegisterSteps(ctx, tc)
	shipment.RegisterSteps(ctx, tc)
}

func registerCommonSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^the response status should be (\d+)$`, func(status int) error {
		if tc.LastStatus() != status {
			return fmt.Errorf("expected status %d, got %d", status, tc.LastStatus())
		}
		return nil
	})
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, func(field, want string) error {
		v, err := tc.ResponseField(field)
		if err != nil {
			return err
		}
		if got := fmt.Sprintf("%v", v); got != want {
			return fmt.Errorf("expected %s=%q, got %q", field, want, got)
		}
		return nil
	})
	ctx.Step(`^the response should be a list of (\d+) items$`, func(n int) error {
		if got := len(tc.ResponseList()); got != n {
			return fmt.Errorf("expected %d items, got %d", n, got)
		}
		return nil
	})
}
