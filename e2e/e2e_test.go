package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the Gherkin scenarios against a live server. Set
// E2E_BASE_URL to the server address and E2E_SIGNING_KEY to the JWT key the
// server was started with; without them the suite is skipped.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		t.Skip("E2E_BASE_URL not set, skipping end-to-end suite")
	}
	signingKey := os.Getenv("E2E_SIGNING_KEY")
	if signingKey == "" {
		t.Skip("E2E_SIGNING_KEY not set, skipping end-to-end suite")
	}

	tc := NewTestContext(baseURL, signingKey)

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return c, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("end-to-end scenarios failed")
	}
}
