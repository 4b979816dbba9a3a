package e2e

import (
	"github.com/cucumber/godog"

	"confpaper/e2e/steps/papers"
)

// RegisterSteps registers every step definition package.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	papers.RegisterSteps(ctx, tc)
}
