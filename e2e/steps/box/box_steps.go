// Package box holds step definitions for box management scenarios.
package box

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared context these steps need.
type TestContext interface {
	AuthenticateAs(userID string, orgID int64, baseIDs []any, permissions []any) error
	POST(path string, body any) error
	PATCH(path string, body any) error
	GET(path string) error
	LastStatus() int
	ResponseField(field string) (any, error)
	ResponseList() []map[string]any
	RememberBoxLabel(label string)
	BoxLabels() []string
}

// RegisterSteps registers box-related step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &boxSteps{tc: tc}

	ctx.Step(`^I am a warehouse worker at base (\d+) of organisation (\d+)$`, steps.authenticateAsWorker)
	ctx.Step(`^I create a box with product (\d+), location (\d+), size (\d+), and (\d+) items$`, steps.createBox)
	ctx.Step(`^I look up the created box$`, steps.lookUpCreatedBox)
	ctx.Step(`^I change the box comment to "([^"]*)"$`, steps.changeComment)
	ctx.Step(`^I move the created boxes to location (\d+)$`, steps.moveBoxes)
	ctx.Step(`^I fetch the box history$`, steps.fetchHistory)
	ctx.Step(`^the history should mention "([^"]*)"$`, steps.historyShouldMention)
}

type boxSteps struct {
	tc TestContext
}

func (s *boxSteps) authenticateAsWorker(base, org int64) error {
	return s.tc.AuthenticateAs("7", org, []any{base}, []any{
		"stock:read", "stock:write", "tag_relation:assign", "history:read",
	})
}

func (s *boxSteps) createBox(product, location, size, items int64) error {
	if err := s.tc.POST("/boxes", map[string]any{
		"product_id":      product,
		"location_id":     location,
		"size_id":         size,
		"number_of_items": items,
	}); err != nil {
		return err
	}
	if s.tc.LastStatus() != 201 {
		return fmt.Errorf("expected 201 creating box, got %d", s.tc.LastStatus())
	}
	label, err := s.tc.ResponseField("label")
	if err != nil {
		return err
	}
	s.tc.RememberBoxLabel(fmt.Sprintf("%v", label))
	return nil
}

func (s *boxSteps) lookUpCreatedBox() error {
	labels := s.tc.BoxLabels()
	if len(labels) == 0 {
		return fmt.Errorf("no box created in this scenario")
	}
	return s.tc.GET("/boxes/" + labels[len(labels)-1])
}

func (s *boxSteps) changeComment(comment string) error {
	labels := s.tc.BoxLabels()
	if len(labels) == 0 {
		return fmt.Errorf("no box created in this scenario")
	}
	return s.tc.PATCH("/boxes/"+labels[len(labels)-1], map[string]any{
		"comment": comment,
	})
}

func (s *boxSteps) moveBoxes(location int64) error {
	return s.tc.POST("/boxes/move", map[string]any{
		"labels":      s.tc.BoxLabels(),
		"location_id": location,
	})
}

func (s *boxSteps) fetchHistory() error {
	labels := s.tc.BoxLabels()
	if len(labels) == 0 {
		return fmt.Errorf("no box created in this scenario")
	}
	return s.tc.GET("/boxes/" + labels[len(labels)-1] + "/history")
}

func (s *boxSteps) historyShouldMention(fragment string) error {
	for _, entry := range s.tc.ResponseList() {
		if msg, ok := entry["message"].(string); ok && strings.Contains(msg, fragment) {
			return nil
		}
	}
	return fmt.Errorf("no history entry mentions %q", fragment)
}
