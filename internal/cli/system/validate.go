package system

import (
	"fmt"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/models"
	"github.com/julianstephens/threethings/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Repair history conflicts that can be fixed automatically."`
}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	var (
		result  validation.ValidationResult
		actions []validation.FixAction
	)
	_, err := ctx.Adapter.Update(ctx.Ctx(), func(s *models.AppState) (bool, error) {
		result = validation.New().ValidateState(*s)
		actions = nil
		if !c.Fix || !result.HasConflicts() {
			return false, nil
		}
		actions = validation.Fix(s, result.Conflicts)
		return len(actions) > 0, nil
	})
	if err != nil {
		return err
	}

	ctx.Println(result.FormatReport())
	for _, a := range actions {
		ctx.Printf("Fixed: %s\n", a.Action)
	}
	if result.HasConflicts() && len(actions) < len(result.Conflicts) {
		return fmt.Errorf("%d conflict(s) need manual attention", len(result.Conflicts)-len(actions))
	}
	return nil
}
