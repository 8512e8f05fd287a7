package history

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gosuri/uitable"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/planner"
	"github.com/julianstephens/threethings/internal/utils"
)

func validateDate(date string) error {
	if !utils.ValidateDate(date) {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

type ListCmd struct {
	Limit int `short:"n" help:"Show at most this many days (0 for all)." default:"0"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	state, err := ctx.Adapter.Load(ctx.Ctx())
	if err != nil {
		return err
	}
	if len(state.History) == 0 {
		ctx.Println("No history yet.")
		return nil
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("DATE", "DONE", "BIG", "SMALL", "RATING", "SUMMARY")
	for i, day := range state.History {
		if c.Limit > 0 && i >= c.Limit {
			break
		}
		s := day.Stats()
		date := day.Date
		if day.RolledOver {
			date += " →"
		}
		tbl.AddRow(date,
			fmt.Sprintf("%d/%d", s.Overall.Done, s.Overall.Total),
			fmt.Sprintf("%d%%", s.Big.Rate()),
			fmt.Sprintf("%d%%", s.Small.Rate()),
			cli.RatingText(day.DayRating),
			truncate(day.Summary(), 48))
	}
	ctx.Println(tbl)
	return nil
}

type ShowCmd struct {
	Date string `arg:"" help:"Day to show (YYYY-MM-DD)."`
}

func (c *ShowCmd) Validate() error { return validateDate(c.Date) }

func (c *ShowCmd) Run(ctx *cli.Context) error {
	state, err := ctx.Adapter.Load(ctx.Ctx())
	if err != nil {
		return err
	}
	i := state.HistoryIndex(c.Date)
	if i < 0 {
		return fmt.Errorf("no history for %s", c.Date)
	}
	day := state.History[i]

	ctx.Printf("%s  rating: %s\n\n", day.Date, cli.RatingText(day.DayRating))
	for _, t := range planner.Rank(day.Tasks) {
		ctx.Printf("%s %d. %s (%s)  [%s]\n", cli.StatusMark(t.Task), t.Rank, t.Title, t.Size, cli.ShortID(t.ID))
		if t.Reflection != "" {
			ctx.Printf("     reflection: %s\n", t.Reflection)
		}
		if enc := t.EncouragementText(); enc != "" {
			ctx.Printf("     %s\n", enc)
		}
	}
	if summary := day.Summary(); summary != "" {
		ctx.Printf("\n%s\n", summary)
		if day.JournalCreatedAt != nil {
			ctx.Printf("(written %s)\n", day.JournalCreatedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	return nil
}

type ToggleCmd struct {
	Date string `arg:"" help:"Day (YYYY-MM-DD)."`
	ID   string `arg:"" help:"Task ID or unique prefix."`
}

func (c *ToggleCmd) Validate() error { return validateDate(c.Date) }

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	var resolveErr error
	state, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		s := p.State()
		i := s.HistoryIndex(c.Date)
		if i < 0 {
			resolveErr = fmt.Errorf("no history for %s", c.Date)
			return false
		}
		id, err := cli.ResolveTaskID(s.History[i], c.ID)
		if err != nil {
			resolveErr = err
			return false
		}
		resolveErr = nil
		return p.ToggleHistoryTask(c.Date, id)
	})
	if err != nil {
		return err
	}
	if resolveErr != nil {
		return resolveErr
	}
	if !changed {
		return fmt.Errorf("task not found on %s", c.Date)
	}
	day := state.History[state.HistoryIndex(c.Date)]
	ctx.Println(cli.TaskTable(planner.Rank(day.Tasks)))
	return nil
}

type JournalCmd struct {
	Date string   `arg:"" help:"Day (YYYY-MM-DD)."`
	Text []string `arg:"" help:"New journal text."`
}

func (c *JournalCmd) Validate() error { return validateDate(c.Date) }

func (c *JournalCmd) Run(ctx *cli.Context) error {
	_, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		return p.SetHistoryJournal(c.Date, strings.Join(c.Text, " "))
	})
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("no history for %s", c.Date)
	}
	ctx.Printf("Journal for %s updated.\n", c.Date)
	return nil
}

type DeleteCmd struct {
	Date string `arg:"" help:"Day (YYYY-MM-DD)."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Validate() error { return validateDate(c.Date) }

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ctx.Printf("Delete the record for %s? This cannot be undone. [y/N]: ", c.Date)
		response, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	_, changed, err := ctx.Update(ctx.Ctx(), func(p *planner.Controller) bool {
		return p.DeleteHistoryDay(c.Date)
	})
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("no history for %s", c.Date)
	}
	ctx.Printf("Deleted %s.\n", c.Date)
	return nil
}
