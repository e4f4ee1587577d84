package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/poiesic/lostfound/api"
	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/match"
	"github.com/poiesic/lostfound/notify"
	"github.com/poiesic/lostfound/report"
	"github.com/urfave/cli/v2"
)

func serveCommand(c *cli.Context) error {
	cfg := configFrom(c)
	if c.IsSet("port") {
		cfg.HTTP.Port = c.Int("port")
		if err := cfg.HTTP.Validate(); err != nil {
			return fmt.Errorf("invalid port: %w", err)
		}
	}

	env, err := openEnvironment(cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	env.logger.Info("configuration loaded",
		"http_address", cfg.HTTP.Address(),
		"database", cfg.Database.Path,
		"embedding_model", cfg.Embedding.Model,
		"email_alerts", cfg.SMTP.Enabled,
		"log_level", cfg.LogLevel.String())

	router := api.NewRouter(env.reporter, cfg.HTTP.Token, env.logger)
	return api.Serve(c.Context, cfg.HTTP.Address(), router, env.logger)
}

func userAddCommand(c *cli.Context) error {
	env, err := openEnvironment(configFrom(c))
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := env.reporter.RegisterUser(c.Context, c.String("name"), c.String("email"))
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Registered user %d (%s)\n", user.Id, user.Name)
	return nil
}

func reportCommand(c *cli.Context) error {
	itemType, err := core.ParseItemType(c.String("type"))
	if err != nil {
		return err
	}

	env, err := openEnvironment(configFrom(c))
	if err != nil {
		return err
	}
	defer env.Close()

	outcome, err := env.reporter.Report(c.Context, report.Request{
		Title:       c.String("title"),
		Description: c.String("description"),
		Category:    c.String("category"),
		Location:    c.String("location"),
		Type:        itemType,
		OwnerId:     core.ID(c.Uint64("user")),
		ImageRef:    c.String("image"),
	})
	if outcome == nil {
		return fmt.Errorf("failed to report item: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Reported %s item %d: %s\n", outcome.Item.Type, outcome.Item.Id, outcome.Item.Title)
	if err != nil {
		return fmt.Errorf("item stored but not matched: %w", err)
	}
	printMatches(w, outcome.Matches)
	fmt.Fprintf(w, "Notified %d user(s)\n", len(outcome.Notifications))
	if outcome.Alerts != nil {
		printAlerts(w, outcome.Alerts)
	}
	if outcome.AlertErr != nil {
		fmt.Fprintf(w, "Email alerts failed: %v\n", outcome.AlertErr)
	}
	return nil
}

func resolveCommand(c *cli.Context) error {
	env, err := openEnvironment(configFrom(c))
	if err != nil {
		return err
	}
	defer env.Close()

	itemID := core.ID(c.Uint64("item"))
	if err := env.reporter.Resolve(c.Context, core.ID(c.Uint64("user")), itemID); err != nil {
		return fmt.Errorf("failed to resolve item %d: %w", itemID, err)
	}
	fmt.Fprintf(c.App.Writer, "Resolved item %d\n", itemID)
	return nil
}

func dashboardCommand(c *cli.Context) error {
	env, err := openEnvironment(configFrom(c))
	if err != nil {
		return err
	}
	defer env.Close()

	userID := core.ID(c.Uint64("user"))
	d, err := env.reporter.Dashboard(c.Context, userID)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Dashboard for %s (%d unread)\n", d.User.Name, d.Unread)
	printItems(w, d.Items)
	printNotifications(w, d.Notifications)

	if c.Bool("mark-read") && d.Unread > 0 {
		ids := make([]core.ID, 0, len(d.Notifications))
		for _, n := range d.Notifications {
			ids = append(ids, n.Id)
		}
		n, err := env.reporter.MarkRead(c.Context, userID, ids...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Marked %d notification(s) read\n", n)
	}
	return nil
}

func matchCommand(c *cli.Context) error {
	itemType, err := core.ParseItemType(c.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %w", match.ErrMalformedQuery, err)
	}
	query := match.Query{
		Title:       c.String("title"),
		Description: c.String("description"),
		Category:    c.String("category"),
		Type:        itemType,
	}

	cfg := configFrom(c)
	env, err := openEnvironment(cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	var matches []core.ScoredMatch
	if c.Bool("coarse") {
		matches, err = coarseMatches(c, env, query)
	} else {
		matches, err = env.reporter.Match(c.Context, query)
	}
	if err != nil {
		return err
	}
	printMatches(c.App.Writer, matches)
	return nil
}

// coarseMatches scores query the way email alerts do, without sending anything.
func coarseMatches(c *cli.Context, env *environment, query match.Query) ([]core.ScoredMatch, error) {
	if query.Type != core.ItemTypeFound {
		return nil, fmt.Errorf("%w: coarse matching takes a found item", match.ErrMalformedQuery)
	}
	matcher, err := match.NewCoarseMatcher(match.WithCoarseThreshold(env.cfg.Matching.CoarseThreshold))
	if err != nil {
		return nil, err
	}
	corpus, err := env.db.ItemRepository().LostItemsByCategory(c.Context, query.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", match.ErrCandidateLookup, err)
	}
	return match.Run(c.Context, matcher, query, corpus)
}

func checkCommand(c *cli.Context) error {
	env, err := openEnvironment(configFrom(c))
	if err != nil {
		return err
	}
	defer env.Close()

	users, err := env.db.UserRepository().GetUsers(c.Context)
	if err != nil {
		return err
	}
	items, err := env.db.ItemRepository().GetItems(c.Context)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Users: %d\n", len(users))
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{id(u.Id), u.Name, u.Email})
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Name", "Email"}, rows, []columnAlignment{alignRight}))

	var lost, found int
	for _, item := range items {
		if item.Type == core.ItemTypeLost {
			lost++
		} else {
			found++
		}
	}
	fmt.Fprintf(w, "Lost items: %d\nFound items: %d\n", lost, found)
	printItems(w, items)
	return nil
}

func id(v core.ID) string {
	return strconv.FormatUint(uint64(v), 10)
}

func printItems(w io.Writer, items []*core.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			id(item.Id),
			item.Type.String(),
			item.Title,
			item.Category,
			item.Location,
			item.CreatedAt.Local().Format(time.DateOnly),
			item.ImageRef,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Type", "Title", "Category", "Location", "Date", "Image"},
		rows,
		[]columnAlignment{alignRight},
	))
}

func printMatches(w io.Writer, matches []core.ScoredMatch) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches")
		return
	}
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			fmt.Sprintf("%.3f", m.Score),
			id(m.Item.Id),
			m.Item.Type.String(),
			m.Item.Title,
			m.Item.Category,
			id(m.Item.OwnerId),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Score", "ID", "Type", "Title", "Category", "Owner"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
}

func printNotifications(w io.Writer, notifications []*core.Notification) {
	if len(notifications) == 0 {
		fmt.Fprintln(w, "No notifications")
		return
	}
	rows := make([][]string, 0, len(notifications))
	for _, n := range notifications {
		status := "unread"
		if n.Read {
			status = "read"
		}
		rows = append(rows, []string{
			id(n.Id),
			id(n.MatchItemId),
			status,
			n.Message,
			n.CreatedAt.Local().Format(time.DateTime),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Item", "Status", "Message", "Created"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	))
}

func printAlerts(w io.Writer, r *notify.Result) {
	fmt.Fprintf(w, "Email alerts: %d evaluated, %d matched, %d sent, %d skipped, %d failed\n",
		r.Evaluated, len(r.Matches), r.Notified, r.Skipped, len(r.Failures))
}
