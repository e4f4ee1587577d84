package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/report"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// seedData is the seed file format. Items name their owner by user name.
type seedData struct {
	Users []seedUser `yaml:"users"`
	Items []seedItem `yaml:"items"`
}

type seedUser struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type seedItem struct {
	Owner       string `yaml:"owner"`
	Type        string `yaml:"type"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Location    string `yaml:"location"`
}

const sampleSeed = `
users:
  - name: Ann
    email: ann@example.com
  - name: Bob
    email: bob@example.com
  - name: Cy
items:
  - owner: Ann
    type: lost
    title: Black Wallet
    description: leather wallet with cards
    category: Wallet
    location: Library
  - owner: Bob
    type: found
    title: Leather Wallet Found
    description: found near library, has cards inside
    category: Wallet
    location: Library
  - owner: Ann
    type: lost
    title: Silver Watch
    description: lost in park yesterday
    category: Watch
    location: Central Park
  - owner: Cy
    type: found
    title: Silver Watch
    description: found in park
    category: Watch
    location: Central Park
  - owner: Bob
    type: lost
    title: Phone
    category: Electronics
    location: Cafeteria
  - owner: Cy
    type: found
    title: Phone Case
    category: Accessories
    location: Gym
`

func loadSeed(src string) (*seedData, error) {
	raw := []byte(sampleSeed)
	if src != "" {
		var err error
		raw, err = os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file %s: %w", src, err)
		}
	}

	var data seedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return &data, nil
}

type seedStats struct {
	users         int
	items         int
	notifications int
	alerts        int
}

// seed registers the users, then reports the items in file order so later
// items match earlier ones exactly as live reports would.
func seed(ctx context.Context, reporter *report.Reporter, data *seedData, progress *progressTracker) (*seedStats, error) {
	stats := &seedStats{}
	owners := make(map[string]core.ID, len(data.Users))
	for _, u := range data.Users {
		user, err := reporter.RegisterUser(ctx, u.Name, u.Email)
		if err != nil {
			return stats, fmt.Errorf("user %q: %w", u.Name, err)
		}
		owners[strings.ToLower(user.Name)] = user.Id
		stats.users++
	}

	for i, it := range data.Items {
		owner, ok := owners[strings.ToLower(strings.TrimSpace(it.Owner))]
		if !ok {
			return stats, fmt.Errorf("item %d: unknown owner %q", i+1, it.Owner)
		}
		itemType, err := core.ParseItemType(it.Type)
		if err != nil {
			return stats, fmt.Errorf("item %d: %w", i+1, err)
		}

		outcome, err := reporter.Report(ctx, report.Request{
			Title:       it.Title,
			Description: it.Description,
			Category:    it.Category,
			Location:    it.Location,
			Type:        itemType,
			OwnerId:     owner,
		})
		if outcome != nil {
			stats.items++
			if progress != nil {
				progress.Increment(1)
			}
			stats.notifications += len(outcome.Notifications)
			if outcome.Alerts != nil {
				stats.alerts += outcome.Alerts.Notified
			}
		}
		if err != nil {
			return stats, fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return stats, nil
}

func seedCommand(c *cli.Context) error {
	data, err := loadSeed(c.String("src"))
	if err != nil {
		return err
	}
	if len(data.Users) == 0 && len(data.Items) == 0 {
		return errors.New("seed data is empty")
	}

	env, err := openEnvironment(configFrom(c))
	if err != nil {
		return err
	}
	defer env.Close()

	progress := newProgressTracker(c.App.ErrWriter, len(data.Items), c.Int("report-interval"))
	stats, err := seed(c.Context, env.reporter, data, progress)
	progress.Finish()
	fmt.Fprintf(c.App.Writer, "Seeded %d users and %d items (%d notifications, %d email alerts)\n",
		stats.users, stats.items, stats.notifications, stats.alerts)
	return err
}
